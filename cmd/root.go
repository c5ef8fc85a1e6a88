// Package cmd implements the runway CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/scenario"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var (
	flagConfig  string
	flagDataDir string
	flagDB      string
	flagMonths  int
	flagPreset  string
	flagLenient bool
	flagNoColor bool
	flagDebug   bool
	flagQuiet   bool
)

// Input overrides. Kept as text so they go through the same parser as the
// dashboard fields.
var (
	flagCash          string
	flagRevenue       string
	flagExpenses      string
	flagRevenueGrowth string
	flagExpenseGrowth string
)

// log is the process logger, built before any command runs.
var log = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:               "runway",
	Short:             "Cash runway forecasting CLI",
	Long:              "Project your cash balance month by month and see how long it lasts.",
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupRoot,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer func() { _ = log.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Ledger directory of JSONL files")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Scenario database path")
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "n", 0, "Forecast horizon in months (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagPreset, "preset", "p", "", "Starting preset: baseline, optimistic or conservative")
	rootCmd.PersistentFlags().BoolVar(&flagLenient, "lenient", false, "Accept loosely formatted numbers")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Verbose development logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	addInputFlags(rootCmd)
}

// addInputFlags registers the input override flags on cmd.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCash, "cash", "", "Starting cash")
	cmd.Flags().StringVar(&flagRevenue, "revenue", "", "Monthly revenue")
	cmd.Flags().StringVar(&flagExpenses, "expenses", "", "Monthly expenses")
	cmd.Flags().StringVar(&flagRevenueGrowth, "revenue-growth", "", "Monthly revenue growth in percent")
	cmd.Flags().StringVar(&flagExpenseGrowth, "expense-growth", "", "Monthly expense growth in percent")
}

func setupRoot(_ *cobra.Command, _ []string) error {
	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		cli.DisableColor()
	}
	log = logging.New(logging.Config{Debug: flagDebug, Quiet: !flagDebug})
	return nil
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if flagPreset != "" {
		cfg.General.Preset = flagPreset
	}
	if flagMonths > 0 {
		cfg.General.Horizon = flagMonths
	}
	if flagLenient {
		cfg.General.LenientParse = true
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagDB != "" {
		cfg.Daemon.DBPath = flagDB
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// inputFlagValues returns the override flags that were set on the command
// line, keyed by field.
func inputFlagValues(cmd *cobra.Command) map[forecast.Field]string {
	named := []struct {
		flag  string
		field forecast.Field
		value *string
	}{
		{"cash", forecast.FieldStartingCash, &flagCash},
		{"revenue", forecast.FieldRevenue, &flagRevenue},
		{"expenses", forecast.FieldExpenses, &flagExpenses},
		{"revenue-growth", forecast.FieldRevenueGrowth, &flagRevenueGrowth},
		{"expense-growth", forecast.FieldExpenseGrowth, &flagExpenseGrowth},
	}
	fields := make(map[forecast.Field]string)
	for _, n := range named {
		f := cmd.Flags().Lookup(n.flag)
		if f != nil && f.Changed {
			fields[n.field] = *n.value
		}
	}
	return fields
}

// resolveInput builds the forecast input from config and flags. The returned
// preset name is empty once anything overrides the preset values.
func resolveInput(cmd *cobra.Command, cfg config.Config) (forecast.Input, string, error) {
	in, err := cfg.BaseInput()
	if err != nil {
		return in, "", err
	}
	preset := cfg.General.Preset
	if cfg.HasOverrides() {
		preset = ""
	}

	fields := inputFlagValues(cmd)
	if len(fields) == 0 {
		return in, preset, nil
	}
	in, err = forecast.ParseInput(fields, in, cfg.ParseMode())
	if err != nil {
		return in, "", err
	}
	log.Debug("input overridden from flags", zap.Int("fields", len(fields)))
	return in, "", nil
}

// newController seeds a scenario controller from config and flags.
func newController(cmd *cobra.Command, cfg config.Config) (*scenario.Controller, error) {
	in, preset, err := resolveInput(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if preset != "" {
		return scenario.NewFromPreset(preset, in.HorizonMonths)
	}
	return scenario.New(in)
}

// newAlertEngine compiles the configured alert rules.
func newAlertEngine(cfg config.Config) (*alerts.Engine, error) {
	eng, err := alerts.NewEngine(cfg.AlertRules())
	if err != nil {
		return nil, fmt.Errorf("compiling alert rules: %w", err)
	}
	return eng, nil
}

// loadLedger is the shared ledger loading path used by the dashboard
// commands.
func loadLedger(ctx context.Context, cfg config.Config) (*pipeline.LoadResult, error) {
	dir := cfg.General.DataDir
	if !flagQuiet && dir != "" {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	result, err := pipeline.Load(ctx, dir, 0, progressFn)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d ledger files    \n", result.ParsedFiles)
	}
	log.Debug("ledger loaded",
		zap.Int("files", result.TotalFiles),
		zap.Int("parse_errors", result.ParseErrors),
		zap.Int("file_errors", result.FileErrors),
	)
	return result, nil
}

// warnLoadErrors prints parse failures after the main output.
func warnLoadErrors(result *pipeline.LoadResult) {
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be read\n", result.FileErrors)
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed lines skipped\n", result.ParseErrors)
	}
}
