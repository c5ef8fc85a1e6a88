package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/runway/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

func configExists() bool {
	_, err := os.Stat(configPath())
	return err == nil
}

// saveConfig writes cfg to --config when given, else the default path.
func saveConfig(cfg config.Config) error {
	if flagConfig != "" {
		return config.SaveTo(flagConfig, cfg)
	}
	return config.Save(cfg)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", configPath())
	if configExists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Preset:        %s\n", cfg.General.Preset)
	fmt.Printf("    Horizon:       %d months\n", cfg.General.Horizon)
	fmt.Printf("    Parse mode:    %s\n", cfg.ParseMode())
	if cfg.General.DataDir != "" {
		fmt.Printf("    Ledger dir:    %s\n", cfg.General.DataDir)
	} else {
		fmt.Println("    Ledger dir:    not set (sample data)")
	}
	fmt.Println()

	fmt.Println("  [Forecast]")
	if cfg.HasOverrides() {
		in, err := cfg.BaseInput()
		if err != nil {
			return err
		}
		fmt.Printf("    Starting cash:    %.0f\n", in.StartingCash)
		fmt.Printf("    Monthly revenue:  %.0f\n", in.MonthlyRevenue)
		fmt.Printf("    Monthly expenses: %.0f\n", in.MonthlyExpenses)
		fmt.Printf("    Revenue growth:   %g%%\n", in.RevenueGrowthPct)
		fmt.Printf("    Expense growth:   %g%%\n", in.ExpenseGrowthPct)
	} else {
		fmt.Println("    No overrides (preset values)")
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Database: %s\n", config.GetDBPath(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Telemetry]")
	if dsn := config.GetSentryDSN(cfg); dsn != "" {
		fmt.Printf("    Sentry DSN:    %s\n", maskSecret(dsn))
	} else {
		fmt.Println("    Sentry DSN:    not configured")
	}
	if ep := config.GetOTLPEndpoint(cfg); ep != "" {
		fmt.Printf("    OTLP endpoint: %s\n", ep)
	} else {
		fmt.Println("    OTLP endpoint: not configured")
	}
	fmt.Println()

	rules := cfg.AlertRules()
	fmt.Printf("  [Alerts] %d rules\n", len(rules))
	for _, r := range rules {
		fmt.Printf("    %-14s %-6s %s\n", r.ID, r.Severity, r.Expr)
	}
	fmt.Println()

	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 16 {
		return "****"
	}
	return s[:12] + "..." + s[len(s)-4:]
}
