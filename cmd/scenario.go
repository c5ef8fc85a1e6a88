package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagHistoryLimit int

var scenarioCmd = &cobra.Command{
	Use:     "scenario",
	Aliases: []string{"scenarios"},
	Short:   "Save and compare named forecast scenarios",
	RunE:    runScenarioList,
}

var scenarioSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save the current input under NAME",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioSave,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scenarios",
	Args:  cobra.NoArgs,
	RunE:  runScenarioList,
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Recompute a saved scenario and print its forecast",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioShow,
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved scenario and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioDelete,
}

var scenarioHistoryCmd = &cobra.Command{
	Use:   "history NAME",
	Short: "List recorded forecast runs for a scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioHistory,
}

func init() {
	addInputFlags(scenarioSaveCmd)
	scenarioHistoryCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Show at most N runs")

	scenarioCmd.AddCommand(scenarioSaveCmd, scenarioListCmd, scenarioShowCmd, scenarioDeleteCmd, scenarioHistoryCmd)
	rootCmd.AddCommand(scenarioCmd)
}

// openStore opens the scenario database named by config and flags.
func openStore(cfg config.Config) (*store.Store, error) {
	path := config.GetDBPath(cfg)
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario database: %w", err)
	}
	log.Debug("store opened", zap.String("path", path))
	return st, nil
}

func notFound(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no scenario named %q", name)
	}
	return err
}

func runScenarioSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, preset, err := resolveInput(cmd, cfg)
	if err != nil {
		return err
	}
	// Reject input that cannot be projected before it is stored.
	snap, err := scenario.Compute(in, preset)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sc, err := st.SaveScenario(cmd.Context(), args[0], in, preset)
	if err != nil {
		return err
	}
	if _, err := st.RecordRun(cmd.Context(), sc.ID, snap, "save"); err != nil {
		return err
	}

	fmt.Printf("  Saved scenario %q (runway %s)\n", sc.Name, snap.RunwayText)
	return nil
}

func runScenarioList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	list, err := st.ListScenarios(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("\n  No saved scenarios. Create one with `runway scenario save NAME`.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, sc := range list {
		snap, err := scenario.Compute(sc.Input, sc.Preset)
		runway := "invalid"
		if err == nil {
			runway = snap.RunwayText
		}
		preset := sc.Preset
		if preset == "" {
			preset = "custom"
		}
		rows = append(rows, []string{
			sc.Name,
			preset,
			cli.FormatMoney(sc.Input.StartingCash),
			cli.FormatMoney(sc.Input.MonthlyExpenses - sc.Input.MonthlyRevenue),
			runway,
			sc.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Name", "Preset", "Cash", "Net Burn", "Runway", "Updated"},
		Rows:    rows,
	}))
	return nil
}

func runScenarioShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sc, err := st.GetScenario(cmd.Context(), args[0])
	if err != nil {
		return notFound(args[0], err)
	}
	snap, err := scenario.Compute(sc.Input, sc.Preset)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	if _, err := st.RecordRun(cmd.Context(), sc.ID, snap, "show"); err != nil {
		log.Warn("recording run failed", zap.Error(err))
	}

	fmt.Printf("\n  Scenario %s\n", sc.Name)
	printForecast(snap)
	return nil
}

func runScenarioDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.DeleteScenario(cmd.Context(), args[0]); err != nil {
		return notFound(args[0], err)
	}
	fmt.Printf("  Deleted scenario %q\n", args[0])
	return nil
}

func runScenarioHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sc, err := st.GetScenario(cmd.Context(), args[0])
	if err != nil {
		return notFound(args[0], err)
	}
	runs, err := st.ListRuns(cmd.Context(), sc.ID, flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("\n  No runs recorded for %q.\n", sc.Name)
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ComputedAt.Local().Format(time.DateTime),
			r.Trigger,
			r.Runway,
			cli.FormatMoney(float64(r.EndingCash)),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "History: " + sc.Name,
		Headers: []string{"Computed", "Trigger", "Runway", "Ending Cash"},
		Rows:    rows,
	}))
	return nil
}
