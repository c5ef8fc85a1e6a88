package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Headline metrics, runway and active alerts",
	RunE:  runSummary,
}

func init() {
	addInputFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctrl, err := newController(cmd, cfg)
	if err != nil {
		return err
	}
	engine, err := newAlertEngine(cfg)
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	snap := ctrl.Current()
	metrics := pipeline.ComputeMetrics(result.Ledger, snap)
	s := snap.Summary

	title := "CASH RUNWAY"
	if snap.Preset != "" {
		title += "  " + snap.Preset
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	runwayTone := 1
	if !snap.Runway.BeyondHorizon {
		runwayTone = -1
	}
	fmt.Print(cli.RenderCards([]cli.Card{
		{Label: "Monthly Burn", Value: cli.FormatMoney(metrics.MonthlyBurn),
			Sub: cli.FormatChange(metrics.BurnChangePct) + " MoM", Tone: -sign(metrics.BurnChangePct)},
		{Label: "Monthly Revenue", Value: cli.FormatMoney(metrics.MonthlyRevenue),
			Sub: cli.FormatChange(metrics.RevenueChangePct) + " MoM", Tone: sign(metrics.RevenueChangePct)},
		{Label: "Runway", Value: snap.RunwayText,
			Sub: fmt.Sprintf("over %d months", snap.Runway.Horizon), Tone: runwayTone},
	}))
	fmt.Println()

	rows := [][]string{
		{"Starting Cash", cli.FormatMoney(snap.Input.StartingCash)},
		{"Net Burn (month 0)", cli.FormatSignedMoney(s.NetBurn)},
		{"Ending Cash", cli.FormatMoney(float64(s.EndingCash))},
		{"Lowest Balance", cli.FormatMoney(s.MinRawCash)},
		{"---"},
		{"Total Revenue", cli.FormatMoney(float64(s.TotalRevenue))},
		{"Total Expenses", cli.FormatMoney(float64(s.TotalExpenses))},
	}
	if s.BreakEvenMonth >= 0 {
		rows = append(rows, []string{"Break-even", fmt.Sprintf("month %d", s.BreakEvenMonth)})
	} else {
		rows = append(rows, []string{"Break-even", "not within horizon"})
	}
	if s.Burning() {
		rows = append(rows, []string{"Simple Runway", cli.FormatMonths(s.SimpleRunway)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Forecast",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()

	ruleAlerts, errs := engine.Evaluate(snap)
	for _, e := range errs {
		log.Warn("alert rule failed", zap.Error(e))
	}
	all := append(ruleAlerts, result.Ledger.Alerts...)
	fmt.Println("  Alerts")
	fmt.Print(cli.RenderAlerts(pipeline.SortAlerts(all)))

	warnLoadErrors(result)
	return nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

