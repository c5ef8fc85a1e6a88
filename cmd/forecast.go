package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/export"
	"github.com/theirongolddev/runway/internal/scenario"

	"github.com/spf13/cobra"
)

var flagForecastFormat string

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Month-by-month cash projection",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVarP(&flagForecastFormat, "format", "f", "pretty", "Output format: pretty, csv or json")
	addInputFlags(forecastCmd)
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctrl, err := newController(cmd, cfg)
	if err != nil {
		return err
	}
	snap := ctrl.Current()

	if flagForecastFormat == "pretty" {
		printForecast(snap)
		return nil
	}

	format, err := export.ParseFormat(flagForecastFormat)
	if err != nil {
		return err
	}
	if format == export.FormatXLSX {
		return errors.New("xlsx cannot be written to stdout, use `runway export --out FILE`")
	}
	return export.New(log).Write(os.Stdout, format, snap)
}

func printForecast(snap *scenario.Snapshot) {
	title := fmt.Sprintf("CASH FORECAST  %d months", snap.Input.HorizonMonths)
	if snap.Preset != "" {
		title += "  " + snap.Preset
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(snap.Points))
	cash := make([]float64, 0, len(snap.Points))
	for _, p := range snap.Points {
		rows = append(rows, []string{
			p.Label,
			cli.FormatMoney(float64(p.CashBalance)),
			cli.FormatMoney(float64(p.Revenue)),
			cli.FormatMoney(float64(p.Expenses)),
			cli.FormatSignedMoney(float64(p.Net())),
		})
		cash = append(cash, float64(p.CashBalance))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Cash", "Revenue", "Expenses", "Net"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Printf("  Cash   %s\n", cli.RenderSparkline(cash))
	fmt.Printf("  Runway %s\n", printableRunway(snap))
	fmt.Println()
}

func printableRunway(snap *scenario.Snapshot) string {
	r := snap.Runway
	switch {
	case r.BeyondHorizon:
		return snap.RunwayText + " (cash stays positive)"
	case r.Depleted == 0:
		return snap.RunwayText + " (depleted immediately)"
	default:
		return fmt.Sprintf("%s (cash runs out in %s)", snap.RunwayText, snap.Points[r.Depleted].Label)
	}
}
