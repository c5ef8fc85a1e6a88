package cmd

import (
	"fmt"
	"math"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"

	"github.com/spf13/cobra"
)

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Monthly spend by category",
	RunE:  runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)
}

func runBurn(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	l := result.Ledger

	if len(l.BurnHistory) == 0 && len(l.CurrentExpenses) == 0 {
		fmt.Println("\n  No expense data found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BURN RATE"))
	fmt.Println()

	cats := pipeline.BurnCategories(l.BurnHistory)
	totals := pipeline.BurnTotals(l.BurnHistory)
	headers := append([]string{"Month"}, cats...)
	headers = append(headers, "Total", "Change")

	rows := make([][]string, 0, len(l.BurnHistory))
	for i, m := range l.BurnHistory {
		row := []string{m.Month}
		for _, c := range cats {
			row = append(row, cli.FormatMoneyShort(m.Categories[c]))
		}
		change := "-"
		if i > 0 {
			change = cli.FormatChange(math.Round(totals[i].ChangePct*10) / 10)
		}
		row = append(row, cli.FormatMoney(totals[i].Total), change)
		rows = append(rows, row)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly Burn",
		Headers: headers,
		Rows:    rows,
	}))
	fmt.Println()

	shares := pipeline.CategoryBreakdown(l.CurrentExpenses)
	if len(shares) > 0 {
		fmt.Println("  Current Month")
		maxAmt := shares[0].Amount
		var total float64
		for _, s := range shares {
			total += s.Amount
			fmt.Println(cli.RenderHorizontalBar(s.Category, s.Amount, maxAmt, 30,
				fmt.Sprintf("%s  %.0f%%", cli.FormatMoney(s.Amount), s.Percent)))
		}
		fmt.Printf("\n  Total %s\n", cli.FormatMoney(total))
	}

	warnLoadErrors(result)
	return nil
}
