package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"

	"github.com/spf13/cobra"
)

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Savings opportunities and cost reduction recommendations",
	RunE:  runSavings,
}

func init() {
	rootCmd.AddCommand(savingsCmd)
}

func runSavings(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	l := result.Ledger

	opps := pipeline.RankOpportunities(l.Opportunities)
	red := pipeline.ReductionTotals(l.Recommendations)

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS"))
	fmt.Println()

	fmt.Print(cli.RenderCards([]cli.Card{
		{Label: "Annual Savings Found", Value: cli.FormatMoney(pipeline.TotalAnnualSavings(opps)),
			Sub: fmt.Sprintf("%d opportunities", len(opps)), Tone: 1},
		{Label: "Monthly Reduction", Value: cli.FormatMoney(red.Savings),
			Sub: fmt.Sprintf("%d%% of current", red.Pct), Tone: 1},
	}))
	fmt.Println()

	if len(opps) > 0 {
		rows := make([][]string, 0, len(opps))
		for _, o := range opps {
			rows = append(rows, []string{
				o.Title, string(o.Kind), string(o.Effort), string(o.Priority),
				cli.FormatMoney(o.AnnualSavings) + "/yr",
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Opportunities",
			Headers: []string{"Opportunity", "Kind", "Effort", "Priority", "Savings"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	shares := pipeline.CategoryBreakdown(l.SavingsByArea)
	if len(shares) > 0 {
		fmt.Println("  Savings by Area")
		for _, s := range shares {
			fmt.Println(cli.RenderHorizontalBar(s.Category, s.Amount, shares[0].Amount, 30,
				cli.FormatMoneyShort(s.Amount)))
		}
		fmt.Println()
	}

	order, groups := pipeline.RecommendationsByCategory(l.Recommendations)
	if len(order) > 0 {
		var rows [][]string
		for _, cat := range order {
			for _, r := range groups[cat] {
				rows = append(rows, []string{
					cat, r.Title,
					cli.FormatMoney(r.CurrentCost),
					cli.FormatMoney(r.SuggestedCost),
					cli.FormatMoney(r.Savings()),
					fmt.Sprintf("%d%%", r.SavingsPct()),
				})
			}
		}
		rows = append(rows, []string{"---"}, []string{
			"Total", "",
			cli.FormatMoney(red.Current),
			cli.FormatMoney(red.Suggested),
			cli.FormatMoney(red.Savings),
			fmt.Sprintf("%d%%", red.Pct),
		})
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Cost Reduction Recommendations",
			Headers: []string{"Category", "Item", "Current", "Suggested", "Savings", "%"},
			Rows:    rows,
		}))
	}

	warnLoadErrors(result)
	return nil
}
