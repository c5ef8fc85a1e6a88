package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagDirection string
	flagSearch    string
	flagLimit     int
)

var cashflowCmd = &cobra.Command{
	Use:   "cashflow",
	Short: "Recorded cash movements and alerts",
	RunE:  runCashflow,
}

func init() {
	cashflowCmd.Flags().StringVar(&flagDirection, "direction", "", "Filter to in or out")
	cashflowCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Filter by description or category (substring match)")
	cashflowCmd.Flags().IntVarP(&flagLimit, "limit", "l", 0, "Show at most N movements")
	rootCmd.AddCommand(cashflowCmd)
}

func parseDirection(s string) (model.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "in", "inflow", "inflows":
		return model.Inflow, nil
	case "out", "outflow", "outflows":
		return model.Outflow, nil
	}
	return "", fmt.Errorf("unknown direction %q (want in or out)", s)
}

func runCashflow(cmd *cobra.Command, _ []string) error {
	dir, err := parseDirection(flagDirection)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	l := result.Ledger

	movs := pipeline.FilterMovements(l.Movements, dir)
	movs = pipeline.SearchMovements(movs, flagSearch)
	if flagLimit > 0 && len(movs) > flagLimit {
		movs = movs[:flagLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CASH FLOW"))
	fmt.Println()

	in, out, net := pipeline.NetCashFlow(l.Movements)
	fmt.Print(cli.RenderCards([]cli.Card{
		{Label: "Inflows", Value: cli.FormatMoney(in), Tone: 1},
		{Label: "Outflows", Value: cli.FormatMoney(out), Tone: -1},
		{Label: "Net", Value: cli.FormatSignedMoney(net), Sub: fmt.Sprintf("%d movements", len(l.Movements))},
	}))
	fmt.Println()

	if len(movs) == 0 {
		fmt.Println("  No movements match.")
	} else {
		rows := make([][]string, 0, len(movs))
		for _, m := range movs {
			rows = append(rows, []string{
				cli.FormatDate(m.Date),
				m.Description,
				m.Category,
				cli.FormatSignedMoney(m.Signed()),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Movements",
			Headers: []string{"Date", "Description", "Category", "Amount"},
			Rows:    rows,
		}))
	}
	fmt.Println()

	fmt.Println("  Cash Alerts")
	fmt.Print(cli.RenderAlerts(pipeline.SortAlerts(l.Alerts)))

	warnLoadErrors(result)
	return nil
}
