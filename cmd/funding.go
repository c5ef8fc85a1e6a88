package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"

	"github.com/spf13/cobra"
)

var fundingCmd = &cobra.Command{
	Use:   "funding",
	Short: "Funding readiness score and improvement tasks",
	RunE:  runFunding,
}

func init() {
	rootCmd.AddCommand(fundingCmd)
}

func runFunding(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	l := result.Ledger

	score := pipeline.FundingScore(l.Factors)
	done, total := pipeline.TaskProgress(l.Tasks)

	fmt.Println()
	fmt.Println(cli.RenderTitle("FUNDING READINESS"))
	fmt.Println()

	fmt.Printf("  Score  %d/100  %s\n", score, pipeline.ScoreBand(float64(score)))
	fmt.Printf("  Tasks  %s\n\n", cli.RenderProgressBar(done, total, 20))

	for _, f := range l.Factors {
		fmt.Println(cli.RenderHorizontalBar(f.Name, float64(f.Score), float64(f.Max), 25,
			fmt.Sprintf("%d/%d", f.Score, f.Max)))
	}
	fmt.Println()

	groups := pipeline.TasksByStatus(l.Tasks)
	for _, st := range []model.TaskStatus{model.StatusInProgress, model.StatusNotStarted, model.StatusCompleted} {
		tasks := groups[st]
		if len(tasks) == 0 {
			continue
		}
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{t.Title, string(t.Impact), string(t.Difficulty)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("%s (%d)", st, len(tasks)),
			Headers: []string{"Task", "Impact", "Difficulty"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	warnLoadErrors(result)
	return nil
}
