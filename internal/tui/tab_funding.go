package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderFundingTab(cw int) string {
	t := theme.Active
	l := a.ledger
	score := pipeline.FundingScore(l.Factors)
	band := pipeline.ScoreBand(float64(score))
	done, total := pipeline.TaskProgress(l.Tasks)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Readiness Score", Value: fmt.Sprintf("%d/100", score),
			Color: components.ColorForScore(float64(score) / 100), Delta: string(band)},
		{Label: "Tasks Done", Value: fmt.Sprintf("%d of %d", done, total)},
		{Label: "Runway", Value: a.snap.RunwayText, Delta: "investors look for 18+ months"},
	}, cw))
	b.WriteString("\n")

	// Factor bars
	innerW := components.CardInnerWidth(cw)
	labelW := 22
	barW := max(innerW-labelW-10, 10)
	descStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	var factors strings.Builder
	for i, f := range l.Factors {
		if i > 0 {
			factors.WriteString("\n")
		}
		factors.WriteString(components.ScoreBar(f.Name, f.Score, f.Max, labelW, barW))
		if f.Description != "" {
			factors.WriteString("\n")
			factors.WriteString(descStyle.Render(strings.Repeat(" ", labelW+1) + truncStr(f.Description, innerW-labelW-1)))
		}
	}
	b.WriteString(components.ContentCard("Score Factors", factors.String(), cw))
	b.WriteString("\n")

	// Tasks grouped by status
	groups := pipeline.TasksByStatus(l.Tasks)
	order := []model.TaskStatus{model.StatusInProgress, model.StatusNotStarted, model.StatusCompleted}
	widths := components.LayoutRow(cw, len(order))
	cards := make([]string, len(order))
	for i, st := range order {
		w := widths[i]
		if a.isCompactLayout() {
			w = cw
		}
		cards[i] = components.ContentCard(
			fmt.Sprintf("%s (%d)", st, len(groups[st])),
			renderTasks(groups[st], components.CardInnerWidth(w)),
			w,
		)
	}
	if a.isCompactLayout() {
		b.WriteString(strings.Join(cards, "\n"))
	} else {
		b.WriteString(components.CardRow(cards))
	}
	return b.String()
}

func renderTasks(tasks []model.ImprovementTask, innerW int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(tasks) == 0 {
		return dimStyle.Render("None")
	}
	var b strings.Builder
	for i, task := range tasks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(truncStr(task.Title, innerW)))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(truncStr(
			fmt.Sprintf("impact %s · %s", task.Impact, task.Difficulty), innerW)))
	}
	return b.String()
}
