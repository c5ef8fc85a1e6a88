package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBurnTab(cw int) string {
	t := theme.Active
	l := a.ledger
	totals := pipeline.BurnTotals(l.BurnHistory)
	shares := pipeline.CategoryBreakdown(l.CurrentExpenses)

	var current, avg float64
	for _, s := range shares {
		current += s.Amount
	}
	for _, m := range totals {
		avg += m.Total
	}
	if len(totals) > 0 {
		avg /= float64(len(totals))
	}

	var b strings.Builder
	cards := []components.Metric{
		{Label: "This Month", Value: cli.FormatMoney(current),
			Delta: cli.FormatChange(a.metrics.BurnChangePct) + " vs last month"},
		{Label: "Average Month", Value: cli.FormatMoney(avg),
			Delta: fmt.Sprintf("over %d months", len(totals))},
		{Label: "Categories", Value: cli.FormatNumber(int64(len(shares)))},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Monthly totals chart
	vals := make([]float64, len(totals))
	labels := make([]string, len(totals))
	for i, m := range totals {
		vals[i] = m.Total
		labels[i] = m.Month
	}
	b.WriteString(components.ContentCard("Monthly Burn",
		components.BarChart(vals, labels, t.Orange, components.CardInnerWidth(cw), 8), cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	leftW, rightW := halves[0], halves[1]
	if a.isCompactLayout() {
		leftW, rightW = cw, cw
	}

	// Current-month breakdown bars
	innerL := components.CardInnerWidth(leftW)
	labelW := 12
	barW := max(innerL-labelW-22, 8)
	maxAmt := 0.0
	if len(shares) > 0 {
		maxAmt = shares[0].Amount
	}
	var breakdown strings.Builder
	for i, s := range shares {
		if i > 0 {
			breakdown.WriteString("\n")
		}
		breakdown.WriteString(components.HBar(s.Category, s.Amount, maxAmt, labelW, barW,
			fmt.Sprintf("%s (%.0f%%)", cli.FormatMoney(s.Amount), s.Percent), t.Accent))
	}
	left := components.ContentCard("Current Month by Category", breakdown.String(), leftW)

	// Month-by-month table
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	upStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	downStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	var table strings.Builder
	table.WriteString(headStyle.Render(fmt.Sprintf("%-8s%12s%10s", "Month", "Total", "Change")))
	for i, m := range totals {
		table.WriteString("\n")
		table.WriteString(rowStyle.Render(fmt.Sprintf("%-8s%12s", m.Month, cli.FormatMoney(m.Total))))
		if i == 0 {
			table.WriteString(rowStyle.Render(fmt.Sprintf("%10s", "-")))
			continue
		}
		style := downStyle
		if m.ChangePct > 0 {
			style = upStyle
		}
		table.WriteString(style.Render(fmt.Sprintf("%10s", cli.FormatChange(roundTenth(m.ChangePct)))))
	}
	right := components.ContentCard("History", table.String(), rightW)

	if a.isCompactLayout() {
		b.WriteString(left + "\n" + right)
	} else {
		b.WriteString(components.CardRow([]string{left, right}))
	}
	return b.String()
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
