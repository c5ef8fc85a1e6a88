package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderSavingsTab(cw int) string {
	t := theme.Active
	l := a.ledger
	opps := pipeline.RankOpportunities(l.Opportunities)
	annual := pipeline.TotalAnnualSavings(opps)
	red := pipeline.ReductionTotals(l.Recommendations)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Annual Savings Found", Value: cli.FormatMoney(annual), Color: t.Green,
			Delta: fmt.Sprintf("%d opportunities", len(opps))},
		{Label: "Monthly Reduction", Value: cli.FormatMoney(red.Savings), Color: t.Green,
			Delta: fmt.Sprintf("%d%% of %s", red.Pct, cli.FormatMoney(red.Current))},
		{Label: "Burn After Cuts", Value: cli.FormatMoney(a.snap.Input.MonthlyExpenses - red.Savings)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	leftW, rightW := halves[0], halves[1]
	if a.isCompactLayout() {
		leftW, rightW = cw, cw
	}

	oppCard := components.ContentCard("Opportunities",
		renderOpportunities(opps, components.CardInnerWidth(leftW)), leftW)

	shares := pipeline.CategoryBreakdown(l.SavingsByArea)
	innerR := components.CardInnerWidth(rightW)
	labelW := 14
	barW := max(innerR-labelW-12, 8)
	maxAmt := 0.0
	if len(shares) > 0 {
		maxAmt = shares[0].Amount
	}
	var areas strings.Builder
	for i, s := range shares {
		if i > 0 {
			areas.WriteString("\n")
		}
		areas.WriteString(components.HBar(s.Category, s.Amount, maxAmt, labelW, barW,
			cli.FormatMoneyShort(s.Amount), t.Green))
	}
	areaCard := components.ContentCard("Savings by Area", areas.String(), rightW)

	if a.isCompactLayout() {
		b.WriteString(oppCard + "\n" + areaCard)
	} else {
		b.WriteString(components.CardRow([]string{oppCard, areaCard}))
	}
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Cost Reduction Recommendations",
		renderRecommendations(l.Recommendations, red, components.CardInnerWidth(cw)), cw))
	return b.String()
}

func renderOpportunities(opps []model.SavingsOpportunity, innerW int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	amtStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	metaStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for i, o := range opps {
		if i > 0 {
			b.WriteString("\n")
		}
		amt := cli.FormatMoney(o.AnnualSavings) + "/yr"
		b.WriteString(titleStyle.Render(fmt.Sprintf("%-*s", innerW-len(amt), truncStr(o.Title, innerW-len(amt)-1))))
		b.WriteString(amtStyle.Render(amt))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(truncStr(
			fmt.Sprintf("%s · %s effort · %s priority", o.Kind, o.Effort, o.Priority), innerW)))
	}
	return b.String()
}

func renderRecommendations(recs []model.Recommendation, total pipeline.ReductionSummary, innerW int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	catStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	saveStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	numW := 12
	titleW := max(innerW-numW*3-6, 12)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s%*s%*s%*s%6s",
		titleW, "Item", numW, "Current", numW, "Suggested", numW, "Savings", "%")))

	order, groups := pipeline.RecommendationsByCategory(recs)
	for _, cat := range order {
		b.WriteString("\n")
		b.WriteString(catStyle.Render(cat))
		for _, r := range groups[cat] {
			b.WriteString("\n")
			b.WriteString(rowStyle.Render(fmt.Sprintf("%-*s%*s%*s",
				titleW, truncStr("  "+r.Title, titleW),
				numW, cli.FormatMoney(r.CurrentCost),
				numW, cli.FormatMoney(r.SuggestedCost))))
			b.WriteString(saveStyle.Render(fmt.Sprintf("%*s%5d%%",
				numW, cli.FormatMoney(r.Savings()), r.SavingsPct())))
		}
	}

	b.WriteString("\n")
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s%*s%*s%*s%5d%%",
		titleW, "Total", numW, cli.FormatMoney(total.Current), numW, cli.FormatMoney(total.Suggested),
		numW, cli.FormatMoney(total.Savings), total.Pct)))
	return b.String()
}
