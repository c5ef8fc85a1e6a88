package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	snap := a.snap
	m := a.metrics
	var b strings.Builder

	// Row 1: metric cards
	runwayColor := t.Runway(snap.Runway.Months, snap.Runway.BeyondHorizon)
	cards := []components.Metric{
		{Label: "Current Cash", Value: cli.FormatMoney(snap.Input.StartingCash)},
		{Label: "Monthly Burn", Value: cli.FormatMoney(m.MonthlyBurn),
			Delta: cli.FormatChange(m.BurnChangePct) + " vs last month"},
		{Label: "Monthly Revenue", Value: cli.FormatMoney(m.MonthlyRevenue),
			Delta: cli.FormatChange(m.RevenueChangePct) + " vs last month"},
		{Label: "Runway", Value: snap.RunwayText, Color: runwayColor,
			Delta: "simple: " + cli.FormatMonths(m.RunwayMonths)},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: cash balance chart
	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Projected Cash Balance (%d months)", snap.Input.HorizonMonths),
		components.BarChart(cashSeries(snap.Points), chartLabels(snap.Points), t.Blue,
			components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	// Row 3: forecast table + alerts
	halves := components.LayoutRow(cw, 2)
	tableW, alertsW := halves[0], halves[1]
	if a.isCompactLayout() {
		tableW, alertsW = cw, cw
	}
	table := components.ContentCard("Forecast", a.forecastTable(components.CardInnerWidth(tableW)), tableW)
	alertCard := components.ContentCard(
		fmt.Sprintf("Alerts (%d)", len(a.ruleAlerts)),
		renderAlertList(a.ruleAlerts, components.CardInnerWidth(alertsW)),
		alertsW,
	)
	if a.isCompactLayout() {
		b.WriteString(table + "\n" + alertCard)
	} else {
		b.WriteString(components.CardRow([]string{table, alertCard}))
	}
	return b.String()
}

func (a App) forecastTable(innerW int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	colW := max((innerW-10)/4, 10)
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-10s%*s%*s%*s%*s",
		"Period", colW, "Cash", colW, "Revenue", colW, "Expenses", colW, "Net")))
	for _, p := range a.snap.Points {
		b.WriteString("\n")
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-10s%*s%*s%*s",
			truncStr(p.Label, 10),
			colW, cli.FormatMoney(float64(p.CashBalance)),
			colW, cli.FormatMoney(float64(p.Revenue)),
			colW, cli.FormatMoney(float64(p.Expenses)))))
		netStyle := posStyle
		if p.Net() < 0 {
			netStyle = negStyle
		}
		b.WriteString(netStyle.Render(fmt.Sprintf("%*s", colW, cli.FormatSignedMoney(float64(p.Net())))))
	}
	return b.String()
}

// renderAlertList renders alerts most severe first with a colored marker.
func renderAlertList(alerts []model.Alert, innerW int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(alerts) == 0 {
		return dimStyle.Render("No alerts")
	}

	var b strings.Builder
	for i, al := range alerts {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := lipgloss.NewStyle().Foreground(t.Severity(al.Severity)).Background(t.Surface).
			Render(fmt.Sprintf("● %-6s ", al.Severity))
		b.WriteString(marker)
		b.WriteString(titleStyle.Render(truncStr(al.Title, innerW-lipgloss.Width(marker))))
		b.WriteString("\n")
		b.WriteString(descStyle.Render("  " + truncStr(al.Description, innerW-2)))
	}
	return b.String()
}

func cashSeries(points []forecast.Point) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = float64(p.CashBalance)
	}
	return vals
}

// chartLabels shortens period labels to "Now", "M1", "M2"...
func chartLabels(points []forecast.Point) []string {
	labels := make([]string, len(points))
	for i := range points {
		if i == 0 {
			labels[i] = "Now"
			continue
		}
		labels[i] = fmt.Sprintf("M%d", i)
	}
	return labels
}
