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

// flowFilters is the order "f" cycles through. Empty means all movements.
var flowFilters = []model.Direction{"", model.Inflow, model.Outflow}

// flowState tracks the cash flow tab.
type flowState struct {
	filter int // index into flowFilters
	cursor int
	offset int
}

func (f *flowState) direction() model.Direction {
	return flowFilters[f.filter]
}

func (f *flowState) move(delta, n int) {
	f.cursor += delta
	f.clamp(n)
}

func (f *flowState) clamp(n int) {
	f.cursor = min(f.cursor, n-1)
	f.cursor = max(f.cursor, 0)
	f.offset = min(f.offset, f.cursor)
}

// movements returns the ledger movements matching the active filter.
func (a App) movements() []model.Movement {
	if a.ledger == nil {
		return nil
	}
	return pipeline.FilterMovements(a.ledger.Movements, a.flow.direction())
}

func (a App) updateCashFlowKey(key string) (App, bool) {
	n := len(a.movements())
	switch key {
	case "f":
		a.flow.filter = (a.flow.filter + 1) % len(flowFilters)
		a.flow.cursor, a.flow.offset = 0, 0
		return a, true
	case "j", "down":
		a.flow.move(1, n)
		return a, true
	case "k", "up":
		a.flow.move(-1, n)
		return a, true
	case "g":
		a.flow.cursor, a.flow.offset = 0, 0
		return a, true
	case "G":
		a.flow.move(n, n)
		return a, true
	}
	return a, false
}

func (a App) renderCashFlowTab(cw, h int) string {
	t := theme.Active
	all := a.ledger.Movements
	in, out, net := pipeline.NetCashFlow(all)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Inflows", Value: cli.FormatMoney(in), Color: t.Green},
		{Label: "Outflows", Value: cli.FormatMoney(out), Color: t.Red},
		{Label: "Net", Value: cli.FormatSignedMoney(net), Color: t.Money(net),
			Delta: fmt.Sprintf("%d movements", len(all))},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 3)
	listW := halves[0] + halves[1]
	alertsW := halves[2]
	if a.isCompactLayout() {
		listW, alertsW = cw, cw
	}

	// Visible rows: content height minus cards (5) and card chrome (4)
	visible := max(h-9, 3)
	list := a.renderMovementList(components.CardInnerWidth(listW), visible)

	filterName := "all"
	if d := a.flow.direction(); d != "" {
		filterName = string(d) + "s"
	}
	listCard := components.ContentCard(fmt.Sprintf("Movements: %s [f]", filterName), list, listW)

	ledgerAlerts := pipeline.SortAlerts(a.ledger.Alerts)
	alertCard := components.ContentCard("Cash Alerts",
		renderAlertList(ledgerAlerts, components.CardInnerWidth(alertsW)), alertsW)

	if a.isCompactLayout() {
		b.WriteString(listCard + "\n" + alertCard)
	} else {
		b.WriteString(components.CardRow([]string{listCard, alertCard}))
	}
	return b.String()
}

func (a App) renderMovementList(innerW, visible int) string {
	t := theme.Active
	movs := a.movements()

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	inStyle := lipgloss.NewStyle().Foreground(t.Green)
	outStyle := lipgloss.NewStyle().Foreground(t.Red)

	if len(movs) == 0 {
		return dimStyle.Render("No movements")
	}

	// Keep the cursor inside the window
	offset := a.flow.offset
	if a.flow.cursor >= offset+visible {
		offset = a.flow.cursor - visible + 1
	}
	if a.flow.cursor < offset {
		offset = a.flow.cursor
	}
	end := min(offset+visible, len(movs))

	amountW := 14
	catW := 12
	descW := max(innerW-8-catW-amountW-2, 10)

	var b strings.Builder
	for i := offset; i < end; i++ {
		m := movs[i]
		style := rowStyle
		if i == a.flow.cursor {
			style = selStyle
		}
		amtStyle := inStyle.Background(style.GetBackground())
		if m.Direction == model.Outflow {
			amtStyle = outStyle.Background(style.GetBackground())
		}

		line := style.Render(fmt.Sprintf("%-8s%-*s %-*s",
			cli.FormatDate(m.Date), descW, truncStr(m.Description, descW), catW, truncStr(m.Category, catW))) +
			amtStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatSignedMoney(m.Signed())))
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if len(movs) > visible {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d-%d of %d  [j/k] scroll", offset+1, end, len(movs))))
	}
	return b.String()
}
