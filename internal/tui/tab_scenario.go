package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// submitRow is the cursor position of the "Update Forecast" row, after the
// last input field.
var submitRow = len(forecast.Fields)

// scenarioState tracks the scenario tab.
type scenarioState struct {
	cursor  int
	editing bool
	input   textinput.Model
}

func newScenarioState() scenarioState {
	return scenarioState{input: newFieldInput()}
}

func newFieldInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 24
	ti.Prompt = ""
	return ti
}

// updateScenarioKey handles navigation keys on the scenario tab. It
// reports false for keys it leaves to the global handler.
func (a App) updateScenarioKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.scen.cursor < submitRow {
			a.scen.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.scen.cursor > 0 {
			a.scen.cursor--
		}
		return a, nil, true
	case "enter":
		if a.scen.cursor == submitRow {
			a.submitDraft()
			return a, nil, true
		}
		m, cmd := a.scenarioStartEdit()
		return m, cmd, true
	case "u":
		a.submitDraft()
		return a, nil, true
	case "esc":
		if a.draft.Dirty() {
			a.draft.Reset()
			a.setStatus("Edits discarded")
		}
		return a, nil, true
	}
	return a, nil, false
}

func (a App) scenarioStartEdit() (tea.Model, tea.Cmd) {
	f := forecast.Fields[a.scen.cursor]

	ti := newFieldInput()
	ti.Placeholder = f.Label()
	ti.SetValue(a.draft.Value(f, a.snap.Input))
	ti.CursorEnd()
	ti.Focus()

	a.scen.input = ti
	a.scen.editing = true
	return a, textinput.Blink
}

// updateScenarioInput routes keys to the field editor. Enter stores the
// raw text in the draft without parsing it; parsing happens on submit.
func (a App) updateScenarioInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		f := forecast.Fields[a.scen.cursor]
		a.draft.Set(f, a.scen.input.Value())
		a.scen.editing = false
		a.scen.input.Blur()
		if a.scen.cursor < submitRow {
			a.scen.cursor++
		}
		return a, nil
	case "esc":
		a.scen.editing = false
		a.scen.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.scen.input, cmd = a.scen.input.Update(msg)
	return a, cmd
}

func (a App) renderScenarioTab(cw int) string {
	t := theme.Active
	in := a.snap.Input

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	editedStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	buttonStyle := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true).Padding(0, 1)
	buttonIdle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Padding(0, 1)

	halves := components.LayoutRow(cw, 2)
	formW := halves[0]
	if a.isCompactLayout() {
		formW = cw
	}
	innerW := components.CardInnerWidth(formW)

	// Form
	var form strings.Builder
	for i, f := range forecast.Fields {
		label := fmt.Sprintf("%-20s ", f.Label()+":")
		value := a.draft.Value(f, in)
		vStyle := valueStyle
		if a.draft.Edited(f) {
			vStyle = editedStyle
			value += " *"
		}

		switch {
		case a.scen.editing && i == a.scen.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(label))
			form.WriteString(a.scen.input.View())
		case i == a.scen.cursor:
			marker := markerStyle.Render("▸ ")
			l := selectedLabelStyle.Render(label)
			v := selectedStyle.Render(value)
			form.WriteString(marker + l + v)
			if pad := innerW - lipgloss.Width(marker+l+v); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(labelStyle.Render("  " + label))
			form.WriteString(vStyle.Render(value))
		}
		form.WriteString("\n")
	}

	form.WriteString("\n")
	if a.scen.cursor == submitRow {
		form.WriteString(markerStyle.Render("▸ ") + buttonStyle.Render("Update Forecast"))
	} else {
		form.WriteString(labelStyle.Render("  ") + buttonIdle.Render("Update Forecast"))
	}
	form.WriteString("\n\n")
	form.WriteString(dimStyle.Render("[j/k] move  [Enter] edit  [u] update  [Esc] discard"))
	form.WriteString("\n")
	form.WriteString(dimStyle.Render("Parsing: " + a.mode.String()))

	// Presets
	var presets strings.Builder
	for _, p := range forecast.Presets() {
		marker := "  "
		style := labelStyle
		if p.Name == a.snap.Preset {
			marker = "● "
			style = accentStyle
		}
		key := string(p.Name[0])
		presets.WriteString(style.Render(fmt.Sprintf("%s[%s] %-13s", marker, key, p.Title)))
		presets.WriteString(dimStyle.Render(fmt.Sprintf("revenue +%g%%/mo, expenses +%g%%/mo",
			p.Input.RevenueGrowthPct, p.Input.ExpenseGrowthPct)))
		presets.WriteString("\n")
	}
	presets.WriteString("\n")
	presets.WriteString(dimStyle.Render("[p] cycle presets. Applying a preset replaces all fields."))

	// Result
	sum := a.snap.Summary
	var result strings.Builder
	rows := []struct{ label, value string }{
		{"Runway", a.snap.RunwayText},
		{"Ending cash", cli.FormatMoney(float64(sum.EndingCash))},
		{"Net burn (month 0)", cli.FormatMoney(sum.NetBurn)},
		{"Simple runway", cli.FormatMonths(sum.SimpleRunway)},
		{"Break-even", breakEvenText(sum.BreakEvenMonth)},
	}
	for _, r := range rows {
		result.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", r.label)))
		result.WriteString(valueStyle.Render(r.value))
		result.WriteString("\n")
	}
	result.WriteString("\n")
	result.WriteString(components.Sparkline(cashSeries(a.snap.Points), t.Accent))

	formCard := components.ContentCard("Assumptions", form.String(), formW)
	if a.isCompactLayout() {
		return formCard + "\n" +
			components.ContentCard("Presets", presets.String(), cw) + "\n" +
			components.ContentCard("Result", result.String(), cw)
	}
	right := components.ContentCard("Presets", presets.String(), halves[1]) + "\n" +
		components.ContentCard("Result", result.String(), halves[1])
	return components.CardRow([]string{formCard, right})
}

func breakEvenText(month int) string {
	if month < 0 {
		return "not within horizon"
	}
	return forecast.PeriodLabel(month)
}
