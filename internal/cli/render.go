package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/runway/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	infoStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left-aligned
// and the rest are right-aligned. A row holding only "---" draws a rule.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(tableRule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(tableRow(t.Headers, widths, headerStyle))
		b.WriteString(tableRule(widths, "├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(tableRule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(tableRow(row, widths, valueStyle))
	}
	b.WriteString(tableRule(widths, "╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i, cell := range cells {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	grow(t.Headers)
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			continue
		}
		grow(row)
	}
	return widths
}

func tableRule(widths []int, left, mid, right string) string {
	segs := make([]string, len(widths))
	for i, w := range widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
}

func tableRow(cells []string, widths []int, style lipgloss.Style) string {
	sep := dimStyle.Render("│")
	var b strings.Builder
	b.WriteString(sep)
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(w-lipgloss.Width(cell), 0))
		if i == 0 {
			cell += pad
		} else {
			cell = pad + cell
		}
		b.WriteString(style.Render(" " + cell + " "))
		b.WriteString(sep)
	}
	b.WriteString("\n")
	return b.String()
}

// DisableColor strips ANSI styling from all rendered output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Card is a labeled headline metric.
type Card struct {
	Label string
	Value string
	// Sub is an optional trend or note line.
	Sub string
	// Tone colors the Sub line: 1 good, -1 bad, 0 muted.
	Tone int
}

// RenderCards renders metric cards side by side.
func RenderCards(cards []Card) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(22)

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		lines := []string{mutedStyle.Render(c.Label), headerStyle.Render(c.Value)}
		if c.Sub != "" {
			lines = append(lines, toneStyle(c.Tone).Render(c.Sub))
		}
		rendered = append(rendered, box.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func toneStyle(tone int) lipgloss.Style {
	switch {
	case tone > 0:
		return goodStyle
	case tone < 0:
		return badStyle
	default:
		return mutedStyle
	}
}

// SeverityStyle returns the color for an alert severity.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityHigh:
		return badStyle
	case model.SeverityMedium:
		return warnStyle
	default:
		return infoStyle
	}
}

// RenderAlerts renders alerts as a bulleted list, most severe first as given.
func RenderAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "  " + goodStyle.Render("No active alerts") + "\n"
	}
	var b strings.Builder
	for _, a := range alerts {
		tag := SeverityStyle(a.Severity).Render(fmt.Sprintf("[%-6s]", a.Severity))
		fmt.Fprintf(&b, "  %s %s\n", tag, valueStyle.Render(a.Title))
		if a.Description != "" {
			fmt.Fprintf(&b, "           %s\n", mutedStyle.Render(a.Description))
		}
	}
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of
// values. Values are scaled between the series minimum and maximum.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > 0 {
		lo = 0
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a labeled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int, valueText string) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	barLen = max(0, min(barLen, maxWidth))
	bar := strings.Repeat("█", barLen) + strings.Repeat(" ", maxWidth-barLen)
	return fmt.Sprintf("  %-22s %s %s", label, infoStyle.Render(bar), valueStyle.Render(valueText))
}
