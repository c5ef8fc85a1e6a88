package components

import (
	"strings"

	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom status bar shows.
type StatusInfo struct {
	Preset    string // empty after manual edits
	ParseMode string
	Runway    string
	Message   string
	IsError   bool
	Dirty     bool // unsubmitted scenario edits
	Loading   bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	ok := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	left := base.Render(" [?]help  [q]uit")
	switch {
	case s.Message != "" && s.IsError:
		left += base.Render("  ") + errStyle.Render(s.Message)
	case s.Message != "":
		left += base.Render("  ") + ok.Render(s.Message)
	}

	preset := s.Preset
	if preset == "" {
		preset = "custom"
	}
	var right strings.Builder
	if s.Loading {
		right.WriteString(warn.Render("loading "))
	}
	if s.Dirty {
		right.WriteString(warn.Render("unsaved edits "))
	}
	right.WriteString(base.Render("preset "))
	right.WriteString(accent.Render(preset))
	right.WriteString(base.Render(" │ " + s.ParseMode))
	if s.Runway != "" {
		right.WriteString(base.Render(" │ runway "))
		right.WriteString(accent.Render(s.Runway))
	}
	right.WriteString(base.Render(" "))

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right.String()), 0)
	bar := left + base.Render(strings.Repeat(" ", padding)) + right.String()
	return lipgloss.NewStyle().Background(t.Surface).MaxWidth(width).Render(bar)
}
