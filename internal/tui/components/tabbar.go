package components

import (
	"strings"

	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: '1'},
	{Name: "Burn", Key: '2'},
	{Name: "Cash Flow", Key: '3'},
	{Name: "Funding", Key: '4'},
	{Name: "Savings", Key: '5'},
	{Name: "Scenario", Key: '6'},
}

// tabText is the unstyled text of a tab. Inactive tabs show their shortcut.
func tabText(tab Tab, active bool) string {
	if active {
		return " " + tab.Name + " "
	}
	return " " + string(tab.Key) + " " + tab.Name + " "
}

// TabVisualWidth returns the rendered width of a tab.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabText(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	sepStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tabText(tab, true))
			continue
		}
		parts[i] = inactiveStyle.Render(" ") +
			keyStyle.Render(string(tab.Key)) +
			inactiveStyle.Render(" "+tab.Name+" ")
	}

	bar := strings.Join(parts, sepStyle.Render("│"))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
