// Package theme defines color themes for the runway dashboard.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/model"
)

// Theme assigns a color to every role the dashboard draws with.
type Theme struct {
	Name string

	// Layers, back to front.
	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and panels
	SurfaceHover  lipgloss.Color // active tab
	SurfaceBright lipgloss.Color // selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card

	// Text, lowest contrast first.
	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Money and status colors.
	Green       lipgloss.Color // inflows, savings, healthy runway
	GreenBright lipgloss.Color
	Red         lipgloss.Color // outflows, depletion
	Orange      lipgloss.Color // burn, medium alerts
	Yellow      lipgloss.Color // low alerts, unsaved edits
	Blue        lipgloss.Color
	Cyan        lipgloss.Color
}

// Money returns the color for a signed amount.
func (t Theme) Money(v float64) lipgloss.Color {
	if v < 0 {
		return t.Red
	}
	return t.Green
}

// Severity returns the color for an alert severity.
func (t Theme) Severity(s model.Severity) lipgloss.Color {
	switch s {
	case model.SeverityHigh:
		return t.Red
	case model.SeverityMedium:
		return t.Orange
	default:
		return t.Yellow
	}
}

// Runway colors a runway: red at six months or less, orange up to a year.
func (t Theme) Runway(months int, beyondHorizon bool) lipgloss.Color {
	switch {
	case beyondHorizon:
		return t.Green
	case months <= 6:
		return t.Red
	case months <= 12:
		return t.Orange
	}
	return t.Green
}

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    "#100F0F",
	Surface:       "#1C1B1A",
	SurfaceHover:  "#282726",
	SurfaceBright: "#343331",
	Border:        "#403E3C",
	BorderAccent:  "#3AA99F",
	TextDim:       "#575653",
	TextMuted:     "#878580",
	TextPrimary:   "#FFFCF0",
	Accent:        "#3AA99F",
	AccentBright:  "#5BC8BE",
	Green:         "#879A39",
	GreenBright:   "#A3B859",
	Red:           "#D14D41",
	Orange:        "#DA702C",
	Yellow:        "#D0A215",
	Blue:          "#4385BE",
	Cyan:          "#24837B",
}

// FlexokiLight is the paper-colored variant for bright terminals.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Background:    "#FFFCF0",
	Surface:       "#F2F0E5",
	SurfaceHover:  "#E6E4D9",
	SurfaceBright: "#DAD8CE",
	Border:        "#CECDC3",
	BorderAccent:  "#24837B",
	TextDim:       "#B7B5AC",
	TextMuted:     "#6F6E69",
	TextPrimary:   "#100F0F",
	Accent:        "#24837B",
	AccentBright:  "#3AA99F",
	Green:         "#66800B",
	GreenBright:   "#879A39",
	Red:           "#AF3029",
	Orange:        "#BC5215",
	Yellow:        "#AD8301",
	Blue:          "#205EA6",
	Cyan:          "#24837B",
}

// CatppuccinMocha is a pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    "#1E1E2E",
	Surface:       "#313244",
	SurfaceHover:  "#45475A",
	SurfaceBright: "#585B70",
	Border:        "#585B70",
	BorderAccent:  "#89B4FA",
	TextDim:       "#6C7086",
	TextMuted:     "#A6ADC8",
	TextPrimary:   "#CDD6F4",
	Accent:        "#89B4FA",
	AccentBright:  "#B4D0FB",
	Green:         "#A6E3A1",
	GreenBright:   "#C6F6C1",
	Red:           "#F38BA8",
	Orange:        "#FAB387",
	Yellow:        "#F9E2AF",
	Blue:          "#89B4FA",
	Cyan:          "#94E2D5",
}

// TokyoNight is a blue and purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    "#1A1B26",
	Surface:       "#24283B",
	SurfaceHover:  "#343A52",
	SurfaceBright: "#414868",
	Border:        "#565F89",
	BorderAccent:  "#7AA2F7",
	TextDim:       "#565F89",
	TextMuted:     "#A9B1D6",
	TextPrimary:   "#C0CAF5",
	Accent:        "#7AA2F7",
	AccentBright:  "#A9C1FF",
	Green:         "#9ECE6A",
	GreenBright:   "#B9E87A",
	Red:           "#F7768E",
	Orange:        "#FF9E64",
	Yellow:        "#E0AF68",
	Blue:          "#7AA2F7",
	Cyan:          "#7DCFFF",
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:          "terminal",
	Background:    "0",
	Surface:       "0",
	SurfaceHover:  "8",
	SurfaceBright: "8",
	Border:        "8",
	BorderAccent:  "6",
	TextDim:       "8",
	TextMuted:     "7",
	TextPrimary:   "15",
	Accent:        "6",
	AccentBright:  "14",
	Green:         "2",
	GreenBright:   "10",
	Red:           "1",
	Orange:        "3",
	Yellow:        "11",
	Blue:          "4",
	Cyan:          "6",
}

// All lists the themes in display order. The first is the default.
var All = []Theme{FlexokiDark, FlexokiLight, CatppuccinMocha, TokyoNight, Terminal}

// Active is the theme every renderer reads.
var Active = FlexokiDark

// ByName returns the named theme, ignoring case, or the default.
func ByName(name string) Theme {
	if t, ok := lookup(name); ok {
		return t
	}
	return All[0]
}

// SetActive switches the active theme. Unknown names select the default.
func SetActive(name string) {
	Active = ByName(name)
}

// Names returns the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Theme, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
