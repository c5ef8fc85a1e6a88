package forecast

import "strings"

// Preset is a named bundle of assumptions. Applying a preset overwrites all
// five numeric input fields at once.
type Preset struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Input Input  `json:"input"`
}

// Shared starting position for every preset.
const (
	presetCash     = 500000
	presetRevenue  = 58200
	presetExpenses = 92500
)

var presets = []Preset{
	{Name: "baseline", Title: "Baseline", Input: Input{
		StartingCash: presetCash, MonthlyRevenue: presetRevenue, MonthlyExpenses: presetExpenses,
		RevenueGrowthPct: 7, ExpenseGrowthPct: 2,
	}},
	{Name: "optimistic", Title: "Optimistic", Input: Input{
		StartingCash: presetCash, MonthlyRevenue: presetRevenue, MonthlyExpenses: presetExpenses,
		RevenueGrowthPct: 15, ExpenseGrowthPct: 2,
	}},
	{Name: "conservative", Title: "Conservative", Input: Input{
		StartingCash: presetCash, MonthlyRevenue: presetRevenue, MonthlyExpenses: presetExpenses,
		RevenueGrowthPct: 3, ExpenseGrowthPct: 2,
	}},
}

// DefaultPreset is the preset used when nothing else is configured.
const DefaultPreset = "baseline"

// Presets returns the built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks up a preset case-insensitively. "default" is accepted
// as an alias for the baseline preset.
func PresetByName(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "default" || name == "" {
		name = DefaultPreset
	}
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Apply returns the preset's input with the given horizon. A horizon below 1
// falls back to DefaultHorizon.
func (p Preset) Apply(horizon int) Input {
	in := p.Input
	if horizon < 1 {
		horizon = DefaultHorizon
	}
	in.HorizonMonths = horizon
	return in
}

// NextPreset returns the preset after name in display order, wrapping around.
func NextPreset(name string) Preset {
	for i, p := range presets {
		if p.Name == name {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}

// DefaultInput is the baseline preset over the default horizon.
func DefaultInput() Input {
	p, _ := PresetByName(DefaultPreset)
	return p.Apply(DefaultHorizon)
}
