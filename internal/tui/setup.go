package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the first-run form.
type SetupValues struct {
	Preset  string
	Horizon string
	Lenient bool
	Theme   string
	DataDir string
}

// DefaultSetupValues seeds the form from an existing config.
func DefaultSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Preset:  cfg.General.Preset,
		Horizon: strconv.Itoa(cfg.General.Horizon),
		Lenient: cfg.General.LenientParse,
		Theme:   cfg.Appearance.Theme,
		DataDir: cfg.General.DataDir,
	}
}

func newSetupValues(snap *scenario.Snapshot, mode forecast.ParseMode, dataDir string) *SetupValues {
	v := DefaultSetupValues(loadConfigOrDefault())
	if snap.Preset != "" {
		v.Preset = snap.Preset
	}
	v.Horizon = strconv.Itoa(snap.Input.HorizonMonths)
	v.Lenient = mode == forecast.Lenient
	if dataDir != "" {
		v.DataDir = dataDir
	}
	return v
}

// NewSetupForm builds the first-run form. Answers are written into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	presetOpts := make([]huh.Option[string], 0, len(forecast.Presets()))
	for _, p := range forecast.Presets() {
		label := fmt.Sprintf("%s (revenue +%g%%, expenses +%g%% per month)",
			p.Title, p.Input.RevenueGrowthPct, p.Input.ExpenseGrowthPct)
		presetOpts = append(presetOpts, huh.NewOption(label, p.Name))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to runway").
				Description("Project your cash position month by month.\nThese settings are saved to "+config.Path()),
			huh.NewSelect[string]().
				Title("Starting preset").
				Options(presetOpts...).
				Value(&vals.Preset),
			huh.NewInput().
				Title("Forecast horizon (months)").
				Value(&vals.Horizon).
				Validate(validateHorizon),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Accept loosely formatted numbers?").
				Description("Lenient parsing reads \"12k\" as 12 and blank fields as 0.\nStrict parsing rejects them.").
				Affirmative("Lenient").
				Negative("Strict").
				Value(&vals.Lenient),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Ledger directory (optional)").
				Description("JSONL files here are merged onto the sample ledger.").
				Value(&vals.DataDir),
		),
	).WithShowHelp(true)
}

func validateHorizon(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of months")
	}
	if n < 1 || n > forecast.MaxHorizon {
		return fmt.Errorf("horizon must be between 1 and %d", forecast.MaxHorizon)
	}
	return nil
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	if err := validateHorizon(v.Horizon); err != nil {
		return err
	}
	if _, ok := forecast.PresetByName(v.Preset); !ok {
		return fmt.Errorf("unknown preset %q", v.Preset)
	}
	horizon, _ := strconv.Atoi(strings.TrimSpace(v.Horizon))

	cfg.General.Preset = v.Preset
	cfg.General.Horizon = horizon
	cfg.General.LenientParse = v.Lenient
	cfg.General.DataDir = strings.TrimSpace(v.DataDir)
	if theme.Valid(v.Theme) {
		cfg.Appearance.Theme = v.Theme
	}
	return nil
}

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// saveSetupConfig persists the form answers and applies them to the
// running dashboard.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}

	theme.SetActive(cfg.Appearance.Theme)
	a.mode = cfg.ParseMode()
	if _, err := a.ctrl.ApplyPreset(cfg.General.Preset); err == nil {
		_, _ = a.ctrl.SetHorizon(cfg.General.Horizon)
	}
	a.draft.Reset()
	a.sync()

	return config.Save(cfg)
}
