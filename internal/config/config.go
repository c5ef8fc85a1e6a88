// Package config loads and saves the runway TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/forecast"
)

// Config holds all runway configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Alerts     []alerts.Rule    `toml:"alerts,omitempty"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Preset       string `toml:"preset"`
	Horizon      int    `toml:"horizon"`
	LenientParse bool   `toml:"lenient_parse"`
	DataDir      string `toml:"data_dir,omitempty"`
	// DisableDefaultAlerts turns off the built-in runway alert rules.
	DisableDefaultAlerts bool `toml:"disable_default_alerts,omitempty"`
}

// ForecastConfig overrides individual preset fields. Unset fields keep the
// preset value.
type ForecastConfig struct {
	StartingCash    *float64 `toml:"starting_cash,omitempty"`
	MonthlyRevenue  *float64 `toml:"monthly_revenue,omitempty"`
	MonthlyExpenses *float64 `toml:"monthly_expenses,omitempty"`
	RevenueGrowth   *float64 `toml:"revenue_growth,omitempty"`
	ExpenseGrowth   *float64 `toml:"expense_growth,omitempty"`
}

// DaemonConfig holds settings for the background HTTP service.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
	LogFile      string `toml:"log_file,omitempty"`
	DBPath       string `toml:"db_path,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TelemetryConfig holds optional error reporting and metrics export.
type TelemetryConfig struct {
	SentryDSN    string `toml:"sentry_dsn,omitempty"`
	Environment  string `toml:"environment,omitempty"`
	OTLPEndpoint string `toml:"otlp_endpoint,omitempty"`
	OTLPInsecure bool   `toml:"otlp_insecure,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Preset:  forecast.DefaultPreset,
			Horizon: forecast.DefaultHorizon,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "runway")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "runway")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is user-chosen
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is user-chosen
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if c.General.Horizon < 1 || c.General.Horizon > forecast.MaxHorizon {
		return fmt.Errorf("general.horizon must be between 1 and %d, got %d", forecast.MaxHorizon, c.General.Horizon)
	}
	if _, ok := forecast.PresetByName(c.General.Preset); !ok {
		return fmt.Errorf("general.preset: unknown preset %q", c.General.Preset)
	}
	for i, r := range c.Alerts {
		if !r.Severity.Valid() {
			return fmt.Errorf("alerts[%d] (%s): unknown severity %q", i, r.ID, r.Severity)
		}
		if r.Expr == "" {
			return fmt.Errorf("alerts[%d] (%s): expr is required", i, r.ID)
		}
	}
	return nil
}

// ParseMode returns how user-entered numbers should be parsed.
func (c Config) ParseMode() forecast.ParseMode {
	if c.General.LenientParse {
		return forecast.Lenient
	}
	return forecast.Strict
}

// BaseInput returns the configured preset over the configured horizon, with
// any [forecast] overrides applied on top.
func (c Config) BaseInput() (forecast.Input, error) {
	p, ok := forecast.PresetByName(c.General.Preset)
	if !ok {
		return forecast.Input{}, fmt.Errorf("unknown preset %q", c.General.Preset)
	}
	in := p.Apply(c.General.Horizon)

	f := c.Forecast
	if f.StartingCash != nil {
		in.StartingCash = *f.StartingCash
	}
	if f.MonthlyRevenue != nil {
		in.MonthlyRevenue = *f.MonthlyRevenue
	}
	if f.MonthlyExpenses != nil {
		in.MonthlyExpenses = *f.MonthlyExpenses
	}
	if f.RevenueGrowth != nil {
		in.RevenueGrowthPct = *f.RevenueGrowth
	}
	if f.ExpenseGrowth != nil {
		in.ExpenseGrowthPct = *f.ExpenseGrowth
	}
	return in, nil
}

// HasOverrides reports whether any [forecast] field is set.
func (c Config) HasOverrides() bool {
	f := c.Forecast
	return f.StartingCash != nil || f.MonthlyRevenue != nil || f.MonthlyExpenses != nil ||
		f.RevenueGrowth != nil || f.ExpenseGrowth != nil
}

// AlertRules returns the rules to evaluate: the defaults unless disabled,
// followed by configured rules.
func (c Config) AlertRules() []alerts.Rule {
	var rules []alerts.Rule
	if !c.General.DisableDefaultAlerts {
		rules = append(rules, alerts.DefaultRules()...)
	}
	return append(rules, c.Alerts...)
}

// GetSentryDSN returns the DSN from env var or config, in that order.
func GetSentryDSN(cfg Config) string {
	if dsn := os.Getenv("RUNWAY_SENTRY_DSN"); dsn != "" {
		return dsn
	}
	return cfg.Telemetry.SentryDSN
}

// GetOTLPEndpoint returns the metrics endpoint from env var or config.
func GetOTLPEndpoint(cfg Config) string {
	if ep := os.Getenv("RUNWAY_OTLP_ENDPOINT"); ep != "" {
		return ep
	}
	return cfg.Telemetry.OTLPEndpoint
}

// GetDBPath returns the scenario database path from env var, config, or the
// default data directory.
func GetDBPath(cfg Config) string {
	if p := os.Getenv("RUNWAY_DB"); p != "" {
		return p
	}
	if cfg.Daemon.DBPath != "" {
		return cfg.Daemon.DBPath
	}
	return filepath.Join(DataDir(), "runway.db")
}
