package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.Preset != "baseline" || cfg.General.Horizon != 12 {
		t.Fatalf("defaults = %+v", cfg.General)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cash := 250000.0

	cfg := DefaultConfig()
	cfg.General.Preset = "optimistic"
	cfg.General.LenientParse = true
	cfg.Forecast.StartingCash = &cash
	cfg.Appearance.Theme = "catppuccin-mocha"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.General.Preset != "optimistic" || !got.General.LenientParse {
		t.Errorf("general = %+v", got.General)
	}
	if got.Forecast.StartingCash == nil || *got.Forecast.StartingCash != cash {
		t.Errorf("starting cash override lost")
	}
	if got.ParseMode() != forecast.Lenient {
		t.Errorf("ParseMode = %v, want lenient", got.ParseMode())
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\npreset ="), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if err == nil || !strings.HasPrefix(err.Error(), "parsing config:") {
		t.Fatalf("err = %v, want parsing config error", err)
	}
}

func TestLoadAlertRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[general]
preset = "conservative"
horizon = 18
disable_default_alerts = true

[[alerts]]
id = "cash-floor"
title = "Cash below floor"
severity = "high"
expr = "min_cash < 100000.0"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	rules := cfg.AlertRules()
	if len(rules) != 1 || rules[0].ID != "cash-floor" || rules[0].Severity != model.SeverityHigh {
		t.Fatalf("rules = %+v", rules)
	}
	if cfg.Daemon.Addr != "127.0.0.1:8787" {
		t.Errorf("daemon addr default lost: %q", cfg.Daemon.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero horizon", func(c *Config) { c.General.Horizon = 0 }},
		{"huge horizon", func(c *Config) { c.General.Horizon = 500 }},
		{"bad preset", func(c *Config) { c.General.Preset = "yolo" }},
		{"bad severity", func(c *Config) { c.Alerts = append(c.Alerts, alertRule("x", "urgent", "true")) }},
		{"empty expr", func(c *Config) { c.Alerts = append(c.Alerts, alertRule("x", "low", "")) }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", tt.name)
		}
	}
}

func TestBaseInputOverrides(t *testing.T) {
	cfg := DefaultConfig()
	in, err := cfg.BaseInput()
	if err != nil {
		t.Fatal(err)
	}
	if in != forecast.DefaultInput() {
		t.Fatalf("BaseInput = %+v, want baseline", in)
	}
	if cfg.HasOverrides() {
		t.Error("HasOverrides = true on defaults")
	}

	rev := 70000.0
	growth := -1.5
	cfg.Forecast.MonthlyRevenue = &rev
	cfg.Forecast.ExpenseGrowth = &growth
	cfg.General.Horizon = 24
	in, err = cfg.BaseInput()
	if err != nil {
		t.Fatal(err)
	}
	if in.MonthlyRevenue != rev || in.ExpenseGrowthPct != growth || in.HorizonMonths != 24 {
		t.Fatalf("BaseInput = %+v", in)
	}
	if in.RevenueGrowthPct != 7 {
		t.Errorf("RevenueGrowthPct = %v, want preset 7", in.RevenueGrowthPct)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.SentryDSN = "https://from-config"

	t.Setenv("RUNWAY_SENTRY_DSN", "")
	if got := GetSentryDSN(cfg); got != "https://from-config" {
		t.Errorf("GetSentryDSN = %q", got)
	}
	t.Setenv("RUNWAY_SENTRY_DSN", "https://from-env")
	if got := GetSentryDSN(cfg); got != "https://from-env" {
		t.Errorf("GetSentryDSN = %q, want env value", got)
	}

	t.Setenv("RUNWAY_DB", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	if got := GetDBPath(cfg); got != "/tmp/xdg/runway/runway.db" {
		t.Errorf("GetDBPath = %q", got)
	}
	t.Setenv("RUNWAY_DB", "/tmp/other.db")
	if got := GetDBPath(cfg); got != "/tmp/other.db" {
		t.Errorf("GetDBPath = %q, want env value", got)
	}
}

func TestPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	if got := Path(); got != "/tmp/cfg/runway/config.toml" {
		t.Fatalf("Path = %q", got)
	}
}

func alertRule(id, severity, expr string) alerts.Rule {
	return alerts.Rule{ID: id, Title: id, Severity: model.Severity(severity), Expr: expr}
}
