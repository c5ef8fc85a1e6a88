package cmd

import (
	"path/filepath"
	"testing"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"

	"github.com/spf13/cobra"
)

func newInputCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addInputFlags(c)
	for k, v := range flags {
		if err := c.Flags().Set(k, v); err != nil {
			t.Fatalf("set --%s: %v", k, err)
		}
	}
	return c
}

func TestResolveInputPresetOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	in, preset, err := resolveInput(newInputCmd(t, nil), cfg)
	if err != nil {
		t.Fatalf("resolveInput: %v", err)
	}
	if preset != "baseline" {
		t.Errorf("preset = %q, want baseline", preset)
	}
	if in.RevenueGrowthPct != 7 || in.ExpenseGrowthPct != 2 {
		t.Errorf("growth = %v/%v, want 7/2", in.RevenueGrowthPct, in.ExpenseGrowthPct)
	}
}

func TestResolveInputFlagsClearPreset(t *testing.T) {
	cfg := config.DefaultConfig()
	in, preset, err := resolveInput(newInputCmd(t, map[string]string{
		"cash":           "1000000",
		"expense-growth": "4",
	}), cfg)
	if err != nil {
		t.Fatalf("resolveInput: %v", err)
	}
	if preset != "" {
		t.Errorf("preset = %q, want empty after overrides", preset)
	}
	if in.StartingCash != 1000000 || in.ExpenseGrowthPct != 4 {
		t.Errorf("input = %+v", in)
	}
	if in.MonthlyRevenue != 58200 {
		t.Errorf("MonthlyRevenue = %v, want preset value 58200", in.MonthlyRevenue)
	}
}

func TestResolveInputStrictRejectsSuffix(t *testing.T) {
	cfg := config.DefaultConfig()
	_, _, err := resolveInput(newInputCmd(t, map[string]string{"cash": "12k"}), cfg)
	if err == nil {
		t.Fatal("expected strict parse error for 12k")
	}

	cfg.General.LenientParse = true
	in, _, err := resolveInput(newInputCmd(t, map[string]string{"cash": "12k"}), cfg)
	if err != nil {
		t.Fatalf("lenient resolveInput: %v", err)
	}
	if in.StartingCash != 12 {
		t.Errorf("lenient StartingCash = %v, want 12", in.StartingCash)
	}
}

func TestNewControllerUsesHorizon(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.Horizon = 6
	ctrl, err := newController(newInputCmd(t, nil), cfg)
	if err != nil {
		t.Fatalf("newController: %v", err)
	}
	snap := ctrl.Current()
	if len(snap.Points) != 6 {
		t.Errorf("points = %d, want 6", len(snap.Points))
	}
	if snap.Points[0].Label != forecast.PeriodLabel(0) {
		t.Errorf("first label = %q", snap.Points[0].Label)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Direction
		wantErr bool
	}{
		{"", "", false},
		{"in", model.Inflow, false},
		{"OUT", model.Outflow, false},
		{"outflows", model.Outflow, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := parseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDirection(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	want := []string{"daemon", "--addr", "x"}
	if len(got) != len(want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("filterDetachArg = %v, want %v", got, want)
		}
	}
}

func TestPIDRoundTrip(t *testing.T) {
	pf := pidFile(filepath.Join(t.TempDir(), "runwayd.pid"))
	if err := pf.write(4242); err != nil {
		t.Fatalf("write: %v", err)
	}
	pid, err := pf.read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}

	if err := pf.writeState(daemonRuntimeState{PID: pid, Addr: "127.0.0.1:9999"}); err != nil {
		t.Fatalf("writeState: %v", err)
	}
	st, err := pf.readState()
	if err != nil {
		t.Fatalf("readState: %v", err)
	}
	if st.Addr != "127.0.0.1:9999" {
		t.Errorf("state addr = %q", st.Addr)
	}

	pf.remove()
	if _, err := pf.read(); err == nil {
		t.Error("pid file still readable after remove")
	}
	if err := pidFile(filepath.Join(t.TempDir(), "missing.pid")).ensureFree(); err != nil {
		t.Errorf("ensureFree(missing) = %v", err)
	}
}
