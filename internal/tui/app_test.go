package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/source"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T, mode forecast.ParseMode) App {
	t.Helper()
	ctrl, err := scenario.NewFromPreset(forecast.DefaultPreset, forecast.DefaultHorizon)
	if err != nil {
		t.Fatalf("NewFromPreset: %v", err)
	}
	engine, err := alerts.NewEngine(alerts.DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	var m tea.Model = NewApp(Options{Controller: ctrl, Alerts: engine, ParseMode: mode})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	m, _ = m.Update(DataLoadedMsg{Result: &pipeline.LoadResult{Ledger: source.Sample()}})
	return m.(App)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m.(App)
}

// editField opens the editor on the scenario tab's current field, replaces
// its text and confirms it.
func editField(t *testing.T, a App, text string) App {
	t.Helper()
	a = press(t, a, "enter")
	if !a.scen.editing {
		t.Fatal("enter did not open the field editor")
	}
	a.scen.input.SetValue(text)
	return press(t, a, "enter")
}

func TestTabNavigation(t *testing.T) {
	a := newTestApp(t, forecast.Strict)

	a = press(t, a, "3")
	if a.activeTab != tabCashFlow {
		t.Fatalf("after 3: tab = %d, want %d", a.activeTab, tabCashFlow)
	}
	a = press(t, a, "tab")
	if a.activeTab != tabFunding {
		t.Fatalf("after tab: tab = %d, want %d", a.activeTab, tabFunding)
	}
	a = press(t, a, "shift+tab", "shift+tab", "shift+tab", "shift+tab")
	if a.activeTab != tabScenario {
		t.Fatalf("shift+tab should wrap: tab = %d, want %d", a.activeTab, tabScenario)
	}
}

func TestPresetKeys(t *testing.T) {
	a := newTestApp(t, forecast.Strict)

	a = press(t, a, "o")
	if a.snap.Preset != "optimistic" || a.snap.Input.RevenueGrowthPct != 15 {
		t.Fatalf("o: preset = %q growth = %v", a.snap.Preset, a.snap.Input.RevenueGrowthPct)
	}
	a = press(t, a, "p")
	if a.snap.Preset != "conservative" {
		t.Fatalf("p after optimistic = %q, want conservative", a.snap.Preset)
	}
	a = press(t, a, "p")
	if a.snap.Preset != "baseline" {
		t.Fatalf("p should wrap to baseline, got %q", a.snap.Preset)
	}
	if a.statusErr || !strings.Contains(a.status, "Baseline") {
		t.Errorf("status = %q (err=%v)", a.status, a.statusErr)
	}
}

func TestStrictSubmitKeepsPreviousForecast(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	before := a.snap

	a = press(t, a, "6")
	a = editField(t, a, "12k")
	if !a.draft.Edited(forecast.FieldStartingCash) {
		t.Fatal("edit was not stored in the draft")
	}

	a = press(t, a, "u")
	if !a.statusErr {
		t.Fatalf("expected a parse error in the status bar, got %q", a.status)
	}
	if a.snap != before {
		t.Error("rejected submit replaced the snapshot")
	}
	if !a.draft.Dirty() {
		t.Error("rejected submit should keep the edits")
	}
}

func TestLenientSubmitCoercesInput(t *testing.T) {
	a := newTestApp(t, forecast.Lenient)

	a = press(t, a, "6")
	a = editField(t, a, "12k")
	a = press(t, a, "u")

	if a.statusErr {
		t.Fatalf("unexpected error: %s", a.status)
	}
	if a.snap.Input.StartingCash != 12 {
		t.Errorf("StartingCash = %v, want 12", a.snap.Input.StartingCash)
	}
	if a.snap.Preset != "" {
		t.Errorf("manual submit should clear the preset, got %q", a.snap.Preset)
	}
	if a.draft.Dirty() {
		t.Error("successful submit should clear the draft")
	}
}

func TestSubmitRowAndCursor(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	a = press(t, a, "6", "j", "j")
	if a.scen.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", a.scen.cursor)
	}

	a = editField(t, a, "80000")
	if a.scen.cursor != 3 {
		t.Errorf("confirming an edit should advance the cursor, got %d", a.scen.cursor)
	}

	for range submitRow {
		a = press(t, a, "j")
	}
	if a.scen.cursor != submitRow {
		t.Fatalf("cursor = %d, want submit row %d", a.scen.cursor, submitRow)
	}
	a = press(t, a, "enter")
	if a.snap.Input.MonthlyExpenses != 80000 {
		t.Errorf("MonthlyExpenses = %v, want 80000", a.snap.Input.MonthlyExpenses)
	}
}

func TestEscDiscardsEdits(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	a = press(t, a, "6")
	a = editField(t, a, "1")

	a = press(t, a, "esc")
	if a.draft.Dirty() {
		t.Error("esc should discard pending edits")
	}
	if a.snap.Input.StartingCash != 500000 {
		t.Errorf("StartingCash = %v, want unchanged", a.snap.Input.StartingCash)
	}
}

func TestEditorSwallowsGlobalKeys(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	a = press(t, a, "6", "enter", "q", "o")
	if a.snap.Preset != "baseline" {
		t.Errorf("typing in the editor applied a preset: %q", a.snap.Preset)
	}
	if !a.scen.editing {
		t.Error("editor closed on a printable key")
	}
}

func TestCashFlowFilter(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	a = press(t, a, "3", "f")

	movs := a.movements()
	if len(movs) == 0 {
		t.Fatal("no inflows in sample ledger")
	}
	for _, m := range movs {
		if m.Direction != model.Inflow {
			t.Fatalf("filter let through %s movement %q", m.Direction, m.Description)
		}
	}

	a = press(t, a, "f", "f")
	if len(a.movements()) != len(a.ledger.Movements) {
		t.Error("filter should cycle back to all movements")
	}
}

func TestLoadErrorFallsBackToSample(t *testing.T) {
	ctrl, err := scenario.NewFromPreset(forecast.DefaultPreset, 12)
	if err != nil {
		t.Fatal(err)
	}
	var m tea.Model = NewApp(Options{Controller: ctrl})
	m, _ = m.Update(DataLoadedMsg{Err: errors.New("permission denied")})
	a := m.(App)

	if a.ledger == nil || len(a.ledger.Movements) == 0 {
		t.Fatal("expected the sample ledger after a load error")
	}
	if !a.statusErr {
		t.Error("load error should be shown in the status bar")
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	want := []string{"Current Cash", "Monthly Burn", "Movements", "Readiness Score", "Opportunities", "Assumptions"}
	for i, w := range want {
		a.activeTab = i
		if out := a.View(); !strings.Contains(out, w) {
			t.Errorf("tab %d view missing %q", i, w)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	a = press(t, a, "?")
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	a = press(t, a, "o")
	if a.showHelp {
		t.Error("any key should close help")
	}
	if a.snap.Preset != "baseline" {
		t.Error("closing help should not apply a preset")
	}
}

func TestRuleAlertsFollowSnapshot(t *testing.T) {
	a := newTestApp(t, forecast.Strict)
	if len(a.ruleAlerts) != 1 || a.ruleAlerts[0].Severity != model.SeverityLow {
		t.Fatalf("baseline should raise only the break-even alert, got %v", a.ruleAlerts)
	}

	// Cash 100000 with no revenue runs out within the first months.
	a = press(t, a, "6")
	a = editField(t, a, "100000")
	a = editField(t, a, "0")
	a = press(t, a, "u")
	if len(a.ruleAlerts) == 0 || a.ruleAlerts[0].Severity != model.SeverityHigh {
		t.Errorf("a short runway should raise a high alert first, got %v", a.ruleAlerts)
	}
}
