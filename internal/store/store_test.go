package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runway.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetScenario(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := forecast.DefaultInput()
	saved, err := s.SaveScenario(ctx, "  base  ", in, "baseline")
	if err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}
	if saved.Name != "base" || saved.ID == "" {
		t.Fatalf("saved = %+v", saved)
	}

	got, err := s.GetScenario(ctx, "base")
	if err != nil {
		t.Fatalf("GetScenario: %v", err)
	}
	if got.Input != in {
		t.Errorf("Input = %+v, want %+v", got.Input, in)
	}
	if got.Preset != "baseline" {
		t.Errorf("Preset = %q, want baseline", got.Preset)
	}

	byID, err := s.GetScenario(ctx, saved.ID)
	if err != nil || byID.Name != "base" {
		t.Fatalf("GetScenario(id) = %+v, %v", byID, err)
	}
}

func TestSaveScenarioUpsertKeepsID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveScenario(ctx, "plan", forecast.DefaultInput(), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	changed := forecast.DefaultInput()
	changed.MonthlyExpenses = 80000
	second, err := s.SaveScenario(ctx, "plan", changed, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed on update: %s -> %s", first.ID, second.ID)
	}

	got, err := s.GetScenario(ctx, "plan")
	if err != nil {
		t.Fatal(err)
	}
	if got.Input.MonthlyExpenses != 80000 || got.Preset != "" {
		t.Errorf("got = %+v", got)
	}

	list, err := s.ListScenarios(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
}

func TestSaveScenarioRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveScenario(ctx, "", forecast.DefaultInput(), ""); err == nil {
		t.Error("expected error for empty name")
	}
	bad := forecast.DefaultInput()
	bad.HorizonMonths = 0
	if _, err := s.SaveScenario(ctx, "bad", bad, ""); !errors.Is(err, forecast.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListScenariosSorted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.SaveScenario(ctx, name, forecast.DefaultInput(), ""); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListScenarios(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Name != "alpha" || list[2].Name != "zeta" {
		t.Fatalf("list = %+v", list)
	}
}

func TestDeleteScenarioCascadesRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := s.SaveScenario(ctx, "gone", forecast.DefaultInput(), "")
	if err != nil {
		t.Fatal(err)
	}
	snap, err := scenario.Compute(sc.Input, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRun(ctx, sc.ID, snap, "cli"); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteScenario(ctx, "gone"); err != nil {
		t.Fatalf("DeleteScenario: %v", err)
	}
	if _, err := s.GetScenario(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetScenario after delete: err = %v, want ErrNotFound", err)
	}
	runs, err := s.ListRuns(ctx, sc.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("runs after delete = %d, want 0", len(runs))
	}

	if err := s.DeleteScenario(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base, err := scenario.Compute(forecast.DefaultInput(), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRun(ctx, "", base, "cli"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	depleting, err := scenario.Compute(forecast.Input{StartingCash: 10000, MonthlyExpenses: 5000, HorizonMonths: 12}, "")
	if err != nil {
		t.Fatal(err)
	}
	depleting.ComputedAt = base.ComputedAt.Add(time.Second)
	if _, err := s.RecordRun(ctx, "", depleting, "daemon"); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	newest := runs[0]
	if newest.Trigger != "daemon" || newest.Runway != "0 months" || newest.BeyondHorizon {
		t.Errorf("newest = %+v", newest)
	}
	if runs[1].Runway != "12+ months" || !runs[1].BeyondHorizon {
		t.Errorf("oldest = %+v", runs[1])
	}
	if len(runs[1].Points) != 12 || runs[1].Points[0].CashBalance != 465700 {
		t.Errorf("points not round-tripped: %+v", runs[1].Points)
	}

	limited, err := s.ListRuns(ctx, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d runs", len(limited))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runway.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveScenario(ctx, "kept", forecast.DefaultInput(), ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, err := s.GetScenario(ctx, "kept"); err != nil {
		t.Fatalf("GetScenario after reopen: %v", err)
	}
}
