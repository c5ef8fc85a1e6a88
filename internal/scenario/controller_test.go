package scenario

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/theirongolddev/runway/internal/forecast"
)

func TestNewFromPreset(t *testing.T) {
	c, err := NewFromPreset("default", 12)
	if err != nil {
		t.Fatalf("NewFromPreset: %v", err)
	}
	s := c.Current()
	if s.Preset != "baseline" {
		t.Fatalf("Preset = %q, want baseline", s.Preset)
	}
	if len(s.Points) != 12 {
		t.Fatalf("len(Points) = %d, want 12", len(s.Points))
	}
	if s.RunwayText != "12+ months" {
		t.Fatalf("RunwayText = %q, want 12+ months", s.RunwayText)
	}
	if s.Version != 1 {
		t.Fatalf("Version = %d, want 1", s.Version)
	}
}

func TestNewFromPresetUnknown(t *testing.T) {
	_, err := NewFromPreset("moonshot", 12)
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
}

func TestSubmitInvalidKeepsSnapshot(t *testing.T) {
	c, err := New(forecast.DefaultInput())
	if err != nil {
		t.Fatal(err)
	}
	before := c.Current()

	bad := before.Input
	bad.HorizonMonths = 0
	if _, err := c.Submit(bad); !errors.Is(err, forecast.ErrInvalidInput) {
		t.Fatalf("Submit err = %v, want ErrInvalidInput", err)
	}
	if c.Current() != before {
		t.Fatal("snapshot replaced after invalid submit")
	}
}

func TestSubmitClearsPreset(t *testing.T) {
	c, _ := NewFromPreset("optimistic", 12)
	in := c.Current().Input
	in.StartingCash = 1000

	s, err := c.Submit(in)
	if err != nil {
		t.Fatal(err)
	}
	if s.Preset != "" {
		t.Fatalf("Preset = %q, want empty after manual edit", s.Preset)
	}
	if s.Version != 2 {
		t.Fatalf("Version = %d, want 2", s.Version)
	}
}

func TestApplyPresetOverwritesEdits(t *testing.T) {
	c, _ := New(forecast.Input{StartingCash: 1, MonthlyRevenue: 2, MonthlyExpenses: 3, RevenueGrowthPct: 4, ExpenseGrowthPct: 5, HorizonMonths: 12})

	once, err := c.ApplyPreset("optimistic")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := c.ApplyPreset("optimistic")
	if err != nil {
		t.Fatal(err)
	}

	if once.Input != twice.Input {
		t.Fatalf("inputs differ: %+v vs %+v", once.Input, twice.Input)
	}
	if !reflect.DeepEqual(once.Points, twice.Points) {
		t.Fatal("applying the same preset twice changed the projection")
	}
	if once.Input.StartingCash != 500000 || once.Input.RevenueGrowthPct != 15 {
		t.Fatalf("preset not applied: %+v", once.Input)
	}
}

func TestApplyPresetKeepsHorizon(t *testing.T) {
	c, _ := NewFromPreset("baseline", 24)
	s, err := c.ApplyPreset("conservative")
	if err != nil {
		t.Fatal(err)
	}
	if s.Input.HorizonMonths != 24 || len(s.Points) != 24 {
		t.Fatalf("horizon = %d (points %d), want 24", s.Input.HorizonMonths, len(s.Points))
	}
}

func TestSetHorizon(t *testing.T) {
	c, _ := NewFromPreset("baseline", 12)
	s, err := c.SetHorizon(36)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Points) != 36 {
		t.Fatalf("len(Points) = %d, want 36", len(s.Points))
	}
	if s.Preset != "baseline" {
		t.Fatalf("Preset = %q, want baseline", s.Preset)
	}
}

func TestOnChangeObservers(t *testing.T) {
	c, _ := NewFromPreset("baseline", 12)

	var got []uint64
	c.OnChange(func(s *Snapshot) { got = append(got, s.Version) })

	c.ApplyPreset("optimistic")
	c.ApplyPreset("nope")
	c.SetHorizon(6)

	if !reflect.DeepEqual(got, []uint64{2, 3}) {
		t.Fatalf("observed versions = %v, want [2 3]", got)
	}
}

func TestConcurrentReplaceLastWriteWins(t *testing.T) {
	c, _ := NewFromPreset("baseline", 12)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.ApplyPreset("optimistic")
			} else {
				_ = c.Current()
			}
		}(i)
	}
	wg.Wait()

	s := c.Current()
	if s.Preset != "optimistic" {
		t.Fatalf("Preset = %q, want optimistic", s.Preset)
	}
	if s.Version != 26 {
		t.Fatalf("Version = %d, want 26", s.Version)
	}
}

func TestDraftSubmit(t *testing.T) {
	c, _ := NewFromPreset("baseline", 12)
	d := NewDraft()

	if got := d.Value(forecast.FieldStartingCash, c.Current().Input); got != "500000" {
		t.Fatalf("Value = %q, want 500000", got)
	}

	d.Set(forecast.FieldStartingCash, "10000")
	d.Set(forecast.FieldRevenue, "0")
	d.Set(forecast.FieldExpenses, "5000")
	d.Set(forecast.FieldRevenueGrowth, "0")
	d.Set(forecast.FieldExpenseGrowth, "0")
	if !d.Dirty() {
		t.Fatal("Dirty = false after edits")
	}

	s, err := d.SubmitTo(c, forecast.Strict)
	if err != nil {
		t.Fatal(err)
	}
	if s.RunwayText != "0 months" {
		t.Fatalf("RunwayText = %q, want 0 months", s.RunwayText)
	}
	if d.Dirty() {
		t.Fatal("draft not cleared after submit")
	}
}

func TestDraftSubmitStrictError(t *testing.T) {
	c, _ := NewFromPreset("baseline", 12)
	before := c.Current()
	d := NewDraft()
	d.Set(forecast.FieldRevenue, "58k")

	if _, err := d.SubmitTo(c, forecast.Strict); !errors.Is(err, forecast.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if c.Current() != before {
		t.Fatal("snapshot replaced after parse failure")
	}
	if !d.Edited(forecast.FieldRevenue) {
		t.Fatal("draft lost the failed edit")
	}

	s, err := d.SubmitTo(c, forecast.Lenient)
	if err != nil {
		t.Fatal(err)
	}
	if s.Input.MonthlyRevenue != 58 {
		t.Fatalf("MonthlyRevenue = %v, want 58", s.Input.MonthlyRevenue)
	}
}

func TestDraftRejectsHorizonAboveMax(t *testing.T) {
	c, _ := NewFromPreset("baseline", 12)
	before := c.Current()
	d := NewDraft()
	d.Set(forecast.FieldHorizon, "2000000")

	for _, mode := range []forecast.ParseMode{forecast.Strict, forecast.Lenient} {
		if _, err := d.SubmitTo(c, mode); !errors.Is(err, forecast.ErrInvalidInput) {
			t.Fatalf("%s: err = %v, want ErrInvalidInput", mode, err)
		}
	}
	if c.Current() != before {
		t.Fatal("snapshot replaced by out-of-range horizon")
	}
	if !d.Edited(forecast.FieldHorizon) {
		t.Fatal("draft lost the rejected edit")
	}
}
