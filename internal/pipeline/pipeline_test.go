package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/source"
)

func TestCategoryBreakdown(t *testing.T) {
	shares := CategoryBreakdown(source.Sample().CurrentExpenses)
	if len(shares) != 4 {
		t.Fatalf("len = %d, want 4", len(shares))
	}
	if shares[0].Category != "Payroll" || shares[3].Category != "Marketing" {
		t.Fatalf("order = %s..%s, want Payroll..Marketing", shares[0].Category, shares[3].Category)
	}
	// 45000 / 92500
	if math.Abs(shares[0].Percent-48.648648) > 1e-4 {
		t.Errorf("Payroll percent = %v, want ~48.65", shares[0].Percent)
	}

	var sum float64
	for _, s := range shares {
		sum += s.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percent sum = %v, want 100", sum)
	}
}

func TestCategoryBreakdownZeroTotal(t *testing.T) {
	shares := CategoryBreakdown(map[string]float64{"a": 0, "b": 0})
	for _, s := range shares {
		if s.Percent != 0 {
			t.Fatalf("Percent = %v, want 0", s.Percent)
		}
	}
}

func TestBurnTotals(t *testing.T) {
	totals := BurnTotals(source.Sample().BurnHistory)
	want := []float64{90000, 95000, 96000, 96000, 100500, 104000}
	for i, w := range want {
		if totals[i].Total != w {
			t.Errorf("%s total = %v, want %v", totals[i].Month, totals[i].Total, w)
		}
	}
	if totals[0].ChangePct != 0 {
		t.Errorf("first ChangePct = %v, want 0", totals[0].ChangePct)
	}
	if totals[3].ChangePct != 0 {
		t.Errorf("Apr ChangePct = %v, want 0", totals[3].ChangePct)
	}
}

func TestBurnCategories(t *testing.T) {
	cats := BurnCategories(source.Sample().BurnHistory)
	if len(cats) != 4 || cats[0] != "Payroll" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestNetCashFlow(t *testing.T) {
	in, out, net := NetCashFlow(source.Sample().Movements)
	if in != 36250 {
		t.Errorf("in = %v, want 36250", in)
	}
	if out != 65700 {
		t.Errorf("out = %v, want 65700", out)
	}
	if net != -29450 {
		t.Errorf("net = %v, want -29450", net)
	}
}

func TestFilterMovements(t *testing.T) {
	mv := source.Sample().Movements
	if got := len(FilterMovements(mv, model.Inflow)); got != 3 {
		t.Errorf("inflows = %d, want 3", got)
	}
	if got := len(FilterMovements(mv, model.Outflow)); got != 5 {
		t.Errorf("outflows = %d, want 5", got)
	}
	if got := len(FilterMovements(mv, "")); got != 8 {
		t.Errorf("all = %d, want 8", got)
	}
	if got := len(SearchMovements(mv, "customer")); got != 3 {
		t.Errorf("search customer = %d, want 3", got)
	}
}

func TestSortAlerts(t *testing.T) {
	alerts := []model.Alert{
		{ID: "1", Severity: model.SeverityLow},
		{ID: "2", Severity: model.SeverityHigh},
		{ID: "3", Severity: model.SeverityMedium},
		{ID: "4", Severity: model.SeverityHigh},
	}
	got := SortAlerts(alerts)
	order := got[0].ID + got[1].ID + got[2].ID + got[3].ID
	if order != "2431" {
		t.Fatalf("order = %s, want 2431", order)
	}
	if alerts[0].ID != "1" {
		t.Fatal("input slice was reordered")
	}
}

func TestFundingScore(t *testing.T) {
	score := FundingScore(source.Sample().Factors)
	if score != 73 {
		t.Fatalf("score = %d, want 73", score)
	}
	if ScoreBand(float64(score)) != BandFair {
		t.Errorf("band = %s, want fair", ScoreBand(float64(score)))
	}
	if ScoreBand(80) != BandGood || ScoreBand(59.9) != BandPoor || ScoreBand(60) != BandFair {
		t.Error("band thresholds wrong")
	}

	over := []model.ScoreFactor{{Score: 70}, {Score: 50}}
	if FundingScore(over) != 100 {
		t.Errorf("capped score = %d, want 100", FundingScore(over))
	}
}

func TestTaskProgress(t *testing.T) {
	tasks := source.Sample().Tasks
	done, total := TaskProgress(tasks)
	if done != 1 || total != 5 {
		t.Fatalf("progress = %d/%d, want 1/5", done, total)
	}
	groups := TasksByStatus(tasks)
	if len(groups[model.StatusInProgress]) != 2 || len(groups[model.StatusNotStarted]) != 2 {
		t.Fatalf("groups = %v", groups)
	}
}

func TestSavings(t *testing.T) {
	l := source.Sample()
	if got := TotalAnnualSavings(l.Opportunities); got != 26530 {
		t.Errorf("total savings = %v, want 26530", got)
	}

	ranked := RankOpportunities(l.Opportunities)
	if ranked[0].Title != "Renegotiate AWS Contract" || ranked[2].Priority != model.LevelMedium {
		t.Errorf("ranking = %s, %s, %s", ranked[0].Title, ranked[1].Title, ranked[2].Title)
	}
}

func TestReductionTotals(t *testing.T) {
	s := ReductionTotals(source.Sample().Recommendations)
	if s.Current != 25500 || s.Suggested != 15770 || s.Savings != 9730 {
		t.Fatalf("totals = %+v", s)
	}
	// 9730 / 25500 = 38.16%
	if s.Pct != 38 {
		t.Errorf("Pct = %d, want 38", s.Pct)
	}

	if ReductionTotals(nil).Pct != 0 {
		t.Error("empty Pct should be 0")
	}
}

func TestRecommendationMath(t *testing.T) {
	r := model.Recommendation{CurrentCost: 4200, SuggestedCost: 1800}
	if r.Savings() != 2400 || r.SavingsPct() != 57 {
		t.Fatalf("savings = %v (%d%%), want 2400 (57%%)", r.Savings(), r.SavingsPct())
	}
	zero := model.Recommendation{}
	if zero.SavingsPct() != 0 {
		t.Errorf("zero-cost pct = %d, want 0", zero.SavingsPct())
	}
}

func TestRecommendationsByCategory(t *testing.T) {
	order, groups := RecommendationsByCategory(source.Sample().Recommendations)
	if len(order) != 4 || order[0] != "SaaS Subscriptions" {
		t.Fatalf("order = %v", order)
	}
	if len(groups["SaaS Subscriptions"]) != 2 {
		t.Errorf("SaaS group = %d, want 2", len(groups["SaaS Subscriptions"]))
	}
}

func TestComputeMetrics(t *testing.T) {
	snap, err := scenario.Compute(forecast.DefaultInput(), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	m := ComputeMetrics(source.Sample(), snap)
	if m.MonthlyBurn != 92500 || m.MonthlyRevenue != 58200 {
		t.Fatalf("metrics = %+v", m)
	}
	// 500000 / 34300 = 14.577
	if m.RunwayMonths != 14.6 {
		t.Errorf("RunwayMonths = %v, want 14.6", m.RunwayMonths)
	}
	if m.BurnChangePct != 12 {
		t.Errorf("BurnChangePct = %v, want 12", m.BurnChangePct)
	}
}

func TestLoadMergesLedgerFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("july.jsonl", `{"type":"movement","date":"2023-07-03","description":"Customer Payment - NewCo","amount":20000,"direction":"inflow"}
{"type":"expense","month":"Jul","category":"Payroll","amount":50000}
{"type":"expense","month":"Jul","category":"SaaS","amount":12000}
`)
	write("alerts.jsonl", `{"type":"alert","title":"Tax bill","severity":"high"}
garbage
`)

	var calls int
	res, err := Load(context.Background(), dir, 2, func(cur, total int) { calls++ })
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 2 || res.ParsedFiles != 2 || res.ParseErrors != 1 {
		t.Fatalf("counts = %+v", res)
	}
	if calls != 2 {
		t.Errorf("progress calls = %d, want 2", calls)
	}

	l := res.Ledger
	if len(l.Movements) != 9 {
		t.Fatalf("movements = %d, want 9", len(l.Movements))
	}
	if l.Movements[0].Description != "Customer Payment - NewCo" {
		t.Errorf("newest movement = %q", l.Movements[0].Description)
	}
	if len(l.Alerts) != 4 {
		t.Errorf("alerts = %d, want 4", len(l.Alerts))
	}
	if len(l.BurnHistory) != 7 || l.BurnHistory[6].Month != "Jul" {
		t.Fatalf("burn history = %d months", len(l.BurnHistory))
	}
	if l.CurrentExpenses["Payroll"] != 50000 || len(l.CurrentExpenses) != 2 {
		t.Errorf("current expenses = %v", l.CurrentExpenses)
	}
}

func TestLoadEmptyDir(t *testing.T) {
	res, err := Load(context.Background(), "", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 0 || len(res.Ledger.Movements) != 8 {
		t.Fatalf("result = %+v", res)
	}
}

func TestLoadCanceled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, dir, 1, nil); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
