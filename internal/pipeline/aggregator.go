// Package pipeline loads ledgers and turns them into the figures the views
// render. Everything except Load is a pure function over model values.
package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/scenario"
)

// ComputeMetrics builds the headline cards from the ledger's month-over-month
// figures and the active forecast. Burn and revenue come from the forecast
// input; runway is starting cash over net burn.
func ComputeMetrics(l *model.Ledger, s *scenario.Snapshot) model.Metrics {
	m := l.Metrics
	if s == nil {
		return m
	}
	m.MonthlyBurn = s.Input.MonthlyExpenses
	m.MonthlyRevenue = s.Input.MonthlyRevenue
	if math.IsInf(s.Summary.SimpleRunway, 0) {
		m.RunwayMonths = math.Inf(1)
	} else {
		m.RunwayMonths = math.Round(s.Summary.SimpleRunway*10) / 10
	}
	return m
}

// CategoryBreakdown turns a category map into shares sorted by amount,
// largest first. Ties sort by name.
func CategoryBreakdown(amounts map[string]float64) []model.CategoryShare {
	var total float64
	for _, v := range amounts {
		total += v
	}

	shares := make([]model.CategoryShare, 0, len(amounts))
	for cat, v := range amounts {
		s := model.CategoryShare{Category: cat, Amount: v}
		if total > 0 {
			s.Percent = v / total * 100
		}
		shares = append(shares, s)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// BurnTotals sums each month of the burn history and computes the change
// against the month before.
func BurnTotals(history []model.CategoryBurn) []model.MonthTotal {
	out := make([]model.MonthTotal, len(history))
	for i, h := range history {
		out[i] = model.MonthTotal{Month: h.Month, Total: h.Total()}
		if i > 0 && out[i-1].Total > 0 {
			out[i].ChangePct = (out[i].Total - out[i-1].Total) / out[i-1].Total * 100
		}
	}
	return out
}

// BurnCategories returns every category seen in the history, sorted by
// total spend across all months, largest first.
func BurnCategories(history []model.CategoryBurn) []string {
	totals := make(map[string]float64)
	for _, h := range history {
		for cat, v := range h.Categories {
			totals[cat] += v
		}
	}
	shares := CategoryBreakdown(totals)
	cats := make([]string, len(shares))
	for i, s := range shares {
		cats[i] = s.Category
	}
	return cats
}

// FilterMovements returns movements in the given direction. An empty
// direction returns all movements.
func FilterMovements(movements []model.Movement, dir model.Direction) []model.Movement {
	if dir == "" {
		return movements
	}
	var out []model.Movement
	for _, m := range movements {
		if m.Direction == dir {
			out = append(out, m)
		}
	}
	return out
}

// SearchMovements filters movements by a case-insensitive substring of the
// description or category.
func SearchMovements(movements []model.Movement, q string) []model.Movement {
	if q == "" {
		return movements
	}
	q = strings.ToLower(q)
	var out []model.Movement
	for _, m := range movements {
		if strings.Contains(strings.ToLower(m.Description), q) ||
			strings.Contains(strings.ToLower(m.Category), q) {
			out = append(out, m)
		}
	}
	return out
}

// NetCashFlow totals inflows and outflows.
func NetCashFlow(movements []model.Movement) (in, out, net float64) {
	for _, m := range movements {
		switch m.Direction {
		case model.Inflow:
			in += m.Amount
		case model.Outflow:
			out += m.Amount
		}
	}
	return in, out, in - out
}

// SortAlerts orders alerts by severity, most urgent first, keeping the
// original order within a severity.
func SortAlerts(alerts []model.Alert) []model.Alert {
	out := make([]model.Alert, len(alerts))
	copy(out, alerts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}
