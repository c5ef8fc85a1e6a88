// Package forecast projects monthly cash positions from growth assumptions
// and derives runway from the projected series.
package forecast

import (
	"errors"
	"fmt"
	"math"
)

// DefaultHorizon is the number of monthly periods projected when the caller
// does not ask for a different horizon.
const DefaultHorizon = 12

// MaxHorizon is the longest projection accepted, in months.
const MaxHorizon = 120

// ErrInvalidInput is returned when a forecast input is non-finite, has a
// horizon outside 1..MaxHorizon, or cannot be parsed.
var ErrInvalidInput = errors.New("invalid forecast input")

// Input holds the assumptions a forecast is computed from. Monetary values
// are monthly amounts in a single currency; growth rates are percentages
// compounded once per month (7 means +7% per month).
type Input struct {
	StartingCash     float64 `json:"starting_cash" toml:"starting_cash"`
	MonthlyRevenue   float64 `json:"monthly_revenue" toml:"monthly_revenue"`
	MonthlyExpenses  float64 `json:"monthly_expenses" toml:"monthly_expenses"`
	RevenueGrowthPct float64 `json:"revenue_growth_pct" toml:"revenue_growth"`
	ExpenseGrowthPct float64 `json:"expense_growth_pct" toml:"expense_growth"`
	HorizonMonths    int     `json:"horizon_months" toml:"horizon"`
}

// Point is one projected period.
type Point struct {
	Label       string  `json:"label"`
	CashBalance int64   `json:"cash_balance"`
	Revenue     int64   `json:"revenue"`
	Expenses    int64   `json:"expenses"`
	RawCash     float64 `json:"raw_cash"`
}

// Net returns revenue minus expenses for the period, saturated to the int64
// range.
func (p Point) Net() int64 {
	return subUnits(p.Revenue, p.Expenses)
}

// Validate reports whether the input can be projected.
func (in Input) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"starting cash", in.StartingCash},
		{"monthly revenue", in.MonthlyRevenue},
		{"monthly expenses", in.MonthlyExpenses},
		{"revenue growth", in.RevenueGrowthPct},
		{"expense growth", in.ExpenseGrowthPct},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.name)
		}
	}
	if in.HorizonMonths < 1 || in.HorizonMonths > MaxHorizon {
		return fmt.Errorf("%w: horizon must be between 1 and %d months, got %d", ErrInvalidInput, MaxHorizon, in.HorizonMonths)
	}
	return nil
}

// Project computes HorizonMonths points. Each period first applies one month
// of revenue and expenses to the running balance, then emits the point, then
// compounds both growth rates for the next period. Amounts beyond the int64
// range saturate; a series that grows past float64 range is rejected. The
// returned slice is freshly allocated on every call.
func Project(in Input) ([]Point, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	cash := in.StartingCash
	revenue := in.MonthlyRevenue
	expenses := in.MonthlyExpenses
	revFactor := 1 + in.RevenueGrowthPct/100
	expFactor := 1 + in.ExpenseGrowthPct/100

	points := make([]Point, 0, in.HorizonMonths)
	for i := 0; i < in.HorizonMonths; i++ {
		cash = cash + revenue - expenses
		if !finite(cash) || !finite(revenue) || !finite(expenses) {
			return nil, fmt.Errorf("%w: %s overflows the projection range", ErrInvalidInput, PeriodLabel(i))
		}

		points = append(points, Point{
			Label:       PeriodLabel(i),
			CashBalance: max(0, toUnits(cash)),
			Revenue:     toUnits(revenue),
			Expenses:    toUnits(expenses),
			RawCash:     cash,
		})

		revenue *= revFactor
		expenses *= expFactor
	}
	return points, nil
}

// 2^63 as a float64. float64(math.MaxInt64) rounds up to it, so anything at
// or above it does not fit.
const int64Limit = float64(1 << 63)

// toUnits rounds f to whole currency units, saturating at the int64 bounds.
func toUnits(f float64) int64 {
	f = math.Round(f)
	switch {
	case f >= int64Limit:
		return math.MaxInt64
	case f <= -int64Limit:
		return math.MinInt64
	}
	return int64(f)
}

func addUnits(a, b int64) int64 {
	s := a + b
	switch {
	case b > 0 && s < a:
		return math.MaxInt64
	case b < 0 && s > a:
		return math.MinInt64
	}
	return s
}

func subUnits(a, b int64) int64 {
	d := a - b
	switch {
	case b < 0 && d < a:
		return math.MaxInt64
	case b > 0 && d > a:
		return math.MinInt64
	}
	return d
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// PeriodLabel returns the display label for a zero-based period index.
func PeriodLabel(i int) string {
	if i == 0 {
		return "Current"
	}
	return fmt.Sprintf("Month %d", i)
}

// Runway is the number of months a projection stays funded.
type Runway struct {
	Months        int  `json:"months"`
	Horizon       int  `json:"horizon"`
	BeyondHorizon bool `json:"beyond_horizon"`
	// Depleted is the index of the first point with a non-positive balance,
	// or -1 when every point stays positive.
	Depleted int `json:"depleted"`
}

// EstimateRunway scans points for the first non-positive balance. Runway is
// reported as that index minus one (the last index still positive), 0 when
// the very first point is already depleted, and beyond the horizon when no
// point is depleted.
func EstimateRunway(points []Point) Runway {
	r := Runway{Horizon: len(points), Depleted: -1}
	for i, p := range points {
		if p.CashBalance <= 0 {
			r.Depleted = i
			break
		}
	}

	switch {
	case r.Depleted < 0:
		r.BeyondHorizon = true
		r.Months = len(points)
	case r.Depleted == 0:
		r.Months = 0
	default:
		r.Months = r.Depleted - 1
	}
	return r
}

func (r Runway) String() string {
	if r.BeyondHorizon {
		return fmt.Sprintf("%d+ months", r.Horizon)
	}
	return fmt.Sprintf("%d months", r.Months)
}
