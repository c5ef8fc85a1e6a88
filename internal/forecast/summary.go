package forecast

import "math"

// Summary holds derived figures for a projection.
type Summary struct {
	EndingCash     int64   `json:"ending_cash"`
	MinRawCash     float64 `json:"min_raw_cash"`
	MinCashMonth   int     `json:"min_cash_month"`
	TotalRevenue   int64   `json:"total_revenue"`
	TotalExpenses  int64   `json:"total_expenses"`
	NetBurn        float64 `json:"net_burn"`
	BreakEvenMonth int     `json:"break_even_month"`
	// SimpleRunway is starting cash divided by month-0 net burn. It is +Inf
	// when the company is not burning cash.
	SimpleRunway float64 `json:"-"`
}

// Summarize derives headline figures from an input and its projection.
func Summarize(in Input, points []Point) Summary {
	s := Summary{
		NetBurn:        in.MonthlyExpenses - in.MonthlyRevenue,
		MinCashMonth:   -1,
		BreakEvenMonth: -1,
		MinRawCash:     math.Inf(1),
	}

	if s.NetBurn > 0 {
		s.SimpleRunway = in.StartingCash / s.NetBurn
	} else {
		s.SimpleRunway = math.Inf(1)
	}

	for i, p := range points {
		s.TotalRevenue = addUnits(s.TotalRevenue, p.Revenue)
		s.TotalExpenses = addUnits(s.TotalExpenses, p.Expenses)
		if p.RawCash < s.MinRawCash {
			s.MinRawCash = p.RawCash
			s.MinCashMonth = i
		}
		if s.BreakEvenMonth < 0 && p.Revenue >= p.Expenses {
			s.BreakEvenMonth = i
		}
	}

	if len(points) > 0 {
		s.EndingCash = points[len(points)-1].CashBalance
	} else {
		s.MinRawCash = in.StartingCash
	}
	return s
}

// Burning reports whether month-0 expenses exceed revenue.
func (s Summary) Burning() bool {
	return s.NetBurn > 0
}
