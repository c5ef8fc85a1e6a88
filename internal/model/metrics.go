package model

// Metrics holds the headline figures shown on the summary cards.
type Metrics struct {
	MonthlyBurn    float64 `json:"monthly_burn"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	// Month-over-month change in percent.
	BurnChangePct    float64 `json:"burn_change_pct"`
	RevenueChangePct float64 `json:"revenue_change_pct"`
	RunwayMonths     float64 `json:"runway_months"`
}

// CategoryBurn holds spend per category for one month.
type CategoryBurn struct {
	Month      string             `json:"month"`
	Categories map[string]float64 `json:"categories"`
}

// Total sums every category for the month.
func (c CategoryBurn) Total() float64 {
	var t float64
	for _, v := range c.Categories {
		t += v
	}
	return t
}

// CategoryShare is one slice of a breakdown.
type CategoryShare struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

// MonthTotal is the total burn for one month.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	// Change versus the previous month in percent; zero for the first month.
	ChangePct float64 `json:"change_pct"`
}
