package alerts

import "github.com/theirongolddev/runway/internal/model"

// DefaultRules are always evaluated unless the config disables them.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "runway-critical",
			Title:       "Runway Below 6 Months",
			Description: "Cash runs out after {{.runway_months}} months at the current trajectory.",
			Severity:    model.SeverityHigh,
			Expr:        "!beyond_horizon && runway_months < 6",
		},
		{
			ID:          "runway-short",
			Title:       "Runway Below 12 Months",
			Description: "Projected runway is {{.runway_months}} months. Start fundraising or cut burn.",
			Severity:    model.SeverityMedium,
			Expr:        "!beyond_horizon && runway_months >= 6 && runway_months < 12",
		},
		{
			ID:          "break-even",
			Title:       "Break-even Within Horizon",
			Description: "Revenue overtakes expenses in month {{.break_even_month}}.",
			Severity:    model.SeverityLow,
			Expr:        "break_even_month > 0",
		},
	}
}
