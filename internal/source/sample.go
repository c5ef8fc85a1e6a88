package source

import (
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

func day(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

// Sample returns the built-in demo ledger. Each call returns a fresh copy
// that the caller may modify.
func Sample() *model.Ledger {
	return &model.Ledger{
		Metrics: model.Metrics{
			MonthlyBurn:      92500,
			MonthlyRevenue:   58200,
			BurnChangePct:    12,
			RevenueChangePct: 8,
			RunwayMonths:     14.2,
		},
		BurnHistory: []model.CategoryBurn{
			{Month: "Jan", Categories: map[string]float64{"Payroll": 45000, "SaaS": 15000, "Operations": 20000, "Marketing": 10000}},
			{Month: "Feb", Categories: map[string]float64{"Payroll": 45000, "SaaS": 16000, "Operations": 22000, "Marketing": 12000}},
			{Month: "Mar", Categories: map[string]float64{"Payroll": 47000, "SaaS": 16000, "Operations": 18000, "Marketing": 15000}},
			{Month: "Apr", Categories: map[string]float64{"Payroll": 47000, "SaaS": 17000, "Operations": 19000, "Marketing": 13000}},
			{Month: "May", Categories: map[string]float64{"Payroll": 48000, "SaaS": 17500, "Operations": 21000, "Marketing": 14000}},
			{Month: "Jun", Categories: map[string]float64{"Payroll": 48000, "SaaS": 18000, "Operations": 22000, "Marketing": 16000}},
		},
		CurrentExpenses: map[string]float64{
			"Payroll":    45000,
			"SaaS":       18000,
			"Operations": 22000,
			"Marketing":  7500,
		},
		Movements: []model.Movement{
			{ID: "mv-1", Date: day("2023-06-15"), Description: "Customer Payment - Acme Corp", Amount: 12500, Direction: model.Inflow, Category: "Sales"},
			{ID: "mv-2", Date: day("2023-06-12"), Description: "Payroll", Amount: 45000, Direction: model.Outflow, Category: "Payroll"},
			{ID: "mv-3", Date: day("2023-06-10"), Description: "Customer Payment - TechStart Ltd", Amount: 8750, Direction: model.Inflow, Category: "Sales"},
			{ID: "mv-4", Date: day("2023-06-05"), Description: "AWS Cloud Services", Amount: 4200, Direction: model.Outflow, Category: "Infrastructure"},
			{ID: "mv-5", Date: day("2023-06-01"), Description: "Office Rent", Amount: 5800, Direction: model.Outflow, Category: "Operations"},
			{ID: "mv-6", Date: day("2023-05-28"), Description: "Customer Payment - GlobalFirm", Amount: 15000, Direction: model.Inflow, Category: "Sales"},
			{ID: "mv-7", Date: day("2023-05-25"), Description: "Marketing Expenses", Amount: 7500, Direction: model.Outflow, Category: "Marketing"},
			{ID: "mv-8", Date: day("2023-05-20"), Description: "SaaS Subscriptions", Amount: 3200, Direction: model.Outflow, Category: "SaaS"},
		},
		Alerts: []model.Alert{
			{ID: "al-1", Title: "Large Expense Coming", Description: "Annual insurance payment of $24,000 due in 15 days.", Severity: model.SeverityHigh, Source: "ledger"},
			{ID: "al-2", Title: "Payment Delayed", Description: "Invoice #1082 payment from TechFirm Inc is 7 days overdue ($15,500).", Severity: model.SeverityMedium, Source: "ledger"},
			{ID: "al-3", Title: "Positive Cash Flow Trend", Description: "Your net cash flow has been positive for 3 consecutive months.", Severity: model.SeverityLow, Source: "ledger"},
		},
		Factors: []model.ScoreFactor{
			{Name: "Financial Health", Score: 18, Max: 25, Description: "Measures your startup's current financial stability and health."},
			{Name: "Growth Metrics", Score: 21, Max: 25, Description: "Evaluates your growth rate, CAC, LTV, and other key metrics."},
			{Name: "Market Opportunity", Score: 16, Max: 20, Description: "Assesses your total addressable market and growth potential."},
			{Name: "Team & Execution", Score: 12, Max: 15, Description: "Evaluates your team's experience, background, and execution ability."},
			{Name: "Documentation", Score: 6, Max: 15, Description: "Checks if your pitch deck, financial model, and other documents are ready."},
		},
		Tasks: []model.ImprovementTask{
			{Title: "Update Financial Model", Description: "Create a detailed 3-year financial projection with clear assumptions.", Impact: model.LevelHigh, Difficulty: model.Medium, Status: model.StatusInProgress},
			{Title: "Improve Unit Economics", Description: "Reduce customer acquisition cost by at least 15%.", Impact: model.LevelHigh, Difficulty: model.Hard, Status: model.StatusNotStarted},
			{Title: "Prepare Investor Deck", Description: "Create a compelling pitch deck highlighting traction and vision.", Impact: model.LevelHigh, Difficulty: model.Medium, Status: model.StatusCompleted},
			{Title: "Optimize Burn Rate", Description: "Reduce monthly burn by implementing cost-saving measures.", Impact: model.LevelMedium, Difficulty: model.Medium, Status: model.StatusInProgress},
			{Title: "Document Growth Strategy", Description: "Outline clear GTM strategy with milestones and KPIs.", Impact: model.LevelMedium, Difficulty: model.Easy, Status: model.StatusNotStarted},
		},
		Opportunities: []model.SavingsOpportunity{
			{Title: "Consolidate SaaS Subscriptions", Description: "You're paying for multiple project management tools (Asana, Monday, and Trello). Consolidating to one platform can save costs.", AnnualSavings: 5760, Kind: model.KindSubscription, Effort: model.Easy, Priority: model.LevelHigh},
			{Title: "Renegotiate AWS Contract", Description: "Based on your usage patterns, you could save by switching to reserved instances instead of on-demand pricing.", AnnualSavings: 12420, Kind: model.KindContract, Effort: model.Medium, Priority: model.LevelHigh},
			{Title: "Optimize Cloud Storage Usage", Description: "You're storing 72% of rarely accessed data in hot storage. Moving to cold storage would reduce costs.", AnnualSavings: 8350, Kind: model.KindOptimization, Effort: model.Medium, Priority: model.LevelMedium},
		},
		SavingsByArea: map[string]float64{
			"SaaS Subscriptions": 18520,
			"Infrastructure":     24650,
			"Marketing":          9200,
			"Operations":         12600,
		},
		Recommendations: []model.Recommendation{
			{Title: "Reduce SaaS Stack Overlap", Description: "Multiple collaboration tools with overlapping features. Consolidate to a single platform.", Category: "SaaS Subscriptions", CurrentCost: 4200, SuggestedCost: 1800},
			{Title: "Optimize Cloud Resources", Description: "Right-size your cloud instances based on actual usage patterns.", Category: "Infrastructure", CurrentCost: 6800, SuggestedCost: 4250},
			{Title: "Consolidate Marketing Tools", Description: "Multiple marketing analytics tools with similar features. Choose one comprehensive solution.", Category: "Marketing", CurrentCost: 2400, SuggestedCost: 1200},
			{Title: "Renegotiate Payment Processing", Description: "Current payment processor charges above market rates. Negotiate or switch providers.", Category: "Operations", CurrentCost: 8500, SuggestedCost: 6120},
			{Title: "Audit Software Licenses", Description: "You're paying for unused licenses. Adjust to actual usage levels.", Category: "SaaS Subscriptions", CurrentCost: 3600, SuggestedCost: 2400},
		},
	}
}
