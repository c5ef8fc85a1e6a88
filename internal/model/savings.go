package model

import "math"

// SavingsKind classifies a savings opportunity.
type SavingsKind string

const (
	KindSubscription SavingsKind = "Subscription"
	KindContract     SavingsKind = "Contract"
	KindOptimization SavingsKind = "Optimization"
)

// SavingsOpportunity is a detected way to cut annual spend.
type SavingsOpportunity struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	AnnualSavings float64     `json:"annual_savings"`
	Kind          SavingsKind `json:"kind"`
	Effort        Difficulty  `json:"effort"`
	Priority      Level       `json:"priority"`
}

// Recommendation proposes a lower monthly cost for a line item.
type Recommendation struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	CurrentCost   float64 `json:"current_cost"`
	SuggestedCost float64 `json:"suggested_cost"`
}

// Savings is the monthly amount saved by the recommendation.
func (r Recommendation) Savings() float64 {
	return r.CurrentCost - r.SuggestedCost
}

// SavingsPct is the saving as a whole-number percentage of the current cost.
func (r Recommendation) SavingsPct() int {
	if r.CurrentCost == 0 {
		return 0
	}
	return int(math.Round(r.Savings() / r.CurrentCost * 100))
}
