package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/runway/internal/model"
)

// TotalAnnualSavings sums every opportunity's annual savings.
func TotalAnnualSavings(opps []model.SavingsOpportunity) float64 {
	var total float64
	for _, o := range opps {
		total += o.AnnualSavings
	}
	return total
}

// RankOpportunities sorts opportunities by priority, then by savings.
func RankOpportunities(opps []model.SavingsOpportunity) []model.SavingsOpportunity {
	rank := map[model.Level]int{model.LevelHigh: 0, model.LevelMedium: 1, model.LevelLow: 2}
	out := make([]model.SavingsOpportunity, len(opps))
	copy(out, opps)
	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].Priority] != rank[out[j].Priority] {
			return rank[out[i].Priority] < rank[out[j].Priority]
		}
		return out[i].AnnualSavings > out[j].AnnualSavings
	})
	return out
}

// ReductionSummary totals a set of recommendations.
type ReductionSummary struct {
	Current   float64 `json:"current"`
	Suggested float64 `json:"suggested"`
	Savings   float64 `json:"savings"`
	// Pct is the saving as a whole-number percentage of the current cost.
	Pct int `json:"pct"`
}

// ReductionTotals sums current and suggested monthly costs.
func ReductionTotals(recs []model.Recommendation) ReductionSummary {
	var s ReductionSummary
	for _, r := range recs {
		s.Current += r.CurrentCost
		s.Suggested += r.SuggestedCost
	}
	s.Savings = s.Current - s.Suggested
	if s.Current > 0 {
		s.Pct = int(math.Round(s.Savings / s.Current * 100))
	}
	return s
}

// RecommendationsByCategory groups recommendations by category in order of
// first appearance.
func RecommendationsByCategory(recs []model.Recommendation) ([]string, map[string][]model.Recommendation) {
	var order []string
	groups := make(map[string][]model.Recommendation)
	for _, r := range recs {
		if _, ok := groups[r.Category]; !ok {
			order = append(order, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], r)
	}
	return order, groups
}
