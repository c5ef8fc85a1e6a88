package pipeline

import "github.com/theirongolddev/runway/internal/model"

// Band is a coarse rating for a 0-100 score.
type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandPoor Band = "poor"
)

// ScoreBand maps a score to good (80+), fair (60+) or poor.
func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandFair
	default:
		return BandPoor
	}
}

// FundingScore sums factor scores, capped at 100.
func FundingScore(factors []model.ScoreFactor) int {
	total := 0
	for _, f := range factors {
		total += f.Score
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

// TasksByStatus groups tasks by status, preserving their order.
func TasksByStatus(tasks []model.ImprovementTask) map[model.TaskStatus][]model.ImprovementTask {
	out := make(map[model.TaskStatus][]model.ImprovementTask)
	for _, t := range tasks {
		out[t.Status] = append(out[t.Status], t)
	}
	return out
}

// TaskProgress returns completed and total task counts.
func TaskProgress(tasks []model.ImprovementTask) (done, total int) {
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			done++
		}
	}
	return done, len(tasks)
}
