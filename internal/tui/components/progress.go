package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a loading progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(int(pct*float64(width)), width)

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForScore returns red/orange/yellow/green for a 0-1 score where
// higher is better.
func ColorForScore(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.8:
		return t.Green
	case pct >= 0.6:
		return t.Yellow
	case pct >= 0.4:
		return t.Orange
	default:
		return t.Red
	}
}

// ScoreBar renders a labeled bar for a score out of maxScore, followed by
// "score/max".
func ScoreBar(label string, score, maxScore, labelW, barWidth int) string {
	t := theme.Active

	pct := 0.0
	if maxScore > 0 {
		pct = clamp01(float64(score) / float64(maxScore))
	}
	color := ColorForScore(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	scoreStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		scoreStyle.Render(fmt.Sprintf("%d/%d", score, maxScore))
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
