// Package model defines the domain types shared by the runway views.
package model

import "time"

// Direction says whether a movement adds or removes cash.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Inflow || d == Outflow
}

// Movement is one recorded cash movement.
type Movement struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Direction   Direction `json:"direction"`
	Category    string    `json:"category,omitempty"`
}

// Signed returns the amount with outflows negated.
func (m Movement) Signed() float64 {
	if m.Direction == Outflow {
		return -m.Amount
	}
	return m.Amount
}

// Severity ranks a cash alert.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities with the most urgent first. Unknown severities sort
// last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() < 3
}

// Alert is a cash alert shown next to the movements list.
type Alert struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	// Source is "ledger" for recorded alerts and "rule" for alerts raised
	// by a forecast rule.
	Source string `json:"source"`
}

// Ledger is everything a data source provides for the dashboard.
type Ledger struct {
	Metrics         Metrics              `json:"metrics"`
	BurnHistory     []CategoryBurn       `json:"burn_history"`
	CurrentExpenses map[string]float64   `json:"current_expenses"`
	Movements       []Movement           `json:"movements"`
	Alerts          []Alert              `json:"alerts"`
	Factors         []ScoreFactor        `json:"factors"`
	Tasks           []ImprovementTask    `json:"tasks"`
	Opportunities   []SavingsOpportunity `json:"opportunities"`
	SavingsByArea   map[string]float64   `json:"savings_by_area"`
	Recommendations []Recommendation     `json:"recommendations"`
}
