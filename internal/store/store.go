// Package store persists named scenarios and the forecast runs computed from
// them in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
)

// ErrNotFound is returned when a scenario name or ID has no row.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Scenario is a saved forecast input.
type Scenario struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Input     forecast.Input `json:"input"`
	Preset    string         `json:"preset,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Run is one recorded forecast.
type Run struct {
	ID            string           `json:"id"`
	ScenarioID    string           `json:"scenario_id,omitempty"`
	ComputedAt    time.Time        `json:"computed_at"`
	Trigger       string           `json:"trigger"`
	Runway        string           `json:"runway"`
	RunwayMonths  int              `json:"runway_months"`
	BeyondHorizon bool             `json:"beyond_horizon"`
	EndingCash    int64            `json:"ending_cash"`
	Points        []forecast.Point `json:"points"`
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScenario creates or replaces the scenario called name. An existing
// scenario keeps its ID and creation time.
func (s *Store) SaveScenario(ctx context.Context, name string, in forecast.Input, preset string) (*Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("scenario name is required")
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	sc := &Scenario{
		ID:        uuid.NewString(),
		Name:      name,
		Input:     in,
		Preset:    preset,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var id, created string
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM scenarios WHERE name = ?`, name).Scan(&id, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenarios (
				id, name, starting_cash, monthly_revenue, monthly_expenses,
				revenue_growth_pct, expense_growth_pct, horizon_months, preset,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sc.ID, sc.Name, in.StartingCash, in.MonthlyRevenue, in.MonthlyExpenses,
			in.RevenueGrowthPct, in.ExpenseGrowthPct, in.HorizonMonths, preset,
			now.Format(timeLayout), now.Format(timeLayout),
		)
	case err == nil:
		sc.ID = id
		sc.CreatedAt, _ = time.Parse(timeLayout, created)
		_, err = tx.ExecContext(ctx, `
			UPDATE scenarios SET
				starting_cash = ?, monthly_revenue = ?, monthly_expenses = ?,
				revenue_growth_pct = ?, expense_growth_pct = ?, horizon_months = ?,
				preset = ?, updated_at = ?
			WHERE id = ?`,
			in.StartingCash, in.MonthlyRevenue, in.MonthlyExpenses,
			in.RevenueGrowthPct, in.ExpenseGrowthPct, in.HorizonMonths,
			preset, now.Format(timeLayout), id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("saving scenario %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return sc, nil
}

const scenarioColumns = `id, name, starting_cash, monthly_revenue, monthly_expenses,
	revenue_growth_pct, expense_growth_pct, horizon_months, preset, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(r rowScanner) (*Scenario, error) {
	var (
		sc               Scenario
		created, updated string
	)
	err := r.Scan(
		&sc.ID, &sc.Name, &sc.Input.StartingCash, &sc.Input.MonthlyRevenue,
		&sc.Input.MonthlyExpenses, &sc.Input.RevenueGrowthPct, &sc.Input.ExpenseGrowthPct,
		&sc.Input.HorizonMonths, &sc.Preset, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	sc.CreatedAt, _ = time.Parse(timeLayout, created)
	sc.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &sc, nil
}

// GetScenario looks a scenario up by name or ID.
func (s *Store) GetScenario(ctx context.Context, nameOrID string) (*Scenario, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scenarioColumns+` FROM scenarios WHERE name = ? OR id = ? LIMIT 1`,
		nameOrID, nameOrID)
	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %q: %w", nameOrID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", nameOrID, err)
	}
	return sc, nil
}

// ListScenarios returns all scenarios ordered by name.
func (s *Store) ListScenarios(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scenarioColumns+` FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying scenarios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scenario: %w", err)
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

// DeleteScenario removes a scenario and its runs.
func (s *Store) DeleteScenario(ctx context.Context, nameOrID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ? OR id = ?`, nameOrID, nameOrID)
	if err != nil {
		return fmt.Errorf("deleting scenario %q: %w", nameOrID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting scenario %q: %w", nameOrID, err)
	}
	if n == 0 {
		return fmt.Errorf("scenario %q: %w", nameOrID, ErrNotFound)
	}
	return nil
}

// RecordRun stores a computed snapshot. scenarioID may be empty for runs
// that do not belong to a saved scenario.
func (s *Store) RecordRun(ctx context.Context, scenarioID string, snap *scenario.Snapshot, trigger string) (*Run, error) {
	points, err := json.Marshal(snap.Points)
	if err != nil {
		return nil, fmt.Errorf("encoding points: %w", err)
	}

	run := &Run{
		ID:            uuid.NewString(),
		ScenarioID:    scenarioID,
		ComputedAt:    snap.ComputedAt.UTC(),
		Trigger:       trigger,
		Runway:        snap.RunwayText,
		RunwayMonths:  snap.Runway.Months,
		BeyondHorizon: snap.Runway.BeyondHorizon,
		EndingCash:    snap.Summary.EndingCash,
		Points:        snap.Points,
	}

	var sid any
	if scenarioID != "" {
		sid = scenarioID
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forecast_runs (
			id, scenario_id, computed_at, trigger, runway, runway_months,
			beyond_horizon, ending_cash, points_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, sid, run.ComputedAt.Format(timeLayout), trigger, run.Runway,
		run.RunwayMonths, boolToInt(run.BeyondHorizon), run.EndingCash, string(points),
	)
	if err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

// ListRuns returns the newest runs first. An empty scenarioID lists runs
// across all scenarios. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, scenarioID string, limit int) ([]Run, error) {
	query := `SELECT id, COALESCE(scenario_id, ''), computed_at, trigger, runway,
		runway_months, beyond_horizon, ending_cash, points_json FROM forecast_runs`
	var args []any
	if scenarioID != "" {
		query += ` WHERE scenario_id = ?`
		args = append(args, scenarioID)
	}
	query += ` ORDER BY computed_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			computed string
			beyond   int
			points   string
		)
		if err := rows.Scan(&r.ID, &r.ScenarioID, &computed, &r.Trigger, &r.Runway,
			&r.RunwayMonths, &beyond, &r.EndingCash, &points); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.ComputedAt, _ = time.Parse(timeLayout, computed)
		r.BeyondHorizon = beyond != 0
		if err := json.Unmarshal([]byte(points), &r.Points); err != nil {
			return nil, fmt.Errorf("decoding run %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
