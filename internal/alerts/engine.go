// Package alerts raises cash alerts by evaluating CEL rules against the
// facts of a forecast snapshot.
package alerts

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"text/template"

	"github.com/google/cel-go/cel"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/scenario"
)

// costLimit bounds the work a single rule may do.
const costLimit = 100000

// Rule is a boolean CEL expression over forecast facts.
type Rule struct {
	ID          string         `toml:"id" json:"id"`
	Title       string         `toml:"title" json:"title"`
	Description string         `toml:"description" json:"description"`
	Severity    model.Severity `toml:"severity" json:"severity"`
	Expr        string         `toml:"expr" json:"expr"`
}

type compiled struct {
	rule Rule
	prog cel.Program
	desc *template.Template
}

// Engine holds compiled rules. It is safe for concurrent use.
type Engine struct {
	env   *cel.Env
	mu    sync.RWMutex
	rules []compiled
}

// NewEnv returns the CEL environment rules are compiled in.
func NewEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("runway_months", cel.IntType),
		cel.Variable("beyond_horizon", cel.BoolType),
		cel.Variable("horizon", cel.IntType),
		cel.Variable("ending_cash", cel.IntType),
		cel.Variable("min_cash", cel.DoubleType),
		cel.Variable("net_burn", cel.DoubleType),
		cel.Variable("starting_cash", cel.DoubleType),
		cel.Variable("revenue", cel.DoubleType),
		cel.Variable("expenses", cel.DoubleType),
		cel.Variable("revenue_growth", cel.DoubleType),
		cel.Variable("expense_growth", cel.DoubleType),
		cel.Variable("break_even_month", cel.IntType),
	)
}

// NewEngine compiles rules. Any rule that fails to compile, is not boolean,
// or has an unknown severity fails the whole engine.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	e := &Engine{env: env}
	for _, r := range rules {
		if err := e.Add(r); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Add compiles and appends one rule.
func (e *Engine) Add(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule %q: missing id", r.Title)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %s: unknown severity %q", r.ID, r.Severity)
	}

	ast, issues := e.env.Compile(r.Expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("rule %s: compile error: %w", r.ID, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("rule %s: expression must be boolean, got %s", r.ID, ast.OutputType())
	}
	prog, err := e.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return fmt.Errorf("rule %s: program creation error: %w", r.ID, err)
	}

	desc, err := template.New(r.ID).Option("missingkey=zero").Parse(r.Description)
	if err != nil {
		return fmt.Errorf("rule %s: description template: %w", r.ID, err)
	}

	e.mu.Lock()
	e.rules = append(e.rules, compiled{rule: r, prog: prog, desc: desc})
	e.mu.Unlock()
	return nil
}

// Rules returns the rules in the order they were added.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	for i, c := range e.rules {
		out[i] = c.rule
	}
	return out
}

// Facts extracts the variables rules can reference from a snapshot.
func Facts(s *scenario.Snapshot) map[string]any {
	return map[string]any{
		"runway_months":    int64(s.Runway.Months),
		"beyond_horizon":   s.Runway.BeyondHorizon,
		"horizon":          int64(s.Runway.Horizon),
		"ending_cash":      s.Summary.EndingCash,
		"min_cash":         s.Summary.MinRawCash,
		"net_burn":         s.Summary.NetBurn,
		"starting_cash":    s.Input.StartingCash,
		"revenue":          s.Input.MonthlyRevenue,
		"expenses":         s.Input.MonthlyExpenses,
		"revenue_growth":   s.Input.RevenueGrowthPct,
		"expense_growth":   s.Input.ExpenseGrowthPct,
		"break_even_month": int64(s.Summary.BreakEvenMonth),
	}
}

// Evaluate runs every rule against the snapshot and returns an alert for
// each match, most severe first. A rule that errors at evaluation time is
// treated as not matching and reported in the returned error list.
func (e *Engine) Evaluate(s *scenario.Snapshot) ([]model.Alert, []error) {
	facts := Facts(s)

	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	var (
		out  []model.Alert
		errs []error
	)
	for _, c := range rules {
		val, _, err := c.prog.Eval(facts)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", c.rule.ID, err))
			continue
		}
		matched, ok := val.Value().(bool)
		if !ok || !matched {
			continue
		}

		var buf bytes.Buffer
		if err := c.desc.Execute(&buf, facts); err != nil {
			errs = append(errs, fmt.Errorf("rule %s: rendering description: %w", c.rule.ID, err))
			buf.Reset()
			buf.WriteString(c.rule.Description)
		}
		out = append(out, model.Alert{
			ID:          c.rule.ID,
			Title:       c.rule.Title,
			Description: buf.String(),
			Severity:    c.rule.Severity,
			Source:      "rule",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out, errs
}
