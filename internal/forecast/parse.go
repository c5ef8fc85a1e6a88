package forecast

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseMode selects how user-entered text becomes a number.
type ParseMode int

const (
	// Strict rejects anything strconv cannot parse as a finite float.
	Strict ParseMode = iota
	// Lenient keeps the legacy behavior: take the leading numeric prefix of
	// the text and treat anything without one as zero. It never fails.
	Lenient
)

func (m ParseMode) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// Field identifies one editable input field.
type Field int

const (
	FieldStartingCash Field = iota
	FieldRevenue
	FieldExpenses
	FieldRevenueGrowth
	FieldExpenseGrowth
	FieldHorizon
)

// Fields lists every editable field in display order.
var Fields = []Field{
	FieldStartingCash, FieldRevenue, FieldExpenses,
	FieldRevenueGrowth, FieldExpenseGrowth, FieldHorizon,
}

var fieldNames = map[Field]string{
	FieldStartingCash:  "starting_cash",
	FieldRevenue:       "monthly_revenue",
	FieldExpenses:      "monthly_expenses",
	FieldRevenueGrowth: "revenue_growth",
	FieldExpenseGrowth: "expense_growth",
	FieldHorizon:       "horizon",
}

var fieldLabels = map[Field]string{
	FieldStartingCash:  "Current Cash",
	FieldRevenue:       "Monthly Revenue",
	FieldExpenses:      "Monthly Expenses",
	FieldRevenueGrowth: "Revenue Growth (%)",
	FieldExpenseGrowth: "Expense Growth (%)",
	FieldHorizon:       "Horizon (months)",
}

func (f Field) String() string { return fieldNames[f] }

// Label is the human-readable field name.
func (f Field) Label() string { return fieldLabels[f] }

// ParseFieldName resolves a field from its snake_case name.
func ParseFieldName(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Get returns the current value of f in the input as a float.
func (in Input) Get(f Field) float64 {
	switch f {
	case FieldStartingCash:
		return in.StartingCash
	case FieldRevenue:
		return in.MonthlyRevenue
	case FieldExpenses:
		return in.MonthlyExpenses
	case FieldRevenueGrowth:
		return in.RevenueGrowthPct
	case FieldExpenseGrowth:
		return in.ExpenseGrowthPct
	case FieldHorizon:
		return float64(in.HorizonMonths)
	}
	return 0
}

// With returns a copy of the input with f set to v. The horizon is
// truncated to a whole number of months; values outside 0..MaxHorizon+1 are
// pinned to those bounds so Validate rejects them without int overflow.
func (in Input) With(f Field, v float64) Input {
	switch f {
	case FieldStartingCash:
		in.StartingCash = v
	case FieldRevenue:
		in.MonthlyRevenue = v
	case FieldExpenses:
		in.MonthlyExpenses = v
	case FieldRevenueGrowth:
		in.RevenueGrowthPct = v
	case FieldExpenseGrowth:
		in.ExpenseGrowthPct = v
	case FieldHorizon:
		switch {
		case math.IsNaN(v) || v < 0:
			in.HorizonMonths = 0
		case v > MaxHorizon:
			in.HorizonMonths = MaxHorizon + 1
		default:
			in.HorizonMonths = int(v)
		}
	}
	return in
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseField converts raw text to a number according to mode.
func ParseField(raw string, mode ParseMode) (float64, error) {
	s := strings.TrimSpace(raw)

	if mode == Lenient {
		m := numericPrefix.FindString(s)
		if m == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil
		}
		return v, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidInput, raw)
	}
	return v, nil
}

// ParseInput overlays edited text fields onto base. Fields absent from the
// map keep their base value. The result is validated before it is returned.
func ParseInput(fields map[Field]string, base Input, mode ParseMode) (Input, error) {
	in := base
	for _, f := range Fields {
		raw, ok := fields[f]
		if !ok {
			continue
		}
		v, err := ParseField(raw, mode)
		if err != nil {
			return base, fmt.Errorf("%s: %w", f.Label(), err)
		}
		if f == FieldHorizon {
			if err := checkHorizon(raw, v, mode); err != nil {
				return base, fmt.Errorf("%s: %w", f.Label(), err)
			}
		}
		in = in.With(f, v)
	}
	if err := in.Validate(); err != nil {
		return base, err
	}
	return in, nil
}

// checkHorizon range-checks a parsed horizon before it is converted to an
// int. Strict mode also requires a whole number.
func checkHorizon(raw string, v float64, mode ParseMode) error {
	if mode == Strict && v != math.Trunc(v) {
		return fmt.Errorf("%w: horizon %q is not a whole number of months", ErrInvalidInput, strings.TrimSpace(raw))
	}
	if n := math.Trunc(v); n < 1 || n > MaxHorizon {
		return fmt.Errorf("%w: horizon must be between 1 and %d months, got %s", ErrInvalidInput, MaxHorizon, strings.TrimSpace(raw))
	}
	return nil
}
