// Package source discovers and parses ledger files and provides the
// built-in sample ledger.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/runway/internal/model"
)

// ExpenseEntry is one month's spend in one category.
type ExpenseEntry struct {
	Month    string
	Category string
	Amount   float64
}

// LineError describes a line that could not be used.
type LineError struct {
	Line int
	Msg  string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseResult holds the output of parsing a single ledger file.
type ParseResult struct {
	Movements []model.Movement
	Alerts    []model.Alert
	Expenses  []ExpenseEntry
	// Skipped counts lines with an unknown record type.
	Skipped int
	Errors  []LineError
	Err     error
}

// ParseErrors is the number of malformed lines.
func (r ParseResult) ParseErrors() int {
	return len(r.Errors)
}

// ParseFile opens and parses one discovered ledger file.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()
	return Parse(f, df.Path)
}

// Parse reads ledger records from r. name seeds the ids generated for
// records that do not carry one, so re-parsing the same file yields the
// same ids. Blank lines are ignored; malformed lines are collected in
// Errors and parsing continues.
func Parse(r io.Reader, name string) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			res.Errors = append(res.Errors, LineError{Line: lineNo, Msg: "invalid JSON"})
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", name, lineNo))).String()
		}

		switch rec.Type {
		case TypeMovement:
			m, err := toMovement(rec)
			if err != nil {
				res.Errors = append(res.Errors, LineError{Line: lineNo, Msg: err.Error()})
				continue
			}
			res.Movements = append(res.Movements, m)
		case TypeAlert:
			a, err := toAlert(rec)
			if err != nil {
				res.Errors = append(res.Errors, LineError{Line: lineNo, Msg: err.Error()})
				continue
			}
			res.Alerts = append(res.Alerts, a)
		case TypeExpense:
			if rec.Month == "" || rec.Category == "" || rec.Amount < 0 {
				res.Errors = append(res.Errors, LineError{Line: lineNo, Msg: "expense needs month, category and a non-negative amount"})
				continue
			}
			res.Expenses = append(res.Expenses, ExpenseEntry{Month: rec.Month, Category: rec.Category, Amount: rec.Amount})
		default:
			res.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

func toMovement(rec RawRecord) (model.Movement, error) {
	date, err := time.Parse(DateLayout, rec.Date)
	if err != nil {
		return model.Movement{}, fmt.Errorf("bad date %q", rec.Date)
	}
	dir := model.Direction(strings.ToLower(rec.Direction))
	if !dir.Valid() {
		return model.Movement{}, fmt.Errorf("bad direction %q", rec.Direction)
	}
	if rec.Amount <= 0 {
		return model.Movement{}, fmt.Errorf("amount must be positive, got %v", rec.Amount)
	}
	return model.Movement{
		ID:          rec.ID,
		Date:        date,
		Description: rec.Description,
		Amount:      rec.Amount,
		Direction:   dir,
		Category:    rec.Category,
	}, nil
}

func toAlert(rec RawRecord) (model.Alert, error) {
	sev := model.Severity(strings.ToLower(rec.Severity))
	if !sev.Valid() {
		return model.Alert{}, fmt.Errorf("bad severity %q", rec.Severity)
	}
	if rec.Title == "" {
		return model.Alert{}, fmt.Errorf("alert needs a title")
	}
	return model.Alert{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Severity:    sev,
		Source:      "ledger",
	}, nil
}
