package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
)

// LoadResult holds the merged ledger and file counters.
type LoadResult struct {
	Ledger      *model.Ledger
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load parses every ledger file under dir in parallel and merges the records
// onto the sample ledger. An empty or missing dir yields the sample ledger
// unchanged. A file that fails to open is counted, not fatal.
func Load(ctx context.Context, dir string, workers int, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &LoadResult{
		Ledger:     source.Sample(),
		TotalFiles: len(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(files[i])
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(files))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var expenses []source.ExpenseEntry
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors()
		result.Ledger.Movements = append(result.Ledger.Movements, pr.Movements...)
		result.Ledger.Alerts = append(result.Ledger.Alerts, pr.Alerts...)
		expenses = append(expenses, pr.Expenses...)
	}

	sort.SliceStable(result.Ledger.Movements, func(i, j int) bool {
		return result.Ledger.Movements[i].Date.After(result.Ledger.Movements[j].Date)
	})
	mergeExpenses(result.Ledger, expenses)

	return result, nil
}

// mergeExpenses folds expense entries into the burn history. Months already
// present are replaced category by category; new months are appended in the
// order they first appear. The last month in the history becomes the
// current-month breakdown.
func mergeExpenses(l *model.Ledger, entries []source.ExpenseEntry) {
	if len(entries) == 0 {
		return
	}

	idx := make(map[string]int, len(l.BurnHistory))
	for i, h := range l.BurnHistory {
		idx[h.Month] = i
	}
	for _, e := range entries {
		i, ok := idx[e.Month]
		if !ok {
			l.BurnHistory = append(l.BurnHistory, model.CategoryBurn{
				Month:      e.Month,
				Categories: make(map[string]float64),
			})
			i = len(l.BurnHistory) - 1
			idx[e.Month] = i
		}
		l.BurnHistory[i].Categories[e.Category] = e.Amount
	}

	last := l.BurnHistory[len(l.BurnHistory)-1]
	l.CurrentExpenses = make(map[string]float64, len(last.Categories))
	for k, v := range last.Categories {
		l.CurrentExpenses[k] = v
	}
}
