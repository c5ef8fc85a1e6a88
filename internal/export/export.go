// Package export writes a forecast snapshot as CSV, JSON or an Excel workbook.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/scenario"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

// CSVHeader is the column order of CSV and XLSX forecast rows.
var CSVHeader = []string{"period", "cash_balance", "revenue", "expenses", "net", "raw_cash"}

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Exporter writes snapshots.
type Exporter struct {
	log *zap.Logger
}

// New creates an exporter. A nil logger disables logging.
func New(log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{log: log.Named("export")}
}

// Write encodes snap to w in the given format.
func (e *Exporter) Write(w io.Writer, format Format, snap *scenario.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("export: nil snapshot")
	}
	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(w, snap)
	case FormatJSON:
		err = writeJSON(w, snap)
	case FormatXLSX:
		err = writeXLSX(w, snap)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	e.log.Debug("exported forecast",
		zap.String("format", string(format)),
		zap.Int("points", len(snap.Points)),
		zap.String("runway", snap.RunwayText),
	)
	return nil
}

// WriteFile writes snap to path, creating parent directories. The file is
// written to a temp file first and renamed into place.
func (e *Exporter) WriteFile(path string, format Format, snap *scenario.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".runway-export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := e.Write(tmp, format, snap); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming export: %w", err)
	}

	e.log.Info("wrote export", zap.String("path", path), zap.String("format", string(format)))
	return nil
}

func pointRow(snap *scenario.Snapshot, i int) []string {
	p := snap.Points[i]
	return []string{
		p.Label,
		strconv.FormatInt(p.CashBalance, 10),
		strconv.FormatInt(p.Revenue, 10),
		strconv.FormatInt(p.Expenses, 10),
		strconv.FormatInt(p.Net(), 10),
		strconv.FormatFloat(p.RawCash, 'f', 2, 64),
	}
}

func writeCSV(w io.Writer, snap *scenario.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for i := range snap.Points {
		if err := cw.Write(pointRow(snap, i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, snap *scenario.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

const (
	sheetForecast = "Forecast"
	sheetSummary  = "Summary"
)

func writeXLSX(w io.Writer, snap *scenario.Snapshot) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetForecast); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetForecast, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(CSVHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetForecast, "A1", last, bold); err != nil {
		return err
	}

	for i, p := range snap.Points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.Label, p.CashBalance, p.Revenue, p.Expenses, p.Net(), p.RawCash}
		if err := f.SetSheetRow(sheetForecast, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	s := snap.Summary
	in := snap.Input
	summary := [][]any{
		{"metric", "value"},
		{"preset", snap.Preset},
		{"starting_cash", in.StartingCash},
		{"monthly_revenue", in.MonthlyRevenue},
		{"monthly_expenses", in.MonthlyExpenses},
		{"revenue_growth_pct", in.RevenueGrowthPct},
		{"expense_growth_pct", in.ExpenseGrowthPct},
		{"horizon_months", in.HorizonMonths},
		{"runway", snap.RunwayText},
		{"ending_cash", s.EndingCash},
		{"min_raw_cash", s.MinRawCash},
		{"total_revenue", s.TotalRevenue},
		{"total_expenses", s.TotalExpenses},
		{"net_burn", s.NetBurn},
		{"break_even_month", s.BreakEvenMonth},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "B1", bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}
