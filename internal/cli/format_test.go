package cli

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{92500, "$92,500"},
		{465700, "$465,700"},
		{1234.5, "$1,234.5"},
		{58200.07, "$58,200.07"},
		{-29450, "-$29,450"},
		{999.999, "$1,000"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	if got := FormatMoneyShort(465700); got != "$465.7K" {
		t.Errorf("FormatMoneyShort = %q, want $465.7K", got)
	}
	if got := FormatMoneyShort(-1_250_000); got != "-$1.2M" && got != "-$1.3M" {
		t.Errorf("FormatMoneyShort negative = %q", got)
	}
	if got := FormatCompact(42); got != "42" {
		t.Errorf("FormatCompact(42) = %q", got)
	}
}

func TestFormatMonths(t *testing.T) {
	if got := FormatMonths(14.577); got != "14.6 months" {
		t.Errorf("FormatMonths = %q, want 14.6 months", got)
	}
	if got := FormatMonths(math.Inf(1)); got != "not burning" {
		t.Errorf("FormatMonths(Inf) = %q", got)
	}
}

func TestFormatChange(t *testing.T) {
	if got := FormatChange(12); got != "+12%" {
		t.Errorf("FormatChange(12) = %q", got)
	}
	if got := FormatChange(-3.5); got != "-3.5%" {
		t.Errorf("FormatChange(-3.5) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Jul 3" {
		t.Errorf("FormatDate = %q, want Jul 3", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]float64{0, 50, 100})
	if []rune(got)[0] != '▁' || []rune(got)[2] != '█' {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty series should render empty")
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	DisableColor()
	out := RenderTable(Table{
		Headers: []string{"Month", "Cash"},
		Rows:    [][]string{{"Current", "$465,700"}, {"Month 1", "$9"}},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[4], "       $9 ") {
		t.Errorf("numeric column not right-aligned: %q", lines[4])
	}
}
