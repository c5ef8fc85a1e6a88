package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
)

func baseline(t *testing.T) *scenario.Snapshot {
	t.Helper()
	snap, err := scenario.Compute(forecast.DefaultInput(), forecast.DefaultPreset)
	require.NoError(t, err)
	return snap
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, ".JSON": FormatJSON, " xlsx ": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)

	f, err := FormatForPath("/tmp/out/report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, FormatCSV, baseline(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"Current", "465700", "58200", "92500", "-34300", "465700.00"}, rows[1])
	assert.Equal(t, "Month 11", rows[12][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, FormatJSON, baseline(t)))

	var doc struct {
		RunwayText string           `json:"runway_text"`
		Preset     string           `json:"preset"`
		Points     []forecast.Point `json:"points"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "12+ months", doc.RunwayText)
	assert.Equal(t, "baseline", doc.Preset)
	assert.Len(t, doc.Points, 12)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, FormatXLSX, baseline(t)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Forecast", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Forecast")
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, "Current", rows[1][0])
	assert.Equal(t, "465700", rows[1][1])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	found := false
	for _, r := range summary {
		if len(r) == 2 && r[0] == "runway" {
			found = true
			assert.Equal(t, "12+ months", r[1])
		}
	}
	assert.True(t, found, "summary sheet has no runway row")
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New(nil).Write(&buf, Format("pdf"), baseline(t)))
	assert.Error(t, New(nil).Write(&buf, FormatCSV, nil))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "forecast.csv")
	require.NoError(t, New(nil).WriteFile(path, FormatCSV, baseline(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("period,cash_balance,revenue,expenses,net,raw_cash\n")))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}
