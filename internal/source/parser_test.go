package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/runway/internal/model"
)

// writeLedger creates a temp JSONL file and returns a DiscoveredFile for it.
func writeLedger(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Name: "ledger"}
}

func TestParseFile_Movements(t *testing.T) {
	df := writeLedger(t,
		`{"type":"movement","date":"2023-07-01","description":"Customer Payment","amount":9000,"direction":"inflow"}`,
		``,
		`{"type":"movement","date":"2023-07-02","description":"Rent","amount":5800,"direction":"OUTFLOW","category":"Operations"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Movements) != 2 {
		t.Fatalf("Movements = %d, want 2", len(result.Movements))
	}
	m := result.Movements[1]
	if m.Direction != model.Outflow {
		t.Errorf("Direction = %q, want outflow", m.Direction)
	}
	if m.Signed() != -5800 {
		t.Errorf("Signed = %v, want -5800", m.Signed())
	}
	if m.Date.Format(DateLayout) != "2023-07-02" {
		t.Errorf("Date = %v", m.Date)
	}
	if m.ID == "" {
		t.Error("ID not generated")
	}
}

func TestParseFile_StableIDs(t *testing.T) {
	df := writeLedger(t, `{"type":"movement","date":"2023-07-01","amount":1,"direction":"inflow"}`)
	a := ParseFile(df)
	b := ParseFile(df)
	if a.Movements[0].ID != b.Movements[0].ID {
		t.Errorf("IDs differ across parses: %s vs %s", a.Movements[0].ID, b.Movements[0].ID)
	}
}

func TestParseFile_MalformedLines(t *testing.T) {
	df := writeLedger(t,
		`not json`,
		`{"type":"movement","date":"July 1","amount":1,"direction":"inflow"}`,
		`{"type":"movement","date":"2023-07-01","amount":0,"direction":"inflow"}`,
		`{"type":"movement","date":"2023-07-01","amount":10,"direction":"sideways"}`,
		`{"type":"alert","title":"Heads up","severity":"critical"}`,
		`{"type":"expense","month":"Jul","amount":100}`,
		`{"type":"budget","amount":100}`,
		`{"type":"alert","title":"Heads up","severity":"Low"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors() != 6 {
		t.Fatalf("ParseErrors = %d, want 6: %v", result.ParseErrors(), result.Errors)
	}
	if result.Errors[0].Line != 1 || result.Errors[5].Line != 6 {
		t.Errorf("error lines = %d..%d, want 1..6", result.Errors[0].Line, result.Errors[5].Line)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if len(result.Alerts) != 1 || result.Alerts[0].Severity != model.SeverityLow {
		t.Errorf("Alerts = %+v, want one low alert", result.Alerts)
	}
}

func TestParseFile_Expenses(t *testing.T) {
	df := writeLedger(t,
		`{"type":"expense","month":"Jul","category":"Payroll","amount":49000}`,
		`{"type":"expense","month":"Jul","category":"SaaS","amount":18500}`,
	)
	result := ParseFile(df)
	if len(result.Expenses) != 2 {
		t.Fatalf("Expenses = %d, want 2", len(result.Expenses))
	}
	if result.Expenses[0].Category != "Payroll" || result.Expenses[0].Amount != 49000 {
		t.Errorf("Expenses[0] = %+v", result.Expenses[0])
	}
}

func TestParseFile_Missing(t *testing.T) {
	result := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.jsonl")})
	if result.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.jsonl", "notes.txt", ".hidden/c.jsonl", "sub/d.jsonl"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "a,b,d" {
		t.Fatalf("files = %s, want a,b,d", got)
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || files != nil {
		t.Fatalf("ScanDir(missing) = %v, %v; want nil, nil", files, err)
	}
}

func TestSampleIsFresh(t *testing.T) {
	a := Sample()
	a.CurrentExpenses["Payroll"] = 1
	a.Movements[0].Amount = 1

	b := Sample()
	if b.CurrentExpenses["Payroll"] != 45000 {
		t.Errorf("Payroll = %v, want 45000", b.CurrentExpenses["Payroll"])
	}
	if b.Movements[0].Amount != 12500 {
		t.Errorf("Movements[0].Amount = %v, want 12500", b.Movements[0].Amount)
	}
}

func TestSampleFundingTotal(t *testing.T) {
	total := 0
	for _, f := range Sample().Factors {
		total += f.Score
	}
	if total != 73 {
		t.Fatalf("factor total = %d, want 73", total)
	}
}
