package source

// RawRecord is one line of a ledger JSONL file. The Type field selects
// which of the remaining fields are meaningful.
//
//	{"type":"movement","date":"2023-06-15","description":"Customer Payment","amount":12500,"direction":"inflow"}
//	{"type":"alert","title":"Payment Delayed","description":"...","severity":"medium"}
//	{"type":"expense","month":"Jun","category":"Payroll","amount":45000}
type RawRecord struct {
	Type string `json:"type"`

	ID          string  `json:"id,omitempty"`
	Date        string  `json:"date,omitempty"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Category    string  `json:"category,omitempty"`

	Title    string `json:"title,omitempty"`
	Severity string `json:"severity,omitempty"`

	Month string `json:"month,omitempty"`
}

// Record types understood by the parser.
const (
	TypeMovement = "movement"
	TypeAlert    = "alert"
	TypeExpense  = "expense"
)

// DateLayout is the date format used in ledger files.
const DateLayout = "2006-01-02"

// DiscoveredFile is a ledger file found during directory scanning.
type DiscoveredFile struct {
	Path string
	// Name is the file name without the .jsonl extension.
	Name string
}
