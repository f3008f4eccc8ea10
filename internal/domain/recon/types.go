package recon

import (
	"github.com/shopspring/decimal"
)

// Options binds column names in the two input tables to their matching roles
// and sets the amount tolerance. Column names are caller-supplied identifiers
// into each table's own schema; any additional columns are ignored.
type Options struct {
	QueryName      string
	QueryAmount    string
	QueryDate      string
	TreasuryName   string
	TreasuryAmount string
	// TreasuryDate is optional; leave empty when the treasury table carries
	// no receipt-date column.
	TreasuryDate string
	// Tolerance is the maximum absolute amount difference for two records to
	// be considered the same payment. Zero requires exact amount equality.
	Tolerance decimal.Decimal
}

// QueryRecord is one normalized row from the query ledger. Index is the
// original row position, stable for the duration of one run.
type QueryRecord struct {
	Index     int
	Name      string
	Amount    decimal.NullDecimal
	OrderTime NullTime
}

// TreasuryRecord is one normalized row from the treasury ledger.
type TreasuryRecord struct {
	Index       int
	Name        string
	Amount      decimal.NullDecimal
	ReceiptDate NullTime
}

// candidate is an ephemeral (query, treasury) pair whose normalized names are
// equal and whose amount difference is within tolerance. Candidates exist
// only inside the selection stage.
type candidate struct {
	QIndex    int
	TIndex    int
	Diff      decimal.Decimal
	OrderTime NullTime
}

// Match is a candidate promoted to the final one-to-one pairing.
type Match struct {
	QIndex int
	TIndex int
	Diff   decimal.Decimal
}

// Source discriminates the three kinds of output rows.
type Source string

const (
	SourceMatched      Source = "matched"
	SourceQueryOnly    Source = "query_only"
	SourceTreasuryOnly Source = "treasury_only"
)

// Row is one reconciliation output row. Fields of the missing side are
// absent, never zero or empty-string stand-ins; presentation renders absent
// values as blank.
type Row struct {
	Source        Source
	QueryIndex    int // -1 for treasury_only rows
	TreasuryIndex int // -1 for query_only rows

	QueryName      NullString
	QueryAmount    decimal.NullDecimal
	OrderTime      NullTime
	TreasuryName   NullString
	TreasuryAmount decimal.NullDecimal
	ReceiptDate    NullTime

	// AmountDiff is the exact absolute amount difference, present only on
	// matched rows.
	AmountDiff      decimal.NullDecimal
	WithinTolerance bool
}

// ParseStats counts cells that were present but failed to parse. Parse
// failures downgrade to absent values and never abort a run; the counts are
// reported so callers can surface them.
type ParseStats struct {
	QueryAmountFailures    int
	QueryDateFailures      int
	TreasuryAmountFailures int
	TreasuryDateFailures   int
}

// Total returns the number of unparseable cells across both tables.
func (s ParseStats) Total() int {
	return s.QueryAmountFailures + s.QueryDateFailures +
		s.TreasuryAmountFailures + s.TreasuryDateFailures
}

// Report is the complete reconciliation result: every input row appears in
// exactly one output row.
type Report struct {
	Rows         []Row
	Matched      int
	QueryOnly    int
	TreasuryOnly int
	ParseStats   ParseStats
}

// TotalRows returns len(Rows); always |query| + |treasury| - |matched|.
func (r *Report) TotalRows() int {
	return len(r.Rows)
}
