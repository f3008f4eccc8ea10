// Package recon implements the reconciliation core: pairing rows of a query
// ledger (orders) with rows of a treasury ledger (receipts) that plausibly
// describe the same payment.
//
// A pair is eligible when the trimmed names are exactly equal and the
// absolute amount difference is within a caller-supplied tolerance, computed
// with exact decimal arithmetic. Eligible pairs are resolved one-to-one by a
// greedy walk over candidates sorted by (amount difference, order time,
// original indices). The greedy walk is a deliberate approximation: it does
// not minimize the total amount difference the way an assignment algorithm
// would, it only prefers the locally closest pair at each step.
//
// The result is lossless: every input row appears in exactly one output row,
// tagged matched, query_only or treasury_only.
package recon

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/treasurymatch/treasury-match/internal/domain/table"
)

// Reconcile runs the three stages (normalization, candidate selection, report
// assembly) over two tables and returns the complete report.
//
// Schema and configuration problems are returned before any matching runs;
// per-cell parse problems never abort the run, they become absent values and
// are counted in the report's ParseStats. A table with zero rows is a normal
// degenerate case, not an error.
func Reconcile(query, treasury *table.Table, opts Options) (*Report, error) {
	qb, tb, err := opts.bind(query, treasury)
	if err != nil {
		return nil, err
	}

	var stats ParseStats
	qrecs := buildQueryRecords(query, qb, &stats)
	trecs := buildTreasuryRecords(treasury, tb, &stats)

	cands := generateCandidates(qrecs, trecs, opts.Tolerance)
	sortCandidates(cands)
	matches := selectMatches(cands, len(qrecs), len(trecs))

	return assembleReport(qrecs, trecs, matches, stats), nil
}

// bind validates the options against both tables and resolves column names to
// positions.
func (o Options) bind(query, treasury *table.Table) (binding, binding, error) {
	var none binding
	if o.Tolerance.IsNegative() {
		return none, none, &ConfigError{Field: "tolerance", Reason: "must be non-negative, got " + o.Tolerance.String()}
	}
	if o.QueryName != "" && o.QueryName == o.QueryAmount {
		return none, none, &ConfigError{Field: "queryAmount", Reason: "name and amount roles bound to the same column " + o.QueryName}
	}
	if o.TreasuryName != "" && o.TreasuryName == o.TreasuryAmount {
		return none, none, &ConfigError{Field: "treasuryAmount", Reason: "name and amount roles bound to the same column " + o.TreasuryName}
	}

	qb, err := resolve(query, SideQuery, o.QueryName, o.QueryAmount, o.QueryDate, true)
	if err != nil {
		return none, none, err
	}
	tb, err := resolve(treasury, SideTreasury, o.TreasuryName, o.TreasuryAmount, o.TreasuryDate, false)
	if err != nil {
		return none, none, err
	}
	return qb, tb, nil
}

func resolve(tbl *table.Table, side Side, name, amount, date string, dateRequired bool) (binding, error) {
	b := binding{date: -1}
	var err error
	if b.name, err = resolveColumn(tbl, side, "name", name); err != nil {
		return b, err
	}
	if b.amount, err = resolveColumn(tbl, side, "amount", amount); err != nil {
		return b, err
	}
	if date == "" && !dateRequired {
		return b, nil
	}
	if b.date, err = resolveColumn(tbl, side, "date", date); err != nil {
		return b, err
	}
	return b, nil
}

func resolveColumn(tbl *table.Table, side Side, role, name string) (int, error) {
	if name == "" {
		return 0, &ConfigError{Field: string(side) + " " + role + " column", Reason: "not configured"}
	}
	idx, ok := tbl.ColumnIndex(name)
	if !ok {
		return 0, &SchemaError{Side: side, Column: name}
	}
	return idx, nil
}

// generateCandidates performs the name equi-join and tolerance filter. The
// smaller side is indexed by name so the cost tracks same-name collisions
// rather than the full cross product. Rows with a blank name or an absent
// amount never form candidates.
func generateCandidates(qrecs []QueryRecord, trecs []TreasuryRecord, tolerance decimal.Decimal) []candidate {
	var cands []candidate
	if len(trecs) <= len(qrecs) {
		byName := make(map[string][]int, len(trecs))
		for i, t := range trecs {
			if t.Name == "" || !t.Amount.Valid {
				continue
			}
			byName[t.Name] = append(byName[t.Name], i)
		}
		for _, q := range qrecs {
			if q.Name == "" || !q.Amount.Valid {
				continue
			}
			for _, ti := range byName[q.Name] {
				if c, ok := pair(q, trecs[ti], tolerance); ok {
					cands = append(cands, c)
				}
			}
		}
		return cands
	}

	byName := make(map[string][]int, len(qrecs))
	for i, q := range qrecs {
		if q.Name == "" || !q.Amount.Valid {
			continue
		}
		byName[q.Name] = append(byName[q.Name], i)
	}
	for _, t := range trecs {
		if t.Name == "" || !t.Amount.Valid {
			continue
		}
		for _, qi := range byName[t.Name] {
			if c, ok := pair(qrecs[qi], t, tolerance); ok {
				cands = append(cands, c)
			}
		}
	}
	return cands
}

func pair(q QueryRecord, t TreasuryRecord, tolerance decimal.Decimal) (candidate, bool) {
	diff := q.Amount.Decimal.Sub(t.Amount.Decimal).Abs()
	if diff.Cmp(tolerance) > 0 {
		return candidate{}, false
	}
	return candidate{
		QIndex:    q.Index,
		TIndex:    t.Index,
		Diff:      diff,
		OrderTime: q.OrderTime,
	}, true
}

// sortCandidates orders by (amountDiff asc, orderTime asc with absent last,
// qIndex, tIndex). The composite key is total, so the order never depends on
// map iteration or input arrangement.
func sortCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if c := a.Diff.Cmp(b.Diff); c != 0 {
			return c < 0
		}
		if a.OrderTime.Valid != b.OrderTime.Valid {
			return a.OrderTime.Valid
		}
		if a.OrderTime.Valid && !a.OrderTime.Time.Equal(b.OrderTime.Time) {
			return a.OrderTime.Time.Before(b.OrderTime.Time)
		}
		if a.QIndex != b.QIndex {
			return a.QIndex < b.QIndex
		}
		return a.TIndex < b.TIndex
	})
}

// selectMatches walks sorted candidates and accepts each one whose query row
// and treasury row are both still unconsumed.
func selectMatches(cands []candidate, numQuery, numTreasury int) []Match {
	qUsed := make([]bool, numQuery)
	tUsed := make([]bool, numTreasury)
	matches := make([]Match, 0, min(numQuery, numTreasury))
	for _, c := range cands {
		if qUsed[c.QIndex] || tUsed[c.TIndex] {
			continue
		}
		qUsed[c.QIndex] = true
		tUsed[c.TIndex] = true
		matches = append(matches, Match{QIndex: c.QIndex, TIndex: c.TIndex, Diff: c.Diff})
	}
	return matches
}
