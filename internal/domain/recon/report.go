package recon

import (
	"sort"

	"github.com/shopspring/decimal"
)

// assembleReport merges matched pairs with leftover rows from both sides into
// one table, then applies the final stable sort by order time with absent
// times last. Treasury-only rows have no order time, so they always sort to
// the end.
func assembleReport(qrecs []QueryRecord, trecs []TreasuryRecord, matches []Match, stats ParseStats) *Report {
	qMatched := make([]bool, len(qrecs))
	tMatched := make([]bool, len(trecs))

	rows := make([]Row, 0, len(qrecs)+len(trecs)-len(matches))
	for _, m := range matches {
		q := qrecs[m.QIndex]
		t := trecs[m.TIndex]
		qMatched[m.QIndex] = true
		tMatched[m.TIndex] = true

		// Display convenience: a matched receipt with no captured payer name
		// shows the query side's name. This never re-validates the match.
		treasuryName := StringOf(t.Name)
		if t.Name == "" {
			treasuryName = StringOf(q.Name)
		}

		rows = append(rows, Row{
			Source:          SourceMatched,
			QueryIndex:      q.Index,
			TreasuryIndex:   t.Index,
			QueryName:       StringOf(q.Name),
			QueryAmount:     q.Amount,
			OrderTime:       q.OrderTime,
			TreasuryName:    treasuryName,
			TreasuryAmount:  t.Amount,
			ReceiptDate:     t.ReceiptDate,
			AmountDiff:      decimal.NullDecimal{Decimal: m.Diff, Valid: true},
			WithinTolerance: true,
		})
	}

	for i, q := range qrecs {
		if qMatched[i] {
			continue
		}
		rows = append(rows, Row{
			Source:        SourceQueryOnly,
			QueryIndex:    q.Index,
			TreasuryIndex: -1,
			QueryName:     StringOf(q.Name),
			QueryAmount:   q.Amount,
			OrderTime:     q.OrderTime,
		})
	}

	for i, t := range trecs {
		if tMatched[i] {
			continue
		}
		rows = append(rows, Row{
			Source:         SourceTreasuryOnly,
			QueryIndex:     -1,
			TreasuryIndex:  t.Index,
			TreasuryName:   StringOf(t.Name),
			TreasuryAmount: t.Amount,
			ReceiptDate:    t.ReceiptDate,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OrderTime.Before(rows[j].OrderTime)
	})

	return &Report{
		Rows:         rows,
		Matched:      len(matches),
		QueryOnly:    len(qrecs) - len(matches),
		TreasuryOnly: len(trecs) - len(matches),
		ParseStats:   stats,
	}
}
