package recon

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasurymatch/treasury-match/internal/domain/table"
)

// NormalizeName trims surrounding whitespace. Names are compared with exact
// string equality afterwards; no case folding, no transliteration.
func NormalizeName(raw string) string {
	return strings.TrimSpace(raw)
}

// ParseAmount coerces free-form amount text into an exact decimal. Thousands
// separators and surrounding whitespace are stripped first. Blank cells and
// malformed cells both yield an absent value; failed distinguishes them so
// malformed cells can be counted.
func ParseAmount(raw string) (value decimal.NullDecimal, failed bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return decimal.NullDecimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, true
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, false
}

// timeLayouts are tried in order. ISO forms first, then slashed forms with
// month-first ahead of day-first, matching how the upstream spreadsheets were
// produced.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02-Jan-2006",
	"02-Jan-06",
}

// Excel serial dates outside this range are treated as plain numbers, not
// timestamps. 2958465 is 9999-12-31.
const maxExcelSerial = 2958465

// ParseTime parses a timestamp permissively: the layout list first, then an
// Excel serial-number fallback (days since the 1899-12-30 epoch). Blank cells
// are absent without being failures.
func ParseTime(raw string) (value NullTime, failed bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NullTime{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOf(t.UTC()), false
		}
	}
	if t, ok := parseExcelSerial(s); ok {
		return TimeOf(t), false
	}
	return NullTime{}, true
}

func parseExcelSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f > maxExcelSerial {
		return time.Time{}, false
	}
	days := int(f)
	frac := f - float64(days)
	// The 1899-12-30 epoch absorbs Excel's nonexistent 1900-02-29 for every
	// serial from March 1900 on.
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	t := base.AddDate(0, 0, days).Add(time.Duration(frac * float64(24*time.Hour)))
	return t, true
}

// binding holds resolved column positions for one table. date is -1 when the
// table has no configured date column.
type binding struct {
	name   int
	amount int
	date   int
}

func buildQueryRecords(tbl *table.Table, b binding, stats *ParseStats) []QueryRecord {
	records := make([]QueryRecord, 0, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		amount, failed := ParseAmount(tbl.Cell(i, b.amount))
		if failed {
			stats.QueryAmountFailures++
		}
		orderTime, failed := ParseTime(tbl.Cell(i, b.date))
		if failed {
			stats.QueryDateFailures++
		}
		records = append(records, QueryRecord{
			Index:     i,
			Name:      NormalizeName(tbl.Cell(i, b.name)),
			Amount:    amount,
			OrderTime: orderTime,
		})
	}
	return records
}

func buildTreasuryRecords(tbl *table.Table, b binding, stats *ParseStats) []TreasuryRecord {
	records := make([]TreasuryRecord, 0, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		amount, failed := ParseAmount(tbl.Cell(i, b.amount))
		if failed {
			stats.TreasuryAmountFailures++
		}
		var receiptDate NullTime
		if b.date >= 0 {
			date, failed := ParseTime(tbl.Cell(i, b.date))
			if failed {
				stats.TreasuryDateFailures++
			}
			receiptDate = date
		}
		records = append(records, TreasuryRecord{
			Index:       i,
			Name:        NormalizeName(tbl.Cell(i, b.name)),
			Amount:      amount,
			ReceiptDate: receiptDate,
		})
	}
	return records
}
