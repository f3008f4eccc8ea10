// Package export serializes a reconciliation report for download. The core
// produces only in-memory rows; rendering absent values as blank happens
// here, at the presentation boundary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/treasurymatch/treasury-match/internal/domain/recon"
)

// timeFormat renders order times and receipt dates in exports.
const timeFormat = "2006-01-02 15:04:05"

// Headers is the output column order: query side, treasury side, match flag,
// receipt date.
var Headers = []string{
	"query_name",
	"query_amount",
	"order_time",
	"treasury_name",
	"treasury_amount",
	"matched",
	"receipt_date",
}

// utf8BOM keeps spreadsheet tools from misreading non-ASCII payer names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the report as UTF-8 CSV with a byte-order mark.
func WriteCSV(w io.Writer, report *recon.Report) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range report.Rows {
		if err := cw.Write(Cells(row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the report as a single-sheet workbook named "result".
func WriteXLSX(w io.Writer, report *recon.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "result"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range report.Rows {
		cells := Cells(row)
		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return f.Write(w)
}

// Cells renders one report row in the Headers order, absent values as blank.
func Cells(row recon.Row) []string {
	return []string{
		stringCell(row.QueryName),
		amountCell(row.QueryAmount),
		timeCell(row.OrderTime),
		stringCell(row.TreasuryName),
		amountCell(row.TreasuryAmount),
		fmt.Sprintf("%t", row.Source == recon.SourceMatched),
		timeCell(row.ReceiptDate),
	}
}

func stringCell(v recon.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func amountCell(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

func timeCell(v recon.NullTime) string {
	if !v.Valid {
		return ""
	}
	return v.Time.Format(timeFormat)
}
