// Package loader turns uploaded spreadsheet and CSV bytes into the in-memory
// tables the reconciliation core consumes. The core itself never parses file
// formats.
//
// Format detection follows the upload path of the treasury tooling this was
// modeled on: try modern Excel first, then legacy .xls, then CSV. A file
// extension, when present, short-circuits the sniffing.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/treasurymatch/treasury-match/internal/domain/table"
)

// ErrNoSheets is returned when a workbook parses but contains nothing usable.
var ErrNoSheets = errors.New("workbook contains no sheets")

// Sheet is one named table inside a workbook. CSV files yield a single sheet.
type Sheet struct {
	Name  string
	Table *table.Table
}

// Workbook is a parsed upload: an ordered list of sheets.
type Workbook struct {
	sheets []Sheet
}

// Open parses workbook bytes. The filename is used only for extension-based
// format selection; pass an empty string to force sniffing.
func Open(data []byte, filename string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return openXLSX(data)
	case ".xls":
		return openXLS(data)
	case ".csv":
		return openCSV(data)
	}

	if wb, err := openXLSX(data); err == nil {
		return wb, nil
	}
	if wb, err := openXLS(data); err == nil {
		return wb, nil
	}
	wb, err := openCSV(data)
	if err != nil {
		return nil, fmt.Errorf("file is not a readable xlsx, xls or csv: %w", err)
	}
	return wb, nil
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheets returns all sheets in workbook order.
func (w *Workbook) Sheets() []Sheet {
	return w.sheets
}

// Table returns the named sheet's table.
func (w *Workbook) Table(name string) (*table.Table, bool) {
	for _, s := range w.sheets {
		if s.Name == name {
			return s.Table, true
		}
	}
	return nil, false
}

func openXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.sheets = append(wb.sheets, Sheet{Name: name, Table: rowsToTable(rows)})
	}
	if len(wb.sheets) == 0 {
		return nil, ErrNoSheets
	}
	return wb, nil
}

func openXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrNoSheets
	}

	wb := &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		wb.sheets = append(wb.sheets, Sheet{Name: sheet.Name, Table: rowsToTable(rows)})
	}
	if len(wb.sheets) == 0 {
		return nil, ErrNoSheets
	}
	return wb, nil
}

func openCSV(data []byte) (*Workbook, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return &Workbook{sheets: []Sheet{{Name: "Sheet1", Table: rowsToTable(rows)}}}, nil
}

// rowsToTable treats the first row as the header, as spreadsheet exports in
// this domain conventionally do, and drops rows that are entirely blank.
func rowsToTable(rows [][]string) *table.Table {
	if len(rows) == 0 {
		return table.New(nil, nil)
	}
	header := rows[0]
	var data [][]string
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		data = append(data, row)
	}
	return table.New(header, data)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
