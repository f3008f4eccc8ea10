// Package table provides the in-memory tabular snapshot consumed by the
// reconciliation engine.
//
// A Table is a header plus string cells, decoupled from whatever file format
// it was loaded from. The engine treats tables as read-only: output rows are
// always newly constructed, never written back into a caller's table.
package table

// Table holds one tabular input: an ordered header and row-major string cells.
type Table struct {
	columns []string
	rows    [][]string
}

// New builds a table from a header and rows. Ragged rows are padded with
// empty cells to the header width; cells beyond the header width are dropped.
func New(columns []string, rows [][]string) *Table {
	width := len(columns)
	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		normalized = append(normalized, cells)
	}
	return &Table{
		columns: append([]string(nil), columns...),
		rows:    normalized,
	}
}

// Columns returns a copy of the header in declaration order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// ColumnIndex returns the position of the named column. Duplicate headers
// resolve to the first occurrence.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Cell returns the cell at (row, col). Indices outside the table return an
// empty string rather than panicking; loaders may hand us sparse data.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	cells := t.rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// Row returns a copy of the cells of one row.
func (t *Table) Row(row int) []string {
	if row < 0 || row >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[row]...)
}
