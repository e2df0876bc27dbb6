package casecells

import "strings"

// Table is the in-memory form of a test-case sheet. Header holds sheet row 1;
// Rows holds every record below it in sheet order.
type Table struct {
	Sheet  string
	Header []string
	Rows   []Row
}

// Row is one record. Origin is the 0-based sheet row the record was read from,
// or -1 for rows that did not come from a sheet. Rows duplicated by a transform
// keep the Origin of the row they were copied from.
type Row struct {
	Cells  []string
	Origin int
}

// NewRow creates a Row with no sheet origin.
func NewRow(cells ...string) Row {
	return Row{Cells: cells, Origin: -1}
}

// Value returns the trimmed text at col, or "" when the cell is absent.
func (r Row) Value(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[col])
}

// Raw returns the untrimmed text at col.
func (r Row) Raw(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

// Set writes v at col, growing the row when needed. Negative columns are ignored.
func (r *Row) Set(col int, v string) {
	if col < 0 {
		return
	}
	for len(r.Cells) <= col {
		r.Cells = append(r.Cells, "")
	}
	r.Cells[col] = v
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	cells := make([]string, len(r.Cells))
	copy(cells, r.Cells)
	return Row{Cells: cells, Origin: r.Origin}
}

// Width returns the number of columns spanned by the header and the widest row.
func (t *Table) Width() int {
	w := len(t.Header)
	for _, r := range t.Rows {
		if len(r.Cells) > w {
			w = len(r.Cells)
		}
	}
	return w
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Sheet:  t.Sheet,
		Header: append([]string(nil), t.Header...),
		Rows:   make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Column returns the trimmed values of col for every data row.
func (t *Table) Column(col int) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Value(col)
	}
	return out
}

// SheetRow converts a data row index to the 1-based sheet row number.
func SheetRow(dataRow int) int {
	return dataRow + 2
}
