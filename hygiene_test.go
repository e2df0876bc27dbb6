package casecells

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTable builds a table whose rows carry their sheet origin, as if read
// from a workbook.
func newTable(header []string, rows ...[]string) *Table {
	t := &Table{Sheet: "Sheet1", Header: header}
	for i, cells := range rows {
		t.Rows = append(t.Rows, Row{Cells: cells, Origin: i + 1})
	}
	return t
}

// cellsOf returns the cells of every row, for comparisons that ignore origins.
func cellsOf(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cells
	}
	return out
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, IsBlankRow(nil))
	assert.True(t, IsBlankRow([]string{"", "  ", "\t"}))
	assert.False(t, IsBlankRow([]string{"", "#"}))
}

func TestDropBlankRows(t *testing.T) {
	rows := []Row{
		NewRow("a"),
		NewRow("", " "),
		NewRow(),
		NewRow("", "b"),
		NewRow(""),
	}
	out, dropped := DropBlankRows(rows)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, [][]string{{"a"}, {"", "b"}}, cellsOf(out))
}

func TestTrimTrailingBlankRows(t *testing.T) {
	rows := []Row{
		NewRow("a"),
		NewRow(""),
		NewRow("b"),
		NewRow(" "),
		NewRow(),
	}
	out, trimmed := TrimTrailingBlankRows(rows)
	assert.Equal(t, 2, trimmed)
	// Interior blank rows stay.
	assert.Equal(t, [][]string{{"a"}, {""}, {"b"}}, cellsOf(out))

	out, trimmed = TrimTrailingBlankRows([]Row{NewRow(""), NewRow()})
	assert.Equal(t, 2, trimmed)
	assert.Empty(t, out)

	out, trimmed = TrimTrailingBlankRows(nil)
	assert.Equal(t, 0, trimmed)
	assert.Empty(t, out)
}
