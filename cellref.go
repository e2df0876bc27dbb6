package casecells

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef represents a single cell position in a worksheet.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Sheet1!B5", or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		cellPart = s[idx+1:]
	}

	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(cellPart, "$", ""))
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Sheet: sheet, Row: row - 1, Col: col - 1}, nil
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	name := c.CellName()
	if c.Sheet != "" {
		return c.Sheet + "!" + name
	}
	return name
}

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return fmt.Sprintf("%s%d", ColToName(c.Col), c.Row+1)
}

// ColToName converts a 0-based column index to a column name: 0→"A",
// 26→"AA". Out-of-range indexes give "".
func ColToName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return ""
	}
	return name
}

// NameToCol converts a column name to a 0-based column index: "A"→0, "aa"→26.
func NameToCol(name string) (int, error) {
	col, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, err
	}
	return col - 1, nil
}

// AreaRef represents a rectangular area defined by two cell references.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// String formats the AreaRef as "A1:C5", prefixed with the sheet when set.
func (a AreaRef) String() string {
	if a.First.Sheet != "" && a.First.Sheet == a.Last.Sheet {
		return a.First.Sheet + "!" + a.First.CellName() + ":" + a.Last.CellName()
	}
	return a.First.String() + ":" + a.Last.String()
}

// SafeSheetName sanitizes a string for use as an Excel sheet name.
// It replaces forbidden characters ([]*?/\:) with underscore and truncates to 31 chars.
func SafeSheetName(name string) string {
	forbidden := []rune{'/', '\\', ':', '*', '?', '[', ']'}
	runes := []rune(name)
	for i, r := range runes {
		for _, f := range forbidden {
			if r == f {
				runes[i] = '_'
				break
			}
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	if len(runes) == 0 {
		return "Sheet1"
	}
	return string(runes)
}
