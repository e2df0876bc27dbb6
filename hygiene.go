package casecells

import "strings"

// IsBlankRow reports whether every cell is empty or whitespace-only.
func IsBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DropBlankRows returns rows without any blank row, and how many were dropped.
func DropBlankRows(rows []Row) ([]Row, int) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !IsBlankRow(r.Cells) {
			out = append(out, r)
		}
	}
	return out, len(rows) - len(out)
}

// TrimTrailingBlankRows drops the blank rows after the last non-blank one.
func TrimTrailingBlankRows(rows []Row) ([]Row, int) {
	last := len(rows) - 1
	for last >= 0 && IsBlankRow(rows[last].Cells) {
		last--
	}
	return rows[:last+1], len(rows) - (last + 1)
}
