package casecells

import "strings"

// MergeRegion is a vertical run of identical cells in one column. Rows are
// data row indices (0 = first row below the header), both inclusive.
type MergeRegion struct {
	Col      int
	FirstRow int
	LastRow  int
}

// Area returns the sheet range covered by the region.
func (m MergeRegion) Area(sheet string) AreaRef {
	return AreaRef{
		First: NewCellRef(sheet, SheetRow(m.FirstRow)-1, m.Col),
		Last:  NewCellRef(sheet, SheetRow(m.LastRow)-1, m.Col),
	}
}

// SplitStats summarizes one run of the split transform.
type SplitStats struct {
	Expanded     int // rows that held more than one segment
	Inserted     int // rows added below expanded rows
	Stripped     int // step/result cells that lost their leading delimiter
	Trimmed      int // trailing blank rows removed
	MergeColumns []int
	Regions      []MergeRegion
	RowHeight    float64
}

// SplitSegments cuts content into delimiter-led segments. Each segment starts
// at a delimiter and runs to the next one or the end of the text; text before
// the first delimiter is not part of any segment. Content without a delimiter
// yields no segments.
//
//	SplitSegments("#a#b", "#") → ["#a", "#b"]
func SplitSegments(content, delim string) []string {
	content = strings.TrimSpace(content)
	if content == "" || delim == "" {
		return nil
	}
	start := strings.Index(content, delim)
	if start < 0 {
		return nil
	}

	var parts []string
	for {
		next := strings.Index(content[start+len(delim):], delim)
		if next < 0 {
			parts = append(parts, content[start:])
			return parts
		}
		next += start + len(delim)
		parts = append(parts, content[start:next])
		start = next
	}
}

// Split expands every row whose step or expected result holds several
// segments into one row per segment, then strips the leading delimiter from
// every step and expected result.
//
// For a row with k = max(step segments, result segments) > 1 the row keeps
// segment 0 of each side and k-1 copies follow it, each carrying the next
// segment or nothing once that side has run out. A side without any segment
// keeps its text on the first row only.
//
// Trailing blank rows are dropped. The returned stats carry the merge regions
// for the hierarchy, case name and precondition columns and the row height to
// apply when the table is written back. The input table is not modified.
func Split(t *Table, cols Columns, opts ...Option) (*Table, SplitStats) {
	o := buildOptions(opts)
	delim := o.delimiter
	stats := SplitStats{RowHeight: o.rowHeight}

	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		steps := SplitSegments(r.Value(cols.StepDescription), delim)
		results := SplitSegments(r.Value(cols.ExpectedResult), delim)
		k := max(len(steps), len(results))
		if k <= 1 {
			rows = append(rows, r.Clone())
			continue
		}

		stats.Expanded++
		stats.Inserted += k - 1
		for i := 0; i < k; i++ {
			row := r.Clone()
			if i > 0 || len(steps) > 0 {
				row.Set(cols.StepDescription, segmentAt(steps, i))
			}
			if i > 0 || len(results) > 0 {
				row.Set(cols.ExpectedResult, segmentAt(results, i))
			}
			rows = append(rows, row)
		}
	}

	for i := range rows {
		for _, col := range []int{cols.StepDescription, cols.ExpectedResult} {
			if v := rows[i].Raw(col); strings.HasPrefix(v, delim) {
				rows[i].Set(col, v[len(delim):])
				stats.Stripped++
			}
		}
	}

	rows, stats.Trimmed = TrimTrailingBlankRows(rows)

	out := &Table{
		Sheet:  t.Sheet,
		Header: append([]string(nil), t.Header...),
		Rows:   rows,
	}

	stats.MergeColumns = mergeColumns(cols)
	for _, col := range stats.MergeColumns {
		for _, run := range MergeRuns(out.Column(col)) {
			stats.Regions = append(stats.Regions, MergeRegion{Col: col, FirstRow: run[0], LastRow: run[1]})
		}
	}
	return out, stats
}

// ClearCovered blanks every cell of each region except its first, leaving
// the table as a spreadsheet shows a merged range.
func ClearCovered(t *Table, regions []MergeRegion) {
	for _, reg := range regions {
		for r := reg.FirstRow + 1; r <= reg.LastRow && r < len(t.Rows); r++ {
			t.Rows[r].Set(reg.Col, "")
		}
	}
}

func segmentAt(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return ""
}

// mergeColumns lists the module columns, the case name column and the
// precondition column when resolved, without duplicates.
func mergeColumns(cols Columns) []int {
	seen := make(map[int]bool)
	var out []int
	candidates := append(append([]int(nil), cols.Modules...), cols.CaseName, cols.Precondition)
	for _, c := range candidates {
		if c < 0 || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// MergeRuns returns the [first, last] index pairs of every run of two or more
// consecutive equal, non-empty values. Values are compared after trimming.
func MergeRuns(values []string) [][2]int {
	var runs [][2]int
	start := 0
	for i := 1; i <= len(values); i++ {
		if i < len(values) {
			cur := strings.TrimSpace(values[i])
			if cur != "" && cur == strings.TrimSpace(values[start]) {
				continue
			}
		}
		if i-start >= 2 && strings.TrimSpace(values[start]) != "" {
			runs = append(runs, [2]int{start, i - 1})
		}
		start = i
	}
	return runs
}
