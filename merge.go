package casecells

import "strings"

// MergeStats summarizes one run of the merge transform.
type MergeStats struct {
	Prefixed    int   // step/result cells rewritten by the prefix pass
	LeadRows    []int // data row index of every case-name row, before hygiene
	Merged      int   // groups that absorbed more than one step unit
	Cleared     int   // continuation rows whose step/result were cleared
	Deleted     int   // blank rows removed by hygiene
	NoCaseNames bool  // no row had a case name; grouping was skipped
}

// PrefixDelimiter makes v start with delim. An absent value becomes delim
// alone. Applying it to an already prefixed value returns the value unchanged.
func PrefixDelimiter(v, delim string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return delim
	}
	if strings.HasPrefix(v, delim) {
		return v
	}
	return delim + v
}

// Merge folds each case's continuation rows into its lead row.
//
// Every step and expected result is first prefixed with the delimiter so the
// folded text can be split again later. A group runs from a row with a case
// name through the rows below it that have none. The lead row receives the
// group's step units concatenated in row order; continuation rows are cleared
// and any row left entirely blank is dropped.
//
// The input table is not modified.
func Merge(t *Table, cols Columns, opts ...Option) (*Table, MergeStats) {
	o := buildOptions(opts)
	delim := o.delimiter
	var stats MergeStats

	rows := make([]Row, len(t.Rows))
	hasUnit := make([]bool, len(t.Rows))
	for i, r := range t.Rows {
		row := r.Clone()
		step, result := r.Value(cols.StepDescription), r.Value(cols.ExpectedResult)
		hasUnit[i] = step != "" || result != ""

		for _, c := range []struct {
			col int
			v   string
		}{{cols.StepDescription, step}, {cols.ExpectedResult, result}} {
			prefixed := PrefixDelimiter(c.v, delim)
			if r.Raw(c.col) != prefixed {
				stats.Prefixed++
			}
			row.Set(c.col, prefixed)
		}
		rows[i] = row
	}

	for i, r := range rows {
		if r.Value(cols.CaseName) != "" {
			stats.LeadRows = append(stats.LeadRows, i)
		}
	}
	if len(stats.LeadRows) == 0 {
		stats.NoCaseNames = true
	}

	for g, lead := range stats.LeadRows {
		end := len(rows)
		if g+1 < len(stats.LeadRows) {
			end = stats.LeadRows[g+1]
		}

		var steps, results []string
		for i := lead; i < end; i++ {
			if !hasUnit[i] {
				continue
			}
			steps = append(steps, rows[i].Value(cols.StepDescription))
			results = append(results, rows[i].Value(cols.ExpectedResult))
		}
		if len(steps) > 0 {
			rows[lead].Set(cols.StepDescription, strings.Join(steps, ""))
			rows[lead].Set(cols.ExpectedResult, strings.Join(results, ""))
		}
		if len(steps) > 1 {
			stats.Merged++
		}

		for i := lead + 1; i < end; i++ {
			rows[i].Set(cols.StepDescription, "")
			rows[i].Set(cols.ExpectedResult, "")
			stats.Cleared++
		}
	}

	rows, stats.Deleted = DropBlankRows(rows)

	return &Table{
		Sheet:  t.Sheet,
		Header: append([]string(nil), t.Header...),
		Rows:   rows,
	}, stats
}
