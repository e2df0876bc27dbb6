package casecells

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable overview of a table: its shape, every
// header with the role it resolves to, and up to maxRows data rows showing
// only non-empty cells. maxRows < 0 lists every row.
func Describe(t *Table, kw Keywords, maxRows int) string {
	var b strings.Builder
	cols, _ := ResolveColumns(t.Header, kw)
	roles := ColumnRoles(cols)

	fmt.Fprintf(&b, "Sheet: %s\n", t.Sheet)
	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", t.Len(), t.Width())

	b.WriteString("Header:\n")
	for col, h := range t.Header {
		fmt.Fprintf(&b, "  %s  %s", ColToName(col), h)
		if role, ok := roles[col]; ok {
			fmt.Fprintf(&b, "  [%s]", role)
		}
		b.WriteByte('\n')
	}

	n := t.Len()
	if maxRows >= 0 && maxRows < n {
		n = maxRows
	}
	if n > 0 {
		fmt.Fprintf(&b, "Rows 2-%d:\n", SheetRow(n-1))
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  row %d:", SheetRow(i))
		for col := range t.Rows[i].Cells {
			if v := t.Rows[i].Value(col); v != "" {
				fmt.Fprintf(&b, " %s=%q", ColToName(col), v)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ColumnRoles maps every resolved column to a short role label, e.g.
// "case name" or "module level 2".
func ColumnRoles(cols Columns) map[int]string {
	roles := make(map[int]string)
	for i, c := range cols.Modules {
		roles[c] = fmt.Sprintf("%s %d", RoleModuleLevel, i+1)
	}
	for _, role := range []Role{RolePrecondition, RoleExpectedResult, RoleStepDescription, RoleCaseName} {
		if c := cols.Index(role); c >= 0 {
			roles[c] = role.String()
		}
	}
	return roles
}
