// Package render formats sheets and header checks for the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/javajack/casecells"
	"github.com/mattn/go-runewidth"
)

// DefaultCellWidth is the display width cells are truncated to.
const DefaultCellWidth = 80

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Truncate shortens s to width display cells, counting wide CJK runes as two.
// Line breaks are flattened first.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Sheet renders the header and up to maxRows data rows of t as a bordered
// table. Header cells are labelled with their column letter and resolved
// role. maxRows < 0 renders every row.
func Sheet(t *casecells.Table, kw casecells.Keywords, maxRows, cellWidth int) string {
	cols, _ := casecells.ResolveColumns(t.Header, kw)
	roles := casecells.ColumnRoles(cols)
	width := t.Width()

	headers := make([]string, 0, width+1)
	headers = append(headers, "row")
	for c := 0; c < width; c++ {
		var h string
		if c < len(t.Header) {
			h = t.Header[c]
		}
		label := casecells.ColToName(c) + " " + Truncate(h, cellWidth)
		if role, ok := roles[c]; ok {
			label += "\n[" + role + "]"
		}
		headers = append(headers, label)
	}

	n := t.Len()
	if maxRows >= 0 && maxRows < n {
		n = maxRows
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, width+1)
		row = append(row, strconv.Itoa(casecells.SheetRow(i)))
		for c := 0; c < width; c++ {
			row = append(row, Truncate(t.Rows[i].Value(c), cellWidth))
		}
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d rows, %d columns", t.Sheet, t.Len(), width)))
	b.WriteByte('\n')
	b.WriteString(tbl.String())
	b.WriteByte('\n')
	if rest := t.Len() - n; rest > 0 {
		fmt.Fprintf(&b, "… %d more rows\n", rest)
	}
	return b.String()
}

// Issues renders header check results, one per line, errors first.
func Issues(issues []casecells.ValidationIssue) string {
	if len(issues) == 0 {
		return okStyle.Render("header OK") + "\n"
	}
	var b strings.Builder
	for _, sev := range []casecells.Severity{casecells.SeverityError, casecells.SeverityWarning} {
		style := warnStyle
		if sev == casecells.SeverityError {
			style = errorStyle
		}
		for _, is := range issues {
			if is.Severity == sev {
				b.WriteString(style.Render(is.String()))
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
