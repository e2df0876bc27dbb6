package casecells

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // the transform will abort
	SeverityWarning                 // the transform may produce unexpected results
)

// Required roles per transform, in the order they are reported when missing.
var (
	MergeRequired = []Role{RoleCaseName, RoleStepDescription, RoleExpectedResult}
	SplitRequired = []Role{RoleStepDescription, RoleExpectedResult, RoleCaseName}
)

// ValidationIssue represents a single problem found in a header row.
type ValidationIssue struct {
	Severity Severity
	Column   int // 0-based, -1 when the issue is not tied to a column
	Message  string
}

// String formats the issue as "[ERROR] E: message" or "[WARN] -: message".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	col := "-"
	if v.Column >= 0 {
		col = ColToName(v.Column)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, col, v.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateHeader checks a header row against the keyword sets without
// touching any data. Missing required roles are errors; ambiguous keyword
// matches, roles sharing a column and duplicate header text are warnings.
func ValidateHeader(header []string, kw Keywords, required ...Role) []ValidationIssue {
	if kw == nil {
		kw = DefaultKeywords()
	}
	var issues []ValidationIssue

	if IsBlankRow(header) {
		return []ValidationIssue{{Severity: SeverityError, Column: -1, Message: "header row is empty"}}
	}

	cols, _ := ResolveColumns(header, kw)
	for _, role := range required {
		if cols.Index(role) < 0 {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Column:   -1,
				Message:  fmt.Sprintf("no column for %s (keywords %s)", role, strings.Join(kw[role], ", ")),
			})
		}
	}

	owner := make(map[int]Role)
	for _, role := range []Role{RoleCaseName, RoleStepDescription, RoleExpectedResult, RolePrecondition} {
		col := cols.Index(role)
		if col < 0 {
			continue
		}
		if prev, ok := owner[col]; ok {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Column:   col,
				Message:  fmt.Sprintf("%s and %s resolve to the same column %q", prev, role, header[col]),
			})
		} else {
			owner[col] = role
		}
		for other := col + 1; other < len(header); other++ {
			if FindColumn(header[other:other+1], kw[role]) == 0 {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Column:   other,
					Message:  fmt.Sprintf("%q also matches %s; column %s is used", header[other], role, ColToName(col)),
				})
			}
		}
	}

	if len(cols.Modules) == 0 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Column:   -1,
			Message:  "no module columns found",
		})
	}

	seen := make(map[string]int)
	for col, h := range header {
		text := normalizeHeader(h)
		if text == "" {
			continue
		}
		if first, ok := seen[text]; ok {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Column:   col,
				Message:  fmt.Sprintf("duplicate header %q (first at column %s)", h, ColToName(first)),
			})
			continue
		}
		seen[text] = col
	}
	return issues
}
