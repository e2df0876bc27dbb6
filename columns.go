package casecells

import (
	"strings"

	"golang.org/x/text/width"
)

// Role is the semantic meaning of a column, resolved from header text.
type Role int

const (
	RoleCaseName Role = iota
	RoleStepDescription
	RoleExpectedResult
	RolePrecondition
	RoleModuleLevel
)

// String returns a human-readable name for the Role.
func (r Role) String() string {
	switch r {
	case RoleCaseName:
		return "case name"
	case RoleStepDescription:
		return "step description"
	case RoleExpectedResult:
		return "expected result"
	case RolePrecondition:
		return "precondition"
	case RoleModuleLevel:
		return "module level"
	default:
		return "unknown"
	}
}

// Keywords maps a role to its header keywords in priority order.
type Keywords map[Role][]string

// DefaultModuleKeyword marks hierarchy columns such as "一级模块", "二级模块".
const DefaultModuleKeyword = "级模块"

// DefaultKeywords returns the keyword sets used when none are configured.
func DefaultKeywords() Keywords {
	return Keywords{
		RoleCaseName:        {"用例名称", "用例名", "名称"},
		RoleStepDescription: {"步骤描述", "步骤", "描述"},
		RoleExpectedResult:  {"预期结果", "结果", "预期"},
		RolePrecondition:    {"前置条件", "前置"},
		RoleModuleLevel:     {DefaultModuleKeyword},
	}
}

// Columns holds resolved 0-based column indices. Unresolved roles are -1.
type Columns struct {
	CaseName        int
	StepDescription int
	ExpectedResult  int
	Precondition    int
	Modules         []int // ModuleLevel(n) is Modules[n-1]
}

// Index returns the column resolved for role, or -1.
func (c Columns) Index(role Role) int {
	switch role {
	case RoleCaseName:
		return c.CaseName
	case RoleStepDescription:
		return c.StepDescription
	case RoleExpectedResult:
		return c.ExpectedResult
	case RolePrecondition:
		return c.Precondition
	case RoleModuleLevel:
		if len(c.Modules) > 0 {
			return c.Modules[0]
		}
	}
	return -1
}

// ModuleLevel returns the column of the n-th (1-based) module column, or -1.
func (c Columns) ModuleLevel(n int) int {
	if n < 1 || n > len(c.Modules) {
		return -1
	}
	return c.Modules[n-1]
}

// normalizeHeader trims header text and folds full-width forms to their
// canonical width so "用例名称（必填）" and "用例名称(必填)" compare alike.
func normalizeHeader(s string) string {
	return width.Fold.String(strings.TrimSpace(s))
}

// FindColumn returns the first column, scanning left to right, whose header
// contains any of keywords. Keywords are tried in order for each column.
// It returns -1 when no column matches.
func FindColumn(header []string, keywords []string) int {
	for col, h := range header {
		text := normalizeHeader(h)
		if text == "" {
			continue
		}
		for _, kw := range keywords {
			kw = normalizeHeader(kw)
			if kw != "" && strings.Contains(text, kw) {
				return col
			}
		}
	}
	return -1
}

// FindModuleColumns returns every column whose header contains keyword, left to right.
func FindModuleColumns(header []string, keyword string) []int {
	keyword = normalizeHeader(keyword)
	if keyword == "" {
		return nil
	}
	var cols []int
	for col, h := range header {
		if strings.Contains(normalizeHeader(h), keyword) {
			cols = append(cols, col)
		}
	}
	return cols
}

// ResolveColumns resolves every role against header. A role listed in
// required that cannot be found yields a *MissingColumnError; the first
// missing role in required order is reported.
func ResolveColumns(header []string, kw Keywords, required ...Role) (Columns, error) {
	if kw == nil {
		kw = DefaultKeywords()
	}
	cols := Columns{
		CaseName:        FindColumn(header, kw[RoleCaseName]),
		StepDescription: FindColumn(header, kw[RoleStepDescription]),
		ExpectedResult:  FindColumn(header, kw[RoleExpectedResult]),
		Precondition:    FindColumn(header, kw[RolePrecondition]),
	}
	moduleKeyword := DefaultModuleKeyword
	if m := kw[RoleModuleLevel]; len(m) > 0 {
		moduleKeyword = m[0]
	}
	cols.Modules = FindModuleColumns(header, moduleKeyword)

	for _, role := range required {
		if cols.Index(role) < 0 {
			return cols, &MissingColumnError{Role: role, Keywords: kw[role]}
		}
	}
	return cols, nil
}

// ColumnLetters formats 0-based column indices as sheet letters, e.g. [0 4] → [A E].
func ColumnLetters(cols []int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ColToName(c)
	}
	return out
}
