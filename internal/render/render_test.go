package render

import (
	"strings"
	"testing"

	"github.com/javajack/casecells"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func sampleTable() *casecells.Table {
	return &casecells.Table{
		Sheet:  "Sheet1",
		Header: []string{"一级模块", "用例名称", "步骤描述", "预期结果"},
		Rows: []casecells.Row{
			casecells.NewRow("登录", "Login", "#open#enter", "#shown"),
			casecells.NewRow("", "", "second\nline", ""),
			casecells.NewRow("设置", "Profile", "#edit", "#saved"),
		},
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a b", Truncate("a\nb", 10))
	assert.Equal(t, "abcdefghij", Truncate("abcdefghij", 0))

	got := Truncate(strings.Repeat("步骤", 10), 9)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, runewidth.StringWidth(got), 9)
}

func TestSheet(t *testing.T) {
	out := Sheet(sampleTable(), nil, 2, DefaultCellWidth)

	assert.Contains(t, out, "Sheet1: 3 rows, 4 columns")
	assert.Contains(t, out, "B 用例名称")
	assert.Contains(t, out, "[case name]")
	assert.Contains(t, out, "[module level 1]")
	assert.Contains(t, out, "#open#enter")
	assert.Contains(t, out, "second line")
	assert.NotContains(t, out, "Profile")
	assert.Contains(t, out, "… 1 more rows")
}

func TestSheet_AllRows(t *testing.T) {
	out := Sheet(sampleTable(), nil, -1, DefaultCellWidth)
	assert.Contains(t, out, "Profile")
	assert.NotContains(t, out, "more rows")
}

func TestIssues(t *testing.T) {
	assert.Contains(t, Issues(nil), "header OK")

	out := Issues([]casecells.ValidationIssue{
		{Severity: casecells.SeverityWarning, Column: -1, Message: "no module columns found"},
		{Severity: casecells.SeverityError, Column: -1, Message: "no column for step description"},
	})
	errIdx := strings.Index(out, "[ERROR]")
	warnIdx := strings.Index(out, "[WARN]")
	assert.GreaterOrEqual(t, errIdx, 0)
	assert.Greater(t, warnIdx, errIdx)
}
