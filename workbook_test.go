package casecells

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeFixture saves rows (header first) to a new workbook in a temp dir.
// The optional prepare hook runs before saving.
func writeFixture(t *testing.T, name string, rows [][]string, prepare func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			require.NoError(t, f.SetCellValue(sheet, NewCellRef(sheet, r, c).CellName(), v))
		}
	}
	if prepare != nil {
		prepare(f)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// readRows returns every row of sheet with trailing empty cells removed.
func readRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, trimTrailing(r))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

// copyFixture copies testdata/name into a temp dir so outputs written next to
// it stay out of the source tree.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// mergedRanges returns the merged ranges of sheet as sorted "A2:A4" strings.
func mergedRanges(t *testing.T, path, sheet string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var out []string
	for _, mc := range merges {
		out = append(out, mc.GetStartAxis()+":"+mc.GetEndAxis())
	}
	sort.Strings(out)
	return out
}

func TestOpenWorkbook_ReadsActiveSheet(t *testing.T) {
	path := writeFixture(t, "cases.xlsx", [][]string{
		mergeHeader,
		{"登录", "Login", "a", "x"},
		{"", "", "b"},
	}, nil)

	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "Sheet1", w.Sheet())
	assert.False(t, w.Legacy())
	tbl := w.Table()
	assert.Equal(t, mergeHeader, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1, tbl.Rows[0].Origin)
	assert.Equal(t, 2, tbl.Rows[1].Origin)
	assert.Equal(t, "b", tbl.Rows[1].Value(2))

	// Table returns a copy.
	tbl.Rows[0].Set(0, "changed")
	assert.Equal(t, "登录", w.Table().Rows[0].Value(0))
}

func TestOpenWorkbook_SheetSelection(t *testing.T) {
	path := writeFixture(t, "cases.xlsx", [][]string{mergeHeader}, func(f *excelize.File) {
		_, err := f.NewSheet("用例")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("用例", "A1", "用例名称"))
	})

	w, err := OpenWorkbook(path, WithSheet("用例"))
	require.NoError(t, err)
	assert.Equal(t, "用例", w.Sheet())
	assert.Equal(t, []string{"用例名称"}, w.Table().Header)
	w.Close()

	_, err = OpenWorkbook(path, WithSheet("missing"))
	assert.Error(t, err)
}

func TestOpenWorkbook_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenWorkbook(filepath.Join(dir, "none.xlsx"))
	assert.Error(t, err)
	_, err = OpenWorkbook(filepath.Join(dir, "none.xls"))
	assert.Error(t, err)
}

func TestOpenWorkbook_LegacyXLS(t *testing.T) {
	path := copyFixture(t, "cases.xls")

	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Legacy())
	assert.Equal(t, "用例", w.Sheet())
	tbl := w.Table()
	assert.Equal(t, mergeHeader, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"登录", "Login", "enter user", "ok"}, tbl.Rows[0].Cells)
	assert.Equal(t, []string{"", "", "click submit", "done"}, tbl.Rows[1].Cells)
	assert.Equal(t, 2, tbl.Rows[1].Origin)
	assert.Equal(t, strings.TrimSuffix(path, ".xls")+".xlsx", w.OutputPath(""))

	_, err = OpenWorkbook(path, WithSheet("missing"))
	assert.Error(t, err)
}

func TestWorkbook_ApplyKeepsCellTypes(t *testing.T) {
	header := []string{"用例名称", "优先级", "步骤描述", "预期结果", "已评审", "合计"}
	path := writeFixture(t, "cases.xlsx", [][]string{
		header,
		{"Login", "", "a", "b"},
		{"", "", "c", "d"},
	}, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 1))
		require.NoError(t, f.SetCellValue("Sheet1", "B3", 2.5))
		require.NoError(t, f.SetCellBool("Sheet1", "E2", true))
		require.NoError(t, f.SetCellFormula("Sheet1", "F2", "B2+1"))
	})

	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	tbl := w.Table()
	tbl.Rows[0].Set(2, "#a#c")
	tbl.Rows[1].Set(2, "")
	require.NoError(t, w.Apply(tbl, Layout{}))
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	for _, cell := range []string{"B2", "B3"} {
		typ, err := f.GetCellType("Sheet1", cell)
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, typ, cell)
		assert.NotEqual(t, excelize.CellTypeInlineString, typ, cell)
	}
	raw, err := f.GetCellValue("Sheet1", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1", raw)
	raw, err = f.GetCellValue("Sheet1", "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2.5", raw)

	typ, err := f.GetCellType("Sheet1", "E2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeBool, typ)
	formula, err := f.GetCellFormula("Sheet1", "F2")
	require.NoError(t, err)
	assert.Equal(t, "B2+1", formula)

	typ, err = f.GetCellType("Sheet1", "C2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, typ)
}

func TestWorkbook_ApplyMerge(t *testing.T) {
	var bold int
	path := writeFixture(t, "cases.xlsx", [][]string{
		mergeHeader,
		{"登录", "Login", "", ""},
		{"", "", "enter user", "ok"},
		{"", "", "click submit", "done"},
		{"设置", "Profile", "open", "shown"},
	}, func(f *excelize.File) {
		var err error
		bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle("Sheet1", "D5", "D5", bold))
		require.NoError(t, f.SetRowHeight("Sheet1", 5, 33))
		require.NoError(t, f.MergeCell("Sheet1", "A2", "A4"))
	})

	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	tbl := w.Table()
	cols := resolveFor(t, tbl.Header, MergeRequired...)
	out, _ := Merge(tbl, cols)
	require.NoError(t, w.Apply(out, Layout{}))
	require.NoError(t, w.SaveAs(w.OutputPath("")))
	require.NoError(t, w.Close())

	assert.Equal(t, [][]string{
		mergeHeader,
		{"登录", "Login", "#enter user#click submit", "#ok#done"},
		{"设置", "Profile", "#open", "#shown"},
	}, readRows(t, path, "Sheet1"))
	assert.Empty(t, mergedRanges(t, path, "Sheet1"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	style, err := f.GetCellStyle("Sheet1", "D3")
	require.NoError(t, err)
	assert.Equal(t, bold, style)
	h, err := f.GetRowHeight("Sheet1", 3)
	require.NoError(t, err)
	assert.InDelta(t, 33, h, 0.01)
}

func TestWorkbook_ApplySplit(t *testing.T) {
	path := writeFixture(t, "cases.xlsx", [][]string{
		splitHeader,
		{"登录", "Login", "p", "#a#b", "#x#y"},
		{"登录", "Logout", "", "#c", "#z"},
	}, nil)
	out := filepath.Join(t.TempDir(), "split.xlsx")

	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	tbl := w.Table()
	cols := resolveFor(t, tbl.Header, SplitRequired...)
	split, stats := Split(tbl, cols)
	require.NoError(t, w.Apply(split, Layout{Regions: stats.Regions, RowHeight: stats.RowHeight}))
	require.NoError(t, w.SaveAs(w.OutputPath(out)))
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"A2:A4", "B2:B3", "C2:C3"}, mergedRanges(t, out, "Sheet1"))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	for r := 1; r <= 4; r++ {
		h, err := f.GetRowHeight("Sheet1", r)
		require.NoError(t, err)
		assert.InDelta(t, DefaultRowHeight, h, 0.01, "row %d", r)
	}
	for cell, want := range map[string]string{
		"B2": "Login", "D2": "a", "E2": "x",
		"D3": "b", "E3": "y",
		"B4": "Logout", "D4": "c", "E4": "z",
	} {
		got, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	// The input file is untouched when an output path is given.
	assert.Equal(t, "#a#b", readRows(t, path, "Sheet1")[1][3])
}

func TestWorkbook_ApplyHeaderOnly(t *testing.T) {
	path := writeFixture(t, "cases.xlsx", [][]string{mergeHeader}, nil)

	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	tbl := w.Table()
	out, _ := Merge(tbl, resolveFor(t, tbl.Header, MergeRequired...))
	require.NoError(t, w.Apply(out, Layout{}))
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	assert.Equal(t, [][]string{mergeHeader}, readRows(t, path, "Sheet1"))
}

func TestWorkbook_SaveAsPersistError(t *testing.T) {
	path := writeFixture(t, "cases.xlsx", [][]string{mergeHeader}, nil)
	w, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer w.Close()

	bad := filepath.Join(t.TempDir(), "no", "such", "dir", "out.xlsx")
	err = w.SaveAs(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersist))

	var pe *PersistError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, bad, pe.Path)
	_, statErr := os.Stat(bad)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorkbook_OutputPath(t *testing.T) {
	w := &Workbook{path: filepath.Join("in", "cases.xlsx")}
	assert.Equal(t, filepath.Join("in", "cases.xlsx"), w.OutputPath(""))
	assert.Equal(t, "out.xlsx", w.OutputPath("out.xlsx"))

	legacy := &Workbook{path: filepath.Join("in", "cases.xls"), legacy: true}
	assert.Equal(t, filepath.Join("in", "cases.xlsx"), legacy.OutputPath(""))
	assert.Equal(t, "x.xlsx", legacy.OutputPath("x.xlsx"))
}

func TestNewGeneratedWorkbook(t *testing.T) {
	tbl := &Table{
		Sheet:  "Sheet1",
		Header: GeneratedHeader,
		Rows: []Row{
			NewRow("用户", "登录", "", "", "REQ-1-S1-登录", "P0", DefaultCaseType, "", "#a#b", "#x#y", "", ""),
		},
	}
	w, err := NewGeneratedWorkbook(tbl, GeneratedColumnWidths)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "generated.xlsx")
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	rows := readRows(t, path, "Sheet1")
	require.Len(t, rows, 2)
	assert.Equal(t, GeneratedHeader, rows[0])
	assert.Equal(t, "#a#b", rows[1][8])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	width, err := f.GetColWidth("Sheet1", "I")
	require.NoError(t, err)
	assert.InDelta(t, 60, width, 0.01)
	width, err = f.GetColWidth("Sheet1", "F")
	require.NoError(t, err)
	assert.InDelta(t, 10, width, 0.01)
}
