package casecells

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Layout carries the presentation applied when a table is written back.
type Layout struct {
	Regions   []MergeRegion
	RowHeight float64 // <= 0 keeps each row's original height
}

// Workbook is an excelize workbook bound to the sheet being processed. The
// sheet is read into memory once; styles, heights and typed values are cached
// per source cell so rewritten rows keep the look and types of the rows they
// came from.
type Workbook struct {
	file     *excelize.File
	path     string
	sheet    string
	legacy   bool
	table    *Table
	styles   map[CellRef]int        // 0-based sheet position → style ID
	sources  map[CellRef]cellSource // 0-based sheet position → stored value
	heights  map[int]float64        // 0-based sheet row → height
	rowCount int                    // sheet rows read, header included
}

// cellSource is a non-empty cell as stored on disk. text is the formatted
// value the table sees; raw and typ are what excelize stores underneath.
type cellSource struct {
	text    string
	raw     string
	typ     excelize.CellType
	formula string
}

// OpenWorkbook opens an xlsx-family file with excelize, or a legacy .xls file
// with extrame/xls. Legacy sheets are copied into a new xlsx workbook, so they
// are always saved as xlsx. WithSheet selects a sheet; by default the active
// sheet (xlsx) or the first sheet (xls) is used.
func OpenWorkbook(path string, opts ...Option) (*Workbook, error) {
	o := buildOptions(opts)
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return openLegacy(path, o.sheet)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	sheet := o.sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		f.Close()
		return nil, fmt.Errorf("open workbook %q: sheet %q not found", path, sheet)
	}

	w := newWorkbook(f, path, sheet)
	if err := w.readSheet(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func newWorkbook(f *excelize.File, path, sheet string) *Workbook {
	return &Workbook{
		file:    f,
		path:    path,
		sheet:   sheet,
		styles:  make(map[CellRef]int),
		sources: make(map[CellRef]cellSource),
		heights: make(map[int]float64),
	}
}

// openLegacy reads the first (or named) sheet of a BIFF .xls file into a
// fresh excelize workbook.
func openLegacy(path, sheet string) (*Workbook, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		if sheet == "" || s.Name == sheet {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("open workbook %q: no readable sheet", path)
	}

	var grid [][]string
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := legacyRow(ws, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol()+1)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		grid = append(grid, trimTrailing(cells))
	}
	for len(grid) > 0 && len(grid[len(grid)-1]) == 0 {
		grid = grid[:len(grid)-1]
	}

	name := SafeSheetName(ws.Name)
	f := excelize.NewFile()
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet %q: %w", name, err)
		}
	}
	if err := writeGrid(f, name, grid); err != nil {
		f.Close()
		return nil, err
	}

	w := newWorkbook(f, path, name)
	w.legacy = true
	w.setTable(grid)
	return w, nil
}

// legacyRow returns row i of ws, or nil when the sheet stores no record for
// it. xls.WorkSheet.Row dereferences the missing row itself.
func legacyRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}

func writeGrid(f *excelize.File, sheet string, grid [][]string) error {
	for r, row := range grid {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell := NewCellRef(sheet, r, c).CellName()
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// readSheet loads every row of the bound sheet, caching styles, heights and
// the stored type of every non-empty cell.
func (w *Workbook) readSheet() error {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("read rows from sheet %q: %w", w.sheet, err)
	}
	raws, err := w.file.GetRows(w.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read raw rows from sheet %q: %w", w.sheet, err)
	}
	w.setTable(rows)

	width := w.table.Width()
	for r := range rows {
		if h, err := w.file.GetRowHeight(w.sheet, r+1); err == nil {
			w.heights[r] = h
		}
		for c := 0; c < width; c++ {
			cell := NewCellRef(w.sheet, r, c).CellName()
			if styleID, err := w.file.GetCellStyle(w.sheet, cell); err == nil {
				w.styles[NewCellRef("", r, c)] = styleID
			}
			if src, ok := w.readSource(cell, cellAt(rows, r, c), cellAt(raws, r, c)); ok {
				w.sources[NewCellRef("", r, c)] = src
			}
		}
	}
	return nil
}

func (w *Workbook) readSource(cell, text, raw string) (cellSource, bool) {
	formula, _ := w.file.GetCellFormula(w.sheet, cell)
	if text == "" && formula == "" {
		return cellSource{}, false
	}
	typ, err := w.file.GetCellType(w.sheet, cell)
	if err != nil {
		return cellSource{}, false
	}
	return cellSource{text: text, raw: raw, typ: typ, formula: formula}, true
}

func cellAt(rows [][]string, r, c int) string {
	if r < len(rows) && c < len(rows[r]) {
		return rows[r][c]
	}
	return ""
}

func (w *Workbook) setTable(rows [][]string) {
	t := &Table{Sheet: w.sheet}
	if len(rows) > 0 {
		t.Header = append([]string(nil), rows[0]...)
	}
	for i := 1; i < len(rows); i++ {
		t.Rows = append(t.Rows, Row{Cells: append([]string(nil), rows[i]...), Origin: i})
	}
	w.table = t
	w.rowCount = len(rows)
}

// Table returns a copy of the sheet as read from disk.
func (w *Workbook) Table() *Table {
	return w.table.Clone()
}

// Sheet returns the name of the bound sheet.
func (w *Workbook) Sheet() string {
	return w.sheet
}

// Legacy reports whether the workbook was read from a .xls file.
func (w *Workbook) Legacy() bool {
	return w.legacy
}

// Apply writes t over the data rows of the bound sheet. Merges below the
// header are dropped first, every data row is rewritten with the style of its
// origin row, surplus rows are removed bottom-up, then the layout's merge
// regions and row height are applied. The header row is left as is.
//
// Only the first cell of a merge region keeps its value.
func (w *Workbook) Apply(t *Table, layout Layout) error {
	if err := w.unmergeDataArea(); err != nil {
		return err
	}
	t = t.Clone()
	ClearCovered(t, layout.Regions)

	width := t.Width()
	if orig := w.table.Width(); orig > width {
		width = orig
	}
	for i, row := range t.Rows {
		sheetRow := SheetRow(i) - 1
		for c := 0; c < width; c++ {
			cell := NewCellRef(w.sheet, sheetRow, c).CellName()
			if err := w.writeCell(cell, row, c); err != nil {
				return fmt.Errorf("write cell %s!%s: %w", w.sheet, cell, err)
			}
			if row.Origin < 0 {
				continue
			}
			if styleID, ok := w.styles[NewCellRef("", row.Origin, c)]; ok {
				if err := w.file.SetCellStyle(w.sheet, cell, cell, styleID); err != nil {
					return fmt.Errorf("style cell %s!%s: %w", w.sheet, cell, err)
				}
			}
		}
		if layout.RowHeight <= 0 && row.Origin >= 0 && row.Origin != sheetRow {
			if h, ok := w.heights[row.Origin]; ok && h > 0 {
				if err := w.file.SetRowHeight(w.sheet, sheetRow+1, h); err != nil {
					return fmt.Errorf("set height of row %d: %w", sheetRow+1, err)
				}
			}
		}
	}

	for r := w.rowCount; r > len(t.Rows)+1; r-- {
		if err := w.file.RemoveRow(w.sheet, r); err != nil {
			return fmt.Errorf("remove row %d: %w", r, err)
		}
	}

	for _, region := range layout.Regions {
		area := region.Area(w.sheet)
		if err := w.file.MergeCell(w.sheet, area.First.CellName(), area.Last.CellName()); err != nil {
			return fmt.Errorf("merge cells %s: %w", area, err)
		}
	}

	if layout.RowHeight > 0 {
		for r := 1; r <= len(t.Rows)+1; r++ {
			if err := w.file.SetRowHeight(w.sheet, r, layout.RowHeight); err != nil {
				return fmt.Errorf("set height of row %d: %w", r, err)
			}
		}
	}

	w.table = t.Clone()
	w.rowCount = len(t.Rows) + 1
	return nil
}

// writeCell writes column c of row to cell. A value that is unchanged from its
// origin cell is written back with the origin's formula or type; anything
// else is written as text.
func (w *Workbook) writeCell(cell string, row Row, c int) error {
	value := row.Raw(c)
	src, ok := w.sources[NewCellRef("", row.Origin, c)]
	if row.Origin < 0 || !ok || src.text != value {
		return w.file.SetCellValue(w.sheet, cell, value)
	}
	if src.formula != "" {
		return w.file.SetCellFormula(w.sheet, cell, src.formula)
	}
	switch src.typ {
	case excelize.CellTypeBool:
		return w.file.SetCellBool(w.sheet, cell, src.raw == "1" || strings.EqualFold(src.raw, "true"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(src.raw, 64); err == nil {
			return w.file.SetCellFloat(w.sheet, cell, f, -1, 64)
		}
	}
	return w.file.SetCellValue(w.sheet, cell, value)
}

// unmergeDataArea removes every merged range that starts below the header.
func (w *Workbook) unmergeDataArea() error {
	merges, err := w.file.GetMergeCells(w.sheet)
	if err != nil {
		return fmt.Errorf("read merged cells of %q: %w", w.sheet, err)
	}
	for _, mc := range merges {
		start, err := ParseCellRef(mc.GetStartAxis())
		if err != nil || start.Row < 1 {
			continue
		}
		if err := w.file.UnmergeCell(w.sheet, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return fmt.Errorf("unmerge %s:%s: %w", mc.GetStartAxis(), mc.GetEndAxis(), err)
		}
	}
	return nil
}

// OutputPath returns where the workbook should be saved when output is empty:
// the input path itself, or the input with an .xlsx extension for .xls input.
func (w *Workbook) OutputPath(output string) string {
	if output != "" {
		return output
	}
	if w.legacy {
		return strings.TrimSuffix(w.path, filepath.Ext(w.path)) + ".xlsx"
	}
	return w.path
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

// Write writes the workbook to the given writer.
func (w *Workbook) Write(out io.Writer) error {
	if err := w.file.Write(out); err != nil {
		return &PersistError{Path: "<writer>", Err: err}
	}
	return nil
}

// Close closes the underlying excelize file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// File returns the underlying excelize file for advanced operations.
func (w *Workbook) File() *excelize.File {
	return w.file
}

// NewGeneratedWorkbook creates a workbook holding t on a single sheet, with
// the header in row 1 and the given column widths.
func NewGeneratedWorkbook(t *Table, widths []float64) (*Workbook, error) {
	sheet := SafeSheetName(t.Sheet)
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet %q: %w", sheet, err)
		}
	}

	grid := make([][]string, 0, len(t.Rows)+1)
	grid = append(grid, t.Header)
	for _, r := range t.Rows {
		grid = append(grid, r.Cells)
	}
	if err := writeGrid(f, sheet, grid); err != nil {
		f.Close()
		return nil, err
	}
	for i, wd := range widths {
		col := ColToName(i)
		if err := f.SetColWidth(sheet, col, col, wd); err != nil {
			f.Close()
			return nil, fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	w := newWorkbook(f, "", sheet)
	w.setTable(grid)
	return w, nil
}
