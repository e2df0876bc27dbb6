package casecells

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Processor runs the merge, split and generate operations end to end:
// open the input, resolve columns, transform rows, persist once.
type Processor struct {
	opts []Option
	o    *Options
	log  *zap.Logger
}

// NewProcessor creates a Processor with the given options.
func NewProcessor(opts ...Option) *Processor {
	o := buildOptions(opts)
	return &Processor{opts: opts, o: o, log: o.logger}
}

// MergeReport describes a finished merge run.
type MergeReport struct {
	Output  string
	Sheet   string
	Columns Columns
	Stats   MergeStats
	Rows    int // data rows written
}

// SplitReport describes a finished split run.
type SplitReport struct {
	Output  string
	Sheet   string
	Columns Columns
	Stats   SplitStats
	Rows    int // data rows written
}

// MergeFile merges the step blocks of input and writes the result to output
// (input itself when output is empty).
func MergeFile(input, output string, opts ...Option) (*MergeReport, error) {
	return NewProcessor(opts...).Merge(input, output)
}

// SplitFile splits the step cells of input and writes the result to output
// (input itself when output is empty).
func SplitFile(input, output string, opts ...Option) (*SplitReport, error) {
	return NewProcessor(opts...).Split(input, output)
}

// GenerateFile builds a test-case workbook at output from the JSON document at input.
func GenerateFile(input, output string, opts ...Option) (*GenerateReport, error) {
	return NewProcessor(opts...).Generate(input, output)
}

func (p *Processor) open(input string) (*Workbook, *Table, error) {
	w, err := OpenWorkbook(input, p.opts...)
	if err != nil {
		return nil, nil, err
	}
	t := w.Table()
	p.log.Info("loaded sheet",
		zap.String("file", input),
		zap.String("sheet", w.Sheet()),
		zap.Int("rows", t.Len()+1),
		zap.Int("cols", t.Width()),
	)
	return w, t, nil
}

func (p *Processor) logColumns(cols Columns) {
	fields := []zap.Field{}
	for _, role := range []Role{RoleCaseName, RoleStepDescription, RoleExpectedResult, RolePrecondition} {
		if c := cols.Index(role); c >= 0 {
			fields = append(fields, zap.String(role.String(), ColToName(c)))
		}
	}
	fields = append(fields, zap.Strings("modules", ColumnLetters(cols.Modules)))
	p.log.Info("resolved columns", fields...)
}

func (p *Processor) save(w *Workbook, output string) (string, error) {
	path := w.OutputPath(output)
	if err := w.SaveAs(path); err != nil {
		return "", err
	}
	p.log.Info("saved", zap.String("file", path))
	return path, nil
}

// Merge runs the merge transform on input.
func (p *Processor) Merge(input, output string) (*MergeReport, error) {
	w, t, err := p.open(input)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	cols, err := ResolveColumns(t.Header, p.o.keywords, MergeRequired...)
	if err != nil {
		return nil, err
	}
	p.logColumns(cols)

	out, stats := Merge(t, cols, p.opts...)
	if stats.NoCaseNames {
		p.log.Warn("no row has a case name; grouping skipped",
			zap.String("column", ColToName(cols.CaseName)))
	}
	p.log.Info("merged step blocks",
		zap.Int("prefixed", stats.Prefixed),
		zap.Int("cases", len(stats.LeadRows)),
		zap.Int("merged", stats.Merged),
		zap.Int("cleared", stats.Cleared),
		zap.Int("deleted", stats.Deleted),
	)

	if err := w.Apply(out, Layout{}); err != nil {
		return nil, fmt.Errorf("apply merged rows: %w", err)
	}
	path, err := p.save(w, output)
	if err != nil {
		return nil, err
	}
	return &MergeReport{Output: path, Sheet: w.Sheet(), Columns: cols, Stats: stats, Rows: out.Len()}, nil
}

// Split runs the split transform on input.
func (p *Processor) Split(input, output string) (*SplitReport, error) {
	w, t, err := p.open(input)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	cols, err := ResolveColumns(t.Header, p.o.keywords, SplitRequired...)
	if err != nil {
		return nil, err
	}
	p.logColumns(cols)

	out, stats := Split(t, cols, p.opts...)
	p.log.Info("split step cells",
		zap.Int("expanded", stats.Expanded),
		zap.Int("inserted", stats.Inserted),
		zap.Int("stripped", stats.Stripped),
		zap.Int("regions", len(stats.Regions)),
		zap.Strings("merge columns", ColumnLetters(stats.MergeColumns)),
		zap.Int("trimmed", stats.Trimmed),
	)

	if err := w.Apply(out, Layout{Regions: stats.Regions, RowHeight: stats.RowHeight}); err != nil {
		return nil, fmt.Errorf("apply split rows: %w", err)
	}
	path, err := p.save(w, output)
	if err != nil {
		return nil, err
	}
	return &SplitReport{Output: path, Sheet: w.Sheet(), Columns: cols, Stats: stats, Rows: out.Len()}, nil
}

// Generate builds a new workbook at output from the JSON document at input.
func (p *Processor) Generate(input, output string) (*GenerateReport, error) {
	doc, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read generation document %q: %w", input, err)
	}
	t, report, err := Generate(doc, p.opts...)
	if err != nil {
		return nil, err
	}

	w, err := NewGeneratedWorkbook(t, GeneratedColumnWidths)
	if err != nil {
		return nil, err
	}
	defer w.Close()
	if _, err := p.save(w, output); err != nil {
		return nil, err
	}

	p.log.Info("generated test cases",
		zap.String("requirement", report.ReqID),
		zap.String("title", report.ReqTitle),
		zap.Int("cases", report.TestcaseCount),
		zap.Strings("modules", report.Modules),
		zap.Int("scenarios", report.TotalScenarios),
	)
	return &report, nil
}
