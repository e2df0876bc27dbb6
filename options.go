package casecells

import "go.uber.org/zap"

// DefaultDelimiter marks the start of each step unit inside a merged cell.
const DefaultDelimiter = "#"

// DefaultRowHeight is the display height, in points, set on every row after a split.
const DefaultRowHeight = 50.0

// DefaultCaseNameTemplate builds generated case names from the requirement,
// scenario and business function.
const DefaultCaseNameTemplate = "${req_id}-${scenario_id}-${function_name}"

// DefaultCaseType is written to the 用例类型 column of generated rows.
const DefaultCaseType = "功能测试"

// Options holds configuration for the Processor and the row transforms.
type Options struct {
	delimiter        string
	rowHeight        float64
	keywords         Keywords
	caseNameTemplate string
	caseType         string
	sheet            string
	logger           *zap.Logger
}

func defaultOptions() *Options {
	return &Options{
		delimiter:        DefaultDelimiter,
		rowHeight:        DefaultRowHeight,
		keywords:         DefaultKeywords(),
		caseNameTemplate: DefaultCaseNameTemplate,
		caseType:         DefaultCaseType,
		logger:           zap.NewNop(),
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the Processor.
type Option func(*Options)

// WithDelimiter sets the segment delimiter (default: "#").
func WithDelimiter(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.delimiter = delim
		}
	}
}

// WithRowHeight sets the row height applied after a split (default: 50).
// A value <= 0 leaves row heights untouched.
func WithRowHeight(h float64) Option {
	return func(o *Options) { o.rowHeight = h }
}

// WithKeywords replaces the keyword list for one role.
func WithKeywords(role Role, keywords ...string) Option {
	return func(o *Options) {
		kw := make(Keywords, len(o.keywords))
		for r, k := range o.keywords {
			kw[r] = k
		}
		kw[role] = keywords
		o.keywords = kw
	}
}

// WithCaseNameTemplate sets the ${...} template used to name generated cases.
func WithCaseNameTemplate(tmpl string) Option {
	return func(o *Options) {
		if tmpl != "" {
			o.caseNameTemplate = tmpl
		}
	}
}

// WithCaseType sets the 用例类型 value of generated rows.
func WithCaseType(caseType string) Option {
	return func(o *Options) { o.caseType = caseType }
}

// WithSheet selects the sheet to process instead of the active one.
func WithSheet(name string) Option {
	return func(o *Options) { o.sheet = name }
}

// WithLogger sets the logger used for progress lines.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}
