package casecells

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// GeneratedHeader is the fixed 12-column header of a generated test-case sheet.
var GeneratedHeader = []string{
	"一级模块", "二级模块", "三级模块", "四级模块",
	"用例名称", "优先级", "用例类型", "前置条件",
	"步骤描述", "预期结果", "备注", "维护人",
}

// GeneratedColumnWidths are the column widths of a generated sheet, A through L.
var GeneratedColumnWidths = []float64{20, 15, 15, 15, 40, 10, 15, 20, 60, 60, 20, 15}

// GenerateReport summarizes a generated sheet.
type GenerateReport struct {
	ReqID          string
	ReqTitle       string
	TestcaseCount  int
	Modules        []string // distinct business function names, sorted
	TotalScenarios int
}

// node is a gjson result that remembers its path for error reporting.
type node struct {
	res  gjson.Result
	path string
}

func (n node) get(key string) (node, error) {
	path := key
	if n.path != "" {
		path = n.path + "." + key
	}
	r := n.res.Get(key)
	if !r.Exists() {
		return node{}, &MissingKeyError{Path: path}
	}
	return node{res: r, path: path}, nil
}

func (n node) str(key string) (string, error) {
	c, err := n.get(key)
	if err != nil {
		return "", err
	}
	return c.res.String(), nil
}

func (n node) list(key string) ([]node, error) {
	c, err := n.get(key)
	if err != nil {
		return nil, err
	}
	var out []node
	for i, r := range c.res.Array() {
		out = append(out, node{res: r, path: fmt.Sprintf("%s.%d", c.path, i)})
	}
	return out, nil
}

// Generate builds a test-case table from a requirement document: one row per
// scenario, with the scenario's steps and expected results joined into single
// delimiter-led cells ready for Split.
func Generate(doc []byte, opts ...Option) (*Table, GenerateReport, error) {
	o := buildOptions(opts)
	var report GenerateReport

	if !gjson.ValidBytes(doc) {
		return nil, report, fmt.Errorf("parse generation document: invalid JSON")
	}
	if err := CheckTemplate(o.caseNameTemplate); err != nil {
		return nil, report, fmt.Errorf("case name template: %w", err)
	}
	root := node{res: gjson.ParseBytes(doc)}

	req, err := root.get("requirement")
	if err != nil {
		return nil, report, err
	}
	if report.ReqID, err = req.str("req_id"); err != nil {
		return nil, report, err
	}
	if report.ReqTitle, err = req.str("title"); err != nil {
		return nil, report, err
	}
	moduleName, err := req.str("module_name")
	if err != nil {
		return nil, report, err
	}

	functions, err := root.list("business_functions")
	if err != nil {
		return nil, report, err
	}

	ev := NewExpressionEvaluator()
	t := &Table{Sheet: "Sheet1", Header: append([]string(nil), GeneratedHeader...)}
	modules := make(map[string]bool)

	for _, fn := range functions {
		functionName, err := fn.str("function_name")
		if err != nil {
			return nil, report, err
		}
		scenarios, err := fn.list("scenarios")
		if err != nil {
			return nil, report, err
		}
		report.TotalScenarios += len(scenarios)

		for _, sc := range scenarios {
			fields := make(map[string]string, 3)
			for _, key := range []string{"scenario_id", "scenario_name", "priority"} {
				if fields[key], err = sc.str(key); err != nil {
					return nil, report, err
				}
			}
			steps, err := sc.list("test_steps")
			if err != nil {
				return nil, report, err
			}
			descriptions := make([]string, 0, len(steps))
			results := make([]string, 0, len(steps))
			for _, st := range steps {
				d, err := st.str("step_description")
				if err != nil {
					return nil, report, err
				}
				r, err := st.str("expected_result")
				if err != nil {
					return nil, report, err
				}
				descriptions = append(descriptions, d)
				results = append(results, r)
			}

			caseName, err := RenderTemplate(ev, o.caseNameTemplate, map[string]any{
				"req_id":        report.ReqID,
				"title":         report.ReqTitle,
				"module_name":   moduleName,
				"function_name": functionName,
				"scenario_id":   fields["scenario_id"],
				"scenario_name": fields["scenario_name"],
				"priority":      fields["priority"],
			})
			if err != nil {
				return nil, report, fmt.Errorf("case name for %s: %w", sc.path, err)
			}

			t.Rows = append(t.Rows, NewRow(
				moduleName,
				functionName,
				"",
				"",
				caseName,
				fields["priority"],
				o.caseType,
				"",
				o.delimiter+strings.Join(descriptions, o.delimiter),
				o.delimiter+strings.Join(results, o.delimiter),
				"",
				"",
			))
			modules[functionName] = true
		}
	}

	report.TestcaseCount = len(t.Rows)
	for m := range modules {
		report.Modules = append(report.Modules, m)
	}
	sort.Strings(report.Modules)
	return t, report, nil
}
