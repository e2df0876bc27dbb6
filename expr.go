package casecells

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	notationBegin = "${"
	notationEnd   = "}"
)

// ExpressionEvaluator evaluates template expressions.
type ExpressionEvaluator interface {
	Evaluate(expression string, data map[string]any) (any, error)
}

// exprEvaluator implements ExpressionEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // expression string → compiled *vm.Program
}

// NewExpressionEvaluator creates a new expression evaluator backed by expr-lang/expr.
func NewExpressionEvaluator() ExpressionEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}
	program, err := e.compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	result, err := expr.Run(program, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) compile(expression string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

// ExpressionSegment represents a part of a template: either literal text or an expression.
type ExpressionSegment struct {
	IsExpression bool
	Text         string // literal text or expression content (without delimiters)
}

// ParseExpressions splits a template into segments of literal text and expressions.
// For example, "Case ${req_id}" → [{false, "Case "}, {true, "req_id"}]
func ParseExpressions(value string) []ExpressionSegment {
	var segments []ExpressionSegment
	remaining := value

	for {
		startIdx := strings.Index(remaining, notationBegin)
		if startIdx < 0 {
			break
		}

		searchFrom := startIdx + len(notationBegin)
		endIdx := findMatchingEnd(remaining[searchFrom:])
		if endIdx < 0 {
			break
		}
		endIdx += searchFrom

		if startIdx > 0 {
			segments = append(segments, ExpressionSegment{Text: remaining[:startIdx]})
		}
		segments = append(segments, ExpressionSegment{
			IsExpression: true,
			Text:         remaining[searchFrom:endIdx],
		})
		remaining = remaining[endIdx+len(notationEnd):]
	}

	if remaining != "" {
		segments = append(segments, ExpressionSegment{Text: remaining})
	}
	return segments
}

// findMatchingEnd finds the position of the matching end delimiter,
// handling nested begin/end pairs and braces inside the expression.
func findMatchingEnd(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// CheckTemplate compiles every expression of tmpl without evaluating it.
func CheckTemplate(tmpl string) error {
	for _, seg := range ParseExpressions(tmpl) {
		if !seg.IsExpression {
			continue
		}
		if _, err := expr.Compile(seg.Text, expr.AllowUndefinedVariables()); err != nil {
			return fmt.Errorf("invalid expression syntax %q: %w", seg.Text, err)
		}
	}
	return nil
}

// RenderTemplate evaluates every ${...} expression of tmpl against vars and
// concatenates the results with the literal text. Nil results render empty.
func RenderTemplate(ev ExpressionEvaluator, tmpl string, vars map[string]any) (string, error) {
	var b strings.Builder
	for _, seg := range ParseExpressions(tmpl) {
		if !seg.IsExpression {
			b.WriteString(seg.Text)
			continue
		}
		val, err := ev.Evaluate(seg.Text, vars)
		if err != nil {
			return "", err
		}
		if val != nil {
			fmt.Fprint(&b, val)
		}
	}
	return b.String(), nil
}
