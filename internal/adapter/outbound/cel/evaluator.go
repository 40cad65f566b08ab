// Package cel evaluates page access rules written in CEL.
package cel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// maxExpressionLength is the longest accepted rule.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit.
const maxCostBudget = 100_000

// maxNestingDepth is the deepest accepted parenthesis/bracket nesting.
const maxNestingDepth = 50

// evalTimeout bounds a single evaluation.
const evalTimeout = 5 * time.Second

// interruptCheckFreq is how often (in comprehension iterations) cancellation is checked.
const interruptCheckFreq = 100

// DefaultRules are the built-in access rules for the protected pages.
var DefaultRules = map[session.Page]string{
	session.PageTracker:   `role in ["MEMBER", "TRAINER", "ADMIN"]`,
	session.PageDashboard: `role == "ADMIN"`,
}

// Evaluator compiles and evaluates access rule expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator over the access environment.
func NewEvaluator() (*Evaluator, error) {
	env, err := NewAccessEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create access environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Compile parses and type-checks expression. The result must be a boolean.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}

	prg, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
		cel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}
	return prg, nil
}

func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}

// ValidateExpression checks that expr is non-empty, within the size and
// nesting limits, and compiles to a boolean.
func (e *Evaluator) ValidateExpression(expr string) error {
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	if expr == "" {
		return errors.New("expression is empty")
	}
	if err := validateNesting(expr); err != nil {
		return err
	}
	if _, err := e.Compile(expr); err != nil {
		return fmt.Errorf("invalid CEL expression: %w", err)
	}
	return nil
}

// Evaluate runs a compiled rule against req.
func (e *Evaluator) Evaluate(ctx context.Context, prg cel.Program, req session.AccessRequest) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(ctx, buildActivation(req))
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}
	allowed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return allowed, nil
}

// AccessRules holds one compiled rule per protected page.
type AccessRules struct {
	eval     *Evaluator
	programs map[session.Page]cel.Program
	sources  map[session.Page]string
}

// NewAccessRules compiles DefaultRules overlaid with overrides. Keys of
// overrides are page names ("dashboard" or "dashboard.html"). Every rule
// is validated; the first invalid one is returned as an error.
func NewAccessRules(overrides map[string]string) (*AccessRules, error) {
	eval, err := NewEvaluator()
	if err != nil {
		return nil, err
	}

	sources := make(map[session.Page]string, len(DefaultRules)+len(overrides))
	for p, expr := range DefaultRules {
		sources[p] = expr
	}
	for raw, expr := range overrides {
		p, err := session.ParsePage(raw)
		if err != nil {
			return nil, fmt.Errorf("access rule: %w", err)
		}
		sources[p] = expr
	}

	rules := &AccessRules{
		eval:     eval,
		programs: make(map[session.Page]cel.Program, len(sources)),
		sources:  sources,
	}
	pages := make([]session.Page, 0, len(sources))
	for p := range sources {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	for _, p := range pages {
		if err := eval.ValidateExpression(sources[p]); err != nil {
			return nil, fmt.Errorf("access rule for %s: %w", p, err)
		}
		prg, err := eval.Compile(sources[p])
		if err != nil {
			return nil, fmt.Errorf("access rule for %s: %w", p, err)
		}
		rules.programs[p] = prg
	}
	return rules, nil
}

// HasRule reports whether page is guarded by a rule.
func (r *AccessRules) HasRule(page session.Page) bool {
	_, ok := r.programs[page]
	return ok
}

// Rule returns the source of page's rule.
func (r *AccessRules) Rule(page session.Page) (string, bool) {
	src, ok := r.sources[page]
	return src, ok
}

// Allow evaluates the rule for req.Page. Pages without a rule are allowed.
func (r *AccessRules) Allow(ctx context.Context, req session.AccessRequest) (bool, error) {
	prg, ok := r.programs[req.Page]
	if !ok {
		return true, nil
	}
	return r.eval.Evaluate(ctx, prg, req)
}
