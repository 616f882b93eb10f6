// Package predicate compiles expr-lang boolean expressions evaluated
// against a map of facts, such as an agent's blackboard snapshot.
//
// Expression syntax follows expr-lang (github.com/expr-lang/expr):
//   - Comparisons: hasMoney == true, gold >= 10, weather != "rain"
//   - Boolean logic: hasAxe && !tired
//   - Membership: tool in ["axe", "saw"]
//
// Facts missing from the environment evaluate as nil rather than failing.
package predicate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrEmptyExpression is returned when compiling an empty expression.
var ErrEmptyExpression = errors.New("predicate: empty expression")

var defaultCache = NewProgramCache(DefaultCacheSize)

// DefaultCache returns the cache used by Compile.
func DefaultCache() *ProgramCache { return defaultCache }

// Predicate is a compiled boolean expression. It is safe for concurrent
// use.
type Predicate struct {
	expression string
	program    *vm.Program
	logger     *slog.Logger
}

// Compile compiles expression, reusing a previously compiled program from
// the default cache when available.
func Compile(expression string) (*Predicate, error) {
	return defaultCache.Compile(expression)
}

// Compile compiles expression through this cache.
func (c *ProgramCache) Compile(expression string) (*Predicate, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	if program, ok := c.Get(expression); ok {
		return &Predicate{expression: expression, program: program}, nil
	}
	program, err := expr.Compile(expression,
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("predicate: compile %q: %w", expression, err)
	}
	c.Put(expression, program)
	return &Predicate{expression: expression, program: program}, nil
}

// String returns the expression source.
func (p *Predicate) String() string { return p.expression }

// WithLogger returns a copy of p that reports Match errors to logger. A nil
// logger uses slog.Default().
func (p *Predicate) WithLogger(logger *slog.Logger) *Predicate {
	c := *p
	c.logger = logger
	return &c
}

// Eval runs the predicate against env. A nil env is treated as empty.
func (p *Predicate) Eval(env map[string]any) (bool, error) {
	if env == nil {
		env = map[string]any{}
	}
	result, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("predicate: eval %q: %w", p.expression, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("predicate: eval %q: non-boolean result %T", p.expression, result)
	}
	return b, nil
}

// Match is like Eval, except errors are logged and reported as false.
func (p *Predicate) Match(env map[string]any) bool {
	ok, err := p.Eval(env)
	if err != nil {
		logger := p.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("predicate evaluation failed", "expression", p.expression, "error", err)
		return false
	}
	return ok
}
