package expressions

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// ExprEngine compile-checks expr-lang predicates used by assertion steps
// (config key "expression"). Undefined variables are allowed at compile
// time: the executor injects the page snapshot environment at run time.
// Thread-safe: compiled *vm.Program objects are cached and reused.
type ExprEngine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewExprEngine creates a new Expr engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{
		cache: make(map[string]*vm.Program),
	}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return "expr"
}

// Check compiles the expression, caching the program.
func (e *ExprEngine) Check(expression string) error {
	if expression == "" {
		return schema.NewError(schema.ErrCodeExpression, "empty expr expression")
	}

	e.mu.RLock()
	if _, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return nil
	}
	e.mu.RUnlock()

	prg, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeExpression,
			"expr compile failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.mu.Lock()
	e.cache[expression] = prg
	e.mu.Unlock()
	return nil
}
