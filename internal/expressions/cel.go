package expressions

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// CELEngine compile-checks CEL expressions used as connection conditions.
// Thread-safe: compiled ASTs are cached and reused across goroutines.
type CELEngine struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]*cel.Ast
}

// NewCELEngine creates a CEL engine with the sandboxed environment the
// executor provides at run time:
//   - steps:  map(string, dyn), step outputs keyed by step ID
//   - inputs: map(string, dyn), test-case input parameters
//   - vars:   map(string, dyn), variables written by data steps
func NewCELEngine() (*CELEngine, error) {
	mapType := cel.MapType(cel.StringType, cel.DynType)

	env, err := cel.NewEnv(
		cel.Variable("steps", mapType),
		cel.Variable("inputs", mapType),
		cel.Variable("vars", mapType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &CELEngine{
		env:   env,
		cache: make(map[string]*cel.Ast),
	}, nil
}

// Name returns the engine identifier.
func (e *CELEngine) Name() string {
	return "cel"
}

// Check compiles the expression against the sandboxed environment,
// caching the AST. Returns a CanvasError describing the first compile
// issue, or nil when the expression is well-formed.
func (e *CELEngine) Check(expression string) error {
	if expression == "" {
		return schema.NewError(schema.ErrCodeExpression, "empty CEL expression")
	}

	e.mu.RLock()
	if _, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return nil
	}
	e.mu.RUnlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return schema.NewErrorf(schema.ErrCodeExpression,
			"CEL compile failed for %q: %s", expression, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"expression": expression})
	}

	e.mu.Lock()
	e.cache[expression] = ast
	e.mu.Unlock()
	return nil
}
