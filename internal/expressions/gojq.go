package expressions

import (
	"sync"

	"github.com/itchyny/gojq"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// GoJQEngine compile-checks jq programs used by data steps (config key
// "query") to extract values from step outputs.
// Thread-safe: compiled *gojq.Code objects are cached and reused.
type GoJQEngine struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewGoJQEngine creates a new GoJQ engine.
func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{
		cache: make(map[string]*gojq.Code),
	}
}

// Name returns the engine identifier.
func (e *GoJQEngine) Name() string {
	return "jq"
}

// Check parses and compiles the jq program, caching the result.
func (e *GoJQEngine) Check(expression string) error {
	if expression == "" {
		return schema.NewError(schema.ErrCodeExpression, "empty jq expression")
	}

	e.mu.RLock()
	if _, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return nil
	}
	e.mu.RUnlock()

	query, err := gojq.Parse(expression)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeExpression,
			"jq parse failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeExpression,
			"jq compile failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.mu.Lock()
	e.cache[expression] = code
	e.mu.Unlock()
	return nil
}
