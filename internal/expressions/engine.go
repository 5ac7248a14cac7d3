// Package expressions compile-checks the expressions test authors embed
// in step config and connection conditions. The canvas never evaluates
// anything (execution belongs to the external test runner), but catching
// a syntax error at authoring time beats failing the run.
package expressions

// Engine compile-checks expressions of one language.
// Three implementations: CEL (connection conditions), Expr (assertion
// predicates), GoJQ (data extraction queries).
type Engine interface {
	Name() string
	Check(expression string) error
}
