// Package validation runs the on-demand health checks over a canvas
// graph: structural document validation on hydrate, then graph shape
// (entry points, orphans, cycles) and per-node completeness before save
// or execute. Issues are data, never errors; warnings never block.
package validation

import (
	"github.com/webtrials/flowcanvas/internal/expressions"
	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

// Validator checks canvas graphs for correctness before save/execute.
type Validator struct {
	document *DocumentValidator
	cel      *expressions.CELEngine
	expr     *expressions.ExprEngine
	jq       *expressions.GoJQEngine
}

// New creates a Validator with all expression engines ready.
func New() (*Validator, error) {
	doc, err := NewDocumentValidator()
	if err != nil {
		return nil, err
	}
	cel, err := expressions.NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Validator{
		document: doc,
		cel:      cel,
		expr:     expressions.NewExprEngine(),
		jq:       expressions.NewGoJQEngine(),
	}, nil
}

// Validate runs the full check sequence over the graph and returns the
// aggregated report. Rules run in a fixed order: empty graph, entry
// points, orphans, cycle detection, then per-node and per-connection
// completeness regardless of connectivity.
func (v *Validator) Validate(store *graph.Store) *schema.ValidationReport {
	report := &schema.ValidationReport{}

	if store == nil {
		report.AddError(schema.IssueNoSteps, "graph is nil")
		return report
	}

	nodes := store.Nodes()
	conns := store.Connections()

	if len(nodes) == 0 {
		report.AddError(schema.IssueNoSteps, "test flow has no steps")
		return report
	}

	checkGraphShape(nodes, conns, report)
	v.checkCompleteness(nodes, conns, report)

	return report
}

// ValidateDocument checks a raw flow document against the embedded JSON
// Schema; used on the hydrate path where a broken document is rejected
// outright rather than surfaced as issues.
func (v *Validator) ValidateDocument(doc *schema.GraphDocument) error {
	return v.document.Validate(doc)
}
