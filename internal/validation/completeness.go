package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/webtrials/flowcanvas/internal/expressions"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

// checkCompleteness runs per-node and per-connection config checks for
// every node regardless of connectivity. Required-field rules fire on
// absent or empty values; expression rules fire only on values that are
// actually present, so an untouched node never reports syntax errors.
func (v *Validator) checkCompleteness(nodes []schema.StepNode, conns []schema.Connection, report *schema.ValidationReport) {
	stepIDs := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		stepIDs[node.ID] = true
	}

	for _, node := range nodes {
		v.checkNode(node, stepIDs, report)
	}

	for _, conn := range conns {
		if conn.Condition == "" {
			continue
		}
		if err := v.cel.Check(conn.Condition); err != nil {
			report.AddConnectionError(conn.ID, schema.IssueInvalidExpression,
				fmt.Sprintf("connection condition does not compile: %s", errMessage(err)))
		}
	}
}

func (v *Validator) checkNode(node schema.StepNode, stepIDs map[string]bool, report *schema.ValidationReport) {
	if node.Label == "" {
		report.AddNodeWarning(node.ID, schema.IssueMissingName,
			fmt.Sprintf("step %s has no name", node.ID))
	}
	if node.ActionVerb == "" {
		report.AddNodeError(node.ID, schema.IssueMissingAction,
			fmt.Sprintf("step %q has no action", nodeName(node)))
	}

	switch node.Kind {
	case schema.StepKindNavigation:
		if configString(node, "url") == "" {
			report.AddNodeError(node.ID, schema.IssueMissingURL,
				fmt.Sprintf("navigation step %q has no URL", nodeName(node)))
		}
	case schema.StepKindAction:
		if configString(node, "selector") == "" {
			report.AddNodeError(node.ID, schema.IssueMissingSelector,
				fmt.Sprintf("action step %q has no selector", nodeName(node)))
		}
	case schema.StepKindAssertion:
		if configString(node, "selector") == "" || configString(node, "expected_value") == "" {
			report.AddNodeError(node.ID, schema.IssueIncompleteAssertion,
				fmt.Sprintf("assertion step %q needs a selector and an expected value", nodeName(node)))
		}
		if pred := configString(node, "expression"); pred != "" {
			if err := v.expr.Check(pred); err != nil {
				report.AddNodeError(node.ID, schema.IssueInvalidExpression,
					fmt.Sprintf("assertion expression does not compile: %s", errMessage(err)))
			}
		}
	case schema.StepKindWait:
		if dur := configString(node, "duration"); dur != "" {
			if _, err := time.ParseDuration(dur); err != nil {
				report.AddNodeError(node.ID, schema.IssueInvalidDuration,
					fmt.Sprintf("wait step %q has invalid duration %q", nodeName(node), dur))
			}
		}
	case schema.StepKindData:
		if query := configString(node, "query"); query != "" {
			if err := v.jq.Check(query); err != nil {
				report.AddNodeError(node.ID, schema.IssueInvalidExpression,
					fmt.Sprintf("data query does not compile: %s", errMessage(err)))
			}
		}
	}

	v.checkReferences(node, stepIDs, report)
}

// checkReferences scans string config values for ${{...}} placeholders.
// Malformed markers are node-scoped errors; references to steps that are
// not in the graph are warnings, since the author may add the step next.
func (v *Validator) checkReferences(node schema.StepNode, stepIDs map[string]bool, report *schema.ValidationReport) {
	for _, key := range sortedKeys(node.Config) {
		value, ok := node.Config[key].(string)
		if !ok || value == "" {
			continue
		}

		refs, err := expressions.ScanReferences(value)
		if err != nil {
			report.AddNodeError(node.ID, schema.IssueMalformedReference,
				fmt.Sprintf("config %q: %s", key, errMessage(err)))
			continue
		}
		for _, ref := range refs {
			if stepID := ref.StepID(); stepID != "" && !stepIDs[stepID] {
				report.AddNodeWarning(node.ID, schema.IssueUnknownStepRef,
					fmt.Sprintf("config %q references unknown step %q", key, stepID))
			}
		}
	}
}

func configString(node schema.StepNode, key string) string {
	if node.Config == nil {
		return ""
	}
	s, _ := node.Config[key].(string)
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// errMessage unwraps the human part of a CanvasError for issue text.
func errMessage(err error) string {
	if ce, ok := err.(*schema.CanvasError); ok {
		return ce.Message
	}
	return err.Error()
}
