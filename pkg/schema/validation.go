package schema

import "fmt"

// Issue codes produced by the graph validator.
const (
	IssueNoSteps             = "NO_STEPS"
	IssueNoEntryPoint        = "NO_ENTRY_POINT"
	IssueMultipleEntryPoints = "MULTIPLE_ENTRY_POINTS"
	IssueOrphanNode          = "ORPHAN_NODE"
	IssueCircularDependency  = "CIRCULAR_DEPENDENCY"
	IssueMissingName         = "MISSING_NAME"
	IssueMissingAction       = "MISSING_ACTION"
	IssueMissingURL          = "MISSING_URL"
	IssueMissingSelector     = "MISSING_SELECTOR"
	IssueIncompleteAssertion = "INCOMPLETE_ASSERTION"
	IssueInvalidExpression   = "INVALID_EXPRESSION"
	IssueInvalidDuration     = "INVALID_DURATION"
	IssueMalformedReference  = "MALFORMED_REFERENCE"
	IssueUnknownStepRef      = "UNKNOWN_STEP_REFERENCE"
)

// ValidationSeverity indicates whether an issue is an error or warning.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue is a single validation problem. NodeID is set for
// node-scoped issues, ConnectionID for edge-scoped ones; graph-level
// issues carry neither.
type ValidationIssue struct {
	Code         string             `json:"code"`
	Message      string             `json:"message"`
	Severity     ValidationSeverity `json:"severity"`
	NodeID       string             `json:"node_id,omitempty"`
	ConnectionID string             `json:"connection_id,omitempty"`
}

// ValidationReport aggregates all issues from a validation pass.
// Issues are data, never errors: warnings surface to the user, errors
// block save/execute at the host's discretion.
type ValidationReport struct {
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// Valid returns true if there are no errors (warnings are acceptable).
func (r *ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// AddError appends an error-severity issue.
func (r *ValidationReport) AddError(code, message string) {
	r.Errors = append(r.Errors, ValidationIssue{
		Code: code, Message: message, Severity: SeverityError,
	})
}

// AddNodeError appends an error-severity issue scoped to a node.
func (r *ValidationReport) AddNodeError(nodeID, code, message string) {
	r.Errors = append(r.Errors, ValidationIssue{
		Code: code, Message: message, Severity: SeverityError, NodeID: nodeID,
	})
}

// AddConnectionError appends an error-severity issue scoped to a connection.
func (r *ValidationReport) AddConnectionError(connID, code, message string) {
	r.Errors = append(r.Errors, ValidationIssue{
		Code: code, Message: message, Severity: SeverityError, ConnectionID: connID,
	})
}

// AddWarning appends a warning-severity issue.
func (r *ValidationReport) AddWarning(code, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{
		Code: code, Message: message, Severity: SeverityWarning,
	})
}

// AddNodeWarning appends a warning-severity issue scoped to a node.
func (r *ValidationReport) AddNodeWarning(nodeID, code, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{
		Code: code, Message: message, Severity: SeverityWarning, NodeID: nodeID,
	})
}

// Merge combines another ValidationReport into this one.
func (r *ValidationReport) Merge(other *ValidationReport) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ToError converts the report to a CanvasError if invalid, nil if valid.
// Used on the hydrate path, where a structurally broken document must be
// rejected rather than surfaced as issues.
func (r *ValidationReport) ToError() error {
	if r.Valid() {
		return nil
	}

	msg := r.Errors[0].Message
	if len(r.Errors) > 1 {
		msg = fmt.Sprintf("validation failed with %d errors", len(r.Errors))
	}

	return NewError(ErrCodeValidation, msg).
		WithDetails(map[string]any{
			"error_count":   len(r.Errors),
			"warning_count": len(r.Warnings),
			"errors":        r.Errors,
			"warnings":      r.Warnings,
		})
}
