package schema

// GraphDocument is the JSON-serializable flow format exchanged with the
// host: hydrated into a canvas on load, exported back on save.
type GraphDocument struct {
	Nodes       []StepNode     `json:"nodes"`
	Connections []Connection   `json:"connections,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// StepNode is a single test action in the visual flow.
type StepNode struct {
	ID          string         `json:"id"`
	Kind        StepKind       `json:"kind"`
	Position    Position       `json:"position"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	ActionVerb  string         `json:"action_verb"`
	Config      map[string]any `json:"config,omitempty"`
	Status      StepStatus     `json:"status,omitempty"`
}

// Position is a point in logical canvas space. Coordinates must be finite.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connection is a directed edge declaring that one step leads to another.
// Condition, when non-empty, is a CEL expression the executor evaluates to
// decide whether the edge is taken.
type Connection struct {
	ID        string `json:"id"`
	SourceID  string `json:"source_id"`
	TargetID  string `json:"target_id"`
	Condition string `json:"condition,omitempty"`
}

// StepKind classifies a step and determines its required config fields.
type StepKind string

const (
	StepKindNavigation StepKind = "navigation"
	StepKindAction     StepKind = "action"
	StepKindAssertion  StepKind = "assertion"
	StepKindWait       StepKind = "wait"
	StepKindData       StepKind = "data"
)

// KnownStepKinds lists every valid StepKind.
var KnownStepKinds = []StepKind{
	StepKindNavigation,
	StepKindAction,
	StepKindAssertion,
	StepKindWait,
	StepKindData,
}

// Valid reports whether k is a known step kind.
func (k StepKind) Valid() bool {
	for _, known := range KnownStepKinds {
		if k == known {
			return true
		}
	}
	return false
}

// DefaultActionVerb returns the action verb a freshly created node of
// this kind starts with.
func (k StepKind) DefaultActionVerb() string {
	switch k {
	case StepKindNavigation:
		return "navigate"
	case StepKindAction:
		return "click"
	case StepKindAssertion:
		return "assert"
	case StepKindWait:
		return "wait"
	case StepKindData:
		return "extract"
	default:
		return ""
	}
}

// DefaultConfig returns the config skeleton for a freshly created node of
// this kind. Keys are present with empty values so the host UI can render
// the right form fields immediately.
func (k StepKind) DefaultConfig() map[string]any {
	switch k {
	case StepKindNavigation:
		return map[string]any{"url": ""}
	case StepKindAction:
		return map[string]any{"selector": ""}
	case StepKindAssertion:
		return map[string]any{"selector": "", "expected_value": ""}
	case StepKindWait:
		return map[string]any{"duration": "1s"}
	case StepKindData:
		return map[string]any{"query": "", "variable": ""}
	default:
		return map[string]any{}
	}
}

// StepStatus is the runtime state of a step, written by the external
// executor and read-only to the canvas.
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusRunning StepStatus = "running"
	StepStatusPassed  StepStatus = "passed"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
)
