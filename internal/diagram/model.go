package diagram

// NodeKind classifies a diagram node by its test step kind, plus the two
// virtual terminals.
type NodeKind string

const (
	NodeKindNavigation NodeKind = "navigation"
	NodeKindAction     NodeKind = "action"
	NodeKindAssertion  NodeKind = "assertion"
	NodeKindWait       NodeKind = "wait"
	NodeKindData       NodeKind = "data"
	NodeKindStart      NodeKind = "start"
	NodeKindEnd        NodeKind = "end"
)

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Title  string
	Nodes  []*Node
	Edges  []Edge
	Levels [][]string
}

// Node represents a single step in the diagram.
type Node struct {
	ID     string
	Label  string
	Kind   NodeKind
	Status *StatusOverlay
}

// StatusOverlay carries the last run state for a node.
type StatusOverlay struct {
	Status string // from schema.StepStatus
}

// Edge represents a connection between two nodes. Label carries the
// connection's condition expression, if any.
type Edge struct {
	From  string
	To    string
	Label string
}
