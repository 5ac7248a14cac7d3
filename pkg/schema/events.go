package schema

// Event type constants emitted by the canvas event hub.
const (
	EventGraphChanged      = "graph_changed"
	EventNodeAdded         = "node_added"
	EventNodeUpdated       = "node_updated"
	EventNodeMoved         = "node_moved"
	EventNodeRemoved       = "node_removed"
	EventConnectionAdded   = "connection_added"
	EventConnectionRemoved = "connection_removed"
	EventNodeStatusChanged = "node_status_changed"
	EventSelectionChanged  = "selection_changed"
	EventValidationRun     = "validation_run"
)
