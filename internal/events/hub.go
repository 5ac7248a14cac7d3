package events

import "context"

// CanvasEvent is a change notification emitted by a canvas: a graph
// mutation, a selection change, a step status update, or a validation run.
type CanvasEvent struct {
	CanvasID     string `json:"canvas_id"`
	EventType    string `json:"event_type"`
	NodeID       string `json:"node_id,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	Payload      any    `json:"payload,omitempty"`
}

// Filter specifies which events a subscriber wants to receive. Zero-value
// fields match everything.
type Filter struct {
	CanvasID   string   `json:"canvas_id,omitempty"`
	NodeID     string   `json:"node_id,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

// Hub provides pub/sub for canvas change events, so panels next to the
// canvas (step list, inspector, validation badge) can react to mutations
// without polling.
type Hub interface {
	Publish(ctx context.Context, event CanvasEvent) error
	Subscribe(ctx context.Context, filter Filter) (<-chan CanvasEvent, func(), error)
}
