// Package interaction interprets raw pointer events into canvas gestures.
// The host feeds every pointer event in arrival order into a Machine; the
// Machine is the single writer for the view transform, the selection, and
// all drag-driven graph mutations. One gesture is active at a time:
// mutual exclusion is structural, not locked.
package interaction

import (
	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/internal/viewmodel"
	"github.com/webtrials/flowcanvas/internal/viewport"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

// StateKind enumerates the mutually exclusive interaction states.
type StateKind int

const (
	StateIdle StateKind = iota
	StateDraggingNode
	StateDraggingConnection
	StatePanning
	StateContextMenu
)

// PointerButton identifies which button a pointer-down carries.
type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
)

// ContextMenu describes an open context menu: where it was opened and
// what was under the pointer, so the host can pick the menu contents.
type ContextMenu struct {
	Screen viewport.Point
	Target viewmodel.Hit
}

// ConnectionDrag is the in-flight state of a drag-to-connect gesture.
// ScreenCurrent moves with the pointer; no model mutation happens until
// pointer-up lands on a valid target.
type ConnectionDrag struct {
	SourceID      string
	ScreenStart   viewport.Point
	ScreenCurrent viewport.Point
}

// Hooks are called synchronously after committed transitions. Nil hooks
// are skipped.
type Hooks struct {
	// GraphChanged fires after every committed graph mutation the
	// machine performs, with the event type constant as reason.
	GraphChanged func(reason string)
	// SelectionChanged fires when the selected node changes; empty
	// string means the selection was cleared.
	SelectionChanged func(nodeID string)
}

// Machine is the pointer interaction state machine for one canvas.
// Not safe for concurrent use; the canvas façade serializes access.
type Machine struct {
	store *graph.Store
	geom  viewmodel.Config
	view  viewport.View
	hooks Hooks

	state     StateKind
	selection string

	// DraggingNode: incremental-delta scheme. The anchor resets to the
	// current pointer on every move, so mid-drag zooms cannot make the
	// node drift.
	dragNodeID    string
	pointerAnchor viewport.Point

	connDrag ConnectionDrag

	panPointerAnchor viewport.Point
	panOffsetAnchor  viewport.Point

	menu ContextMenu
}

// NewMachine creates a Machine over the given store, geometry and
// initial view.
func NewMachine(store *graph.Store, geom viewmodel.Config, view viewport.View, hooks Hooks) *Machine {
	return &Machine{
		store: store,
		geom:  geom,
		view:  view,
		hooks: hooks,
		state: StateIdle,
	}
}

// State returns the current interaction state.
func (m *Machine) State() StateKind {
	return m.state
}

// View returns the current view transform.
func (m *Machine) View() viewport.View {
	return m.view
}

// Selection returns the selected node ID, or "" when nothing is selected.
func (m *Machine) Selection() string {
	return m.selection
}

// Menu returns the open context menu, if any.
func (m *Machine) Menu() (ContextMenu, bool) {
	return m.menu, m.state == StateContextMenu
}

// Drag returns the in-flight connection drag, if any.
func (m *Machine) Drag() (ConnectionDrag, bool) {
	return m.connDrag, m.state == StateDraggingConnection
}

// PointerDown starts a gesture. Priority mirrors the canvas rules: output
// handle beats node body beats background; a secondary button opens the
// context menu instead. A primary click while the menu is open closes it
// and is then re-evaluated as a fresh click (the host must not forward
// clicks landing inside the rendered menu).
func (m *Machine) PointerDown(screen viewport.Point, button PointerButton) {
	if m.state == StateContextMenu {
		m.state = StateIdle
		m.menu = ContextMenu{}
	}
	if m.state != StateIdle {
		// A drag is already active; pointer-down cannot start another.
		return
	}

	hit := m.geom.HitTest(m.store, m.view, screen)

	if button == ButtonSecondary {
		m.state = StateContextMenu
		m.menu = ContextMenu{Screen: screen, Target: hit}
		return
	}

	switch hit.Kind {
	case viewmodel.HitNodeHandle:
		m.state = StateDraggingConnection
		m.connDrag = ConnectionDrag{SourceID: hit.NodeID, ScreenStart: screen, ScreenCurrent: screen}
		m.setSelection("")
	case viewmodel.HitNodeBody:
		m.state = StateDraggingNode
		m.dragNodeID = hit.NodeID
		m.pointerAnchor = screen
		m.setSelection(hit.NodeID)
	case viewmodel.HitConnection:
		// Clicking an edge neither drags nor pans.
	default:
		m.state = StatePanning
		m.panPointerAnchor = screen
		m.panOffsetAnchor = m.view.Offset
		m.setSelection("")
	}
}

// PointerMove advances the active gesture. Events must arrive in order:
// the node-drag delta accumulates incrementally and reordering would
// make it drift.
func (m *Machine) PointerMove(screen viewport.Point) {
	switch m.state {
	case StateDraggingNode:
		delta := screen.Sub(m.pointerAnchor).Mul(1 / m.view.Scale)
		if node, ok := m.store.Node(m.dragNodeID); ok {
			pos := schema.Position{X: node.Position.X + delta.X, Y: node.Position.Y + delta.Y}
			if err := m.store.MoveNode(m.dragNodeID, pos); err == nil {
				m.notifyGraphChanged(schema.EventNodeMoved)
			}
		}
		m.pointerAnchor = screen
	case StateDraggingConnection:
		m.connDrag.ScreenCurrent = screen
	case StatePanning:
		m.view.Offset = m.panOffsetAnchor.Add(screen.Sub(m.panPointerAnchor))
	}
}

// PointerUp resolves the active gesture. A connection drag commits only
// when the pointer sits over the body of a node other than the source;
// a duplicate edge is treated as "already connected" and dropped
// silently, since re-drawing an existing edge is not a caller bug.
func (m *Machine) PointerUp(screen viewport.Point) error {
	switch m.state {
	case StateDraggingNode:
		m.state = StateIdle
		m.dragNodeID = ""
	case StateDraggingConnection:
		drag := m.connDrag
		m.state = StateIdle
		m.connDrag = ConnectionDrag{}

		hit := m.geom.HitTest(m.store, m.view, screen)
		if (hit.Kind == viewmodel.HitNodeBody || hit.Kind == viewmodel.HitNodeHandle) &&
			hit.NodeID != drag.SourceID {
			_, err := m.store.Connect(drag.SourceID, hit.NodeID)
			if err != nil {
				if schema.ErrorCode(err) == schema.ErrCodeConflict {
					return nil
				}
				return err
			}
			m.notifyGraphChanged(schema.EventConnectionAdded)
		}
	case StatePanning:
		m.state = StateIdle
	}
	return nil
}

// Wheel zooms at the pointer. Zooming is allowed while a drag is in
// progress; the context menu stays put.
func (m *Machine) Wheel(screen viewport.Point, factor float64) {
	if m.state == StateContextMenu {
		return
	}
	m.view = m.view.ZoomAt(screen, factor)
}

// CloseMenu closes the context menu without any side effect, for hosts
// dismissing it programmatically (e.g. Escape).
func (m *Machine) CloseMenu() {
	if m.state == StateContextMenu {
		m.state = StateIdle
		m.menu = ContextMenu{}
	}
}

// Reset treats loss of pointer capture (blur, alt-tab mid-drag) as an
// implicit pointer-up at the last known pointer position, so gestures
// never get stuck.
func (m *Machine) Reset() error {
	switch m.state {
	case StateDraggingNode:
		return m.PointerUp(m.pointerAnchor)
	case StateDraggingConnection:
		// Discard: never commit a connection on an abandoned drag.
		m.state = StateIdle
		m.connDrag = ConnectionDrag{}
		return nil
	case StatePanning:
		return m.PointerUp(m.panPointerAnchor)
	case StateContextMenu:
		m.CloseMenu()
	}
	return nil
}

// Select sets the selection programmatically (host-driven, e.g. from a
// step list next to the canvas).
func (m *Machine) Select(nodeID string) {
	m.setSelection(nodeID)
}

func (m *Machine) setSelection(nodeID string) {
	if m.selection == nodeID {
		return
	}
	m.selection = nodeID
	if m.hooks.SelectionChanged != nil {
		m.hooks.SelectionChanged(nodeID)
	}
}

// ClearSelectionIfDeleted drops the selection when the selected node has
// been removed from the graph by a non-gesture mutation.
func (m *Machine) ClearSelectionIfDeleted() {
	if m.selection != "" && !m.store.HasNode(m.selection) {
		m.setSelection("")
	}
}

func (m *Machine) notifyGraphChanged(reason string) {
	if m.hooks.GraphChanged != nil {
		m.hooks.GraphChanged(reason)
	}
}
