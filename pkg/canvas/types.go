package canvas

import (
	"github.com/webtrials/flowcanvas/internal/events"
	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/internal/interaction"
	"github.com/webtrials/flowcanvas/internal/viewmodel"
	"github.com/webtrials/flowcanvas/internal/viewport"
)

// Aliases for every type the façade exchanges, so embedding hosts outside
// this module can name them without reaching into internal packages.
type (
	Point          = viewport.Point
	View           = viewport.View
	NodeUpdate     = graph.NodeUpdate
	PointerButton  = interaction.PointerButton
	StateKind      = interaction.StateKind
	ContextMenu    = interaction.ContextMenu
	ConnectionDrag = interaction.ConnectionDrag
	Geometry       = viewmodel.Config
	Hit            = viewmodel.Hit
	HitKind        = viewmodel.HitKind
	Event          = events.CanvasEvent
	EventFilter    = events.Filter
)

const (
	ButtonPrimary   = interaction.ButtonPrimary
	ButtonSecondary = interaction.ButtonSecondary
)

const (
	StateIdle               = interaction.StateIdle
	StateDraggingNode       = interaction.StateDraggingNode
	StateDraggingConnection = interaction.StateDraggingConnection
	StatePanning            = interaction.StatePanning
	StateContextMenu        = interaction.StateContextMenu
)

const (
	HitBackground = viewmodel.HitBackground
	HitNodeBody   = viewmodel.HitNodeBody
	HitNodeHandle = viewmodel.HitNodeHandle
	HitConnection = viewmodel.HitConnection
)
