// Package canvas is the embedding surface for the flow canvas core: one
// Canvas owns the graph store, the pointer interaction machine, the
// validator, and the event hub, and serializes every entry point with a
// mutex so an executor goroutine can stream step statuses while the UI
// thread drives gestures.
package canvas

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/webtrials/flowcanvas/internal/diagram"
	"github.com/webtrials/flowcanvas/internal/events"
	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/internal/interaction"
	"github.com/webtrials/flowcanvas/internal/logging"
	"github.com/webtrials/flowcanvas/internal/validation"
	"github.com/webtrials/flowcanvas/internal/viewmodel"
	"github.com/webtrials/flowcanvas/internal/viewport"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

// Canvas is a single canvas instance. All methods are safe for concurrent
// use.
type Canvas struct {
	mu sync.Mutex

	id        string
	cfg       Config
	logger    *slog.Logger
	store     *graph.Store
	machine   *interaction.Machine
	validator *validation.Validator
	hub       *events.MemoryHub

	gestureID string
}

// New creates a Canvas with an empty graph.
func New(cfg Config) (*Canvas, error) {
	if cfg.CanvasID == "" {
		cfg.CanvasID = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(logging.NewCorrelationHandler(slog.Default().Handler()))
	}

	validator, err := validation.New()
	if err != nil {
		return nil, err
	}

	c := &Canvas{
		id:        cfg.CanvasID,
		cfg:       cfg,
		logger:    logger,
		store:     graph.NewStore(),
		validator: validator,
		hub:       events.NewMemoryHub(),
	}
	c.machine = c.newMachine()
	return c, nil
}

func (c *Canvas) newMachine() *interaction.Machine {
	view := viewport.NewView(c.cfg.MinScale, c.cfg.MaxScale)
	hooks := interaction.Hooks{
		GraphChanged: func(reason string) {
			c.publish(events.CanvasEvent{EventType: reason})
		},
		SelectionChanged: func(nodeID string) {
			c.publish(events.CanvasEvent{EventType: schema.EventSelectionChanged, NodeID: nodeID})
		},
	}
	return interaction.NewMachine(c.store, c.cfg.geometry(), view, hooks)
}

// ID returns the canvas ID.
func (c *Canvas) ID() string {
	return c.id
}

// --- Document lifecycle ---

// Hydrate replaces the canvas graph with the given document. The document
// is schema-checked and semantically checked first; on any error the
// current graph is left untouched. The view transform and selection reset.
func (c *Canvas) Hydrate(doc *schema.GraphDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validator.ValidateDocument(doc); err != nil {
		return err
	}
	store, err := graph.FromDocument(doc)
	if err != nil {
		return err
	}

	c.store = store
	c.machine = c.newMachine()
	c.publish(events.CanvasEvent{EventType: schema.EventGraphChanged})
	return nil
}

// Export returns the graph as a plain document, suitable for JSON
// encoding. The result shares nothing with canvas internals.
func (c *Canvas) Export() *schema.GraphDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Export()
}

// --- Graph mutations ---

// AddNode creates a node of the given kind at the given logical position
// and returns its ID.
func (c *Canvas) AddNode(kind schema.StepKind, position schema.Position) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !kind.Valid() {
		return "", schema.NewErrorf(schema.ErrCodeInvalidOperation, "unknown step kind %q", kind)
	}
	id := c.store.AddNode(kind, position)
	c.logger.InfoContext(c.ctx(id), "node added", slog.String("kind", string(kind)))
	c.publish(events.CanvasEvent{EventType: schema.EventNodeAdded, NodeID: id})
	return id, nil
}

// UpdateNode applies a partial update to a node's editable fields.
func (c *Canvas) UpdateNode(id string, update graph.NodeUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.UpdateNode(id, update); err != nil {
		return err
	}
	c.publish(events.CanvasEvent{EventType: schema.EventNodeUpdated, NodeID: id})
	return nil
}

// MoveNode places a node at a new logical position.
func (c *Canvas) MoveNode(id string, position schema.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.MoveNode(id, position); err != nil {
		return err
	}
	c.publish(events.CanvasEvent{EventType: schema.EventNodeMoved, NodeID: id})
	return nil
}

// DeleteNode removes a node and every connection touching it.
func (c *Canvas) DeleteNode(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteNode(id); err != nil {
		return err
	}
	c.machine.ClearSelectionIfDeleted()
	c.logger.InfoContext(c.ctx(id), "node deleted")
	c.publish(events.CanvasEvent{EventType: schema.EventNodeRemoved, NodeID: id})
	return nil
}

// DuplicateNode copies a node (fields and config, no connections) at an
// offset from the original and returns the new node's ID.
func (c *Canvas) DuplicateNode(id string, offset schema.Position) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	newID, err := c.store.DuplicateNode(id, offset)
	if err != nil {
		return "", err
	}
	c.publish(events.CanvasEvent{EventType: schema.EventNodeAdded, NodeID: newID})
	return newID, nil
}

// Connect adds a directed connection and returns its ID.
func (c *Canvas) Connect(sourceID, targetID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	connID, err := c.store.Connect(sourceID, targetID)
	if err != nil {
		return "", err
	}
	c.publish(events.CanvasEvent{EventType: schema.EventConnectionAdded, ConnectionID: connID})
	return connID, nil
}

// Disconnect removes a connection.
func (c *Canvas) Disconnect(connID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Disconnect(connID); err != nil {
		return err
	}
	c.publish(events.CanvasEvent{EventType: schema.EventConnectionRemoved, ConnectionID: connID})
	return nil
}

// SetConnectionCondition sets or clears a connection's condition
// expression. The expression is not compile-checked here; Validate
// reports broken conditions.
func (c *Canvas) SetConnectionCondition(connID, condition string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SetConnectionCondition(connID, condition); err != nil {
		return err
	}
	c.publish(events.CanvasEvent{EventType: schema.EventGraphChanged, ConnectionID: connID})
	return nil
}

// ApplyStatus records a step status reported by the external executor.
// Safe to call from any goroutine at any time, including mid-gesture;
// only the node's status changes.
func (c *Canvas) ApplyStatus(nodeID string, status schema.StepStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SetStatus(nodeID, status); err != nil {
		return err
	}
	c.publish(events.CanvasEvent{
		EventType: schema.EventNodeStatusChanged,
		NodeID:    nodeID,
		Payload:   string(status),
	})
	return nil
}

// --- Accessors ---

// Node returns a copy of the node with the given ID.
func (c *Canvas) Node(id string) (schema.StepNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Node(id)
}

// Nodes returns copies of all nodes in insertion order.
func (c *Canvas) Nodes() []schema.StepNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Nodes()
}

// Connections returns copies of all connections in insertion order.
func (c *Canvas) Connections() []schema.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Connections()
}

// Selection returns the selected node ID, or "" when nothing is selected.
func (c *Canvas) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Selection()
}

// View returns the current view transform.
func (c *Canvas) View() viewport.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.View()
}

// Geometry returns the view-model geometry derived from the canvas
// configuration, for hosts computing boxes and edge paths themselves.
func (c *Canvas) Geometry() viewmodel.Config {
	return c.cfg.geometry()
}

// --- Pointer events ---

// PointerDown forwards a pointer-down to the interaction machine. Every
// pointer-down opens a fresh gesture for log correlation.
func (c *Canvas) PointerDown(screen viewport.Point, button interaction.PointerButton) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gestureID = uuid.NewString()
	c.logger.DebugContext(c.ctx(""), "pointer down",
		slog.Float64("x", screen.X), slog.Float64("y", screen.Y))
	c.machine.PointerDown(screen, button)
}

// PointerMove forwards a pointer-move to the interaction machine.
func (c *Canvas) PointerMove(screen viewport.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machine.PointerMove(screen)
}

// PointerUp forwards a pointer-up to the interaction machine and closes
// the current gesture.
func (c *Canvas) PointerUp(screen viewport.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.machine.PointerUp(screen)
	c.gestureID = ""
	return err
}

// Wheel forwards a wheel zoom to the interaction machine.
func (c *Canvas) Wheel(screen viewport.Point, factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machine.Wheel(screen, factor)
}

// ResetPointer resolves any in-flight gesture; hosts call it on loss of
// pointer capture (window blur).
func (c *Canvas) ResetPointer() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.machine.Reset()
	c.gestureID = ""
	return err
}

// Select sets the selection programmatically.
func (c *Canvas) Select(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machine.Select(nodeID)
}

// InteractionState returns the machine's current state, for hosts that
// render drag previews or the context menu.
func (c *Canvas) InteractionState() interaction.StateKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Menu returns the open context menu, if any.
func (c *Canvas) Menu() (interaction.ContextMenu, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Menu()
}

// ConnectionDrag returns the in-flight connection drag, if any.
func (c *Canvas) ConnectionDrag() (interaction.ConnectionDrag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Drag()
}

// --- Validation ---

// Validate runs the full rule pipeline over the current graph and returns
// the report. Issues are data; Validate itself never fails.
func (c *Canvas) Validate() *schema.ValidationReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := c.validator.Validate(c.store)
	c.logger.InfoContext(c.ctx(""), "validation run",
		slog.Int("errors", len(report.Errors)),
		slog.Int("warnings", len(report.Warnings)))
	c.publish(events.CanvasEvent{
		EventType: schema.EventValidationRun,
		Payload:   map[string]int{"errors": len(report.Errors), "warnings": len(report.Warnings)},
	})
	return report
}

// --- Layout and export surfaces ---

// AutoLayout repositions every node on a topological grid: one column per
// dependency level, rows within a column in graph order, spaced by the
// configured gaps. The top-left corner of the previous layout is kept so
// the flow does not jump under the current view.
func (c *Canvas) AutoLayout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	levels := c.store.Levels()
	if len(levels) == 0 {
		return
	}

	origin := c.layoutOrigin()
	stepX := c.cfg.NodeWidth + c.cfg.LayoutGapX
	stepY := c.cfg.NodeHeight + c.cfg.LayoutGapY

	for col, level := range levels {
		for row, id := range level {
			pos := schema.Position{
				X: origin.X + float64(col)*stepX,
				Y: origin.Y + float64(row)*stepY,
			}
			// Node IDs come from Levels; the move cannot fail.
			_ = c.store.MoveNode(id, pos)
		}
	}
	c.publish(events.CanvasEvent{EventType: schema.EventGraphChanged})
}

func (c *Canvas) layoutOrigin() schema.Position {
	nodes := c.store.Nodes()
	origin := nodes[0].Position
	for _, node := range nodes[1:] {
		if node.Position.X < origin.X {
			origin.X = node.Position.X
		}
		if node.Position.Y < origin.Y {
			origin.Y = node.Position.Y
		}
	}
	return origin
}

// Mermaid renders the current graph as a Mermaid flowchart with status
// overlays.
func (c *Canvas) Mermaid(title string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return diagram.RenderMermaid(diagram.Build(c.store, title))
}

// PNG renders the current graph as a PNG flow diagram with status
// overlays.
func (c *Canvas) PNG(title string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return diagram.RenderImage(diagram.Build(c.store, title))
}

// --- Events ---

// Subscribe registers an event subscriber with the given filter. The
// returned cancel func must be called to release the subscription.
func (c *Canvas) Subscribe(ctx context.Context, filter events.Filter) (<-chan events.CanvasEvent, func(), error) {
	return c.hub.Subscribe(ctx, filter)
}

func (c *Canvas) publish(event events.CanvasEvent) {
	event.CanvasID = c.id
	_ = c.hub.Publish(context.Background(), event)
}

// ctx builds a correlation context for logging. Callers hold c.mu.
func (c *Canvas) ctx(nodeID string) context.Context {
	return logging.WithIDs(context.Background(), c.id, nodeID, c.gestureID)
}
