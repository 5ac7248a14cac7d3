// Package graph holds the canvas node model: step nodes with logical
// positions and the directed connections between them. All mutations go
// through Store operations so graph invariants hold; callers never write
// node fields directly.
package graph

import (
	"math"

	"github.com/google/uuid"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

type pairKey struct {
	source, target string
}

// Store is the aggregate root for a single canvas graph. Nodes iterate in
// insertion order so the host UI renders a stable stacking order.
//
// Store is not safe for concurrent use; the canvas façade serializes
// access to it.
type Store struct {
	nodes     map[string]*schema.StepNode
	nodeOrder []string

	conns     map[string]*schema.Connection
	connOrder []string
	byPair    map[pairKey]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nodes:  make(map[string]*schema.StepNode),
		conns:  make(map[string]*schema.Connection),
		byPair: make(map[pairKey]string),
	}
}

// NodeUpdate is a partial update applied by UpdateNode. Nil pointer fields
// are left untouched. A non-nil Config replaces the node's config wholesale
// (per-kind config shapes make key-wise merging ambiguous).
type NodeUpdate struct {
	Label       *string
	Description *string
	ActionVerb  *string
	Config      map[string]any
}

// AddNode creates a node of the given kind at the given logical position,
// with the kind's default action verb and config skeleton, and returns the
// fresh node ID.
func (s *Store) AddNode(kind schema.StepKind, position schema.Position) string {
	id := uuid.NewString()
	node := &schema.StepNode{
		ID:         id,
		Kind:       kind,
		Position:   position,
		ActionVerb: kind.DefaultActionVerb(),
		Config:     kind.DefaultConfig(),
		Status:     schema.StepStatusPending,
	}
	s.insertNode(node)
	return id
}

// UpdateNode merges the partial update into an existing node. Changing a
// node's kind is disallowed: config shapes differ per kind, so callers
// must delete and recreate instead.
func (s *Store) UpdateNode(id string, update NodeUpdate) error {
	node, ok := s.nodes[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", id).WithNode(id)
	}

	if update.Label != nil {
		node.Label = *update.Label
	}
	if update.Description != nil {
		node.Description = *update.Description
	}
	if update.ActionVerb != nil {
		node.ActionVerb = *update.ActionVerb
	}
	if update.Config != nil {
		node.Config = copyConfig(update.Config)
	}
	return nil
}

// MoveNode sets a node's logical position. The canvas is unbounded, so
// there is no bounds check, but positions must stay finite.
func (s *Store) MoveNode(id string, position schema.Position) error {
	node, ok := s.nodes[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", id).WithNode(id)
	}
	if !finite(position) {
		return schema.NewErrorf(schema.ErrCodeInvalidOperation,
			"position (%v, %v) is not finite", position.X, position.Y).WithNode(id)
	}
	node.Position = position
	return nil
}

// DeleteNode removes a node and cascades: every connection touching the
// node is removed with it.
func (s *Store) DeleteNode(id string) error {
	if _, ok := s.nodes[id]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", id).WithNode(id)
	}

	for _, connID := range s.connOrder {
		conn := s.conns[connID]
		if conn != nil && (conn.SourceID == id || conn.TargetID == id) {
			s.removeConnection(connID)
		}
	}
	s.compactConnOrder()

	delete(s.nodes, id)
	for i, nid := range s.nodeOrder {
		if nid == id {
			s.nodeOrder = append(s.nodeOrder[:i], s.nodeOrder[i+1:]...)
			break
		}
	}
	return nil
}

// DuplicateNode copies a node, offsetting its position. The copy keeps
// every field except id and position and starts with no connections.
func (s *Store) DuplicateNode(id string, offset schema.Position) (string, error) {
	src, ok := s.nodes[id]
	if !ok {
		return "", schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", id).WithNode(id)
	}

	dup := *src
	dup.ID = uuid.NewString()
	dup.Position = schema.Position{X: src.Position.X + offset.X, Y: src.Position.Y + offset.Y}
	dup.Config = copyConfig(src.Config)
	s.insertNode(&dup)
	return dup.ID, nil
}

// Connect creates a directed connection from source to target and returns
// its ID. Self-loops are structurally disallowed; cycles through longer
// paths are permitted here and only flagged by the validator.
func (s *Store) Connect(sourceID, targetID string) (string, error) {
	if sourceID == targetID {
		return "", schema.NewErrorf(schema.ErrCodeInvalidOperation,
			"node %s cannot connect to itself", sourceID).WithNode(sourceID)
	}
	if _, ok := s.nodes[sourceID]; !ok {
		return "", schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", sourceID).WithNode(sourceID)
	}
	if _, ok := s.nodes[targetID]; !ok {
		return "", schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", targetID).WithNode(targetID)
	}

	key := pairKey{source: sourceID, target: targetID}
	if existing, ok := s.byPair[key]; ok {
		return "", schema.NewErrorf(schema.ErrCodeConflict,
			"connection %s -> %s already exists", sourceID, targetID).
			WithDetails(map[string]any{"connection_id": existing})
	}

	conn := &schema.Connection{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		TargetID: targetID,
	}
	s.conns[conn.ID] = conn
	s.connOrder = append(s.connOrder, conn.ID)
	s.byPair[key] = conn.ID
	return conn.ID, nil
}

// Disconnect removes a connection by ID.
func (s *Store) Disconnect(connID string) error {
	if _, ok := s.conns[connID]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "connection %s does not exist", connID)
	}
	s.removeConnection(connID)
	s.compactConnOrder()
	return nil
}

// SetConnectionCondition attaches (or clears) the CEL condition the
// executor evaluates to decide whether the edge is taken.
func (s *Store) SetConnectionCondition(connID, condition string) error {
	conn, ok := s.conns[connID]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "connection %s does not exist", connID)
	}
	conn.Condition = condition
	return nil
}

// SetStatus applies an executor-reported status to a node. Position and
// every other authored field are untouched, so status updates are safe to
// apply mid-drag.
func (s *Store) SetStatus(id string, status schema.StepStatus) error {
	node, ok := s.nodes[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %s does not exist", id).WithNode(id)
	}
	node.Status = status
	return nil
}

// Node returns a copy of the node with the given ID.
func (s *Store) Node(id string) (schema.StepNode, bool) {
	node, ok := s.nodes[id]
	if !ok {
		return schema.StepNode{}, false
	}
	out := *node
	out.Config = copyConfig(node.Config)
	return out, true
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []schema.StepNode {
	out := make([]schema.StepNode, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		node := s.nodes[id]
		cp := *node
		cp.Config = copyConfig(node.Config)
		out = append(out, cp)
	}
	return out
}

// Connection returns a copy of the connection with the given ID.
func (s *Store) Connection(id string) (schema.Connection, bool) {
	conn, ok := s.conns[id]
	if !ok {
		return schema.Connection{}, false
	}
	return *conn, true
}

// Connections returns copies of all connections in insertion order.
func (s *Store) Connections() []schema.Connection {
	out := make([]schema.Connection, 0, len(s.connOrder))
	for _, id := range s.connOrder {
		out = append(out, *s.conns[id])
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (s *Store) NodeCount() int {
	return len(s.nodeOrder)
}

// ConnectionCount returns the number of connections in the graph.
func (s *Store) ConnectionCount() int {
	return len(s.connOrder)
}

// HasNode reports whether a node with the given ID exists.
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

func (s *Store) insertNode(node *schema.StepNode) {
	s.nodes[node.ID] = node
	s.nodeOrder = append(s.nodeOrder, node.ID)
}

// removeConnection clears the maps but leaves a tombstone in connOrder;
// compactConnOrder sweeps tombstones after the caller's loop finishes.
func (s *Store) removeConnection(connID string) {
	conn := s.conns[connID]
	delete(s.byPair, pairKey{source: conn.SourceID, target: conn.TargetID})
	delete(s.conns, connID)
}

func (s *Store) compactConnOrder() {
	kept := s.connOrder[:0]
	for _, id := range s.connOrder {
		if _, ok := s.conns[id]; ok {
			kept = append(kept, id)
		}
	}
	s.connOrder = kept
}

func finite(p schema.Position) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// copyConfig deep-copies the one level of nesting config values use.
func copyConfig(config map[string]any) map[string]any {
	if config == nil {
		return nil
	}
	out := make(map[string]any, len(config))
	for k, v := range config {
		if nested, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(nested))
			for nk, nv := range nested {
				inner[nk] = nv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}
