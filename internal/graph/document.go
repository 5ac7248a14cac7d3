package graph

import (
	"github.com/google/uuid"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// FromDocument hydrates a Store from a host-supplied GraphDocument,
// enforcing the structural invariants the store maintains for its own
// mutations: unique node IDs, known kinds, finite positions, connection
// endpoints that exist, no self-loops, no duplicate ordered pairs.
// Completeness problems (missing selectors, empty labels) are the
// validator's business, not hydration failures.
func FromDocument(doc *schema.GraphDocument) (*Store, error) {
	if doc == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "graph document is nil")
	}

	s := NewStore()

	for i := range doc.Nodes {
		n := doc.Nodes[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if _, exists := s.nodes[n.ID]; exists {
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "duplicate node id %q", n.ID).WithNode(n.ID)
		}
		if !n.Kind.Valid() {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"node %q has unknown kind %q", n.ID, n.Kind).WithNode(n.ID)
		}
		if !finite(n.Position) {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"node %q has non-finite position", n.ID).WithNode(n.ID)
		}
		if n.Status == "" {
			n.Status = schema.StepStatusPending
		}
		cp := n
		cp.Config = copyConfig(n.Config)
		s.insertNode(&cp)
	}

	for i := range doc.Connections {
		c := doc.Connections[i]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, exists := s.conns[c.ID]; exists {
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "duplicate connection id %q", c.ID)
		}
		if c.SourceID == c.TargetID {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"connection %q is a self-loop on node %q", c.ID, c.SourceID)
		}
		if _, ok := s.nodes[c.SourceID]; !ok {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"connection %q references missing source node %q", c.ID, c.SourceID)
		}
		if _, ok := s.nodes[c.TargetID]; !ok {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"connection %q references missing target node %q", c.ID, c.TargetID)
		}
		key := pairKey{source: c.SourceID, target: c.TargetID}
		if _, exists := s.byPair[key]; exists {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"duplicate connection %s -> %s", c.SourceID, c.TargetID)
		}
		cp := c
		s.conns[cp.ID] = &cp
		s.connOrder = append(s.connOrder, cp.ID)
		s.byPair[key] = cp.ID
	}

	return s, nil
}

// Export serializes the store back to the plain document form the host
// persists. The canvas itself never persists anything.
func (s *Store) Export() *schema.GraphDocument {
	return &schema.GraphDocument{
		Nodes:       s.Nodes(),
		Connections: s.Connections(),
	}
}
