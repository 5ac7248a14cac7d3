package diagram

import (
	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

// Build constructs a DiagramModel from a canvas graph. Nodes carry their
// step status as an overlay unless it is still pending; connections become
// labeled edges; virtual start/end terminals frame the entry points and
// the sinks so the rendered flow always reads top to bottom.
func Build(store *graph.Store, title string) *DiagramModel {
	nodes := store.Nodes()
	conns := store.Connections()

	incoming := make(map[string]int, len(nodes))
	outgoing := make(map[string]int, len(nodes))
	for _, conn := range conns {
		outgoing[conn.SourceID]++
		incoming[conn.TargetID]++
	}

	diagramNodes := make([]*Node, 0, len(nodes)+2)
	diagramNodes = append(diagramNodes, &Node{ID: "__start__", Label: "Start", Kind: NodeKindStart})
	for _, node := range nodes {
		diagramNodes = append(diagramNodes, stepToNode(node))
	}
	diagramNodes = append(diagramNodes, &Node{ID: "__end__", Label: "End", Kind: NodeKindEnd})

	var edges []Edge
	for _, node := range nodes {
		if incoming[node.ID] == 0 {
			edges = append(edges, Edge{From: "__start__", To: node.ID})
		}
	}
	for _, conn := range conns {
		edges = append(edges, Edge{From: conn.SourceID, To: conn.TargetID, Label: conn.Condition})
	}
	for _, node := range nodes {
		if outgoing[node.ID] == 0 {
			edges = append(edges, Edge{From: node.ID, To: "__end__"})
		}
	}

	levels := make([][]string, 0, 2)
	levels = append(levels, []string{"__start__"})
	levels = append(levels, store.Levels()...)
	levels = append(levels, []string{"__end__"})

	return &DiagramModel{
		Title:  title,
		Nodes:  diagramNodes,
		Edges:  edges,
		Levels: levels,
	}
}

// stepToNode maps a StepNode to a diagram Node.
func stepToNode(node schema.StepNode) *Node {
	out := &Node{
		ID:    node.ID,
		Label: nodeLabel(node),
		Kind:  stepKindToKind(node.Kind),
	}
	if node.Status != "" && node.Status != schema.StepStatusPending {
		out.Status = &StatusOverlay{Status: string(node.Status)}
	}
	return out
}

// stepKindToKind converts a schema.StepKind to a NodeKind.
func stepKindToKind(kind schema.StepKind) NodeKind {
	switch kind {
	case schema.StepKindNavigation:
		return NodeKindNavigation
	case schema.StepKindAssertion:
		return NodeKindAssertion
	case schema.StepKindWait:
		return NodeKindWait
	case schema.StepKindData:
		return NodeKindData
	default:
		return NodeKindAction
	}
}

// nodeLabel creates a human-readable label for a node.
func nodeLabel(node schema.StepNode) string {
	if node.Label != "" {
		return node.Label
	}
	if node.ActionVerb != "" {
		return node.ActionVerb
	}
	return node.ID
}
