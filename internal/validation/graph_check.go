package validation

import (
	"fmt"
	"strings"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// checkGraphShape runs the connectivity rules: entry points, orphans,
// cycle detection. Node iteration order is the store's insertion order,
// so issue ordering is deterministic.
func checkGraphShape(nodes []schema.StepNode, conns []schema.Connection, report *schema.ValidationReport) {
	incoming := make(map[string]int, len(nodes))
	outgoing := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))

	for _, conn := range conns {
		incoming[conn.TargetID]++
		outgoing[conn.SourceID]++
		adjacency[conn.SourceID] = append(adjacency[conn.SourceID], conn.TargetID)
	}

	// Entry points: nodes with no incoming connections.
	var entryPoints []string
	for _, node := range nodes {
		if incoming[node.ID] == 0 {
			entryPoints = append(entryPoints, node.ID)
		}
	}

	switch {
	case len(entryPoints) == 0:
		report.AddError(schema.IssueNoEntryPoint,
			"no entry point: every step has an incoming connection")
	case len(entryPoints) > 1:
		report.AddWarning(schema.IssueMultipleEntryPoints,
			fmt.Sprintf("%d entry points found; the executor starts from all of them", len(entryPoints)))
	}

	// Orphans only matter once the flow has more than one step.
	if len(nodes) > 1 {
		for _, node := range nodes {
			if incoming[node.ID] == 0 && outgoing[node.ID] == 0 {
				report.AddNodeWarning(node.ID, schema.IssueOrphanNode,
					fmt.Sprintf("step %q is not connected to the flow", nodeName(node)))
			}
		}
	}

	if cycle := findCycle(nodes, adjacency); len(cycle) > 0 {
		report.AddError(schema.IssueCircularDependency,
			fmt.Sprintf("circular dependency: %s", strings.Join(cycle, " -> ")))
	}
}

const (
	colorWhite = 0 // unvisited
	colorGray  = 1 // on the recursion stack
	colorBlack = 2 // fully explored
)

// findCycle runs iterative DFS with white-gray-black coloring and returns
// the first cycle found as a node-ID path (closed: first == last), or nil.
// Detection stops at the first cycle; enumerating all of them helps nobody.
func findCycle(nodes []schema.StepNode, adjacency map[string][]string) []string {
	color := make(map[string]int, len(nodes))
	parent := make(map[string]string, len(nodes))

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = colorGray
		for _, next := range adjacency[id] {
			switch color[next] {
			case colorWhite:
				parent[next] = id
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			case colorGray:
				// Back edge: walk parents from id back to next.
				cycle := []string{next}
				for cur := id; ; cur = parent[cur] {
					cycle = append(cycle, cur)
					if cur == next {
						break
					}
				}
				reverse(cycle)
				return cycle
			}
		}
		color[id] = colorBlack
		return nil
	}

	for _, node := range nodes {
		if color[node.ID] == colorWhite {
			if cycle := visit(node.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// nodeName prefers the author-facing label, falling back to the ID.
func nodeName(node schema.StepNode) string {
	if node.Label != "" {
		return node.Label
	}
	return node.ID
}
