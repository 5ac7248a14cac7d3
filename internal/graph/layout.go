package graph

// Levels groups node IDs into dependency layers using Kahn's algorithm:
// level 0 holds the entry points, each following level holds the nodes
// whose incoming connections are all satisfied by earlier levels. Nodes
// caught in a cycle never reach in-degree zero; they are appended as one
// final level so every node is placed even on an invalid graph.
func (s *Store) Levels() [][]string {
	if len(s.nodeOrder) == 0 {
		return nil
	}

	inDegree := make(map[string]int, len(s.nodeOrder))
	outgoing := make(map[string][]string, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		inDegree[id] = 0
	}
	for _, connID := range s.connOrder {
		conn := s.conns[connID]
		if conn == nil {
			continue
		}
		inDegree[conn.TargetID]++
		outgoing[conn.SourceID] = append(outgoing[conn.SourceID], conn.TargetID)
	}

	var levels [][]string
	placed := make(map[string]bool, len(s.nodeOrder))

	current := make([]string, 0)
	for _, id := range s.nodeOrder {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	for len(current) > 0 {
		levels = append(levels, current)
		var next []string
		for _, id := range current {
			placed[id] = true
			for _, target := range outgoing[id] {
				inDegree[target]--
				if inDegree[target] == 0 {
					next = append(next, target)
				}
			}
		}
		current = next
	}

	// Cycle remainder, in insertion order.
	var rest []string
	for _, id := range s.nodeOrder {
		if !placed[id] {
			rest = append(rest, id)
		}
	}
	if len(rest) > 0 {
		levels = append(levels, rest)
	}

	return levels
}
