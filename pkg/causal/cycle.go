package causal

import (
	"errors"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// ErrGraphCyclic is returned when an operation requires an acyclic graph
// but the edge relation contains a cycle.
var ErrGraphCyclic = errors.New("graph contains a cycle")

// WouldCreateCycle reports whether inserting a source→target edge would
// create a cycle. A self-loop is unconditionally a cycle; otherwise the edge
// closes a cycle exactly when target can already reach source through the
// existing edge set.
//
// The search is an iterative DFS with an explicit visited set, so it runs in
// O(V+E) and is safe on deep graphs. It has no side effects and is cheap
// enough to call once per displayed candidate.
func WouldCreateCycle(g common.Graph, sourceID, targetID string) bool {
	if sourceID == targetID {
		return true
	}

	children := buildChildIndex(g)
	visited := make(map[string]bool)
	stack := []string{targetID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == sourceID {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		stack = append(stack, children[current]...)
	}

	return false
}

// TopologicalSort returns the node ids in an order where every cause
// precedes its effects (Kahn's algorithm). Returns ErrGraphCyclic if the
// edge relation contains a cycle.
func TopologicalSort(g common.Graph) ([]string, error) {
	children := buildChildIndex(g)

	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		inDegree[e.Target]++
	}

	queue := make([]string, 0)
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	result := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, child := range children[id] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(result) != len(g.Nodes) {
		return nil, ErrGraphCyclic
	}

	return result, nil
}
