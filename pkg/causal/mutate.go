package causal

import (
	"errors"
	"fmt"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

var (
	// ErrDuplicateEdge is returned when an edge for the same
	// (source, target) pair already exists.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrWouldCreateCycle is returned when inserting an edge would
	// violate acyclicity.
	ErrWouldCreateCycle = errors.New("edge would create a cycle")

	// ErrNodeExists is returned when a node id collides with an
	// existing node.
	ErrNodeExists = errors.New("node already exists")

	// ErrNodeNotFound is returned when an operation names a node that
	// is not in the graph.
	ErrNodeNotFound = errors.New("node not found")
)

func cloneNodes(g common.Graph) []common.Node {
	nodes := make([]common.Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	return nodes
}

func cloneEdges(g common.Graph) []common.Edge {
	edges := make([]common.Edge, len(g.Edges))
	copy(edges, g.Edges)
	return edges
}

// AddNode appends a node without validation. Callers that accept external
// input must pre-check id collisions with GetNode.
func AddNode(g common.Graph, n common.Node) common.Graph {
	g.Nodes = append(cloneNodes(g), n)
	return g
}

// AddEdge appends an edge without validation. Use AddEdgeSafe unless the
// edge has already been validated.
func AddEdge(g common.Graph, e common.Edge) common.Graph {
	g.Edges = append(cloneEdges(g), e)
	return g
}

// AddEdgeSafe validates and inserts a source→target edge. It fails with
// ErrNodeNotFound if either endpoint is missing, ErrDuplicateEdge if the
// pair already exists and ErrWouldCreateCycle if the insertion would close
// a cycle. On failure the input graph is returned unchanged.
func AddEdgeSafe(g common.Graph, sourceID, targetID string) (common.Graph, error) {
	for _, id := range []string{sourceID, targetID} {
		if _, ok := GetNode(g, id); !ok {
			return g, fmt.Errorf("edge endpoint %q: %w", id, ErrNodeNotFound)
		}
	}

	for _, e := range g.Edges {
		if e.Source == sourceID && e.Target == targetID {
			return g, ErrDuplicateEdge
		}
	}

	if WouldCreateCycle(g, sourceID, targetID) {
		return g, ErrWouldCreateCycle
	}

	return AddEdge(g, common.Edge{
		ID:     EdgeID(sourceID, targetID),
		Source: sourceID,
		Target: targetID,
	}), nil
}

// RemoveEdge drops every edge matching the (source, target) pair.
func RemoveEdge(g common.Graph, sourceID, targetID string) common.Graph {
	edges := make([]common.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source == sourceID && e.Target == targetID {
			continue
		}
		edges = append(edges, e)
	}
	g.Edges = edges
	return g
}

// RemoveNode deletes the node and prunes every edge referencing it, so
// referential integrity holds after any delete.
func RemoveNode(g common.Graph, id string) common.Graph {
	nodes := make([]common.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == id {
			continue
		}
		nodes = append(nodes, n)
	}

	edges := make([]common.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			continue
		}
		edges = append(edges, e)
	}

	g.Nodes = nodes
	g.Edges = edges
	return g
}
