// Package causal implements the causal DAG engine: pure query and mutation
// functions over immutable Graph values, acyclicity-preserving edit
// operations, and the condense/expand structural transforms.
//
// No function in this package mutates its Graph argument. Mutations return a
// fresh Graph value; the caller owns the single mutable reference.
package causal

import (
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// NodeWithDegree pairs a node with its shortest-path distance (in edges)
// from a reference node. Degree 1 is a parent/child, degree 2 a
// grandparent/grandchild, and so on.
type NodeWithDegree struct {
	Node   common.Node `json:"node"`
	Degree int         `json:"degree"`
}

// EdgeID builds the canonical edge identifier for a (source, target) pair.
func EdgeID(source, target string) string {
	return source + "->" + target
}

// GetNode returns the node with the given id, if present.
func GetNode(g common.Graph, id string) (common.Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return common.Node{}, false
}

// buildParentIndex maps each node id to the ids of its direct causes,
// in edge order.
func buildParentIndex(g common.Graph) map[string][]string {
	parents := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		parents[e.Target] = append(parents[e.Target], e.Source)
	}
	return parents
}

// buildChildIndex maps each node id to the ids of its direct effects,
// in edge order.
func buildChildIndex(g common.Graph) map[string][]string {
	children := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}
	return children
}

func nodesByID(g common.Graph) map[string]common.Node {
	byID := make(map[string]common.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	return byID
}

func collectNodes(g common.Graph, ids []string) []common.Node {
	byID := nodesByID(g)
	result := make([]common.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			result = append(result, n)
		}
	}
	return result
}

// GetImmediateUpstream returns the direct causes (parents) of the node.
// A node is never its own parent, so the result cannot contain id itself.
func GetImmediateUpstream(g common.Graph, id string) []common.Node {
	return collectNodes(g, buildParentIndex(g)[id])
}

// GetImmediateDownstream returns the direct effects (children) of the node.
func GetImmediateDownstream(g common.Graph, id string) []common.Node {
	return collectNodes(g, buildChildIndex(g)[id])
}

// walkWithDegrees runs a BFS from id over the given adjacency and assigns
// each reachable node its shortest-path distance. A node reachable by
// multiple paths keeps its minimum distance because BFS visits nodes in
// ascending distance order. The start node itself is excluded.
func walkWithDegrees(g common.Graph, id string, adjacency map[string][]string) []NodeWithDegree {
	byID := nodesByID(g)

	type queueItem struct {
		id     string
		degree int
	}

	visited := map[string]bool{id: true}
	queue := []queueItem{{id: id, degree: 0}}
	result := make([]NodeWithDegree, 0)

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[item.id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, queueItem{id: next, degree: item.degree + 1})
			if n, ok := byID[next]; ok {
				result = append(result, NodeWithDegree{Node: n, Degree: item.degree + 1})
			}
		}
	}

	return result
}

// GetUpstreamWithDegrees returns every ancestor of the node paired with its
// minimum distance, ordered by ascending degree. Degree 1 entries are exactly
// the immediate parents.
func GetUpstreamWithDegrees(g common.Graph, id string) []NodeWithDegree {
	return walkWithDegrees(g, id, buildParentIndex(g))
}

// GetDownstreamWithDegrees returns every descendant of the node paired with
// its minimum distance, ordered by ascending degree.
func GetDownstreamWithDegrees(g common.Graph, id string) []NodeWithDegree {
	return walkWithDegrees(g, id, buildChildIndex(g))
}

// GetUnconnectedUpstream returns every node other than id that has no direct
// edge into id. Transitive ancestors without a direct edge are included;
// this deliberately looks only one hop away.
func GetUnconnectedUpstream(g common.Graph, id string) []common.Node {
	direct := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Target == id {
			direct[e.Source] = true
		}
	}

	result := make([]common.Node, 0)
	for _, n := range g.Nodes {
		if n.ID != id && !direct[n.ID] {
			result = append(result, n)
		}
	}
	return result
}

// GetUnconnectedDownstream returns every node other than id that has no
// direct edge out of id.
func GetUnconnectedDownstream(g common.Graph, id string) []common.Node {
	direct := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Source == id {
			direct[e.Target] = true
		}
	}

	result := make([]common.Node, 0)
	for _, n := range g.Nodes {
		if n.ID != id && !direct[n.ID] {
			result = append(result, n)
		}
	}
	return result
}

// GetAncestors returns the ids of all transitive causes of the node, in
// depth-first discovery order.
func GetAncestors(g common.Graph, id string) []string {
	return traverse(id, buildParentIndex(g))
}

// GetDescendants returns the ids of all transitive effects of the node.
func GetDescendants(g common.Graph, id string) []string {
	return traverse(id, buildChildIndex(g))
}

func traverse(start string, adjacency map[string][]string) []string {
	visited := make(map[string]bool)
	result := make([]string, 0)

	stack := make([]string, 0, len(adjacency[start]))
	for i := len(adjacency[start]) - 1; i >= 0; i-- {
		stack = append(stack, adjacency[start][i])
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] || current == start {
			continue
		}
		visited[current] = true
		result = append(result, current)
		for i := len(adjacency[current]) - 1; i >= 0; i-- {
			stack = append(stack, adjacency[current][i])
		}
	}

	return result
}

// RelationshipType describes how one node relates to another, from the
// first node's perspective.
type RelationshipType string

const (
	RelationshipSelf        RelationshipType = "self"
	RelationshipParent      RelationshipType = "parent"
	RelationshipChild       RelationshipType = "child"
	RelationshipAncestor    RelationshipType = "ancestor"
	RelationshipDescendant  RelationshipType = "descendant"
	RelationshipUnconnected RelationshipType = "unconnected"
)

// GetRelationship returns the most specific relationship of a to b:
// parent/child win over ancestor/descendant, which win over unconnected.
func GetRelationship(g common.Graph, a, b string) RelationshipType {
	if a == b {
		return RelationshipSelf
	}

	parents := buildParentIndex(g)
	for _, p := range parents[b] {
		if p == a {
			return RelationshipParent
		}
	}
	for _, p := range parents[a] {
		if p == b {
			return RelationshipChild
		}
	}

	for _, anc := range GetAncestors(g, b) {
		if anc == a {
			return RelationshipAncestor
		}
	}
	for _, desc := range GetDescendants(g, b) {
		if desc == a {
			return RelationshipDescendant
		}
	}

	return RelationshipUnconnected
}

// GetRoots returns all nodes without parents (exogenous variables).
func GetRoots(g common.Graph) []common.Node {
	parents := buildParentIndex(g)
	result := make([]common.Node, 0)
	for _, n := range g.Nodes {
		if len(parents[n.ID]) == 0 {
			result = append(result, n)
		}
	}
	return result
}

// GetLeaves returns all nodes without children (terminal outcomes).
func GetLeaves(g common.Graph) []common.Node {
	children := buildChildIndex(g)
	result := make([]common.Node, 0)
	for _, n := range g.Nodes {
		if len(children[n.ID]) == 0 {
			result = append(result, n)
		}
	}
	return result
}

// GetPath returns the shortest directed path from source to target as a
// list of node ids (inclusive), or nil if no path exists.
func GetPath(g common.Graph, source, target string) []string {
	if source == target {
		return []string{source}
	}

	children := buildChildIndex(g)
	visited := map[string]bool{source: true}
	cameFrom := make(map[string]string)
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			cameFrom[child] = current

			if child == target {
				path := []string{target}
				node := target
				for {
					prev, ok := cameFrom[node]
					if !ok {
						break
					}
					path = append([]string{prev}, path...)
					node = prev
				}
				return path
			}

			queue = append(queue, child)
		}
	}

	return nil
}

// GetCommonAncestors returns the ids of nodes that are ancestors of both a
// and b, in a's discovery order.
func GetCommonAncestors(g common.Graph, a, b string) []string {
	return intersect(GetAncestors(g, a), GetAncestors(g, b))
}

// GetCommonDescendants returns the ids of nodes that are descendants of both
// a and b, in a's discovery order.
func GetCommonDescendants(g common.Graph, a, b string) []string {
	return intersect(GetDescendants(g, a), GetDescendants(g, b))
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}

	result := make([]string, 0)
	for _, id := range a {
		if inB[id] {
			result = append(result, id)
		}
	}
	return result
}
