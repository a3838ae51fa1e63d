package causal

import (
	"errors"
	"reflect"
	"testing"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

func edgePairs(edges []common.Edge) [][2]string {
	pairs := make([][2]string, 0, len(edges))
	for _, e := range edges {
		pairs = append(pairs, [2]string{e.Source, e.Target})
	}
	return pairs
}

func TestWouldCreateCycle(t *testing.T) {
	g := chain()

	tests := []struct {
		name           string
		source, target string
		want           bool
	}{
		{"closes the chain", "C", "A", true},
		{"back edge", "B", "A", true},
		{"self loop", "B", "B", true},
		{"forward shortcut", "A", "C", false},
		{"duplicate direction", "A", "B", false},
		{"into unknown node", "C", "X", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WouldCreateCycle(g, tt.source, tt.target); got != tt.want {
				t.Errorf("WouldCreateCycle(%s, %s) = %v, want %v", tt.source, tt.target, got, tt.want)
			}
		})
	}
}

func TestWouldCreateCycleSelfLoopAlways(t *testing.T) {
	// A self-loop is a cycle even on an empty graph.
	if !WouldCreateCycle(common.Graph{}, "A", "A") {
		t.Error("self loop on empty graph not rejected")
	}
}

func TestAddEdgeSafe(t *testing.T) {
	g := chain()

	got, err := AddEdgeSafe(g, "A", "C")
	if err != nil {
		t.Fatalf("AddEdgeSafe(A, C) failed: %v", err)
	}

	want := [][2]string{{"A", "B"}, {"B", "C"}, {"A", "C"}}
	if !reflect.DeepEqual(edgePairs(got.Edges), want) {
		t.Errorf("edges = %v, want %v", edgePairs(got.Edges), want)
	}

	// the input graph is untouched
	if len(g.Edges) != 2 {
		t.Errorf("input graph mutated: %v", edgePairs(g.Edges))
	}
}

func TestAddEdgeSafeRejections(t *testing.T) {
	g := chain()

	tests := []struct {
		name           string
		source, target string
		wantErr        error
	}{
		{"duplicate pair", "A", "B", ErrDuplicateEdge},
		{"would create cycle", "C", "A", ErrWouldCreateCycle},
		{"self loop", "B", "B", ErrWouldCreateCycle},
		{"missing source", "ghost", "B", ErrNodeNotFound},
		{"missing target", "A", "ghost", ErrNodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddEdgeSafe(g, tt.source, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddEdgeSafe(%s, %s) error = %v, want %v", tt.source, tt.target, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, g) {
				t.Error("failed insert changed the returned graph")
			}
		})
	}
}

func TestAddRemoveNode(t *testing.T) {
	g := chain()

	g2 := AddNode(g, testNode("D"))
	if len(g2.Nodes) != 4 || len(g.Nodes) != 3 {
		t.Fatalf("AddNode: got %d nodes, input has %d", len(g2.Nodes), len(g.Nodes))
	}

	g3 := RemoveNode(g2, "B")
	if got := nodeIDs(g3.Nodes); !reflect.DeepEqual(got, []string{"A", "C", "D"}) {
		t.Errorf("RemoveNode: nodes = %v", got)
	}
	// incident edges go with the node
	if len(g3.Edges) != 0 {
		t.Errorf("RemoveNode: dangling edges %v", edgePairs(g3.Edges))
	}
	if len(g2.Edges) != 2 {
		t.Errorf("input graph mutated: %v", edgePairs(g2.Edges))
	}
}

func TestRemoveEdge(t *testing.T) {
	g := chain()

	g2 := RemoveEdge(g, "A", "B")
	if got := edgePairs(g2.Edges); !reflect.DeepEqual(got, [][2]string{{"B", "C"}}) {
		t.Errorf("RemoveEdge: edges = %v", got)
	}

	// removing a pair that is not present is a no-op
	g3 := RemoveEdge(g, "C", "A")
	if !reflect.DeepEqual(edgePairs(g3.Edges), edgePairs(g.Edges)) {
		t.Errorf("RemoveEdge on absent pair changed edges: %v", edgePairs(g3.Edges))
	}
}

func TestTopologicalSort(t *testing.T) {
	g := testGraph(
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"B", "D"}, {"A", "C"}, {"C", "D"}},
	)

	order, err := TopologicalSort(g)
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	for _, e := range g.Edges {
		if position[e.Source] >= position[e.Target] {
			t.Errorf("edge %s->%s violates order %v", e.Source, e.Target, order)
		}
	}
}

func TestTopologicalSortCyclic(t *testing.T) {
	g := testGraph([]string{"A", "B"}, [][2]string{{"A", "B"}, {"B", "A"}})

	if _, err := TopologicalSort(g); !errors.Is(err, ErrGraphCyclic) {
		t.Errorf("error = %v, want ErrGraphCyclic", err)
	}
}
