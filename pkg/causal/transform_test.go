package causal

import (
	"errors"
	"reflect"
	"testing"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

func assertNoLoopsOrDuplicates(t *testing.T, g common.Graph) {
	t.Helper()
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Source == e.Target {
			t.Errorf("self loop %s->%s", e.Source, e.Target)
		}
		key := e.Source + "|" + e.Target
		if seen[key] {
			t.Errorf("duplicate edge %s->%s", e.Source, e.Target)
		}
		seen[key] = true
	}
}

func TestCondense(t *testing.T) {
	g := chain()

	got, err := Condense(g, []string{"A", "B"}, CondenseIdentity{
		VariableName: "AB",
		DisplayName:  "AB",
	})
	if err != nil {
		t.Fatalf("Condense failed: %v", err)
	}

	if ids := nodeIDs(got.Nodes); !reflect.DeepEqual(ids, []string{"C", "AB"}) {
		t.Errorf("nodes = %v, want [C AB]", ids)
	}
	if pairs := edgePairs(got.Edges); !reflect.DeepEqual(pairs, [][2]string{{"AB", "C"}}) {
		t.Errorf("edges = %v, want [[AB C]]", pairs)
	}
	assertNoLoopsOrDuplicates(t, got)

	// input graph untouched
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("input graph mutated: %v / %v", nodeIDs(g.Nodes), edgePairs(g.Edges))
	}
}

func TestCondenseMeanPosition(t *testing.T) {
	g := common.Graph{Nodes: []common.Node{
		{ID: "A", VariableName: "A", Position: &common.Position{X: 100, Y: 40}},
		{ID: "B", VariableName: "B", Position: &common.Position{X: 20, Y: 80}},
		{ID: "C", VariableName: "C"}, // nil position counts as origin
	}}

	got, err := Condense(g, []string{"A", "B", "C"}, CondenseIdentity{VariableName: "M"})
	if err != nil {
		t.Fatalf("Condense failed: %v", err)
	}

	merged, ok := GetNode(got, "M")
	if !ok || merged.Position == nil {
		t.Fatal("merged node missing or unplaced")
	}
	if merged.Position.X != 40 || merged.Position.Y != 40 {
		t.Errorf("position = (%v, %v), want (40, 40)", merged.Position.X, merged.Position.Y)
	}
}

func TestCondenseCollapsesParallelStructure(t *testing.T) {
	// X feeds both selected nodes and both feed Y: the redirect would
	// produce duplicate X->M and M->Y pairs plus an internal self-loop.
	g := testGraph(
		[]string{"X", "A", "B", "Y"},
		[][2]string{{"X", "A"}, {"X", "B"}, {"A", "B"}, {"A", "Y"}, {"B", "Y"}},
	)

	got, err := Condense(g, []string{"A", "B"}, CondenseIdentity{VariableName: "M"})
	if err != nil {
		t.Fatalf("Condense failed: %v", err)
	}

	want := [][2]string{{"X", "M"}, {"M", "Y"}}
	if pairs := edgePairs(got.Edges); !reflect.DeepEqual(pairs, want) {
		t.Errorf("edges = %v, want %v", pairs, want)
	}
	assertNoLoopsOrDuplicates(t, got)
}

func TestCondenseErrors(t *testing.T) {
	g := chain()

	tests := []struct {
		name     string
		selected []string
		identity CondenseIdentity
		wantErr  error
	}{
		{"single node", []string{"A"}, CondenseIdentity{VariableName: "M"}, ErrTooFewNodes},
		{"unknown node", []string{"A", "Z"}, CondenseIdentity{VariableName: "M"}, ErrNodeNotFound},
		{"name collision", []string{"A", "B"}, CondenseIdentity{VariableName: "C"}, ErrNodeExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Condense(g, tt.selected, tt.identity)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, g) {
				t.Error("failed condense changed the returned graph")
			}
		})
	}
}

func TestCondenseIntoSelectedName(t *testing.T) {
	// Reusing a selected node's name is allowed: that node is being
	// replaced anyway.
	g := chain()

	got, err := Condense(g, []string{"A", "B"}, CondenseIdentity{VariableName: "A"})
	if err != nil {
		t.Fatalf("Condense failed: %v", err)
	}
	if ids := nodeIDs(got.Nodes); !reflect.DeepEqual(ids, []string{"C", "A"}) {
		t.Errorf("nodes = %v", ids)
	}
}

func TestExpand(t *testing.T) {
	// P -> B -> Q, expand B into p1 -> i1 -> c1.
	g := testGraph(
		[]string{"P", "B", "Q"},
		[][2]string{{"P", "B"}, {"B", "Q"}},
	)

	got, err := Expand(g, "B", ExpansionProposal{
		Nodes: []ExpansionNode{
			{VariableName: "p1", Role: common.RoleParent},
			{VariableName: "i1", Role: common.RoleInternal},
			{VariableName: "c1", Role: common.RoleChild},
		},
		Edges: []ExpansionEdge{
			{Source: "p1", Target: "i1"},
			{Source: "i1", Target: "c1"},
		},
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	if ids := nodeIDs(got.Nodes); !reflect.DeepEqual(ids, []string{"P", "Q", "p1", "i1", "c1"}) {
		t.Errorf("nodes = %v", ids)
	}

	want := [][2]string{
		{"p1", "i1"}, {"i1", "c1"},
		{"P", "p1"}, // incoming boundary fans out to parent roles
		{"c1", "Q"}, // outgoing boundary fans out from child roles
	}
	if pairs := edgePairs(got.Edges); !reflect.DeepEqual(pairs, want) {
		t.Errorf("edges = %v, want %v", pairs, want)
	}
	assertNoLoopsOrDuplicates(t, got)
}

func TestExpandWithoutRoles(t *testing.T) {
	// No parent or child roles: the first proposed node takes incoming
	// edges, the last takes outgoing.
	g := testGraph(
		[]string{"P", "B", "Q"},
		[][2]string{{"P", "B"}, {"B", "Q"}},
	)

	got, err := Expand(g, "B", ExpansionProposal{
		Nodes: []ExpansionNode{
			{VariableName: "x", Role: common.RoleInternal},
			{VariableName: "y", Role: common.RoleInternal},
		},
		Edges: []ExpansionEdge{{Source: "x", Target: "y"}},
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := [][2]string{{"x", "y"}, {"P", "x"}, {"y", "Q"}}
	if pairs := edgePairs(got.Edges); !reflect.DeepEqual(pairs, want) {
		t.Errorf("edges = %v, want %v", pairs, want)
	}
}

func TestExpandIsolatedNode(t *testing.T) {
	g := testGraph([]string{"B"}, nil)

	got, err := Expand(g, "B", ExpansionProposal{
		Nodes: []ExpansionNode{{VariableName: "x"}, {VariableName: "y"}},
		Edges: []ExpansionEdge{{Source: "x", Target: "y"}},
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	if pairs := edgePairs(got.Edges); !reflect.DeepEqual(pairs, [][2]string{{"x", "y"}}) {
		t.Errorf("edges = %v", pairs)
	}
}

func TestExpandErrors(t *testing.T) {
	g := chain()

	tests := []struct {
		name     string
		id       string
		proposal ExpansionProposal
		wantErr  error
	}{
		{"unknown node", "Z", ExpansionProposal{Nodes: []ExpansionNode{{VariableName: "x"}}}, ErrNodeNotFound},
		{"empty proposal", "B", ExpansionProposal{}, ErrEmptyExpansion},
		{"name collision", "B", ExpansionProposal{Nodes: []ExpansionNode{{VariableName: "C"}}}, ErrNodeExists},
		{
			// an edge escaping the proposal could reach back above the
			// expanded node and close a cycle
			"edge outside proposal",
			"B",
			ExpansionProposal{
				Nodes: []ExpansionNode{
					{VariableName: "p1", Role: common.RoleParent},
					{VariableName: "c1", Role: common.RoleChild},
				},
				Edges: []ExpansionEdge{{Source: "p1", Target: "c1"}, {Source: "c1", Target: "A"}},
			},
			ErrForeignEdge,
		},
		{
			"cyclic proposal",
			"B",
			ExpansionProposal{
				Nodes: []ExpansionNode{
					{VariableName: "p1", Role: common.RoleParent},
					{VariableName: "c1", Role: common.RoleChild},
				},
				Edges: []ExpansionEdge{{Source: "p1", Target: "c1"}, {Source: "c1", Target: "p1"}},
			},
			ErrGraphCyclic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(g, tt.id, tt.proposal)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, g) {
				t.Error("failed expand changed the returned graph")
			}
		})
	}
}

func TestExpandReuseExpandedName(t *testing.T) {
	g := chain()

	got, err := Expand(g, "B", ExpansionProposal{
		Nodes: []ExpansionNode{
			{VariableName: "B", Role: common.RoleParent},
			{VariableName: "B2", Role: common.RoleChild},
		},
		Edges: []ExpansionEdge{{Source: "B", Target: "B2"}},
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := [][2]string{{"B", "B2"}, {"A", "B"}, {"B2", "C"}}
	if pairs := edgePairs(got.Edges); !reflect.DeepEqual(pairs, want) {
		t.Errorf("edges = %v, want %v", pairs, want)
	}
	assertNoLoopsOrDuplicates(t, got)
}

func TestExpandPlacement(t *testing.T) {
	g := common.Graph{Nodes: []common.Node{
		{ID: "B", VariableName: "B", Position: &common.Position{X: 500, Y: 300}},
	}}

	got, err := Expand(g, "B", ExpansionProposal{
		Nodes: []ExpansionNode{
			{VariableName: "p", Role: common.RoleParent},
			{VariableName: "i", Role: common.RoleInternal},
			{VariableName: "c", Role: common.RoleChild},
		},
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	wantY := map[string]float64{"p": 140, "i": 300, "c": 460}
	for _, n := range got.Nodes {
		if n.Position == nil {
			t.Fatalf("node %s unplaced", n.ID)
		}
		if n.Position.Y != wantY[n.ID] {
			t.Errorf("node %s at y=%v, want %v", n.ID, n.Position.Y, wantY[n.ID])
		}
		if n.Position.X != 500 {
			t.Errorf("node %s at x=%v, want 500", n.ID, n.Position.X)
		}
	}
}
