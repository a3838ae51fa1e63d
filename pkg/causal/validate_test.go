package causal

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		graph   common.Graph
		wantErr string
	}{
		{
			name:  "valid chain",
			graph: chain(),
		},
		{
			name:  "empty graph",
			graph: common.Graph{},
		},
		{
			name: "duplicate node id",
			graph: common.Graph{
				Nodes: []common.Node{testNode("A"), testNode("A")},
			},
			wantErr: "duplicate node id",
		},
		{
			name: "dangling edge source",
			graph: common.Graph{
				Nodes: []common.Node{testNode("B")},
				Edges: []common.Edge{testEdge("A", "B")},
			},
			wantErr: "edge source",
		},
		{
			name: "dangling edge target",
			graph: common.Graph{
				Nodes: []common.Node{testNode("A")},
				Edges: []common.Edge{testEdge("A", "B")},
			},
			wantErr: "edge target",
		},
		{
			name: "self loop",
			graph: common.Graph{
				Nodes: []common.Node{testNode("A")},
				Edges: []common.Edge{testEdge("A", "A")},
			},
			wantErr: "self-loop",
		},
		{
			name: "duplicate pair",
			graph: common.Graph{
				Nodes: []common.Node{testNode("A"), testNode("B")},
				Edges: []common.Edge{testEdge("A", "B"), testEdge("A", "B")},
			},
			wantErr: "duplicate edge",
		},
		{
			name:    "cycle",
			graph:   testGraph([]string{"A", "B"}, [][2]string{{"A", "B"}, {"B", "A"}}),
			wantErr: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.graph)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCompareTopologies(t *testing.T) {
	a := chain()
	b := testGraph([]string{"A", "B", "D"}, [][2]string{{"A", "B"}, {"A", "D"}})

	report := CompareTopologies(a, b)
	if report.Valid {
		t.Fatal("mismatched graphs reported valid")
	}
	if !reflect.DeepEqual(report.MissingNodesInA, []string{"D"}) {
		t.Errorf("MissingNodesInA = %v", report.MissingNodesInA)
	}
	if !reflect.DeepEqual(report.MissingNodesInB, []string{"C"}) {
		t.Errorf("MissingNodesInB = %v", report.MissingNodesInB)
	}
	if !reflect.DeepEqual(report.MissingEdgesInA, []string{"A->D"}) {
		t.Errorf("MissingEdgesInA = %v", report.MissingEdgesInA)
	}
	if !reflect.DeepEqual(report.MissingEdgesInB, []string{"B->C"}) {
		t.Errorf("MissingEdgesInB = %v", report.MissingEdgesInB)
	}
}

func TestCompareTopologiesIgnoresContent(t *testing.T) {
	a := chain()
	b := chain()
	b.Nodes[0].DisplayName = "renamed"
	b.Nodes[0].Position = &common.Position{X: 99, Y: 99}

	if report := CompareTopologies(a, b); !report.Valid {
		t.Errorf("content-only change reported as mismatch: %s", report)
	}
}

func TestGraphJSONRoundTrip(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{
			{
				ID:             "reaction_temperature",
				VariableName:   "reaction_temperature",
				DisplayName:    "Reaction Temperature",
				Description:    "Temperature of the reaction vessel.",
				Position:       &common.Position{X: 120, Y: 80},
				Classification: common.ClassControllable,
			},
			{ID: "yield", VariableName: "yield", DisplayName: "Yield"},
		},
		Edges: []common.Edge{
			testEdge("reaction_temperature", "yield"),
		},
		ExperimentalContext: "catalyst screening campaign",
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded common.Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(decoded, g) {
		t.Errorf("round trip changed graph:\n got %+v\nwant %+v", decoded, g)
	}
	if report := CompareTopologies(g, decoded); !report.Valid {
		t.Errorf("round trip changed topology: %s", report)
	}
	if err := Validate(decoded); err != nil {
		t.Errorf("decoded graph invalid: %v", err)
	}
}
