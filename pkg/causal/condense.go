package causal

import (
	"errors"
	"fmt"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// ErrTooFewNodes is returned when a condensation selects fewer than two
// nodes.
var ErrTooFewNodes = errors.New("condensation requires at least two nodes")

// CondenseIdentity carries the identity of the replacement node. It comes
// from the AI collaborator's condensation proposal, never computed locally.
type CondenseIdentity struct {
	VariableName string `json:"variableName"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
}

// dropSelfLoopsAndDuplicates applies the transform post-filter: first remove
// edges whose endpoints collapsed onto the same node, then keep only the
// first edge per (source, target) pair. The order matters: a self-loop must
// not shadow a later legitimate edge in the dedupe pass.
func dropSelfLoopsAndDuplicates(edges []common.Edge) []common.Edge {
	noLoops := make([]common.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		noLoops = append(noLoops, e)
	}

	seen := make(map[string]bool, len(noLoops))
	result := make([]common.Edge, 0, len(noLoops))
	for _, e := range noLoops {
		key := e.Source + "|" + e.Target
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, e)
	}
	return result
}

// Condense merges the selected nodes into a single new node, preserving all
// external connectivity. Every edge endpoint inside the selection is
// rewritten to the new node; edges that collapse into self-loops are
// dropped and the remainder deduplicated by (source, target) pair.
//
// The new node's position is the arithmetic mean of the selected positions,
// with missing positions contributing zero. Its identity comes from the
// collaborator's proposal.
func Condense(g common.Graph, selectedIDs []string, identity CondenseIdentity) (common.Graph, error) {
	if len(selectedIDs) < 2 {
		return g, ErrTooFewNodes
	}

	byID := nodesByID(g)
	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		if _, ok := byID[id]; !ok {
			return g, fmt.Errorf("condense %q: %w", id, ErrNodeNotFound)
		}
		selected[id] = true
	}

	if _, ok := byID[identity.VariableName]; ok && !selected[identity.VariableName] {
		return g, fmt.Errorf("condense into %q: %w", identity.VariableName, ErrNodeExists)
	}

	var sumX, sumY float64
	for id := range selected {
		if pos := byID[id].Position; pos != nil {
			sumX += pos.X
			sumY += pos.Y
		}
	}
	count := float64(len(selected))

	merged := common.Node{
		ID:           identity.VariableName,
		VariableName: identity.VariableName,
		DisplayName:  identity.DisplayName,
		Description:  identity.Description,
		Position:     &common.Position{X: sumX / count, Y: sumY / count},
	}

	redirected := make([]common.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if selected[e.Source] {
			e.Source = merged.ID
		}
		if selected[e.Target] {
			e.Target = merged.ID
		}
		redirected = append(redirected, e)
	}

	nodes := make([]common.Node, 0, len(g.Nodes)-len(selected)+1)
	for _, n := range g.Nodes {
		if selected[n.ID] {
			continue
		}
		nodes = append(nodes, n)
	}
	nodes = append(nodes, merged)

	g.Nodes = nodes
	g.Edges = dropSelfLoopsAndDuplicates(redirected)
	return g, nil
}
