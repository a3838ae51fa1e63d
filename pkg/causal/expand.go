package causal

import (
	"errors"
	"fmt"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// ErrEmptyExpansion is returned when an expansion proposal carries no nodes.
var ErrEmptyExpansion = errors.New("expansion proposal has no nodes")

// ErrForeignEdge is returned when an expansion edge references a node that
// is not part of the proposal. Edges to the rest of the graph only ever come
// from boundary redirection, never from the proposal itself.
var ErrForeignEdge = errors.New("expansion edge references node outside proposal")

// ExpansionNode is a node inside an expansion proposal, tagged with the role
// that drives boundary-edge redirection.
type ExpansionNode struct {
	VariableName string            `json:"variableName"`
	DisplayName  string            `json:"displayName"`
	Description  string            `json:"description"`
	Role         common.ExpandRole `json:"role"`
}

// ExpansionEdge is an edge between two proposed nodes, by variable name.
type ExpansionEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ExpansionProposal is the collaborator's decomposition of one node into a
// causal subgraph.
type ExpansionProposal struct {
	Nodes []ExpansionNode `json:"nodes"`
	Edges []ExpansionEdge `json:"edges"`
}

// Layout offsets for proposed nodes, relative to the expanded node's
// position. Presentation only.
const (
	expandRowOffset = 160.0
	expandColOffset = 140.0
)

func placeExpansionNodes(origin common.Position, proposed []ExpansionNode) []common.Node {
	// Column index per role row, so parents, internals, and children each
	// spread horizontally around the origin.
	rowCounts := map[common.ExpandRole]int{}
	for _, p := range proposed {
		rowCounts[p.Role]++
	}
	rowSeen := map[common.ExpandRole]int{}

	nodes := make([]common.Node, 0, len(proposed))
	for _, p := range proposed {
		var y float64
		switch p.Role {
		case common.RoleParent:
			y = origin.Y - expandRowOffset
		case common.RoleChild:
			y = origin.Y + expandRowOffset
		default:
			y = origin.Y
		}

		col := rowSeen[p.Role]
		rowSeen[p.Role]++
		x := origin.X + (float64(col)-float64(rowCounts[p.Role]-1)/2)*expandColOffset

		nodes = append(nodes, common.Node{
			ID:           p.VariableName,
			VariableName: p.VariableName,
			DisplayName:  p.DisplayName,
			Description:  p.Description,
			Position:     &common.Position{X: x, Y: y},
		})
	}
	return nodes
}

// expansionAcyclic rejects proposals whose internal edges close a cycle.
// With foreign edges excluded, the surrounding graph stays acyclic exactly
// when the replacement subgraph is.
func expansionAcyclic(proposal ExpansionProposal) error {
	sub := common.Graph{
		Nodes: make([]common.Node, 0, len(proposal.Nodes)),
		Edges: make([]common.Edge, 0, len(proposal.Edges)),
	}
	for _, p := range proposal.Nodes {
		sub.Nodes = append(sub.Nodes, common.Node{ID: p.VariableName})
	}
	for _, pe := range proposal.Edges {
		sub.Edges = append(sub.Edges, common.Edge{Source: pe.Source, Target: pe.Target})
	}
	if _, err := TopologicalSort(sub); err != nil {
		return fmt.Errorf("expansion proposal: %w", err)
	}
	return nil
}

// Expand replaces one node with the proposal's subgraph, preserving external
// connectivity through role-tagged redirection: edges that pointed at the
// expanded node fan out to every parent-role node (or the first proposed
// node when no parent role exists), and edges that left it fan out from
// every child-role node (or the last proposed node). A node with no
// incoming or no outgoing edges simply yields no redirected edges on that
// side.
func Expand(g common.Graph, id string, proposal ExpansionProposal) (common.Graph, error) {
	origin, ok := GetNode(g, id)
	if !ok {
		return g, fmt.Errorf("expand %q: %w", id, ErrNodeNotFound)
	}
	if len(proposal.Nodes) == 0 {
		return g, ErrEmptyExpansion
	}

	byID := nodesByID(g)
	proposed := make(map[string]bool, len(proposal.Nodes))
	for _, p := range proposal.Nodes {
		if _, exists := byID[p.VariableName]; exists && p.VariableName != id {
			return g, fmt.Errorf("expand node %q: %w", p.VariableName, ErrNodeExists)
		}
		proposed[p.VariableName] = true
	}

	for _, pe := range proposal.Edges {
		if !proposed[pe.Source] || !proposed[pe.Target] {
			return g, fmt.Errorf("expand edge %s->%s: %w", pe.Source, pe.Target, ErrForeignEdge)
		}
	}
	if err := expansionAcyclic(proposal); err != nil {
		return g, err
	}

	entryIDs := make([]string, 0)
	exitIDs := make([]string, 0)
	for _, p := range proposal.Nodes {
		switch p.Role {
		case common.RoleParent:
			entryIDs = append(entryIDs, p.VariableName)
		case common.RoleChild:
			exitIDs = append(exitIDs, p.VariableName)
		}
	}
	if len(entryIDs) == 0 {
		entryIDs = []string{proposal.Nodes[0].VariableName}
	}
	if len(exitIDs) == 0 {
		exitIDs = []string{proposal.Nodes[len(proposal.Nodes)-1].VariableName}
	}

	pos := common.Position{}
	if origin.Position != nil {
		pos = *origin.Position
	}
	newNodes := placeExpansionNodes(pos, proposal.Nodes)

	edges := make([]common.Edge, 0, len(g.Edges)+len(proposal.Edges))
	var incoming, outgoing []common.Edge
	for _, e := range g.Edges {
		switch {
		case e.Target == id:
			incoming = append(incoming, e)
		case e.Source == id:
			outgoing = append(outgoing, e)
		default:
			edges = append(edges, e)
		}
	}

	for _, pe := range proposal.Edges {
		edges = append(edges, common.Edge{
			ID:     EdgeID(pe.Source, pe.Target),
			Source: pe.Source,
			Target: pe.Target,
		})
	}

	for _, e := range incoming {
		for _, entry := range entryIDs {
			edges = append(edges, common.Edge{
				ID:     EdgeID(e.Source, entry),
				Source: e.Source,
				Target: entry,
			})
		}
	}
	for _, e := range outgoing {
		for _, exit := range exitIDs {
			edges = append(edges, common.Edge{
				ID:     EdgeID(exit, e.Target),
				Source: exit,
				Target: e.Target,
			})
		}
	}

	nodes := make([]common.Node, 0, len(g.Nodes)-1+len(newNodes))
	for _, n := range g.Nodes {
		if n.ID == id {
			continue
		}
		nodes = append(nodes, n)
	}
	nodes = append(nodes, newNodes...)

	g.Nodes = nodes
	g.Edges = dropSelfLoopsAndDuplicates(edges)
	return g, nil
}
