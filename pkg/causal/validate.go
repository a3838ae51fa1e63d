package causal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// Validate checks that the graph is internally consistent: every edge
// endpoint names an existing node, there are no self-loops, no duplicate
// (source, target) pairs, and the edge relation is acyclic.
//
// These conditions cannot be violated when mutations go exclusively through
// this package; Validate is the backstop for graphs that arrive from
// outside (JSON import, database rows).
func Validate(g common.Graph) error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}

	seen := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("edge source %q not in nodes", e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("edge target %q not in nodes", e.Target)
		}
		if e.Source == e.Target {
			return fmt.Errorf("self-loop on %q", e.Source)
		}
		key := e.Source + "|" + e.Target
		if seen[key] {
			return fmt.Errorf("duplicate edge %s -> %s", e.Source, e.Target)
		}
		seen[key] = true
	}

	if _, err := TopologicalSort(g); err != nil {
		return err
	}

	return nil
}

// TopologyReport is the result of comparing two graph topologies. Node and
// edge content (names, descriptions, positions) is ignored; only the id and
// (source, target) sets matter.
type TopologyReport struct {
	Valid           bool
	MissingNodesInA []string
	MissingNodesInB []string
	MissingEdgesInA []string
	MissingEdgesInB []string
}

func (r TopologyReport) String() string {
	if r.Valid {
		return "topology matches"
	}

	var b strings.Builder
	b.WriteString("topology mismatch:")
	if len(r.MissingNodesInA) > 0 {
		fmt.Fprintf(&b, " nodes missing in A: %v;", r.MissingNodesInA)
	}
	if len(r.MissingNodesInB) > 0 {
		fmt.Fprintf(&b, " nodes missing in B: %v;", r.MissingNodesInB)
	}
	if len(r.MissingEdgesInA) > 0 {
		fmt.Fprintf(&b, " edges missing in A: %v;", r.MissingEdgesInA)
	}
	if len(r.MissingEdgesInB) > 0 {
		fmt.Fprintf(&b, " edges missing in B: %v;", r.MissingEdgesInB)
	}
	return strings.TrimSuffix(b.String(), ";")
}

// CompareTopologies reports node and edge set differences between two
// graphs. Used as a round-trip sanity check after import/export.
func CompareTopologies(a, b common.Graph) TopologyReport {
	nodesA, edgesA := topologySets(a)
	nodesB, edgesB := topologySets(b)

	report := TopologyReport{
		MissingNodesInA: setDiff(nodesB, nodesA),
		MissingNodesInB: setDiff(nodesA, nodesB),
		MissingEdgesInA: setDiff(edgesB, edgesA),
		MissingEdgesInB: setDiff(edgesA, edgesB),
	}
	report.Valid = len(report.MissingNodesInA) == 0 &&
		len(report.MissingNodesInB) == 0 &&
		len(report.MissingEdgesInA) == 0 &&
		len(report.MissingEdgesInB) == 0
	return report
}

func topologySets(g common.Graph) (map[string]bool, map[string]bool) {
	nodes := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = true
	}
	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		edges[e.Source+"->"+e.Target] = true
	}
	return nodes, edges
}

func setDiff(from, against map[string]bool) []string {
	result := make([]string, 0)
	for key := range from {
		if !against[key] {
			result = append(result, key)
		}
	}
	sort.Strings(result)
	return result
}
