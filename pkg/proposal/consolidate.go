package proposal

import (
	"sort"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// likelihoodRank orders confidence buckets for sorting. Unrated proposals
// sort last.
func likelihoodRank(l common.Likelihood) int {
	switch l {
	case common.LikelihoodHigh:
		return 0
	case common.LikelihoodMedium:
		return 1
	case common.LikelihoodLow:
		return 2
	default:
		return 3
	}
}

// relationRank breaks ties when independent proposers disagree on the
// relation of an equivalent candidate.
func relationRank(r common.Relation) int {
	switch r {
	case common.RelationParent:
		return 0
	case common.RelationAncestor:
		return 1
	case common.RelationChild:
		return 2
	case common.RelationDescendant:
		return 3
	default:
		return 4
	}
}

func defaultRelation(direction common.Direction) common.Relation {
	if direction == common.DirectionUpstream {
		return common.RelationParent
	}
	return common.RelationChild
}

// majorityRelation picks the relation most proposers assigned, breaking
// ties by relation precedence so the result never depends on arrival order.
func majorityRelation(relations []common.Relation, direction common.Direction) common.Relation {
	if len(relations) == 0 {
		return defaultRelation(direction)
	}
	counts := make(map[common.Relation]int)
	for _, r := range relations {
		counts[r]++
	}
	best := relations[0]
	for r, n := range counts {
		if n > counts[best] || (n == counts[best] && relationRank(r) < relationRank(best)) {
			best = r
		}
	}
	return best
}

// bestRationale picks one rationale deterministically: the longest, then
// the lexicographically smaller. Arrival order must not matter.
func bestRationale(rationales []string) string {
	best := ""
	for _, r := range rationales {
		if len(r) > len(best) || (len(r) == len(best) && r < best) {
			best = r
		}
	}
	return best
}

// Consolidate merges raw candidates into the final ranked proposal list
// using the critic's duplicate groups. The count of a merged proposal is the
// number of independent proposers of an equivalent candidate; likelihood and
// justification come from the critic. Candidates the critic did not cover
// are merged by exact normalized name and left unrated.
//
// The result is a total order: likelihood bucket, then count descending,
// then variable name ascending. It does not depend on the order of the
// candidate slice.
func Consolidate(
	candidates []ai.ProposedVariable,
	groups []ai.CriticGroup,
	direction common.Direction,
) []common.Proposal {
	byName := make(map[string][]ai.ProposedVariable)
	for _, c := range candidates {
		name := ai.NormalizeName(c.VariableName)
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], c)
	}

	covered := make(map[string]bool)
	proposals := make([]common.Proposal, 0, len(groups))

	for _, group := range groups {
		members := group.Members
		if len(members) == 0 {
			members = []string{group.VariableName}
		}

		var matched []ai.ProposedVariable
		for _, member := range members {
			name := ai.NormalizeName(member)
			if covered[name] {
				continue
			}
			covered[name] = true
			matched = append(matched, byName[name]...)
		}
		if len(matched) == 0 {
			// critic named a candidate nobody proposed
			continue
		}

		relations := make([]common.Relation, 0, len(matched))
		for _, m := range matched {
			relations = append(relations, m.Relation)
		}

		name := ai.NormalizeName(group.VariableName)
		displayName := ai.NormalizeName(group.DisplayName)
		if name == "" {
			name = ai.NormalizeName(matched[0].VariableName)
		}

		proposals = append(proposals, common.Proposal{
			VariableName: name,
			DisplayName:  displayName,
			Rationale:    group.Justification,
			Relation:     majorityRelation(relations, direction),
			Direction:    direction,
			Status:       common.StatusComplete,
			Likelihood:   group.Likelihood,
			Count:        len(matched),
		})
	}

	// candidates the critic never mentioned: merge by exact name
	leftoverNames := make([]string, 0)
	for name := range byName {
		if !covered[name] {
			leftoverNames = append(leftoverNames, name)
		}
	}
	sort.Strings(leftoverNames)

	for _, name := range leftoverNames {
		matched := byName[name]
		relations := make([]common.Relation, 0, len(matched))
		rationales := make([]string, 0, len(matched))
		displayNames := make([]string, 0, len(matched))
		for _, m := range matched {
			relations = append(relations, m.Relation)
			rationales = append(rationales, m.Rationale)
			displayNames = append(displayNames, ai.NormalizeName(m.DisplayName))
		}
		sort.Strings(displayNames)

		proposals = append(proposals, common.Proposal{
			VariableName: name,
			DisplayName:  displayNames[len(displayNames)-1],
			Rationale:    bestRationale(rationales),
			Relation:     majorityRelation(relations, direction),
			Direction:    direction,
			Status:       common.StatusComplete,
			Count:        len(matched),
		})
	}

	sortProposals(proposals)
	return proposals
}

func sortProposals(proposals []common.Proposal) {
	sort.Slice(proposals, func(i, j int) bool {
		ri, rj := likelihoodRank(proposals[i].Likelihood), likelihoodRank(proposals[j].Likelihood)
		if ri != rj {
			return ri < rj
		}
		if proposals[i].Count != proposals[j].Count {
			return proposals[i].Count > proposals[j].Count
		}
		return proposals[i].VariableName < proposals[j].VariableName
	})
}
