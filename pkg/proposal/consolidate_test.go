package proposal

import (
	"reflect"
	"testing"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

func TestConsolidateMergesGroupMembers(t *testing.T) {
	candidates := []ai.ProposedVariable{
		candidate("reaction_temp", common.RelationParent),
		candidate("reaction_temperature", common.RelationParent),
		candidate("stirring_rate", common.RelationParent),
	}
	groups := []ai.CriticGroup{
		{
			VariableName:  "reaction_temperature",
			DisplayName:   "Reaction Temperature",
			Members:       []string{"reaction_temp", "reaction_temperature"},
			Likelihood:    common.LikelihoodHigh,
			Justification: "temperature controls kinetics",
		},
		{
			VariableName: "stirring_rate",
			DisplayName:  "Stirring Rate",
			Members:      []string{"stirring_rate"},
			Likelihood:   common.LikelihoodLow,
		},
	}

	got := Consolidate(candidates, groups, common.DirectionUpstream)

	if len(got) != 2 {
		t.Fatalf("got %d proposals, want 2: %+v", len(got), got)
	}
	if got[0].VariableName != "reaction_temperature" || got[0].Count != 2 {
		t.Errorf("first = %+v, want reaction_temperature count 2", got[0])
	}
	if got[0].Rationale != "temperature controls kinetics" {
		t.Errorf("rationale = %q, want the critic justification", got[0].Rationale)
	}
	if got[1].VariableName != "stirring_rate" || got[1].Count != 1 {
		t.Errorf("second = %+v, want stirring_rate count 1", got[1])
	}
}

func TestConsolidateArrivalOrderIndependent(t *testing.T) {
	forward := []ai.ProposedVariable{
		candidate("temperature", common.RelationParent),
		candidate("pressure", common.RelationParent),
		candidate("temperature", common.RelationAncestor),
	}
	reversed := []ai.ProposedVariable{
		candidate("temperature", common.RelationAncestor),
		candidate("pressure", common.RelationParent),
		candidate("temperature", common.RelationParent),
	}
	groups := []ai.CriticGroup{
		{VariableName: "temperature", Members: []string{"temperature"}, Likelihood: common.LikelihoodHigh},
		{VariableName: "pressure", Members: []string{"pressure"}, Likelihood: common.LikelihoodHigh},
	}

	a := Consolidate(forward, groups, common.DirectionUpstream)
	b := Consolidate(reversed, groups, common.DirectionUpstream)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("result depends on arrival order:\n a=%+v\n b=%+v", a, b)
	}
}

func TestConsolidateOrdering(t *testing.T) {
	candidates := []ai.ProposedVariable{
		candidate("aa_low", common.RelationParent),
		candidate("zz_high", common.RelationParent),
		candidate("mm_high_popular", common.RelationParent),
		candidate("mm_high_popular", common.RelationParent),
		candidate("bb_high", common.RelationParent),
	}
	groups := []ai.CriticGroup{
		{VariableName: "aa_low", Members: []string{"aa_low"}, Likelihood: common.LikelihoodLow},
		{VariableName: "zz_high", Members: []string{"zz_high"}, Likelihood: common.LikelihoodHigh},
		{VariableName: "mm_high_popular", Members: []string{"mm_high_popular"}, Likelihood: common.LikelihoodHigh},
		{VariableName: "bb_high", Members: []string{"bb_high"}, Likelihood: common.LikelihoodHigh},
	}

	got := Consolidate(candidates, groups, common.DirectionUpstream)

	want := []string{"mm_high_popular", "bb_high", "zz_high", "aa_low"}
	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.VariableName)
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v (likelihood bucket, count desc, name asc)", names, want)
	}
}

func TestConsolidateUncoveredCandidates(t *testing.T) {
	// the critic missed one candidate entirely: it still appears, merged
	// by exact name and unrated
	candidates := []ai.ProposedVariable{
		candidate("temperature", common.RelationParent),
		candidate("humidity", common.RelationParent),
		candidate("humidity", common.RelationParent),
	}
	groups := []ai.CriticGroup{
		{VariableName: "temperature", Members: []string{"temperature"}, Likelihood: common.LikelihoodHigh},
	}

	got := Consolidate(candidates, groups, common.DirectionUpstream)

	if len(got) != 2 {
		t.Fatalf("got %d proposals, want 2: %+v", len(got), got)
	}
	last := got[len(got)-1]
	if last.VariableName != "humidity" || last.Count != 2 {
		t.Errorf("uncovered candidate = %+v, want humidity count 2", last)
	}
	if last.Likelihood != "" {
		t.Errorf("uncovered candidate likelihood = %q, want unrated", last.Likelihood)
	}
}

func TestConsolidateHallucinatedGroupDropped(t *testing.T) {
	candidates := []ai.ProposedVariable{
		candidate("temperature", common.RelationParent),
	}
	groups := []ai.CriticGroup{
		{VariableName: "temperature", Members: []string{"temperature"}, Likelihood: common.LikelihoodHigh},
		{VariableName: "phantom", Members: []string{"phantom"}, Likelihood: common.LikelihoodHigh},
	}

	got := Consolidate(candidates, groups, common.DirectionUpstream)

	if len(got) != 1 || got[0].VariableName != "temperature" {
		t.Errorf("got %+v, want only temperature", got)
	}
}

func TestMajorityRelation(t *testing.T) {
	tests := []struct {
		name      string
		relations []common.Relation
		want      common.Relation
	}{
		{
			name:      "clear majority",
			relations: []common.Relation{common.RelationAncestor, common.RelationAncestor, common.RelationParent},
			want:      common.RelationAncestor,
		},
		{
			name:      "tie broken by precedence",
			relations: []common.Relation{common.RelationAncestor, common.RelationParent},
			want:      common.RelationParent,
		},
		{
			name:      "empty falls back to direction",
			relations: nil,
			want:      common.RelationParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := majorityRelation(tt.relations, common.DirectionUpstream); got != tt.want {
				t.Errorf("majorityRelation = %s, want %s", got, tt.want)
			}
		})
	}
}
