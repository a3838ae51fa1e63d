package common

// Position is a 2-D canvas position. It is presentation-only and carries
// no graph invariant.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Classification tags a variable for the AI collaborators. It is drawn from
// a closed set and is irrelevant to the graph invariants.
type Classification string

const (
	ClassControllable Classification = "controllable"
	ClassObservable   Classification = "observable"
	ClassOutcome      Classification = "outcome"
	ClassLatent       Classification = "latent"
)

// Node represents a causal variable in the experiment graph. The ID is a
// stable human-assigned token (the variable name in snake_case); DisplayName
// is what the UI renders.
type Node struct {
	ID             string         `json:"id"`
	VariableName   string         `json:"variableName"`
	DisplayName    string         `json:"displayName"`
	Description    string         `json:"description"`
	Position       *Position      `json:"position,omitempty"`
	Classification Classification `json:"classification,omitempty"`
}

// Edge is a directed causal link from a cause (Source) to an effect (Target).
// At most one edge may exist per (Source, Target) pair.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the full causal DAG of an experiment together with the free-form
// experimental context consumed by the AI collaborators.
//
// Graph values are immutable by convention: every operation in pkg/causal
// takes a Graph and returns a new one, leaving the input untouched.
type Graph struct {
	Nodes               []Node `json:"nodes"`
	Edges               []Edge `json:"edges"`
	ExperimentalContext string `json:"experimentalContext"`
}

// Direction selects which side of a pivot node a pipeline operates on.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"
	DirectionDownstream Direction = "downstream"
)

// Relation is the Pearl-style causal position of a proposed variable
// relative to the pivot node.
type Relation string

const (
	RelationParent     Relation = "parent"
	RelationAncestor   Relation = "ancestor"
	RelationChild      Relation = "child"
	RelationDescendant Relation = "descendant"
)

// Likelihood is the critic's confidence bucket for a proposal.
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "high"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodLow    Likelihood = "low"
)

// ProposalStatus tracks a proposal through the consolidation pipeline.
// Cycles may complete out of order, so all three states can be visible
// at the same time.
type ProposalStatus string

const (
	StatusPending   ProposalStatus = "pending"
	StatusAssessing ProposalStatus = "assessing"
	StatusComplete  ProposalStatus = "complete"
)

// Proposal is a candidate causal variable suggested by the AI collaborator.
// Count is the number of independent agents that proposed an equivalent
// candidate; it is a confidence signal, not an identity.
type Proposal struct {
	VariableName string         `json:"variableName"`
	DisplayName  string         `json:"displayName"`
	Rationale    string         `json:"rationale"`
	Relation     Relation       `json:"relation"`
	Direction    Direction      `json:"direction"`
	Status       ProposalStatus `json:"status"`
	Likelihood   Likelihood     `json:"likelihood,omitempty"`
	Count        int            `json:"count"`
}

// ExpandRole tags a node inside an expansion proposal. The role decides how
// the expanded node's boundary edges are redirected.
type ExpandRole string

const (
	RoleParent   ExpandRole = "parent"
	RoleInternal ExpandRole = "internal"
	RoleChild    ExpandRole = "child"
)
