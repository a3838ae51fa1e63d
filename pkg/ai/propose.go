package ai

import (
	"context"
	"fmt"
	"strings"

	gUtil "github.com/TRI-AMDD/causeway/backend/internal/util"
	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// MaxExpandNodes caps how many variables an expansion proposal may contain.
const MaxExpandNodes = 6

// ProposedVariable is one raw candidate from a single proposer, before the
// critic pass.
type ProposedVariable struct {
	VariableName string          `json:"variableName" jsonschema_description:"snake_case name of the proposed variable."`
	DisplayName  string          `json:"displayName" jsonschema_description:"Title Case display name."`
	Rationale    string          `json:"rationale" jsonschema_description:"Why this variable causally relates to the pivot."`
	Relation     common.Relation `json:"relation" jsonschema_description:"Causal position relative to the pivot."`
}

// ProposalsResponse is the structured output of one proposer call.
type ProposalsResponse struct {
	Proposals []ProposedVariable `json:"proposals" jsonschema_description:"List of candidate variables."`
}

// CriticGroup is one deduplicated group of candidates with the critic's
// canonical identity and likelihood verdict.
type CriticGroup struct {
	VariableName  string            `json:"variableName" jsonschema_description:"Canonical snake_case name for the group."`
	DisplayName   string            `json:"displayName" jsonschema_description:"Canonical Title Case display name."`
	Members       []string          `json:"members" jsonschema_description:"variableName of every candidate in this group."`
	Likelihood    common.Likelihood `json:"likelihood" jsonschema_description:"Confidence bucket: high, medium or low."`
	Justification string            `json:"justification" jsonschema_description:"Short justification for the likelihood."`
}

// CriticResponse is the structured output of the critic pass.
type CriticResponse struct {
	Groups []CriticGroup `json:"groups" jsonschema_description:"Groups of duplicate candidates."`
}

// Evaluation is the critic's verdict for one already-existing node.
type Evaluation struct {
	VariableName string            `json:"variableName" jsonschema_description:"Candidate variableName exactly as listed."`
	Likelihood   common.Likelihood `json:"likelihood" jsonschema_description:"Confidence bucket: high, medium or low."`
	Rationale    string            `json:"rationale" jsonschema_description:"Short rationale for the verdict."`
}

// EvaluationsResponse is the structured output of the evaluate-existing call.
type EvaluationsResponse struct {
	Evaluations []Evaluation `json:"evaluations" jsonschema_description:"One evaluation per candidate."`
}

// Neighborhood is the pivot-centered graph context handed to the
// collaborator with every proposal request.
type Neighborhood struct {
	Pivot               common.Node
	ExperimentalContext string
	ImmediateUpstream   []common.Node
	HigherUpstream      []causal.NodeWithDegree
	ImmediateDownstream []common.Node
	HigherDownstream    []causal.NodeWithDegree
	Unconnected         []common.Node
}

// BuildNeighborhood collects the pivot's graph context for prompting:
// immediate and higher relatives on both sides plus unconnected candidates.
func BuildNeighborhood(g common.Graph, pivotID string) (Neighborhood, error) {
	pivot, ok := causal.GetNode(g, pivotID)
	if !ok {
		return Neighborhood{}, fmt.Errorf("build neighborhood %q: %w", pivotID, causal.ErrNodeNotFound)
	}

	n := Neighborhood{
		Pivot:               pivot,
		ExperimentalContext: g.ExperimentalContext,
		ImmediateUpstream:   causal.GetImmediateUpstream(g, pivotID),
		ImmediateDownstream: causal.GetImmediateDownstream(g, pivotID),
		Unconnected:         unconnectedEitherSide(g, pivotID),
	}
	for _, nd := range causal.GetUpstreamWithDegrees(g, pivotID) {
		if nd.Degree > 1 {
			n.HigherUpstream = append(n.HigherUpstream, nd)
		}
	}
	for _, nd := range causal.GetDownstreamWithDegrees(g, pivotID) {
		if nd.Degree > 1 {
			n.HigherDownstream = append(n.HigherDownstream, nd)
		}
	}
	return n, nil
}

func unconnectedEitherSide(g common.Graph, pivotID string) []common.Node {
	downstream := make(map[string]bool)
	for _, n := range causal.GetUnconnectedDownstream(g, pivotID) {
		downstream[n.ID] = true
	}
	result := make([]common.Node, 0)
	for _, n := range causal.GetUnconnectedUpstream(g, pivotID) {
		if downstream[n.ID] {
			result = append(result, n)
		}
	}
	return result
}

func formatNode(n common.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s (%s)", n.VariableName, n.DisplayName)
	if n.Classification != "" {
		fmt.Fprintf(&b, " [%s]", n.Classification)
	}
	if n.Description != "" {
		fmt.Fprintf(&b, ": %s", n.Description)
	}
	return b.String()
}

func formatNodeList(nodes []common.Node) string {
	if len(nodes) == 0 {
		return "- (none)"
	}
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		lines = append(lines, formatNode(n))
	}
	return strings.Join(lines, "\n")
}

// FormatNeighborhood renders the pivot context as prompt text.
func (n Neighborhood) FormatNeighborhood() string {
	var b strings.Builder
	b.WriteString("Direct causes (parents):\n")
	b.WriteString(formatNodeList(n.ImmediateUpstream))
	b.WriteString("\nHigher ancestors:\n")
	b.WriteString(formatDegreeList(n.HigherUpstream))
	b.WriteString("\nDirect effects (children):\n")
	b.WriteString(formatNodeList(n.ImmediateDownstream))
	b.WriteString("\nHigher descendants:\n")
	b.WriteString(formatDegreeList(n.HigherDownstream))
	b.WriteString("\nOther variables in the graph, not linked to the pivot:\n")
	b.WriteString(formatNodeList(n.Unconnected))
	return b.String()
}

func formatDegreeList(nodes []causal.NodeWithDegree) string {
	if len(nodes) == 0 {
		return "- (none)"
	}
	lines := make([]string, 0, len(nodes))
	for _, nd := range nodes {
		lines = append(lines, fmt.Sprintf("%s [degree %d]", formatNode(nd.Node), nd.Degree))
	}
	return strings.Join(lines, "\n")
}

// directionNoun names the causal side in prose: "upstream (cause)" wording
// keeps the prompts unambiguous for the model.
func directionNoun(direction common.Direction) string {
	if direction == common.DirectionUpstream {
		return "upstream (causal parent)"
	}
	return "downstream (causal child)"
}

func relationOptions(direction common.Direction) string {
	if direction == common.DirectionUpstream {
		return "parent|ancestor"
	}
	return "child|descendant"
}

// ProposeParams configures one proposer call.
type ProposeParams struct {
	Neighborhood Neighborhood
	Direction    common.Direction
	Count        int
	AvoidNames   []string // diversification hint from earlier cycles
}

// CallProposeAI requests Count independent candidate variables from the
// collaborator.
func CallProposeAI(
	ctx context.Context,
	client Client,
	params ProposeParams,
	maxRetries int,
) (*ProposalsResponse, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if params.Count < 1 {
		params.Count = 1
	}

	diversify := ""
	if len(params.AvoidNames) > 0 {
		diversify = fmt.Sprintf(DiversifyPromptSection, strings.Join(params.AvoidNames, ", "))
	}

	noun := directionNoun(params.Direction)
	prompt := fmt.Sprintf(
		ProposePrompt,
		noun,
		params.Neighborhood.ExperimentalContext,
		formatNode(params.Neighborhood.Pivot),
		params.Neighborhood.FormatNeighborhood(),
		params.Count,
		noun,
		relationOptions(params.Direction),
		diversify,
		relationOptions(params.Direction),
	)

	var res ProposalsResponse
	err := gUtil.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		res = ProposalsResponse{}
		return client.GenerateCompletionWithFormat(
			ctx, "propose_variables", "Propose candidate causal variables.", prompt, &res,
			WithTemperature(0.7),
		)
	})
	if err != nil {
		return nil, err
	}

	cleaned := make([]ProposedVariable, 0, len(res.Proposals))
	for _, p := range res.Proposals {
		p.VariableName = NormalizeName(p.VariableName)
		p.DisplayName = NormalizeName(p.DisplayName)
		if p.VariableName == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	res.Proposals = cleaned
	return &res, nil
}

// CriticParams configures the critic pass over raw candidates.
type CriticParams struct {
	Neighborhood Neighborhood
	Direction    common.Direction
	Candidates   []ProposedVariable
}

// CallCriticAI asks the collaborator to group near-duplicate candidates and
// assign each group a likelihood with justification.
func CallCriticAI(
	ctx context.Context,
	client Client,
	params CriticParams,
	maxRetries int,
) (*CriticResponse, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(params.Candidates) == 0 {
		return &CriticResponse{Groups: []CriticGroup{}}, nil
	}

	var candidateData strings.Builder
	for _, c := range params.Candidates {
		fmt.Fprintf(&candidateData, "- %s (%s): %s\n", c.VariableName, c.DisplayName, c.Rationale)
	}

	noun := directionNoun(params.Direction)
	prompt := fmt.Sprintf(
		CriticPrompt,
		noun,
		params.Neighborhood.ExperimentalContext,
		formatNode(params.Neighborhood.Pivot),
		candidateData.String(),
		noun,
	)

	var res CriticResponse
	err := gUtil.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		res = CriticResponse{}
		return client.GenerateCompletionWithFormat(
			ctx, "critic_variables", "Group duplicate candidates and rate likelihood.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CallCondenseAI asks the collaborator for the identity of a node that
// merges the selected variables.
func CallCondenseAI(
	ctx context.Context,
	client Client,
	experimentalContext string,
	selected []common.Node,
	maxRetries int,
) (*causal.CondenseIdentity, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(selected) < 2 {
		return nil, causal.ErrTooFewNodes
	}

	prompt := fmt.Sprintf(CondensePrompt, experimentalContext, formatNodeList(selected))

	var res causal.CondenseIdentity
	err := gUtil.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		res = causal.CondenseIdentity{}
		return client.GenerateCompletionWithFormat(
			ctx, "condense_variables", "Name the variable that merges the selection.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}

	res.VariableName = NormalizeName(res.VariableName)
	res.DisplayName = NormalizeName(res.DisplayName)
	if res.VariableName == "" {
		return nil, fmt.Errorf("condense call returned no variable name")
	}
	return &res, nil
}

// CallExpandAI asks the collaborator to decompose one node into a causal
// subgraph with role-tagged variables.
func CallExpandAI(
	ctx context.Context,
	client Client,
	neighborhood Neighborhood,
	maxRetries int,
) (*causal.ExpansionProposal, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}

	prompt := fmt.Sprintf(
		ExpandPrompt,
		neighborhood.ExperimentalContext,
		formatNode(neighborhood.Pivot),
		neighborhood.FormatNeighborhood(),
		MaxExpandNodes,
	)

	var res causal.ExpansionProposal
	err := gUtil.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		res = causal.ExpansionProposal{}
		return client.GenerateCompletionWithFormat(
			ctx, "expand_variable", "Decompose one variable into a causal subgraph.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}

	cleaned := make([]causal.ExpansionNode, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		n.VariableName = NormalizeName(n.VariableName)
		n.DisplayName = NormalizeName(n.DisplayName)
		if n.VariableName == "" {
			continue
		}
		cleaned = append(cleaned, n)
	}
	res.Nodes = cleaned
	if len(res.Nodes) == 0 {
		return nil, causal.ErrEmptyExpansion
	}
	return &res, nil
}

// EvaluateParams configures the evaluate-existing call.
type EvaluateParams struct {
	Neighborhood Neighborhood
	Direction    common.Direction
	Candidates   []common.Node
}

// CallEvaluateAI asks the collaborator to rate existing unlinked nodes as
// potential links to the pivot.
func CallEvaluateAI(
	ctx context.Context,
	client Client,
	params EvaluateParams,
	maxRetries int,
) (*EvaluationsResponse, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(params.Candidates) == 0 {
		return &EvaluationsResponse{Evaluations: []Evaluation{}}, nil
	}

	noun := directionNoun(params.Direction)
	prompt := fmt.Sprintf(
		EvaluatePrompt,
		noun,
		params.Neighborhood.ExperimentalContext,
		formatNode(params.Neighborhood.Pivot),
		formatNodeList(params.Candidates),
		noun,
	)

	var res EvaluationsResponse
	err := gUtil.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		res = EvaluationsResponse{}
		return client.GenerateCompletionWithFormat(
			ctx, "evaluate_variables", "Rate existing variables as potential links.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
