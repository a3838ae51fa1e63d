package proposal

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// fakeClient is a deterministic in-process collaborator. The per-call
// functions receive a 1-based call counter so tests can script behavior
// per cycle.
type fakeClient struct {
	mu           sync.Mutex
	proposeCalls int

	proposeFn  func(call int) ([]ai.ProposedVariable, error)
	criticFn   func() ([]ai.CriticGroup, error)
	evaluateFn func() ([]ai.Evaluation, error)

	beforePropose func(call int)
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	switch v := out.(type) {
	case *ai.ProposalsResponse:
		f.mu.Lock()
		f.proposeCalls++
		call := f.proposeCalls
		f.mu.Unlock()
		if f.beforePropose != nil {
			f.beforePropose(call)
		}
		proposals, err := f.proposeFn(call)
		if err != nil {
			return err
		}
		v.Proposals = proposals
		return nil
	case *ai.CriticResponse:
		groups, err := f.criticFn()
		if err != nil {
			return err
		}
		v.Groups = groups
		return nil
	case *ai.EvaluationsResponse:
		evals, err := f.evaluateFn()
		if err != nil {
			return err
		}
		v.Evaluations = evals
		return nil
	default:
		return errors.New("unexpected output type")
	}
}

func (f *fakeClient) ResetMetrics()               {}
func (f *fakeClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func pipelineGraph() common.Graph {
	return common.Graph{
		Nodes: []common.Node{
			{ID: "yield", VariableName: "yield", DisplayName: "Yield"},
			{ID: "catalyst_loading", VariableName: "catalyst_loading", DisplayName: "Catalyst Loading"},
			{ID: "stirring_rate", VariableName: "stirring_rate", DisplayName: "Stirring Rate"},
		},
		Edges: []common.Edge{
			{ID: "catalyst_loading->yield", Source: "catalyst_loading", Target: "yield"},
		},
		ExperimentalContext: "catalyst screening campaign",
	}
}

func candidate(name string, relation common.Relation) ai.ProposedVariable {
	return ai.ProposedVariable{
		VariableName: name,
		DisplayName:  name,
		Rationale:    "proposed " + name,
		Relation:     relation,
	}
}

func TestRunMergesEquivalentProposals(t *testing.T) {
	// Two independent proposers both suggest temperature: the result must
	// be a single proposal with count 2.
	client := &fakeClient{
		proposeFn: func(call int) ([]ai.ProposedVariable, error) {
			return []ai.ProposedVariable{candidate("temperature", common.RelationParent)}, nil
		},
		criticFn: func() ([]ai.CriticGroup, error) {
			return []ai.CriticGroup{{
				VariableName:  "temperature",
				DisplayName:   "Temperature",
				Members:       []string{"temperature"},
				Likelihood:    common.LikelihoodHigh,
				Justification: "temperature drives reaction kinetics",
			}}, nil
		},
	}

	p := NewPipeline(client, Config{NumCycles: 2, NumProposalsPerCycle: 1})
	got, err := p.Run(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d proposals, want 1: %+v", len(got), got)
	}
	if got[0].VariableName != "temperature" || got[0].Count != 2 {
		t.Errorf("proposal = %+v, want temperature with count 2", got[0])
	}
	if got[0].Status != common.StatusComplete {
		t.Errorf("status = %s, want complete", got[0].Status)
	}
	if got[0].Likelihood != common.LikelihoodHigh {
		t.Errorf("likelihood = %s, want high", got[0].Likelihood)
	}
}

func TestRunLifecycle(t *testing.T) {
	client := &fakeClient{
		proposeFn: func(call int) ([]ai.ProposedVariable, error) {
			return []ai.ProposedVariable{candidate("temperature", common.RelationParent)}, nil
		},
		criticFn: func() ([]ai.CriticGroup, error) {
			return []ai.CriticGroup{{
				VariableName: "temperature",
				Members:      []string{"temperature"},
				Likelihood:   common.LikelihoodMedium,
			}}, nil
		},
	}

	var mu sync.Mutex
	var updates []Update
	p := NewPipeline(client, Config{NumCycles: 1, NumProposalsPerCycle: 1})
	p.SetUpdateHook(func(u Update) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	if _, err := p.Run(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(updates) < 3 {
		t.Fatalf("got %d updates, want at least 3 (pending, assessing, complete)", len(updates))
	}
	if updates[0].Proposals[0].Status != common.StatusPending {
		t.Errorf("first snapshot status = %s, want pending", updates[0].Proposals[0].Status)
	}
	if updates[1].Proposals[0].Status != common.StatusAssessing {
		t.Errorf("second snapshot status = %s, want assessing", updates[1].Proposals[0].Status)
	}
	final := updates[len(updates)-1]
	if final.Proposals[0].Status != common.StatusComplete {
		t.Errorf("final snapshot status = %s, want complete", final.Proposals[0].Status)
	}
}

func TestRunPartialFailure(t *testing.T) {
	// One cycle fails: the surviving cycle's candidates still reach the
	// critic and the error is surfaced alongside them.
	client := &fakeClient{
		proposeFn: func(call int) ([]ai.ProposedVariable, error) {
			if call == 1 {
				return []ai.ProposedVariable{candidate("temperature", common.RelationParent)}, nil
			}
			return nil, errors.New("model unavailable")
		},
		criticFn: func() ([]ai.CriticGroup, error) {
			return []ai.CriticGroup{{
				VariableName: "temperature",
				Members:      []string{"temperature"},
				Likelihood:   common.LikelihoodHigh,
			}}, nil
		},
	}

	// sequential cycles so call 1 completes before call 2 fails
	p := NewPipeline(client, Config{NumCycles: 2, NumProposalsPerCycle: 1, ParallelCycles: 1})
	got, err := p.Run(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream)
	if err == nil {
		t.Fatal("expected the cycle error to surface")
	}
	if len(got) != 1 || got[0].VariableName != "temperature" {
		t.Fatalf("surviving proposals = %+v, want temperature", got)
	}
}

func TestRunAllCyclesFail(t *testing.T) {
	client := &fakeClient{
		proposeFn: func(call int) ([]ai.ProposedVariable, error) {
			return nil, errors.New("model unavailable")
		},
	}

	p := NewPipeline(client, Config{NumCycles: 2, NumProposalsPerCycle: 1})
	got, err := p.Run(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream)
	if err == nil {
		t.Fatal("expected error when every cycle fails")
	}
	if len(got) != 0 {
		t.Errorf("got %d proposals, want none", len(got))
	}
}

func TestRunUnknownPivot(t *testing.T) {
	p := NewPipeline(&fakeClient{}, Config{})
	if _, err := p.Run(context.Background(), pipelineGraph(), "missing", common.DirectionUpstream); err == nil {
		t.Fatal("expected error for unknown pivot")
	}
}

func TestRunSupersededGenerationDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	var once sync.Once
	client := &fakeClient{
		proposeFn: func(call int) ([]ai.ProposedVariable, error) {
			return []ai.ProposedVariable{candidate("temperature", common.RelationParent)}, nil
		},
		criticFn: func() ([]ai.CriticGroup, error) {
			return []ai.CriticGroup{{
				VariableName: "temperature",
				Members:      []string{"temperature"},
				Likelihood:   common.LikelihoodHigh,
			}}, nil
		},
		beforePropose: func(call int) {
			if call == 1 {
				once.Do(func() { close(started) })
				<-release
			}
		},
	}

	p := NewPipeline(client, Config{NumCycles: 1, NumProposalsPerCycle: 1})

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream)
		errCh <- err
	}()

	<-started

	// a second generation for the same pivot supersedes the first
	got, err := p.Run(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("second Run proposals = %+v, want one", got)
	}

	close(release)
	if err := <-errCh; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first Run error = %v, want ErrSuperseded", err)
	}
}

func TestEvaluate(t *testing.T) {
	client := &fakeClient{
		evaluateFn: func() ([]ai.Evaluation, error) {
			return []ai.Evaluation{
				{VariableName: "stirring_rate", Likelihood: common.LikelihoodLow, Rationale: "weak mechanism"},
			}, nil
		},
	}

	p := NewPipeline(client, Config{})
	got, err := p.Evaluate(context.Background(), pipelineGraph(), "yield", common.DirectionUpstream)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// stirring_rate is the only node unconnected to yield on both sides
	if len(got) != 1 {
		t.Fatalf("got %d evaluations, want 1: %+v", len(got), got)
	}
	if got[0].VariableName != "stirring_rate" {
		t.Errorf("evaluated node = %s, want stirring_rate", got[0].VariableName)
	}
	if got[0].Likelihood != common.LikelihoodLow || got[0].Rationale != "weak mechanism" {
		t.Errorf("verdict = %+v, want low likelihood with rationale", got[0])
	}
	if got[0].Status != common.StatusComplete {
		t.Errorf("status = %s, want complete", got[0].Status)
	}
}

func TestEvaluateNoCandidates(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{
			{ID: "a", VariableName: "a"},
			{ID: "b", VariableName: "b"},
		},
		Edges: []common.Edge{{ID: "a->b", Source: "a", Target: "b"}},
	}

	p := NewPipeline(&fakeClient{}, Config{})
	got, err := p.Evaluate(context.Background(), g, "a", common.DirectionUpstream)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d evaluations, want none", len(got))
	}
}
