package proposal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/logger"
)

// ErrSuperseded is returned when a newer generation for the same pivot was
// started while this one was in flight. Stale results are discarded, never
// merged.
var ErrSuperseded = errors.New("proposal generation superseded")

// Config controls the fan-out of one proposal generation.
type Config struct {
	NumCycles            int // independent proposer rounds
	NumProposalsPerCycle int // candidates requested per round
	ParallelCycles       int // concurrent rounds, 0 means all at once
	MaxRetries           int // retries per collaborator call
}

func (c Config) normalized() Config {
	if c.NumCycles < 1 {
		c.NumCycles = 1
	}
	if c.NumProposalsPerCycle < 1 {
		c.NumProposalsPerCycle = 1
	}
	if c.ParallelCycles < 1 {
		c.ParallelCycles = c.NumCycles
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	return c
}

// Update is a lifecycle snapshot of one generation. The proposals slice
// mixes pending, assessing and complete entries because cycles finish out
// of order.
type Update struct {
	PivotID    string
	Generation string
	Proposals  []common.Proposal
}

// UpdateHook observes lifecycle snapshots. Hooks run synchronously on the
// pipeline goroutine and must not block.
type UpdateHook func(Update)

// Pipeline orchestrates proposal generation against the collaborator. It is
// safe for concurrent use; generations for the same pivot supersede each
// other.
type Pipeline struct {
	client ai.Client
	config Config
	hook   UpdateHook

	mu          sync.Mutex
	generations map[string]string
}

// NewPipeline creates a pipeline over the given collaborator client.
func NewPipeline(client ai.Client, config Config) *Pipeline {
	return &Pipeline{
		client:      client,
		config:      config.normalized(),
		generations: make(map[string]string),
	}
}

// SetUpdateHook registers the lifecycle observer. Must be called before Run.
func (p *Pipeline) SetUpdateHook(hook UpdateHook) {
	p.hook = hook
}

// begin registers a new generation for the pivot and returns its token. Any
// previous in-flight generation for the same pivot becomes stale.
func (p *Pipeline) begin(pivotID string) (string, error) {
	token, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to create generation token: %w", err)
	}
	p.mu.Lock()
	p.generations[pivotID] = token
	p.mu.Unlock()
	return token, nil
}

func (p *Pipeline) isCurrent(pivotID, token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generations[pivotID] == token
}

func (p *Pipeline) emit(pivotID, token string, proposals []common.Proposal) {
	if p.hook == nil || !p.isCurrent(pivotID, token) {
		return
	}
	snapshot := make([]common.Proposal, len(proposals))
	copy(snapshot, proposals)
	p.hook(Update{PivotID: pivotID, Generation: token, Proposals: snapshot})
}

// run tracks the working proposal list of one generation. Each cycle owns a
// fixed slot range so out-of-order completion never reorders other cycles'
// entries.
type run struct {
	mu         sync.Mutex
	slots      [][]common.Proposal
	candidates []ai.ProposedVariable
	seen       []string
	seenSet    map[string]bool
}

func newRun(config Config, direction common.Direction) *run {
	r := &run{
		slots:   make([][]common.Proposal, config.NumCycles),
		seenSet: make(map[string]bool),
	}
	for i := range r.slots {
		pending := make([]common.Proposal, config.NumProposalsPerCycle)
		for j := range pending {
			pending[j] = common.Proposal{
				Direction: direction,
				Status:    common.StatusPending,
			}
		}
		r.slots[i] = pending
	}
	return r
}

func (r *run) snapshot() []common.Proposal {
	result := make([]common.Proposal, 0)
	for _, slot := range r.slots {
		result = append(result, slot...)
	}
	return result
}

// avoidNames returns the names seen so far, for the diversification hint.
// This is a best-effort snapshot: cycles already in flight will not see
// names that arrive after their dispatch.
func (r *run) avoidNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.seen))
	copy(names, r.seen)
	return names
}

func (r *run) completeCycle(cycle int, direction common.Direction, received []ai.ProposedVariable) []common.Proposal {
	r.mu.Lock()
	defer r.mu.Unlock()

	assessing := make([]common.Proposal, 0, len(received))
	for _, c := range received {
		name := ai.NormalizeName(c.VariableName)
		assessing = append(assessing, common.Proposal{
			VariableName: name,
			DisplayName:  ai.NormalizeName(c.DisplayName),
			Rationale:    c.Rationale,
			Relation:     c.Relation,
			Direction:    direction,
			Status:       common.StatusAssessing,
		})
		r.candidates = append(r.candidates, c)
		if !r.seenSet[name] {
			r.seenSet[name] = true
			r.seen = append(r.seen, name)
		}
	}
	r.slots[cycle] = assessing
	return r.snapshot()
}

func (r *run) collected() []ai.ProposedVariable {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := make([]ai.ProposedVariable, len(r.candidates))
	copy(candidates, r.candidates)
	return candidates
}

// Run generates, deduplicates and ranks proposals for one side of the pivot
// node. Cycles run concurrently; later-dispatched cycles receive the names
// seen so far as a diversification hint. A cycle failure does not discard
// completed cycles: whatever was collected still goes through the critic,
// and the error is surfaced alongside the partial result.
func (p *Pipeline) Run(
	ctx context.Context,
	g common.Graph,
	pivotID string,
	direction common.Direction,
) ([]common.Proposal, error) {
	neighborhood, err := ai.BuildNeighborhood(g, pivotID)
	if err != nil {
		return nil, err
	}

	token, err := p.begin(pivotID)
	if err != nil {
		return nil, err
	}

	r := newRun(p.config, direction)
	p.emit(pivotID, token, r.snapshot())

	logger.Info("[Proposal] Generating",
		"pivot", pivotID,
		"direction", direction,
		"cycles", p.config.NumCycles,
		"per_cycle", p.config.NumProposalsPerCycle,
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.ParallelCycles)

	for cycle := 0; cycle < p.config.NumCycles; cycle++ {
		c := cycle
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
				res, err := ai.CallProposeAI(gCtx, p.client, ai.ProposeParams{
					Neighborhood: neighborhood,
					Direction:    direction,
					Count:        p.config.NumProposalsPerCycle,
					AvoidNames:   r.avoidNames(),
				}, p.config.MaxRetries)
				if err != nil {
					return fmt.Errorf("proposal cycle %d failed: %w", c, err)
				}

				snapshot := r.completeCycle(c, direction, res.Proposals)
				p.emit(pivotID, token, snapshot)
				return nil
			}
		})
	}

	genErr := eg.Wait()
	if !p.isCurrent(pivotID, token) {
		return nil, ErrSuperseded
	}

	candidates := r.collected()
	if len(candidates) == 0 {
		if genErr != nil {
			return nil, genErr
		}
		return []common.Proposal{}, nil
	}

	critic, err := ai.CallCriticAI(ctx, p.client, ai.CriticParams{
		Neighborhood: neighborhood,
		Direction:    direction,
		Candidates:   candidates,
	}, p.config.MaxRetries)
	if err != nil {
		if genErr != nil {
			return nil, genErr
		}
		return nil, err
	}

	if !p.isCurrent(pivotID, token) {
		return nil, ErrSuperseded
	}

	proposals := Consolidate(candidates, critic.Groups, direction)
	p.emit(pivotID, token, proposals)

	logger.Info("[Proposal] Generation complete",
		"pivot", pivotID,
		"raw", len(candidates),
		"merged", len(proposals),
	)

	return proposals, genErr
}

// Evaluate rates already-existing unconnected nodes as potential links to
// the pivot. Same lifecycle as Run without the dedupe step: every candidate
// is already unique by id.
func (p *Pipeline) Evaluate(
	ctx context.Context,
	g common.Graph,
	pivotID string,
	direction common.Direction,
) ([]common.Proposal, error) {
	neighborhood, err := ai.BuildNeighborhood(g, pivotID)
	if err != nil {
		return nil, err
	}

	token, err := p.begin(pivotID)
	if err != nil {
		return nil, err
	}

	candidates := neighborhood.Unconnected
	pending := make([]common.Proposal, 0, len(candidates))
	for _, c := range candidates {
		pending = append(pending, common.Proposal{
			VariableName: c.VariableName,
			DisplayName:  c.DisplayName,
			Direction:    direction,
			Status:       common.StatusPending,
		})
	}
	p.emit(pivotID, token, pending)

	if len(candidates) == 0 {
		return []common.Proposal{}, nil
	}

	res, err := ai.CallEvaluateAI(ctx, p.client, ai.EvaluateParams{
		Neighborhood: neighborhood,
		Direction:    direction,
		Candidates:   candidates,
	}, p.config.MaxRetries)
	if err != nil {
		return nil, err
	}

	if !p.isCurrent(pivotID, token) {
		return nil, ErrSuperseded
	}

	verdicts := make(map[string]ai.Evaluation, len(res.Evaluations))
	for _, e := range res.Evaluations {
		verdicts[ai.NormalizeName(e.VariableName)] = e
	}

	proposals := make([]common.Proposal, 0, len(candidates))
	for _, c := range candidates {
		proposal := common.Proposal{
			VariableName: c.VariableName,
			DisplayName:  c.DisplayName,
			Relation:     defaultRelation(direction),
			Direction:    direction,
			Status:       common.StatusComplete,
			Count:        1,
		}
		if v, ok := verdicts[ai.NormalizeName(c.VariableName)]; ok {
			proposal.Likelihood = v.Likelihood
			proposal.Rationale = v.Rationale
		}
		proposals = append(proposals, proposal)
	}
	sortProposals(proposals)

	p.emit(pivotID, token, proposals)
	return proposals, nil
}
