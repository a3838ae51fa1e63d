package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TRI-AMDD/causeway/backend/internal/util"
	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/leaselock"
	"github.com/TRI-AMDD/causeway/backend/pkg/logger"
	"github.com/TRI-AMDD/causeway/backend/pkg/proposal"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
	storepgx "github.com/TRI-AMDD/causeway/backend/pkg/store/pgx"
)

// ProposeMsg is the payload of a queued proposal job.
type ProposeMsg struct {
	RunID     string           `json:"run_id"`
	GraphID   string           `json:"graph_id"`
	NodeID    string           `json:"node_id"`
	Direction common.Direction `json:"direction"`

	NumCycles            int `json:"num_cycles,omitempty"`
	NumProposalsPerCycle int `json:"num_proposals_per_cycle,omitempty"`
}

// PipelineConfig builds the pipeline fan-out from the message, falling back
// to env defaults.
func PipelineConfig(numCycles, perCycle int) proposal.Config {
	if numCycles < 1 {
		numCycles = int(util.GetEnvNumeric("PROPOSE_CYCLES", 4))
	}
	if perCycle < 1 {
		perCycle = int(util.GetEnvNumeric("PROPOSE_PER_CYCLE", 5))
	}
	return proposal.Config{
		NumCycles:            numCycles,
		NumProposalsPerCycle: perCycle,
		ParallelCycles:       int(util.GetEnvNumeric("PROPOSE_PARALLEL", 2)),
		MaxRetries:           int(util.GetEnvNumeric("AI_MAX_RETRIES", 3)),
	}
}

// ProcessProposeMessage runs the proposal pipeline for a queued job and
// persists the ranked result. A per-graph lease keeps concurrent workers
// from interleaving runs on the same graph.
func ProcessProposeMessage(
	ctx context.Context,
	aiClient ai.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(ProposeMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal propose message: %w", err)
	}
	if data.Direction == "" {
		data.Direction = common.DirectionUpstream
	}

	st := storepgx.NewGraphDBStore(conn)
	locks := leaselock.New(conn)

	return locks.WithLease(ctx, "graph:"+data.GraphID, leaselock.Options{
		TTL:  10 * time.Minute,
		Wait: true,
	}, func(ctx context.Context) error {
		rec, err := st.GetGraph(ctx, data.GraphID)
		if err != nil {
			return fmt.Errorf("failed to load graph %s: %w", data.GraphID, err)
		}

		run := &store.ProposalRun{
			ID:      data.RunID,
			GraphID: data.GraphID,
			NodeID:  data.NodeID,
			Status:  store.RunRunning,
		}
		if err := st.SaveProposalRun(ctx, run); err != nil {
			return fmt.Errorf("failed to mark run running: %w", err)
		}

		pipeline := proposal.NewPipeline(aiClient, PipelineConfig(data.NumCycles, data.NumProposalsPerCycle))
		pipeline.SetUpdateHook(func(u proposal.Update) {
			run.Proposals = u.Proposals
			if err := st.SaveProposalRun(ctx, run); err != nil {
				logger.Warn("[Queue] Failed to persist run snapshot", "graph_id", data.GraphID, "node_id", data.NodeID, "err", err)
			}
		})

		proposals, runErr := pipeline.Run(ctx, rec.Graph, data.NodeID, data.Direction)

		run.Proposals = proposals
		if runErr != nil {
			run.ErrorMessage = runErr.Error()
		}
		// Completed cycles survive a failed one, so a partial result still
		// counts as a finished run.
		if len(proposals) > 0 || runErr == nil {
			run.Status = store.RunComplete
		} else {
			run.Status = store.RunFailed
		}

		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.SaveProposalRun(saveCtx, run); err != nil {
			return fmt.Errorf("failed to persist run result: %w", err)
		}

		if runErr != nil && run.Status == store.RunFailed {
			return runErr
		}
		if runErr != nil {
			logger.Warn("[Queue] Run finished with partial failure", "graph_id", data.GraphID, "node_id", data.NodeID, "err", runErr)
		}

		logger.Info("[Queue] Proposal run stored",
			"graph_id", data.GraphID,
			"node_id", data.NodeID,
			"status", run.Status,
			"proposals", len(run.Proposals),
		)
		return nil
	})
}
