package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/internal/queue"
	"github.com/TRI-AMDD/causeway/backend/internal/server/middleware"
	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/proposal"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// ProposeHandler runs the proposal pipeline synchronously and stores the
// ranked result. Completed cycles survive a failed one, so a partial result
// still answers 200 with the error attached.
func ProposeHandler(c echo.Context) error {
	type proposeBody struct {
		Direction            common.Direction `json:"direction" validate:"omitempty,oneof=upstream downstream"`
		NumCycles            int              `json:"num_cycles"`
		NumProposalsPerCycle int              `json:"num_proposals_per_cycle"`
	}

	type proposeResponse struct {
		Proposals []common.Proposal `json:"proposals"`
		Error     string            `json:"error,omitempty"`
	}

	data := new(proposeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if data.Direction == "" {
		data.Direction = common.DirectionUpstream
	}

	ctx := c.Request().Context()
	st := graphStore(c)

	rec, err := st.GetGraph(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Graph not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	nodeID := c.Param("node_id")
	if _, exists := causal.GetNode(rec.Graph, nodeID); !exists {
		return c.JSON(http.StatusNotFound, map[string]string{"error": causal.ErrNodeNotFound.Error()})
	}

	aiClient := c.(*middleware.AppContext).App.AiClient
	pipeline := proposal.NewPipeline(aiClient, queue.PipelineConfig(data.NumCycles, data.NumProposalsPerCycle))

	proposals, runErr := pipeline.Run(ctx, rec.Graph, nodeID, data.Direction)
	if runErr != nil && len(proposals) == 0 {
		return c.String(http.StatusInternalServerError, runErr.Error())
	}

	run := &store.ProposalRun{
		GraphID:   rec.ID,
		NodeID:    nodeID,
		Status:    store.RunComplete,
		Proposals: proposals,
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	if err := st.SaveProposalRun(ctx, run); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	res := proposeResponse{Proposals: proposals}
	if runErr != nil {
		res.Error = runErr.Error()
	}
	return c.JSON(http.StatusOK, res)
}
