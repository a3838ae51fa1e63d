package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/TRI-AMDD/causeway/backend/internal/queue"
	"github.com/TRI-AMDD/causeway/backend/internal/server/middleware"
	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// ProposeAsyncHandler enqueues a proposal job for the worker. The run is
// stored as queued immediately so clients can poll the proposals endpoint.
func ProposeAsyncHandler(c echo.Context) error {
	type proposeAsyncBody struct {
		Direction            common.Direction `json:"direction" validate:"omitempty,oneof=upstream downstream"`
		NumCycles            int              `json:"num_cycles"`
		NumProposalsPerCycle int              `json:"num_proposals_per_cycle"`
	}

	data := new(proposeAsyncBody)
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

	runID, err := gonanoid.New()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	run := &store.ProposalRun{
		ID:      runID,
		GraphID: rec.ID,
		NodeID:  nodeID,
		Status:  store.RunQueued,
	}
	if err := st.SaveProposalRun(ctx, run); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg := queue.ProposeMsg{
		RunID:                run.ID,
		GraphID:              rec.ID,
		NodeID:               nodeID,
		Direction:            data.Direction,
		NumCycles:            data.NumCycles,
		NumProposalsPerCycle: data.NumProposalsPerCycle,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.ProposeQueue, msgBytes); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Proposal run queued",
		"run_id":  run.ID,
	})
}
