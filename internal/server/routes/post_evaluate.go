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

// EvaluateHandler rates the pivot's unconnected nodes as potential links.
// Unlike propose, the candidates already exist in the graph, so there is no
// dedupe pass.
func EvaluateHandler(c echo.Context) error {
	type evaluateBody struct {
		Direction common.Direction `json:"direction" validate:"omitempty,oneof=upstream downstream"`
	}

	data := new(evaluateBody)
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
	pipeline := proposal.NewPipeline(aiClient, queue.PipelineConfig(0, 0))

	proposals, err := pipeline.Evaluate(ctx, rec.Graph, nodeID, data.Direction)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{"proposals": proposals})
}
