package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/internal/server/middleware"
	"github.com/TRI-AMDD/causeway/backend/internal/util"
	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// ExpandHandler replaces one node with a finer-grained subgraph. The
// subgraph comes from the body when provided, otherwise the collaborator
// proposes one from the node's neighborhood.
func ExpandHandler(c echo.Context) error {
	type expandBody struct {
		Proposal *causal.ExpansionProposal `json:"proposal"`
	}

	data := new(expandBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
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

	proposal := data.Proposal
	if proposal == nil {
		neighborhood, err := ai.BuildNeighborhood(rec.Graph, nodeID)
		if err != nil {
			if errors.Is(err, causal.ErrNodeNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": causal.ErrNodeNotFound.Error()})
			}
			return c.String(http.StatusInternalServerError, err.Error())
		}

		aiClient := c.(*middleware.AppContext).App.AiClient
		proposal, err = ai.CallExpandAI(ctx, aiClient, neighborhood, int(util.GetEnvNumeric("AI_MAX_RETRIES", 3)))
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
	}

	g, err := causal.Expand(rec.Graph, nodeID, *proposal)
	if err != nil {
		if errors.Is(err, causal.ErrNodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, causal.ErrNodeExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, causal.ErrEmptyExpansion) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, causal.ErrForeignEdge) || errors.Is(err, causal.ErrGraphCyclic) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	updated, err := st.UpdateGraph(ctx, rec.ID, rec.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}
