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
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// CondenseHandler merges a node selection into a single node. The merged
// identity comes from the body when provided, otherwise the collaborator
// names it from the selection.
func CondenseHandler(c echo.Context) error {
	type condenseBody struct {
		NodeIDs  []string                 `json:"node_ids" validate:"required,min=2"`
		Identity *causal.CondenseIdentity `json:"identity"`
	}

	data := new(condenseBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
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

	identity := data.Identity
	if identity == nil {
		selected := make([]common.Node, 0, len(data.NodeIDs))
		for _, id := range data.NodeIDs {
			node, ok := causal.GetNode(rec.Graph, id)
			if !ok {
				return c.JSON(http.StatusNotFound, map[string]string{"error": causal.ErrNodeNotFound.Error()})
			}
			selected = append(selected, node)
		}

		aiClient := c.(*middleware.AppContext).App.AiClient
		identity, err = ai.CallCondenseAI(ctx, aiClient, rec.Graph.ExperimentalContext, selected, int(util.GetEnvNumeric("AI_MAX_RETRIES", 3)))
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
	}

	g, err := causal.Condense(rec.Graph, data.NodeIDs, *identity)
	if err != nil {
		if errors.Is(err, causal.ErrTooFewNodes) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, causal.ErrNodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, causal.ErrNodeExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	updated, err := st.UpdateGraph(ctx, rec.ID, rec.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}
