package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// DeleteNodeHandler removes a node and every edge touching it.
func DeleteNodeHandler(c echo.Context) error {
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

	g := causal.RemoveNode(rec.Graph, nodeID)

	updated, err := st.UpdateGraph(ctx, rec.ID, rec.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}
