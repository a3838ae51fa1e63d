package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// GetNodeContextHandler returns the pivot's neighborhood: immediate and
// higher relatives on both sides with their shortest-path degree, plus the
// unconnected candidates the evaluate pipeline would consider.
func GetNodeContextHandler(c echo.Context) error {
	type nodeContextResponse struct {
		Pivot               common.Node             `json:"pivot"`
		ImmediateUpstream   []common.Node           `json:"immediate_upstream"`
		HigherUpstream      []causal.NodeWithDegree `json:"higher_upstream"`
		ImmediateDownstream []common.Node           `json:"immediate_downstream"`
		HigherDownstream    []causal.NodeWithDegree `json:"higher_downstream"`
		Unconnected         []common.Node           `json:"unconnected"`
	}

	ctx := c.Request().Context()

	rec, err := graphStore(c).GetGraph(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Graph not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	neighborhood, err := ai.BuildNeighborhood(rec.Graph, c.Param("node_id"))
	if err != nil {
		if errors.Is(err, causal.ErrNodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": causal.ErrNodeNotFound.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, nodeContextResponse{
		Pivot:               neighborhood.Pivot,
		ImmediateUpstream:   neighborhood.ImmediateUpstream,
		HigherUpstream:      neighborhood.HigherUpstream,
		ImmediateDownstream: neighborhood.ImmediateDownstream,
		HigherDownstream:    neighborhood.HigherDownstream,
		Unconnected:         neighborhood.Unconnected,
	})
}
