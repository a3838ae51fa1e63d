package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

func GetGraphsHandler(c echo.Context) error {
	type graphSummary struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Nodes     int    `json:"nodes"`
		Edges     int    `json:"edges"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}

	ctx := c.Request().Context()

	records, err := graphStore(c).ListGraphs(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	summaries := make([]graphSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, graphSummary{
			ID:        rec.ID,
			Name:      rec.Name,
			Nodes:     len(rec.Graph.Nodes),
			Edges:     len(rec.Graph.Edges),
			CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			UpdatedAt: rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	return c.JSON(http.StatusOK, summaries)
}

func GetGraphHandler(c echo.Context) error {
	ctx := c.Request().Context()

	rec, err := graphStore(c).GetGraph(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Graph not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, rec)
}
