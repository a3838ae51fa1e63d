package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

func DeleteEdgeHandler(c echo.Context) error {
	type deleteEdgeBody struct {
		Source string `json:"source" validate:"required"`
		Target string `json:"target" validate:"required"`
	}

	data := new(deleteEdgeBody)
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

	g := causal.RemoveEdge(rec.Graph, data.Source, data.Target)

	updated, err := st.UpdateGraph(ctx, rec.ID, rec.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}
