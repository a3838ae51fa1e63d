package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// AddEdgeHandler inserts a source→target edge through the cycle guard.
// A duplicate pair answers 409, an edge that would close a cycle 422; in
// both cases the stored graph is untouched.
func AddEdgeHandler(c echo.Context) error {
	type addEdgeBody struct {
		Source string `json:"source" validate:"required"`
		Target string `json:"target" validate:"required"`
	}

	data := new(addEdgeBody)
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

	g, err := causal.AddEdgeSafe(rec.Graph, data.Source, data.Target)
	if errors.Is(err, causal.ErrNodeNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	if errors.Is(err, causal.ErrDuplicateEdge) {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	if errors.Is(err, causal.ErrWouldCreateCycle) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	updated, err := st.UpdateGraph(ctx, rec.ID, rec.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, updated)
}
