package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// UpdateGraphHandler replaces a stored graph wholesale. The topology is
// re-validated so a client can never persist a cyclic or inconsistent graph.
func UpdateGraphHandler(c echo.Context) error {
	type updateGraphBody struct {
		Name  string       `json:"name" validate:"required"`
		Graph common.Graph `json:"graph"`
	}

	data := new(updateGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := causal.Validate(data.Graph); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	rec, err := graphStore(c).UpdateGraph(ctx, c.Param("id"), data.Name, data.Graph)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Graph not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, rec)
}
