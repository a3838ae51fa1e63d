package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

// CreateGraphHandler stores a new graph. The body may carry an initial
// topology; an empty graph is created when it does not.
func CreateGraphHandler(c echo.Context) error {
	type createGraphBody struct {
		Name  string        `json:"name" validate:"required"`
		Graph *common.Graph `json:"graph"`
	}

	data := new(createGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	g := common.Graph{Nodes: []common.Node{}, Edges: []common.Edge{}}
	if data.Graph != nil {
		g = *data.Graph
	}

	if err := causal.Validate(g); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	rec, err := graphStore(c).CreateGraph(ctx, data.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, rec)
}
