package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/internal/util"
	"github.com/TRI-AMDD/causeway/backend/pkg/causal"
	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// AddNodeHandler inserts a node, either hand-made or an accepted proposal.
// An optional edge links the new node to the graph in the same request; the
// whole insert is rejected if that edge would break acyclicity.
func AddNodeHandler(c echo.Context) error {
	type addNodeBody struct {
		VariableName   string                `json:"variableName"`
		DisplayName    string                `json:"displayName"`
		Description    string                `json:"description"`
		Position       *common.Position      `json:"position"`
		Classification common.Classification `json:"classification"`
		Edge           *common.Edge          `json:"edge"`
	}

	data := new(addNodeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	// Either name may be derived from the other, but one must be present.
	if data.VariableName == "" && data.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if data.VariableName == "" {
		data.VariableName = util.TitleToSnake(data.DisplayName)
	}
	if data.DisplayName == "" {
		data.DisplayName = util.SnakeToTitle(data.VariableName)
	}

	node := common.Node{
		ID:             data.VariableName,
		VariableName:   data.VariableName,
		DisplayName:    data.DisplayName,
		Description:    data.Description,
		Position:       data.Position,
		Classification: data.Classification,
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

	if _, exists := causal.GetNode(rec.Graph, node.ID); exists {
		return c.JSON(http.StatusConflict, map[string]string{"error": causal.ErrNodeExists.Error()})
	}

	g := causal.AddNode(rec.Graph, node)

	if data.Edge != nil {
		g, err = causal.AddEdgeSafe(g, data.Edge.Source, data.Edge.Target)
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
	}

	updated, err := st.UpdateGraph(ctx, rec.ID, rec.Name, g)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, updated)
}
