package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

// GetProposalsHandler returns the last stored proposal run for a node,
// whatever state it is in.
func GetProposalsHandler(c echo.Context) error {
	ctx := c.Request().Context()

	run, err := graphStore(c).GetProposalRun(ctx, c.Param("id"), c.Param("node_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No proposal run for node"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, run)
}
