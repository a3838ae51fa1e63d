package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

func DeleteGraphHandler(c echo.Context) error {
	ctx := c.Request().Context()

	if err := graphStore(c).DeleteGraph(ctx, c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Graph not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Graph deleted"})
}
