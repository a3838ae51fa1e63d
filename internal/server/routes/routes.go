package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/TRI-AMDD/causeway/backend/internal/server/middleware"
	storepgx "github.com/TRI-AMDD/causeway/backend/pkg/store/pgx"
)

func graphStore(c echo.Context) *storepgx.GraphDBStore {
	return storepgx.NewGraphDBStore(c.(*middleware.AppContext).App.DBConn)
}
