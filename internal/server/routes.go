package server

import (
	"github.com/TRI-AMDD/causeway/backend/internal/server/middleware"
	"github.com/TRI-AMDD/causeway/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Graph routes
	apiRoutes.GET("/graphs", routes.GetGraphsHandler)
	apiRoutes.POST("/graphs", routes.CreateGraphHandler, middleware.RequirePermission("graph.create"))
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler)
	apiRoutes.PUT("/graphs/:id", routes.UpdateGraphHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler, middleware.RequirePermission("graph.delete"))

	// Node and edge routes
	apiRoutes.POST("/graphs/:id/nodes", routes.AddNodeHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.DELETE("/graphs/:id/nodes/:node_id", routes.DeleteNodeHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.POST("/graphs/:id/edges", routes.AddEdgeHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.DELETE("/graphs/:id/edges", routes.DeleteEdgeHandler, middleware.RequirePermission("graph.update"))

	// Structural transforms
	apiRoutes.POST("/graphs/:id/condense", routes.CondenseHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.POST("/graphs/:id/nodes/:node_id/expand", routes.ExpandHandler, middleware.RequirePermission("graph.update"))

	// Proposal routes
	apiRoutes.GET("/graphs/:id/nodes/:node_id/context", routes.GetNodeContextHandler)
	apiRoutes.POST("/graphs/:id/nodes/:node_id/propose", routes.ProposeHandler, middleware.RequirePermission("graph.propose"))
	apiRoutes.POST("/graphs/:id/nodes/:node_id/propose-async", routes.ProposeAsyncHandler, middleware.RequirePermission("graph.propose"))
	apiRoutes.GET("/graphs/:id/nodes/:node_id/proposals", routes.GetProposalsHandler)
	apiRoutes.POST("/graphs/:id/nodes/:node_id/evaluate", routes.EvaluateHandler, middleware.RequirePermission("graph.propose"))
}
