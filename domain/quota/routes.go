package quota

import (
	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// RegisterRoutes registers the usage routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/usage")
	g.Use(authMiddleware.RequireAuth())

	g.GET("", h.Usage)
}
