package favorites

import (
	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// RegisterRoutes registers the favorites routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/favorites")
	g.Use(authMiddleware.RequireAuth())

	g.GET("", h.List)
	g.PUT("/monologues/:id", h.AddMonologue)
	g.DELETE("/monologues/:id", h.RemoveMonologue)
}
