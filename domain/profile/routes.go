package profile

import (
	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// RegisterRoutes registers the actor profile routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/profile")
	g.Use(authMiddleware.RequireAuth())

	g.GET("", h.Get)
	g.PUT("", h.Update)
}
