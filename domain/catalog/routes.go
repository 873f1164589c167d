package catalog

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the catalog routes. Monologue reads are public;
// the demo experience browses without a token.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/monologues/:id", h.GetMonologue)
}
