package search

import (
	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// RegisterRoutes registers the search routes. Both endpoints take an
// optional token: authenticated users get the quota gate and profile bias,
// anonymous callers get the IP-throttled demo experience.
func RegisterRoutes(e *echo.Echo, h *Handler, mw *auth.Middleware) {
	g := e.Group("/api/search", mw.OptionalAuth())
	g.GET("/monologues", h.SearchMonologues)
	g.GET("/film-tv", h.SearchFilmTV)
}
