package favorites

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// Handler handles HTTP requests for favorites
type Handler struct {
	svc *Service
}

// NewHandler creates a new favorites handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the current user's favorites
// GET /api/favorites
func (h *Handler) List(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	favs, err := h.svc.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"favorites": favs})
}

// AddMonologue favorites a monologue
// PUT /api/favorites/monologues/:id
func (h *Handler) AddMonologue(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid monologue id")
	}

	if err := h.svc.AddMonologue(c.Request().Context(), user.ID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveMonologue unfavorites a monologue
// DELETE /api/favorites/monologues/:id
func (h *Handler) RemoveMonologue(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid monologue id")
	}

	if err := h.svc.RemoveMonologue(c.Request().Context(), user.ID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
