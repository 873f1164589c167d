package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
)

// Handler handles HTTP requests for the catalog
type Handler struct {
	svc *Service
}

// NewHandler creates a new catalog handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetMonologue returns one monologue by id
// GET /api/monologues/:id
func (h *Handler) GetMonologue(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid monologue id")
	}

	dto, err := h.svc.GetMonologue(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto)
}
