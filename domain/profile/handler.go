package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// Handler handles HTTP requests for actor profiles
type Handler struct {
	svc *Service
}

// NewHandler creates a new actor profile handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns the current user's profile
// GET /api/profile
func (h *Handler) Get(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	dto, err := h.svc.Get(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto)
}

// Update updates the current user's profile
// PUT /api/profile
func (h *Handler) Update(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}

	if req.Gender != nil && !ValidGenders[*req.Gender] {
		return apperror.ErrBadRequest.WithMessage("gender must be one of male, female, any")
	}
	if req.AgeRange != nil && !ValidAgeRanges[*req.AgeRange] {
		return apperror.ErrBadRequest.WithMessage("ageRange must be one of teens, 20s, 30s, 40s, 50s, 60+, any")
	}
	if req.ExperienceLevel != nil && !ValidExperienceLevels[*req.ExperienceLevel] {
		return apperror.ErrBadRequest.WithMessage("experienceLevel must be one of beginner, intermediate, advanced, professional")
	}
	if req.OverdoneAlertSensitivity != nil &&
		(*req.OverdoneAlertSensitivity < 0 || *req.OverdoneAlertSensitivity > 1) {
		return apperror.ErrBadRequest.WithMessage("overdoneAlertSensitivity must be in [0, 1]")
	}

	dto, err := h.svc.Update(c.Request().Context(), user.ID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto)
}
