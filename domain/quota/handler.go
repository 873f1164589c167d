package quota

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

// Handler exposes the user's usage and limits
type Handler struct {
	gate *Gate
}

// NewHandler creates a new quota handler
func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// FeatureUsageDTO is the per-feature usage payload
type FeatureUsageDTO struct {
	Limit int `json:"limit"`
	Used  int `json:"used"`
}

// Usage returns the current user's month-to-date usage per feature
// GET /api/usage
func (h *Handler) Usage(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	ctx := c.Request().Context()
	features := []Feature{FeatureAISearch, FeatureTotalSearch, FeatureScenePartner, FeatureCraftCoach}

	out := make(map[string]FeatureUsageDTO, len(features))
	for _, f := range features {
		limit, used, err := h.gate.Usage(ctx, user.ID, f)
		if err != nil {
			return err
		}
		out[string(f)] = FeatureUsageDTO{Limit: limit, Used: used}
	}

	return c.JSON(http.StatusOK, out)
}
