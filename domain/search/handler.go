package search

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/domain/quota"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

const maxQueryLength = 500

// Handler handles HTTP requests for search
type Handler struct {
	svc     *Service
	cfg     *config.Config
	limiter *quota.DemoLimiter
}

// NewHandler creates a new search handler
func NewHandler(svc *Service, cfg *config.Config, limiter *quota.DemoLimiter) *Handler {
	return &Handler{svc: svc, cfg: cfg, limiter: limiter}
}

// SearchMonologues runs the monologue search pipeline
// GET /api/search/monologues
func (h *Handler) SearchMonologues(c echo.Context) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return err
	}

	user := auth.GetUser(c)
	if user == nil {
		// Anonymous demo searches are throttled per IP instead of per user
		if strings.TrimSpace(req.Query) != "" && !h.limiter.Allow(c.RealIP()) {
			return apperror.ErrRateLimited
		}
	} else {
		req.UserID = user.ID
	}

	resp, err := h.svc.Search(c.Request().Context(), user, req)
	if err != nil {
		return quotaDenial(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// SearchFilmTV runs the film/TV search pipeline
// GET /api/search/film-tv
func (h *Handler) SearchFilmTV(c echo.Context) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return err
	}

	user := auth.GetUser(c)
	if user == nil {
		if strings.TrimSpace(req.Query) != "" && !h.limiter.Allow(c.RealIP()) {
			return apperror.ErrRateLimited
		}
	} else {
		req.UserID = user.ID
	}

	resp, err := h.svc.SearchFilmTV(c.Request().Context(), user, req)
	if err != nil {
		return quotaDenial(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// parseRequest validates the shared query parameters
func (h *Handler) parseRequest(c echo.Context) (SearchRequest, error) {
	var req SearchRequest

	req.Query = c.QueryParam("q")
	if len(req.Query) > maxQueryLength {
		return req, apperror.NewBadRequest("q must be at most 500 characters")
	}

	req.Page = 1
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, apperror.NewBadRequest("page must be a positive integer")
		}
		req.Page = page
	}

	req.PageSize = h.cfg.Search.DefaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return req, apperror.NewBadRequest("limit must be a positive integer")
		}
		if limit > h.cfg.Search.MaxPageSize {
			return req, apperror.NewBadRequest("limit must be at most 100")
		}
		req.PageSize = limit
	}

	f, err := parseFilterParams(c)
	if err != nil {
		return req, err
	}
	req.Filters = f

	return req, nil
}

// parseFilterParams reads the explicit filter parameters
func parseFilterParams(c echo.Context) (Filters, error) {
	var f Filters

	f.Gender = c.QueryParam("gender")
	f.AgeRange = c.QueryParam("age_range")
	f.Emotion = c.QueryParam("emotion")
	f.Difficulty = c.QueryParam("difficulty")
	f.Category = c.QueryParam("category")
	f.Author = c.QueryParam("author")
	f.CharacterName = c.QueryParam("character")
	f.Tone = c.QueryParam("tone")

	if themes, ok := c.QueryParams()["theme"]; ok {
		f.Themes = themes
	}

	if raw := c.QueryParam("act"); raw != "" {
		act, err := strconv.Atoi(raw)
		if err != nil || act < 1 || act > 10 {
			return f, apperror.NewBadRequest("act must be between 1 and 10")
		}
		f.Act = &act
	}
	if raw := c.QueryParam("scene"); raw != "" {
		scene, err := strconv.Atoi(raw)
		if err != nil || scene < 1 || scene > 20 {
			return f, apperror.NewBadRequest("scene must be between 1 and 20")
		}
		f.Scene = &scene
	}
	if raw := c.QueryParam("max_duration"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			return f, apperror.NewBadRequest("max_duration must be a positive number of seconds")
		}
		f.MaxDurationSeconds = &secs
	}
	if raw := c.QueryParam("exclude_overdone"); raw != "" {
		f.ExcludeOverdone = raw == "true" || raw == "1"
	}

	return f, nil
}

// quotaDenial rewrites a quota denial into the flat body clients key on:
// {error, message, limit, used, upgrade_url}. Other errors pass through to
// the shared error handler.
func quotaDenial(c echo.Context, err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Code != apperror.ErrQuotaExceeded.Code {
		return err
	}

	body := map[string]any{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	for k, v := range appErr.Details {
		body[k] = v
	}
	return c.JSON(http.StatusForbidden, body)
}
