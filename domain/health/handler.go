package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/internal/version"
)

const probeTimeout = 5 * time.Second

// Handler serves the liveness and readiness probes.
type Handler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	cfg     *config.Config
	startAt time.Time
}

// NewHandler creates a new health handler
func NewHandler(pool *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		pool:    pool,
		rdb:     rdb,
		cfg:     cfg,
		startAt: time.Now(),
	}
}

// HealthResponse is the detailed health payload
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check is one dependency's probe outcome
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health reports overall service health. The database is the only hard
// dependency; the Redis cache layer and the embeddings API degrade rather
// than fail, so their checks are informational and never flip the overall
// status.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	checks := map[string]Check{
		"database":   h.checkDatabase(ctx),
		"cache":      h.checkCache(ctx),
		"embeddings": h.checkEmbeddings(),
	}

	status := "healthy"
	statusCode := http.StatusOK
	if checks["database"].Status == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).String(),
		Version:   version.Version,
		Checks:    checks,
	})
}

func (h *Handler) checkDatabase(ctx context.Context) Check {
	if err := h.pool.Ping(ctx); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	return Check{Status: "healthy"}
}

func (h *Handler) checkCache(ctx context.Context) Check {
	if h.rdb == nil {
		return Check{Status: "disabled"}
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		return Check{Status: "degraded", Message: err.Error()}
	}
	return Check{Status: "healthy"}
}

func (h *Handler) checkEmbeddings() Check {
	if !h.cfg.Embeddings.IsEnabled() {
		return Check{Status: "disabled", Message: "semantic retrieval off, lexical only"}
	}
	return Check{Status: "healthy"}
}

// Healthz is the liveness probe
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready is the readiness probe. The service cannot take search traffic
// without the database; everything else degrades.
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "not_ready",
			"message": "database connection failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
	})
}
