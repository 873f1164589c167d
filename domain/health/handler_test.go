package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoor-labs/stagedoor/internal/config"
)

// newUnreachablePool builds a pool pointing at a port nothing listens on,
// so pings fail immediately.
func newUnreachablePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), "postgres://u:p@127.0.0.1:1/stagedoor")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(newUnreachablePool(t), nil, &config.Config{})
}

func TestHealthUnreachableDatabase(t *testing.T) {
	h := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	err := h.Health(e.NewContext(req, rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unhealthy", resp.Checks["database"].Status)

	// Optional layers report their state but never flip the overall status
	assert.Equal(t, "disabled", resp.Checks["cache"].Status)
	assert.Equal(t, "disabled", resp.Checks["embeddings"].Status)
}

func TestHealthzAlwaysOK(t *testing.T) {
	h := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	err := h.Healthz(e.NewContext(req, rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReadyRequiresDatabase(t *testing.T) {
	h := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	err := h.Ready(e.NewContext(req, rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}
