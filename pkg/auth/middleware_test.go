package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
)

type fakeVerifier struct {
	user *AuthUser
	err  error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*AuthUser, error) {
	return f.user, f.err
}

func newTestMiddleware(t *testing.T, verifier TokenVerifier, mutate func(*config.Config)) *Middleware {
	t.Helper()
	cfg := &config.Config{Environment: "local"}
	if mutate != nil {
		mutate(cfg)
	}
	return NewMiddleware(cfg, slog.Default(), verifier)
}

func doRequest(m *Middleware, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, *AuthUser, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *AuthUser
	handler := mw(func(c echo.Context) error {
		got = GetUser(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, got, err
}

func TestRequireAuthMissingToken(t *testing.T) {
	m := newTestMiddleware(t, &fakeVerifier{}, nil)

	_, user, handlerErr := doRequest(m, m.RequireAuth(), "")
	assert.Nil(t, user)
	require.Error(t, handlerErr)
	appErr, ok := handlerErr.(*apperror.Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestRequireAuthValidToken(t *testing.T) {
	verifier := &fakeVerifier{user: &AuthUser{ID: "u-1", Email: "actor@example.com"}}
	m := newTestMiddleware(t, verifier, nil)

	rec, user, err := doRequest(m, m.RequireAuth(), "Bearer token-123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
	assert.False(t, user.Superuser)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: fmt.Errorf("token expired")}
	m := newTestMiddleware(t, verifier, nil)

	_, user, err := doRequest(m, m.RequireAuth(), "Bearer bad")
	assert.Nil(t, user)
	require.Error(t, err)
	appErr, ok := err.(*apperror.Error)
	require.True(t, ok)
	assert.Equal(t, "invalid_token", appErr.Code)
}

func TestRequireAuthSuperuserAllowlist(t *testing.T) {
	verifier := &fakeVerifier{user: &AuthUser{ID: "u-2", Email: "admin@stagedoor.app"}}
	m := newTestMiddleware(t, verifier, func(cfg *config.Config) {
		cfg.Auth.SuperuserEmails = []string{"admin@stagedoor.app"}
	})

	_, user, err := doRequest(m, m.RequireAuth(), "Bearer token")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Superuser)
}

func TestRequireAuthDebugToken(t *testing.T) {
	m := newTestMiddleware(t, &fakeVerifier{err: fmt.Errorf("should not be called")}, func(cfg *config.Config) {
		cfg.Auth.DebugToken = "local-debug"
	})

	_, user, err := doRequest(m, m.RequireAuth(), "Bearer local-debug")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Superuser)
}

func TestDebugTokenIgnoredInProduction(t *testing.T) {
	verifier := &fakeVerifier{err: fmt.Errorf("unknown token")}
	cfg := &config.Config{Environment: "prod"}
	cfg.Auth.DebugToken = "local-debug"
	m := NewMiddleware(cfg, slog.Default(), verifier)

	_, user, err := doRequest(m, m.RequireAuth(), "Bearer local-debug")
	assert.Nil(t, user)
	require.Error(t, err)
}

func TestOptionalAuthAnonymous(t *testing.T) {
	m := newTestMiddleware(t, &fakeVerifier{err: fmt.Errorf("should not be called")}, nil)

	rec, user, err := doRequest(m, m.OptionalAuth(), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestOptionalAuthWithToken(t *testing.T) {
	verifier := &fakeVerifier{user: &AuthUser{ID: "u-3"}}
	m := newTestMiddleware(t, verifier, nil)

	_, user, err := doRequest(m, m.OptionalAuth(), "Bearer token")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-3", user.ID)
}

func TestIntrospectionVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		switch r.FormValue("token") {
		case "good":
			fmt.Fprint(w, `{"active":true,"sub":"u-9","email":"a@b.c"}`)
		case "inactive":
			fmt.Fprint(w, `{"active":false}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Auth.IntrospectURL = srv.URL
	v := NewIntrospectionVerifier(cfg, slog.Default())

	user, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-9", user.ID)
	assert.Equal(t, "a@b.c", user.Email)

	_, err = v.Verify(context.Background(), "inactive")
	assert.Error(t, err)

	_, err = v.Verify(context.Background(), "bad")
	assert.Error(t, err)
}
