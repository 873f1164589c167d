package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// TokenVerifier resolves a bearer token to an authenticated user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*AuthUser, error)
}

// Middleware handles authentication for routes
type Middleware struct {
	cfg        *config.Config
	log        *slog.Logger
	verifier   TokenVerifier
	debugToken string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(cfg *config.Config, log *slog.Logger, verifier TokenVerifier) *Middleware {
	m := &Middleware{
		cfg:      cfg,
		log:      log.With(logger.Scope("auth")),
		verifier: verifier,
	}

	// Set up debug token for development
	if !cfg.IsProduction() && cfg.Auth.DebugToken != "" {
		m.debugToken = cfg.Auth.DebugToken
	}

	return m
}

// RequireAuth returns middleware that requires authentication
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := m.authenticate(c)
			if err != nil {
				m.log.Warn("authentication failed", logger.Error(err))
				return err
			}

			c.Set(string(UserContextKey), user)
			return next(c)
		}
	}
}

// OptionalAuth resolves the user when a token is present but lets anonymous
// requests through. Used by the demo search endpoint, which throttles
// anonymous callers by IP instead of rejecting them.
func (m *Middleware) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.extractToken(c.Request()) == "" {
				return next(c)
			}

			user, err := m.authenticate(c)
			if err != nil {
				m.log.Warn("authentication failed", logger.Error(err))
				return err
			}

			c.Set(string(UserContextKey), user)
			return next(c)
		}
	}
}

// authenticate extracts and validates the token from the request
func (m *Middleware) authenticate(c echo.Context) (*AuthUser, error) {
	token := m.extractToken(c.Request())
	if token == "" {
		return nil, apperror.ErrMissingToken
	}

	// Static debug token bypasses introspection outside production
	if m.debugToken != "" && token == m.debugToken {
		return &AuthUser{
			ID:        "00000000-0000-0000-0000-000000000001",
			Email:     "debug@localhost",
			Superuser: true,
		}, nil
	}

	user, err := m.verifier.Verify(c.Request().Context(), token)
	if err != nil {
		return nil, apperror.ErrInvalidToken.WithInternal(err)
	}

	user.Superuser = user.Superuser || slices.Contains(m.cfg.Auth.SuperuserEmails, user.Email)
	return user, nil
}

// extractToken extracts the bearer token from request
func (m *Middleware) extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// IntrospectionVerifier validates tokens against the identity service's
// introspection endpoint.
type IntrospectionVerifier struct {
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// NewIntrospectionVerifier creates a verifier for the configured endpoint.
func NewIntrospectionVerifier(cfg *config.Config, log *slog.Logger) *IntrospectionVerifier {
	return &IntrospectionVerifier{
		endpoint: cfg.Auth.IntrospectURL,
		client:   &http.Client{Timeout: cfg.Auth.Timeout},
		log:      log.With(logger.Scope("auth.introspect")),
	}
}

type introspectionResponse struct {
	Active    bool   `json:"active"`
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	Superuser bool   `json:"superuser"`
}

// Verify posts the token to the introspection endpoint and maps the claims
// to an AuthUser.
func (v *IntrospectionVerifier) Verify(ctx context.Context, token string) (*AuthUser, error) {
	if v.endpoint == "" {
		return nil, fmt.Errorf("introspection endpoint not configured")
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build introspection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspection request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("introspection returned status %d", resp.StatusCode)
	}

	var body introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode introspection response: %w", err)
	}

	if !body.Active || body.Sub == "" {
		return nil, fmt.Errorf("token is not active")
	}

	return &AuthUser{
		ID:        body.Sub,
		Email:     body.Email,
		Superuser: body.Superuser,
	}, nil
}
