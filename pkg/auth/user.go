// Package auth provides bearer-token authentication against the external
// identity service. The search core never owns identity; it resolves the
// calling user from a token and consumes the result.
package auth

import (
	"github.com/labstack/echo/v4"
)

// AuthUser represents an authenticated user
type AuthUser struct {
	// Internal UUID primary key from the identity service
	ID string `json:"id"`

	// User's email address
	Email string `json:"email,omitempty"`

	// Superuser accounts bypass the quota gate
	Superuser bool `json:"superuser,omitempty"`
}

// contextKey for storing the auth user in context
type contextKey string

const UserContextKey contextKey = "auth_user"

// GetUser retrieves the authenticated user from the Echo context
func GetUser(c echo.Context) *AuthUser {
	if user, ok := c.Get(string(UserContextKey)).(*AuthUser); ok {
		return user
	}
	return nil
}
