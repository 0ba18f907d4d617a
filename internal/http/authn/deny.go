package authn

import (
	"errors"
	"unicode"

	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/metrics"
)

// Denial is the structured body every authorization refusal returns.
// Message is human-readable; Error is the stable machine reason.
type Denial struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Deny terminates the request with a structured denial. Denials are
// permanent for the request; nothing upstream retries them.
func Deny(c *echo.Context, status int, err error) error {
	reason := ReasonKey(err)
	metrics.AuthDecisionsTotal.WithLabelValues("deny", reason).Inc()
	return c.JSON(status, Denial{
		Success: false,
		Message: capitalize(err.Error()),
		Error:   reason,
	})
}

// ReasonKey maps the error taxonomy onto stable reason strings exposed
// to clients and metrics.
func ReasonKey(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, auth.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, auth.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, auth.ErrAccountSuspended):
		return "account_suspended"
	case errors.Is(err, auth.ErrInsufficientLevel):
		return "insufficient_level"
	case errors.Is(err, auth.ErrNoPermissionsFound):
		return "no_permissions_found"
	case errors.Is(err, auth.ErrPermissionDenied):
		return "permission_denied"
	default:
		return "denied"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
