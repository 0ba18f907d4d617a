package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/http/authn"
)

// HandleMe returns the resolved principal for the current request.
func (h *Handlers) HandleMe(c *echo.Context) error {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return authn.Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    p,
	})
}

// HandleHealthz is the unauthenticated liveness endpoint.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
