package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/auth/providers"
	"github.com/leadline/leadline/internal/authz"
	"github.com/leadline/leadline/internal/http/authn"
	"github.com/leadline/leadline/internal/metrics"
	"github.com/leadline/leadline/internal/normalize"
	"github.com/leadline/leadline/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    auth.Principal `json:"user"`
}

// HandleLoginPost authenticates email+password, mints a signed token,
// and stores it in the session so both the bearer and session
// credential sources resolve to the same identity afterwards.
func (h *Handlers) HandleLoginPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return authn.Deny(c, http.StatusUnauthorized, auth.ErrInvalidCredentials)
	}

	provider := providers.NewPasswordProvider(h.Store)
	principal, err := provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return authn.Deny(c, http.StatusUnauthorized, err)
		case errors.Is(err, auth.ErrAccountSuspended):
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return authn.Deny(c, http.StatusForbidden, err)
		default:
			return h.RenderError(c, err)
		}
	}
	principal.TenantID = authz.TenantResolver{Users: h.Store, Logger: h.Logger}.Resolve(ctx, principal)

	token, err := h.Issuer.Issue(principal)
	if err != nil {
		return h.RenderError(c, err)
	}

	if err := h.Sessions.RenewToken(ctx); err != nil {
		return h.RenderError(c, err)
	}
	h.Sessions.Put(ctx, authn.SessionKeyToken, token)

	if err := h.Store.UpdateUserLoginMeta(ctx, store.UpdateLoginMetaParams{
		UserID:      principal.ID,
		LastLoginAt: time.Now(),
		LastLoginIP: normalize.Trim(c.RealIP()),
	}); err != nil {
		h.log().Warn("updating login metadata failed", "user_id", principal.ID, "error", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User:    principal,
	})
}

// HandleLogoutPost destroys the session. Bearer tokens stay valid until
// expiry; logout only severs the session credential source.
func (h *Handlers) HandleLogoutPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}
	if err := h.Sessions.Destroy(c.Request().Context()); err != nil {
		return h.RenderError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
