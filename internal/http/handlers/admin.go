package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/http/authn"
	"github.com/leadline/leadline/internal/store"
)

// adminUserView is the administrative projection of a user record.
// Roles are normalized here so the admin surface never shows raw
// legacy role blobs.
type adminUserView struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username,omitempty"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Level     int      `json:"userLevel"`
	TenantID  string   `json:"tenantId"`
	Roles     []string `json:"roles"`
	IsActive  bool     `json:"isActive"`
}

// HandleAdminUsers lists users visible to the administrator, scoped to
// the effective tenant.
func (h *Handlers) HandleAdminUsers(c *echo.Context) error {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return authn.Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
	}

	users, err := h.Store.ListUsers(c.Request().Context(), tenantFilter(p))
	if err != nil {
		return h.RenderError(c, err)
	}

	views := make([]adminUserView, 0, len(users))
	for _, u := range users {
		tenantID := u.TenantID
		if tenantID == "" {
			tenantID = u.ID
		}
		views = append(views, adminUserView{
			ID:        u.ID,
			Email:     u.Email,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Level:     u.Level,
			TenantID:  tenantID,
			Roles:     auth.NormalizeRoles(u.RawRoles).Slice(),
			IsActive:  u.IsActive,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"users":          views,
		"effectiveRoles": authn.EffectiveRolesFromContext(c).Slice(),
	})
}

// HandleAdminUserPermissions returns one user's capability record.
func (h *Handlers) HandleAdminUserPermissions(c *echo.Context) error {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return authn.Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
	}

	ctx := c.Request().Context()
	userID := c.Param("id")

	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return authn.Deny(c, http.StatusNotFound, auth.ErrUserNotFound)
		}
		return h.RenderError(c, err)
	}

	// Tenant isolation applies to admins too: without the all-tenants
	// sentinel an admin only sees users in their own tenant.
	if !p.AllTenants() {
		targetTenant := user.TenantID
		if targetTenant == "" {
			targetTenant = user.ID
		}
		if targetTenant != p.TenantID {
			return authn.Deny(c, http.StatusForbidden, auth.ErrPermissionDenied)
		}
	}

	perms, err := h.Store.GetUserPermissions(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return authn.Deny(c, http.StatusNotFound, auth.ErrNoPermissionsFound)
		}
		return h.RenderError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"permissions": perms,
	})
}
