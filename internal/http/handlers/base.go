// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/config"
	"github.com/leadline/leadline/internal/store"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// Store is the persistence surface the handlers consume. *store.Postgres
// satisfies it; tests substitute an in-memory stub.
type Store interface {
	GetUser(ctx context.Context, id string) (store.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error)
	GetUserPermissions(ctx context.Context, userID string) (store.PermissionRecord, error)
	ListUsers(ctx context.Context, tenantID string) ([]store.UserRecord, error)
	ListLeads(ctx context.Context, tenantID string) ([]store.Lead, error)
	UpdateUserLoginMeta(ctx context.Context, params store.UpdateLoginMetaParams) error
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	Store    Store
	Sessions *scs.SessionManager
	Issuer   *auth.TokenIssuer
	Logger   *slog.Logger
}

// RenderError logs the real failure and returns a generic JSON body.
// Raw store errors and stack detail never reach the client.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	h.log().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": msg,
		"error":   InternalErrorCode,
	})
}

func (h *Handlers) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// tenantFilter converts the principal's effective tenant into the store
// filter: the all-tenants sentinel lifts the filter entirely.
func tenantFilter(p auth.Principal) string {
	if p.AllTenants() {
		return ""
	}
	return p.TenantID
}
