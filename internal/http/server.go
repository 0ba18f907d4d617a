// Package httpapp wires the echo server: routes, middleware order, and
// the centralized error handler.
package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/config"
	"github.com/leadline/leadline/internal/http/authn"
	"github.com/leadline/leadline/internal/http/handlers"
	"github.com/leadline/leadline/internal/store"
)

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	handlers.Store
}

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h   *handlers.Handlers
	a   *authn.Authenticator
	e   *echo.Echo
	srv *http.Server
}

// NewEchoServer assembles the server. The verifier and issuer already
// carry the resolved signing secret; nothing here reads secrets.
func NewEchoServer(
	cfg config.Config,
	st Store,
	sessions *scs.SessionManager,
	verifier *auth.TokenVerifier,
	issuer *auth.TokenIssuer,
) (*EchoServer, error) {
	h := &handlers.Handlers{
		Cfg:      cfg,
		Store:    st,
		Sessions: sessions,
		Issuer:   issuer,
	}
	a := &authn.Authenticator{
		Sessions: sessions,
		Verifier: verifier,
		Store:    st,
	}
	es := &EchoServer{h: h, a: a, e: echo.New()}
	es.e.HTTPErrorHandler = es.httpErrorHandler
	es.e.Use(requestIDMiddleware())
	if sessions != nil {
		es.e.Use(echo.WrapMiddleware(sessions.LoadAndSave))
	}
	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)

	api := es.e.Group("/api")
	api.POST("/auth/login", es.h.HandleLoginPost)
	api.POST("/auth/logout", es.h.HandleLogoutPost)

	authed := api.Group("", es.a.Middleware())
	authed.GET("/me", es.h.HandleMe)
	authed.GET("/leads", es.h.HandleLeads, es.a.RequirePermission(store.PermViewLeads))

	admin := authed.Group("/admin", authn.RequireAdmin())
	admin.GET("/users", es.h.HandleAdminUsers)
	admin.GET("/users/:id/permissions", es.h.HandleAdminUserPermissions,
		authn.RequireLevel(auth.LevelPlatformAdmin, auth.LevelAccountOwner))
}

// requestIDMiddleware honors an inbound X-Request-ID and generates one
// otherwise; the id links client error references to server logs.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Set(handlers.ContextKeyRequestID, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(c)
		}
	}
}

// httpErrorHandler is the terminal error path: client errors keep their
// status with a generic status-text body, everything else becomes a
// generic 500 with a request-id reference. Internal detail stays in the
// server logs only.
func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if r, _ := echo.UnwrapResponse(c.Response()); r != nil && r.Committed {
		return
	}

	status := httpStatusFromError(err)
	if status >= http.StatusInternalServerError {
		_ = es.h.RenderError(c, err)
		return
	}

	requestID, _ := c.Get(handlers.ContextKeyRequestID).(string)
	c.Logger().Warn("http error",
		"request_id", requestID,
		"status", status,
		"path", c.Request().URL.Path,
		"error", err,
	)
	message := http.StatusText(status)
	if status == http.StatusNotFound {
		message = "Not found"
	}
	_ = c.JSON(status, map[string]any{
		"success": false,
		"message": fmt.Sprintf("%s.", message),
	})
}

func httpStatusFromError(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// Start starts the HTTP server.
func (es *EchoServer) Start(addr string) error {
	return es.e.Start(addr)
}

// StartServer starts the HTTP server with a custom http.Server.
func (es *EchoServer) StartServer(server *http.Server) error {
	server.Handler = es.e
	es.srv = server
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	if es.srv == nil {
		return nil
	}
	return es.srv.Shutdown(ctx)
}
