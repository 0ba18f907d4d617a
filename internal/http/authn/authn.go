// Package authn walks every protected request through the
// authorization pipeline: credential resolution, token verification,
// principal building, tenant derivation, and the level, capability and
// admin gates. A request either leaves the pipeline with a fully built
// principal attached to its context or with a structured denial;
// partial principals are never attached.
package authn

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/authz"
	"github.com/leadline/leadline/internal/metrics"
)

const (
	// ContextKeyPrincipal carries the request principal.
	ContextKeyPrincipal = "auth_principal"
	// ContextKeyEffectiveRoles carries the role set after the admin
	// validator possibly augmented it via the legacy username path.
	ContextKeyEffectiveRoles = "auth_effective_roles"

	// SessionKeyToken stores the signed token minted at login.
	SessionKeyToken = "auth_token"
	// SessionKeyUser is the legacy session shape: a serialized user
	// snapshot written by pre-token sessions. Still honored as the
	// weakest credential source.
	SessionKeyUser = "auth_user"
)

// Store is the slice of the user store the pipeline needs.
type Store interface {
	authz.UserSource
	authz.PermissionSource
}

// Authenticator owns the per-request pipeline. All fields are set once
// at boot; the authenticator itself is stateless across requests.
type Authenticator struct {
	Sessions *scs.SessionManager
	Verifier *auth.TokenVerifier
	Store    Store
	Logger   *slog.Logger
}

func (a *Authenticator) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// PrincipalFromContext returns the principal attached by Middleware.
func PrincipalFromContext(c *echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(ContextKeyPrincipal).(auth.Principal)
	return p, ok
}

// EffectiveRolesFromContext returns the admin-validated role set when
// present, else the principal's own roles.
func EffectiveRolesFromContext(c *echo.Context) auth.RoleSet {
	if roles, ok := c.Get(ContextKeyEffectiveRoles).(auth.RoleSet); ok {
		return roles
	}
	if p, ok := PrincipalFromContext(c); ok {
		return p.Roles
	}
	return auth.RoleSet{}
}

// Middleware authenticates the request: exactly one credential source
// is chosen (strict precedence, no fallback after a verification
// failure), the principal is rebuilt fresh from the store, and the
// effective tenant is derived per request.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			ctx := c.Request().Context()

			var sessionToken string
			var snapshot []byte
			if a.Sessions != nil {
				sessionToken = a.Sessions.GetString(ctx, SessionKeyToken)
				if raw := a.Sessions.GetString(ctx, SessionKeyUser); raw != "" {
					snapshot = []byte(raw)
				}
			}

			cred, ok := auth.ResolveCredential(
				c.Request().Header.Get(echo.HeaderAuthorization),
				sessionToken,
				snapshot,
			)
			if !ok {
				return Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
			}
			metrics.CredentialSourceTotal.WithLabelValues(cred.Kind.String()).Inc()

			var subjectID string
			switch cred.Kind {
			case auth.CredentialBearer, auth.CredentialSessionToken:
				claims, err := a.Verifier.Verify(cred.Token)
				if err != nil {
					metrics.TokenVerificationsTotal.WithLabelValues("failure").Inc()
					// Parse detail stays in the logs; the client only
					// sees which sentinel it tripped.
					a.log().WarnContext(ctx, "token verification failed",
						"source", cred.Kind.String(),
						"error", err,
					)
					if errors.Is(err, auth.ErrTokenExpired) {
						return Deny(c, http.StatusUnauthorized, auth.ErrTokenExpired)
					}
					return Deny(c, http.StatusUnauthorized, auth.ErrInvalidToken)
				}
				metrics.TokenVerificationsTotal.WithLabelValues("success").Inc()
				subjectID = claims.UserID
			case auth.CredentialSessionSnapshot:
				subjectID = cred.Snapshot.UserID
				if subjectID == "" {
					return Deny(c, http.StatusUnauthorized, auth.ErrInvalidCredentials)
				}
			}

			start := time.Now()
			principal, err := authz.Builder{Users: a.Store}.Build(ctx, subjectID)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrUserNotFound):
					return Deny(c, http.StatusUnauthorized, err)
				case errors.Is(err, auth.ErrAccountSuspended):
					return Deny(c, http.StatusForbidden, err)
				default:
					// Store failure: surfaced as a generic 500 by the
					// server error handler, detail stays in the logs.
					return err
				}
			}

			resolver := authz.TenantResolver{Users: a.Store, Logger: a.Logger}
			principal.TenantID = resolver.Resolve(ctx, principal)
			metrics.PrincipalBuildDuration.Observe(time.Since(start).Seconds())

			c.Set(ContextKeyPrincipal, principal)
			metrics.AuthDecisionsTotal.WithLabelValues("allow", "").Inc()
			return next(c)
		}
	}
}

// RequireLevel gates a route on level membership.
func RequireLevel(levels ...auth.UserLevel) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
			}
			if err := authz.CheckLevel(p, levels...); err != nil {
				return Deny(c, http.StatusForbidden, err)
			}
			return next(c)
		}
	}
}

// RequirePermission gates a route on one named capability.
func (a *Authenticator) RequirePermission(permission string) echo.MiddlewareFunc {
	gate := authz.Gate{Permissions: a.Store}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
			}
			if err := gate.Check(c.Request().Context(), p, permission); err != nil {
				switch {
				case errors.Is(err, auth.ErrPermissionDenied),
					errors.Is(err, auth.ErrNoPermissionsFound):
					return Deny(c, http.StatusForbidden, err)
				default:
					return err
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin gates administrative surfaces and propagates the
// possibly-augmented role set for the rest of the request.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
			}
			decision := authz.ValidateAdminAccess(p.Username, p.Roles)
			if !decision.Valid {
				return Deny(c, http.StatusForbidden, auth.ErrPermissionDenied)
			}
			c.Set(ContextKeyEffectiveRoles, decision.EffectiveRoles)
			return next(c)
		}
	}
}
