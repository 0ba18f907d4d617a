package authn

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/store"
)

type storeStub struct {
	users       map[string]store.UserRecord
	permissions map[string]store.PermissionRecord
}

func newStoreStub() *storeStub {
	return &storeStub{
		users:       make(map[string]store.UserRecord),
		permissions: make(map[string]store.PermissionRecord),
	}
}

func (s *storeStub) GetUser(_ context.Context, id string) (store.UserRecord, error) {
	rec, ok := s.users[id]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *storeStub) GetUserPermissions(_ context.Context, userID string) (store.PermissionRecord, error) {
	rec, ok := s.permissions[userID]
	if !ok {
		return store.PermissionRecord{}, store.ErrNotFound
	}
	return rec, nil
}

var testSecret = []byte("authn-test-secret")

func testAuthenticator(st *storeStub) *Authenticator {
	return &Authenticator{
		Verifier: auth.NewTokenVerifier(testSecret, "", 0),
		Store:    st,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	issuer := auth.NewTokenIssuer(testSecret, "", time.Hour)
	token, err := issuer.Issue(auth.Principal{ID: userID, Roles: auth.RoleSet{}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func seedActiveUser(st *storeStub, id string, level int) {
	st.users[id] = store.UserRecord{
		ID:       id,
		Email:    id + "@example.com",
		Username: id,
		Level:    level,
		TenantID: "tenant-" + id,
		RawRoles: `["EDITOR"]`,
		IsActive: true,
	}
}

// run sends the request through the middleware into a capture handler.
func run(t *testing.T, a *Authenticator, req *http.Request) (*httptest.ResponseRecorder, *auth.Principal) {
	t.Helper()
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *auth.Principal
	handler := a.Middleware()(func(c *echo.Context) error {
		if p, ok := PrincipalFromContext(c); ok {
			captured = &p
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, captured
}

func decodeDenial(t *testing.T, rec *httptest.ResponseRecorder) Denial {
	t.Helper()
	var d Denial
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode denial: %v (%s)", err, rec.Body.String())
	}
	return d
}

func TestMiddlewareNoCredentials(t *testing.T) {
	a := testAuthenticator(newStoreStub())
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)

	rec, p := run(t, a, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if p != nil {
		t.Fatal("principal attached without credentials")
	}
	d := decodeDenial(t, rec)
	if d.Success || d.Error != "unauthenticated" {
		t.Fatalf("denial = %+v", d)
	}
}

func TestMiddlewareBearerToken(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "user-1", 2)
	a := testAuthenticator(st)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "user-1"))

	rec, p := run(t, a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if p == nil {
		t.Fatal("no principal attached")
	}
	if p.ID != "user-1" || p.TenantID != "tenant-user-1" {
		t.Fatalf("principal = %+v", p)
	}
}

func TestMiddlewareInvalidBearerNoFallback(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "user-1", 2)
	a := testAuthenticator(st)
	a.Sessions = scs.New()

	// A valid session token sits behind an invalid bearer header. The
	// bearer is authoritative and its failure must not fall through.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	ctx, err := a.Sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	a.Sessions.Put(ctx, SessionKeyToken, signToken(t, "user-1"))
	req = req.WithContext(ctx)

	rec, p := run(t, a, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if p != nil {
		t.Fatal("fell back to the session credential")
	}
	d := decodeDenial(t, rec)
	if d.Error != "invalid_token" {
		t.Fatalf("reason = %q", d.Error)
	}
	// The body carries the bare sentinel only; parser detail about why
	// the token failed to verify never reaches the client.
	if d.Message != "Invalid token" {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestMiddlewareValidBearerIgnoresStaleSession(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "user-1", 2)
	seedActiveUser(st, "user-2", 3)
	a := testAuthenticator(st)
	a.Sessions = scs.New()

	// The session still carries a different user; the header wins.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "user-1"))
	ctx, err := a.Sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	a.Sessions.Put(ctx, SessionKeyToken, signToken(t, "user-2"))
	a.Sessions.Put(ctx, SessionKeyUser, `{"id":"user-2"}`)
	req = req.WithContext(ctx)

	rec, p := run(t, a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if p == nil || p.ID != "user-1" {
		t.Fatalf("principal = %+v, want the header identity", p)
	}
}

func TestMiddlewareSessionToken(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "user-1", 3)
	a := testAuthenticator(st)
	a.Sessions = scs.New()

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	ctx, err := a.Sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	a.Sessions.Put(ctx, SessionKeyToken, signToken(t, "user-1"))
	req = req.WithContext(ctx)

	rec, p := run(t, a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if p == nil || p.ID != "user-1" {
		t.Fatalf("principal = %+v", p)
	}
}

func TestMiddlewareLegacySnapshot(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "user-1", 2)
	a := testAuthenticator(st)
	a.Sessions = scs.New()

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	ctx, err := a.Sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	a.Sessions.Put(ctx, SessionKeyUser, `{"id":"user-1","email":"stale@example.com"}`)
	req = req.WithContext(ctx)

	rec, p := run(t, a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if p == nil {
		t.Fatal("no principal attached")
	}
	// The snapshot only supplies the subject; everything else comes
	// from the store.
	if p.Email != "user-1@example.com" {
		t.Fatalf("principal email = %q, snapshot data leaked in", p.Email)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "user-1", 2)
	a := testAuthenticator(st)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	rec, _ := run(t, a, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	d := decodeDenial(t, rec)
	if d.Error != "token_expired" {
		t.Fatalf("reason = %q", d.Error)
	}
	if d.Message != "Token expired" {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestMiddlewareUnknownSubject(t *testing.T) {
	a := testAuthenticator(newStoreStub())

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "ghost"))

	rec, _ := run(t, a, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if d := decodeDenial(t, rec); d.Error != "user_not_found" {
		t.Fatalf("reason = %q", d.Error)
	}
}

func TestMiddlewareSuspendedUser(t *testing.T) {
	st := newStoreStub()
	st.users["user-1"] = store.UserRecord{ID: "user-1", Level: 2, IsActive: false}
	a := testAuthenticator(st)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "user-1"))

	rec, _ := run(t, a, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if d := decodeDenial(t, rec); d.Error != "account_suspended" {
		t.Fatalf("reason = %q", d.Error)
	}
}

func TestMiddlewarePlatformAdminTenant(t *testing.T) {
	st := newStoreStub()
	seedActiveUser(st, "root", 1)
	a := testAuthenticator(st)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "root"))

	rec, p := run(t, a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if p == nil || p.TenantID != auth.TenantAll {
		t.Fatalf("principal = %+v, want all-tenant sentinel", p)
	}
}

func gateRun(t *testing.T, mw echo.MiddlewareFunc, p *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set(ContextKeyPrincipal, *p)
	}
	handler := mw(func(c *echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestRequireLevel(t *testing.T) {
	owner := &auth.Principal{ID: "o", Level: auth.LevelAccountOwner}
	if rec := gateRun(t, RequireLevel(auth.LevelAccountOwner), owner); rec.Code != http.StatusOK {
		t.Fatalf("owner status = %d", rec.Code)
	}

	sub := &auth.Principal{ID: "s", Level: auth.LevelSubAccount}
	rec := gateRun(t, RequireLevel(auth.LevelAccountOwner), sub)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("sub-account status = %d", rec.Code)
	}

	admin := &auth.Principal{ID: "a", Level: auth.LevelPlatformAdmin}
	if rec := gateRun(t, RequireLevel(auth.LevelSubAccount), admin); rec.Code != http.StatusOK {
		t.Fatalf("platform admin status = %d", rec.Code)
	}

	if rec := gateRun(t, RequireLevel(auth.LevelAccountOwner), nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing principal status = %d", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	st := newStoreStub()
	st.permissions["user-1"] = store.DefaultPermissions("user-1", 3)
	a := testAuthenticator(st)

	viewer := &auth.Principal{ID: "user-1", Level: auth.LevelSubAccount}
	if rec := gateRun(t, a.RequirePermission(store.PermViewLeads), viewer); rec.Code != http.StatusOK {
		t.Fatalf("view_leads status = %d", rec.Code)
	}

	rec := gateRun(t, a.RequirePermission(store.PermManageBilling), viewer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("manage_billing status = %d", rec.Code)
	}
	var d Denial
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Message != "Permission denied: manage_billing" {
		t.Fatalf("message = %q", d.Message)
	}
	if d.Error != "permission_denied" {
		t.Fatalf("reason = %q", d.Error)
	}

	// No record provisioned at all.
	orphan := &auth.Principal{ID: "orphan", Level: auth.LevelSubAccount}
	rec = gateRun(t, a.RequirePermission(store.PermViewLeads), orphan)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing record status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no_permissions_found") {
		t.Fatalf("body = %s", rec.Body.String())
	}

	admin := &auth.Principal{ID: "root", Level: auth.LevelPlatformAdmin}
	if rec := gateRun(t, a.RequirePermission(store.PermWipeCompanyData), admin); rec.Code != http.StatusOK {
		t.Fatalf("platform admin status = %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name       string
		principal  auth.Principal
		wantStatus int
		wantRole   bool
	}{
		{
			name:       "website admin role",
			principal:  auth.Principal{ID: "u1", Username: "carol", Roles: auth.NewRoleSet(auth.RoleWebsiteAdmin)},
			wantStatus: http.StatusOK,
			wantRole:   true,
		},
		{
			name:       "reserved username",
			principal:  auth.Principal{ID: "u2", Username: "admin", Roles: auth.RoleSet{}},
			wantStatus: http.StatusOK,
			wantRole:   true,
		},
		{
			name:       "regular user",
			principal:  auth.Principal{ID: "u3", Username: "bob", Roles: auth.NewRoleSet(auth.RoleEditor)},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(ContextKeyPrincipal, tc.principal)

			var effective auth.RoleSet
			handler := RequireAdmin()(func(c *echo.Context) error {
				effective = EffectiveRolesFromContext(c)
				return c.NoContent(http.StatusOK)
			})
			if err := handler(c); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantRole && !effective.Has(auth.RoleWebsiteAdmin) {
				t.Fatalf("effective roles = %v", effective.Slice())
			}
		})
	}
}

func TestDenyBodyShape(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated); err != nil {
		t.Fatalf("deny: %v", err)
	}
	d := decodeDenial(t, rec)
	if d.Success {
		t.Fatal("denial marked success")
	}
	if d.Message != "Authentication required" {
		t.Fatalf("message = %q", d.Message)
	}
	if d.Error != "unauthenticated" {
		t.Fatalf("reason = %q", d.Error)
	}
}
