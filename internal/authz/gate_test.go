package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/store"
)

func TestGatePlatformAdminBypass(t *testing.T) {
	// No permission record on file at all.
	g := Gate{Permissions: newUserStoreStub()}
	p := auth.Principal{ID: "admin-1", Level: auth.LevelPlatformAdmin}

	if err := g.Check(context.Background(), p, store.PermWipeCompanyData); err != nil {
		t.Fatalf("platform admin denied: %v", err)
	}
}

func TestGateDeniesDisabledFlag(t *testing.T) {
	stub := newUserStoreStub()
	stub.permissions["user-1"] = store.DefaultPermissions("user-1", 3)
	g := Gate{Permissions: stub}
	p := auth.Principal{ID: "user-1", Level: auth.LevelSubAccount}

	err := g.Check(context.Background(), p, store.PermManageBilling)
	if !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if err.Error() != "permission denied: manage_billing" {
		t.Fatalf("denial message = %q", err.Error())
	}
}

func TestGateAllowsEnabledFlag(t *testing.T) {
	stub := newUserStoreStub()
	stub.permissions["user-1"] = store.DefaultPermissions("user-1", 3)
	g := Gate{Permissions: stub}
	p := auth.Principal{ID: "user-1", Level: auth.LevelSubAccount}

	if err := g.Check(context.Background(), p, store.PermViewLeads); err != nil {
		t.Fatalf("enabled flag denied: %v", err)
	}
}

func TestGateUnknownPermissionDenies(t *testing.T) {
	stub := newUserStoreStub()
	stub.permissions["user-1"] = store.DefaultPermissions("user-1", 1)
	g := Gate{Permissions: stub}
	p := auth.Principal{ID: "user-1", Level: auth.LevelAccountOwner}

	err := g.Check(context.Background(), p, "launch_rockets")
	if !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestGateMissingRecord(t *testing.T) {
	g := Gate{Permissions: newUserStoreStub()}
	p := auth.Principal{ID: "user-1", Level: auth.LevelAccountOwner}

	err := g.Check(context.Background(), p, store.PermViewLeads)
	if !errors.Is(err, auth.ErrNoPermissionsFound) {
		t.Fatalf("err = %v, want ErrNoPermissionsFound", err)
	}
}

func TestGateCatalogCoversEveryName(t *testing.T) {
	for _, name := range store.PermissionNames {
		if _, ok := permissionFlags[name]; !ok {
			t.Fatalf("catalog name %q has no flag accessor", name)
		}
	}
	if len(permissionFlags) != len(store.PermissionNames) {
		t.Fatalf("flag map has %d entries, catalog has %d", len(permissionFlags), len(store.PermissionNames))
	}
}

func TestCheckLevel(t *testing.T) {
	owner := auth.Principal{Level: auth.LevelAccountOwner}
	if err := CheckLevel(owner, auth.LevelAccountOwner, auth.LevelSubAccount); err != nil {
		t.Fatalf("member level denied: %v", err)
	}

	sub := auth.Principal{Level: auth.LevelSubAccount}
	if err := CheckLevel(sub, auth.LevelAccountOwner); !errors.Is(err, auth.ErrInsufficientLevel) {
		t.Fatalf("err = %v, want ErrInsufficientLevel", err)
	}

	admin := auth.Principal{Level: auth.LevelPlatformAdmin}
	if err := CheckLevel(admin, auth.LevelSubAccount); err != nil {
		t.Fatalf("platform admin denied by level gate: %v", err)
	}
}
