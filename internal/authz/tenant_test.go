package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/store"
)

func TestTenantResolvePlatformAdmin(t *testing.T) {
	r := TenantResolver{Users: newUserStoreStub()}
	p := auth.Principal{ID: "admin-1", Level: auth.LevelPlatformAdmin, TenantID: "admin-1"}

	if got := r.Resolve(context.Background(), p); got != auth.TenantAll {
		t.Fatalf("tenant = %q, want %q", got, auth.TenantAll)
	}
}

func TestTenantResolveSubAccountFollowsOwner(t *testing.T) {
	stub := newUserStoreStub()
	stub.put(store.UserRecord{ID: "owner-1", TenantID: "tenant-1", IsActive: true})
	r := TenantResolver{Users: stub}

	p := auth.Principal{
		ID:             "sub-1",
		Level:          auth.LevelSubAccount,
		AccountOwnerID: "owner-1",
		TenantID:       "sub-1",
	}
	if got := r.Resolve(context.Background(), p); got != "tenant-1" {
		t.Fatalf("tenant = %q, want tenant-1", got)
	}
}

func TestTenantResolveOwnerLookupFailureKeepsOwn(t *testing.T) {
	stub := newUserStoreStub()
	stub.failUsers = errors.New("timeout")
	r := TenantResolver{Users: stub}

	p := auth.Principal{
		ID:             "sub-1",
		Level:          auth.LevelSubAccount,
		AccountOwnerID: "owner-1",
		TenantID:       "sub-1",
	}
	if got := r.Resolve(context.Background(), p); got != "sub-1" {
		t.Fatalf("tenant = %q, want the principal's own", got)
	}
}

func TestTenantResolveOwnerWithoutTenantKeepsOwn(t *testing.T) {
	stub := newUserStoreStub()
	stub.put(store.UserRecord{ID: "owner-1", IsActive: true})
	r := TenantResolver{Users: stub}

	p := auth.Principal{
		ID:             "sub-1",
		Level:          auth.LevelSubAccount,
		AccountOwnerID: "owner-1",
		TenantID:       "sub-1",
	}
	if got := r.Resolve(context.Background(), p); got != "sub-1" {
		t.Fatalf("tenant = %q, want the principal's own", got)
	}
}

func TestTenantResolveAccountOwnerKeepsOwn(t *testing.T) {
	r := TenantResolver{Users: newUserStoreStub()}
	p := auth.Principal{ID: "owner-1", Level: auth.LevelAccountOwner, TenantID: "tenant-1"}

	if got := r.Resolve(context.Background(), p); got != "tenant-1" {
		t.Fatalf("tenant = %q, want tenant-1", got)
	}
}
