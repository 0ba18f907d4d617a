package auth

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserLevelValid(t *testing.T) {
	for _, l := range []UserLevel{LevelPlatformAdmin, LevelAccountOwner, LevelSubAccount} {
		if !l.Valid() {
			t.Fatalf("level %d should be valid", l)
		}
	}
	for _, l := range []UserLevel{0, 4, -1} {
		if UserLevel(l).Valid() {
			t.Fatalf("level %d should be invalid", l)
		}
	}
}

func TestPrincipalTenantScope(t *testing.T) {
	admin := Principal{Level: LevelPlatformAdmin, TenantID: TenantAll}
	if !admin.IsPlatformAdmin() || !admin.AllTenants() {
		t.Fatal("platform admin should see all tenants")
	}

	owner := Principal{Level: LevelAccountOwner, TenantID: "tenant-1"}
	if owner.IsPlatformAdmin() || owner.AllTenants() {
		t.Fatal("account owner must stay tenant scoped")
	}
}

func TestPrincipalJSONShape(t *testing.T) {
	p := Principal{
		ID:       "user-1",
		Email:    "one@example.com",
		Level:    LevelSubAccount,
		TenantID: "tenant-1",
		Roles:    NewRoleSet(RoleViewer),
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"userLevel":3`, `"tenantId":"tenant-1"`, `"roles":["VIEWER"]`} {
		if !strings.Contains(body, want) {
			t.Fatalf("encoded principal missing %s: %s", want, body)
		}
	}
	if strings.Contains(body, "accountOwnerId") {
		t.Fatalf("empty owner id should be omitted: %s", body)
	}
}
