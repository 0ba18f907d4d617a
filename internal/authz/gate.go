package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/store"
)

// PermissionSource is the slice of the user store the capability gate
// consumes.
type PermissionSource interface {
	GetUserPermissions(ctx context.Context, userID string) (store.PermissionRecord, error)
}

// permissionFlags maps the stable permission-name catalog onto record
// fields. An unknown name simply has no entry and denies.
var permissionFlags = map[string]func(store.PermissionRecord) bool{
	store.PermManageCompanySettings: func(r store.PermissionRecord) bool { return r.CanManageCompanySettings },
	store.PermManageBilling:         func(r store.PermissionRecord) bool { return r.CanManageBilling },
	store.PermManageUsers:           func(r store.PermissionRecord) bool { return r.CanManageUsers },
	store.PermManageRoles:           func(r store.PermissionRecord) bool { return r.CanManageRoles },
	store.PermViewLeads:             func(r store.PermissionRecord) bool { return r.CanViewLeads },
	store.PermCreateEditDeleteLeads: func(r store.PermissionRecord) bool { return r.CanCreateEditDeleteLeads },
	store.PermExportData:            func(r store.PermissionRecord) bool { return r.CanExportData },
	store.PermManageCampaigns:       func(r store.PermissionRecord) bool { return r.CanManageCampaigns },
	store.PermManageIntegrations:    func(r store.PermissionRecord) bool { return r.CanManageIntegrations },
	store.PermManageAPIKeys:         func(r store.PermissionRecord) bool { return r.CanManageAPIKeys },
	store.PermViewReports:           func(r store.PermissionRecord) bool { return r.CanViewReports },
	store.PermViewAuditLogs:         func(r store.PermissionRecord) bool { return r.CanViewAuditLogs },
	store.PermCreateSupportTickets:  func(r store.PermissionRecord) bool { return r.CanCreateSupportTickets },
	store.PermImpersonateUsers:      func(r store.PermissionRecord) bool { return r.CanImpersonateUsers },
	store.PermWipeCompanyData:       func(r store.PermissionRecord) bool { return r.CanWipeCompanyData },
}

// Gate performs the capability-based permission check.
type Gate struct {
	Permissions PermissionSource
}

// Check allows or denies one named capability for the principal.
// Platform admins are allowed without consulting the permission record
// at all. For everyone else the record is loaded per check; a missing
// record is its own failure mode so provisioning bugs surface as
// ErrNoPermissionsFound rather than a blanket denial. Unknown names
// deny and never error out.
func (g Gate) Check(ctx context.Context, p auth.Principal, permission string) error {
	if p.IsPlatformAdmin() {
		return nil
	}

	rec, err := g.Permissions.GetUserPermissions(ctx, p.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.ErrNoPermissionsFound
		}
		return fmt.Errorf("load permissions for %s: %w", p.ID, err)
	}

	flag, ok := permissionFlags[permission]
	if !ok || !flag(rec) {
		return fmt.Errorf("%w: %s", auth.ErrPermissionDenied, permission)
	}
	return nil
}

// CheckLevel performs the level-based check: plain set membership, with
// the platform-admin tier passing unconditionally.
func CheckLevel(p auth.Principal, allowed ...auth.UserLevel) error {
	if p.IsPlatformAdmin() {
		return nil
	}
	for _, level := range allowed {
		if p.Level == level {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", auth.ErrInsufficientLevel, p.Level)
}
