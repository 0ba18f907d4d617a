package store

import "testing"

func flagByName(rec PermissionRecord, name string) bool {
	switch name {
	case PermManageCompanySettings:
		return rec.CanManageCompanySettings
	case PermManageBilling:
		return rec.CanManageBilling
	case PermManageUsers:
		return rec.CanManageUsers
	case PermManageRoles:
		return rec.CanManageRoles
	case PermViewLeads:
		return rec.CanViewLeads
	case PermCreateEditDeleteLeads:
		return rec.CanCreateEditDeleteLeads
	case PermExportData:
		return rec.CanExportData
	case PermManageCampaigns:
		return rec.CanManageCampaigns
	case PermManageIntegrations:
		return rec.CanManageIntegrations
	case PermManageAPIKeys:
		return rec.CanManageAPIKeys
	case PermViewReports:
		return rec.CanViewReports
	case PermViewAuditLogs:
		return rec.CanViewAuditLogs
	case PermCreateSupportTickets:
		return rec.CanCreateSupportTickets
	case PermImpersonateUsers:
		return rec.CanImpersonateUsers
	case PermWipeCompanyData:
		return rec.CanWipeCompanyData
	}
	return false
}

func TestDefaultPermissionsPlatformAdmin(t *testing.T) {
	rec := DefaultPermissions("user-1", 1)
	for _, name := range PermissionNames {
		if !flagByName(rec, name) {
			t.Fatalf("level 1 default should enable %s", name)
		}
	}
}

func TestDefaultPermissionsAccountOwner(t *testing.T) {
	rec := DefaultPermissions("user-1", 2)
	denied := map[string]bool{
		PermImpersonateUsers: true,
		PermWipeCompanyData:  true,
	}
	for _, name := range PermissionNames {
		if denied[name] == flagByName(rec, name) {
			t.Fatalf("level 2 default for %s = %v", name, flagByName(rec, name))
		}
	}
}

func TestDefaultPermissionsSubAccount(t *testing.T) {
	rec := DefaultPermissions("user-1", 3)
	allowed := map[string]bool{
		PermViewLeads:             true,
		PermCreateEditDeleteLeads: true,
		PermViewReports:           true,
		PermCreateSupportTickets:  true,
	}
	for _, name := range PermissionNames {
		if allowed[name] != flagByName(rec, name) {
			t.Fatalf("level 3 default for %s = %v", name, flagByName(rec, name))
		}
	}

	// An unknown level gets the most restrictive defaults.
	if rec := DefaultPermissions("user-1", 0); rec.CanManageUsers {
		t.Fatal("unknown level should take sub-account defaults")
	}
}

func TestUserRecordOwnerID(t *testing.T) {
	u := UserRecord{AccountOwnerID: "owner-1", ParentAccountID: "legacy-1"}
	if got := u.OwnerID(); got != "owner-1" {
		t.Fatalf("owner = %q, dedicated field should win", got)
	}
	u = UserRecord{ParentAccountID: "legacy-1"}
	if got := u.OwnerID(); got != "legacy-1" {
		t.Fatalf("owner = %q, legacy alias should apply", got)
	}
}
