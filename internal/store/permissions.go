package store

// The permission-name catalog. These strings are a stable contract with
// API clients and must not be renamed or reordered.
const (
	PermManageCompanySettings = "manage_company_settings"
	PermManageBilling         = "manage_billing"
	PermManageUsers           = "manage_users"
	PermManageRoles           = "manage_roles"
	PermViewLeads             = "view_leads"
	PermCreateEditDeleteLeads = "create_edit_delete_leads"
	PermExportData            = "export_data"
	PermManageCampaigns       = "manage_campaigns"
	PermManageIntegrations    = "manage_integrations"
	PermManageAPIKeys         = "manage_api_keys"
	PermViewReports           = "view_reports"
	PermViewAuditLogs         = "view_audit_logs"
	PermCreateSupportTickets  = "create_support_tickets"
	PermImpersonateUsers      = "impersonate_users"
	PermWipeCompanyData       = "wipe_company_data"
)

// PermissionNames lists the catalog in its contractual order.
var PermissionNames = []string{
	PermManageCompanySettings,
	PermManageBilling,
	PermManageUsers,
	PermManageRoles,
	PermViewLeads,
	PermCreateEditDeleteLeads,
	PermExportData,
	PermManageCampaigns,
	PermManageIntegrations,
	PermManageAPIKeys,
	PermViewReports,
	PermViewAuditLogs,
	PermCreateSupportTickets,
	PermImpersonateUsers,
	PermWipeCompanyData,
}

// DefaultPermissions seeds a new user's permission record from their
// level. Platform admins never consult the record at check time, but
// their record is still seeded fully enabled so an out-of-band level
// downgrade leaves sane flags behind.
func DefaultPermissions(userID string, level int) PermissionRecord {
	rec := PermissionRecord{UserID: userID}
	switch level {
	case 1:
		rec.CanManageCompanySettings = true
		rec.CanManageBilling = true
		rec.CanManageUsers = true
		rec.CanManageRoles = true
		rec.CanViewLeads = true
		rec.CanCreateEditDeleteLeads = true
		rec.CanExportData = true
		rec.CanManageCampaigns = true
		rec.CanManageIntegrations = true
		rec.CanManageAPIKeys = true
		rec.CanViewReports = true
		rec.CanViewAuditLogs = true
		rec.CanCreateSupportTickets = true
		rec.CanImpersonateUsers = true
		rec.CanWipeCompanyData = true
	case 2:
		rec.CanManageCompanySettings = true
		rec.CanManageBilling = true
		rec.CanManageUsers = true
		rec.CanManageRoles = true
		rec.CanViewLeads = true
		rec.CanCreateEditDeleteLeads = true
		rec.CanExportData = true
		rec.CanManageCampaigns = true
		rec.CanManageIntegrations = true
		rec.CanManageAPIKeys = true
		rec.CanViewReports = true
		rec.CanViewAuditLogs = true
		rec.CanCreateSupportTickets = true
	default:
		rec.CanViewLeads = true
		rec.CanCreateEditDeleteLeads = true
		rec.CanViewReports = true
		rec.CanCreateSupportTickets = true
	}
	return rec
}
