// Package store is the persistence boundary of the authorization core.
// Legacy and loosely-typed shapes are normalized here, once, so the
// rest of the system only ever sees explicit records.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned for any lookup that matches no row. pgx's
// ErrNoRows never escapes this package.
var ErrNotFound = errors.New("store: not found")

// UserRecord is a row of the users table. RawRoles deliberately stays a
// raw string: decades of provisioning paths left JSON-array strings,
// single legacy role names, and empty values in that column, and
// canonicalizing is the role normalizer's job, not the scanner's.
type UserRecord struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string

	// Level is 0 when the column is NULL; legacy records predate the
	// level column and the principal builder defaults them.
	Level int

	TenantID       string
	AccountOwnerID string
	// ParentAccountID is the pre-migration alias for AccountOwnerID.
	// Records written before the rename carry only this field.
	ParentAccountID string

	CompanyName    string
	OrganizationID string
	RawRoles       string
	PasswordHash   string
	IsActive       bool

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt time.Time
	LastLoginIP string
}

// OwnerID returns the first non-empty of the dedicated owner field and
// its legacy alias.
func (u UserRecord) OwnerID() string {
	if u.AccountOwnerID != "" {
		return u.AccountOwnerID
	}
	return u.ParentAccountID
}

// PermissionRecord is one user's fixed catalog of capability flags. The
// flags are independent of role and level: they are seeded from level
// defaults at provisioning time and mutated independently afterwards.
type PermissionRecord struct {
	UserID string `json:"userId"`

	CanManageCompanySettings bool `json:"manage_company_settings"`
	CanManageBilling         bool `json:"manage_billing"`
	CanManageUsers           bool `json:"manage_users"`
	CanManageRoles           bool `json:"manage_roles"`
	CanViewLeads             bool `json:"view_leads"`
	CanCreateEditDeleteLeads bool `json:"create_edit_delete_leads"`
	CanExportData            bool `json:"export_data"`
	CanManageCampaigns       bool `json:"manage_campaigns"`
	CanManageIntegrations    bool `json:"manage_integrations"`
	CanManageAPIKeys         bool `json:"manage_api_keys"`
	CanViewReports           bool `json:"view_reports"`
	CanViewAuditLogs         bool `json:"view_audit_logs"`
	CanCreateSupportTickets  bool `json:"create_support_tickets"`
	CanImpersonateUsers      bool `json:"impersonate_users"`
	CanWipeCompanyData       bool `json:"wipe_company_data"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Lead is the representative tenant-scoped CRM row used by the
// protected leads endpoint. The wider CRM schema lives elsewhere.
type Lead struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserParams carries everything user provisioning needs.
type CreateUserParams struct {
	ID              string
	Email           string
	Username        string
	FirstName       string
	LastName        string
	Level           int
	TenantID        string
	AccountOwnerID  string
	CompanyName     string
	OrganizationID  string
	RawRoles        string
	PasswordHash    string
	IsActive        bool
}

// UpdateLoginMetaParams records the most recent successful login.
type UpdateLoginMetaParams struct {
	UserID      string
	LastLoginAt time.Time
	LastLoginIP string
}
