package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements the user store on pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const userColumns = `
	id,
	COALESCE(email, ''),
	COALESCE(username, ''),
	COALESCE(first_name, ''),
	COALESCE(last_name, ''),
	COALESCE(user_level, 0),
	COALESCE(tenant_id, ''),
	COALESCE(account_owner_id, ''),
	COALESCE(parent_account_id, ''),
	COALESCE(company_name, ''),
	COALESCE(organization_id, ''),
	COALESCE(roles, ''),
	COALESCE(password_hash, ''),
	is_active,
	created_at,
	updated_at,
	last_login_at,
	COALESCE(last_login_ip, '')
`

func scanUser(row pgx.Row) (UserRecord, error) {
	var (
		u         UserRecord
		lastLogin pgtype.Timestamptz
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Level,
		&u.TenantID,
		&u.AccountOwnerID,
		&u.ParentAccountID,
		&u.CompanyName,
		&u.OrganizationID,
		&u.RawRoles,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
		&u.LastLoginIP,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, err
	}
	if lastLogin.Valid {
		u.LastLoginAt = lastLogin.Time
	}
	return u, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (UserRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (p *Postgres) CreateUser(ctx context.Context, params CreateUserParams) (UserRecord, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (
			id, email, username, first_name, last_name, user_level,
			tenant_id, account_owner_id, company_name, organization_id,
			roles, password_hash, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), $11, $12, $13)
		RETURNING `+userColumns,
		params.ID,
		params.Email,
		params.Username,
		params.FirstName,
		params.LastName,
		params.Level,
		params.TenantID,
		params.AccountOwnerID,
		params.CompanyName,
		params.OrganizationID,
		params.RawRoles,
		params.PasswordHash,
		params.IsActive,
	)
	return scanUser(row)
}

func (p *Postgres) CountPlatformAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE user_level = 1 AND is_active`,
	).Scan(&count)
	return count, err
}

// ListUsers returns users for one tenant, or every user when tenantID
// is empty (the platform-admin view).
func (p *Postgres) ListUsers(ctx context.Context, tenantID string) ([]UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	args := []any{}
	if tenantID != "" {
		query = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY created_at, id`
		args = append(args, tenantID)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) UpdateUserLoginMeta(ctx context.Context, params UpdateLoginMetaParams) error {
	at := params.LastLoginAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := p.pool.Exec(ctx, `
		UPDATE users
		SET last_login_at = $2, last_login_ip = NULLIF($3, ''), updated_at = now()
		WHERE id = $1`,
		params.UserID, at, params.LastLoginIP,
	)
	return err
}

const permissionColumns = `
	user_id,
	manage_company_settings,
	manage_billing,
	manage_users,
	manage_roles,
	view_leads,
	create_edit_delete_leads,
	export_data,
	manage_campaigns,
	manage_integrations,
	manage_api_keys,
	view_reports,
	view_audit_logs,
	create_support_tickets,
	impersonate_users,
	wipe_company_data,
	created_at,
	updated_at
`

func scanPermissions(row pgx.Row) (PermissionRecord, error) {
	var rec PermissionRecord
	err := row.Scan(
		&rec.UserID,
		&rec.CanManageCompanySettings,
		&rec.CanManageBilling,
		&rec.CanManageUsers,
		&rec.CanManageRoles,
		&rec.CanViewLeads,
		&rec.CanCreateEditDeleteLeads,
		&rec.CanExportData,
		&rec.CanManageCampaigns,
		&rec.CanManageIntegrations,
		&rec.CanManageAPIKeys,
		&rec.CanViewReports,
		&rec.CanViewAuditLogs,
		&rec.CanCreateSupportTickets,
		&rec.CanImpersonateUsers,
		&rec.CanWipeCompanyData,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PermissionRecord{}, ErrNotFound
		}
		return PermissionRecord{}, err
	}
	return rec, nil
}

func (p *Postgres) GetUserPermissions(ctx context.Context, userID string) (PermissionRecord, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+permissionColumns+` FROM user_permissions WHERE user_id = $1`, userID)
	return scanPermissions(row)
}

func (p *Postgres) CreateUserPermissions(ctx context.Context, rec PermissionRecord) (PermissionRecord, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO user_permissions (
			user_id, manage_company_settings, manage_billing, manage_users,
			manage_roles, view_leads, create_edit_delete_leads, export_data,
			manage_campaigns, manage_integrations, manage_api_keys,
			view_reports, view_audit_logs, create_support_tickets,
			impersonate_users, wipe_company_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+permissionColumns,
		rec.UserID,
		rec.CanManageCompanySettings,
		rec.CanManageBilling,
		rec.CanManageUsers,
		rec.CanManageRoles,
		rec.CanViewLeads,
		rec.CanCreateEditDeleteLeads,
		rec.CanExportData,
		rec.CanManageCampaigns,
		rec.CanManageIntegrations,
		rec.CanManageAPIKeys,
		rec.CanViewReports,
		rec.CanViewAuditLogs,
		rec.CanCreateSupportTickets,
		rec.CanImpersonateUsers,
		rec.CanWipeCompanyData,
	)
	return scanPermissions(row)
}

// ListLeads returns leads for one tenant, or across all tenants when
// tenantID is empty.
func (p *Postgres) ListLeads(ctx context.Context, tenantID string) ([]Lead, error) {
	query := `SELECT id, tenant_id, name, COALESCE(email, ''), stage, created_at FROM leads ORDER BY created_at, id`
	args := []any{}
	if tenantID != "" {
		query = `SELECT id, tenant_id, name, COALESCE(email, ''), stage, created_at FROM leads WHERE tenant_id = $1 ORDER BY created_at, id`
		args = append(args, tenantID)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Stage, &lead.CreatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
