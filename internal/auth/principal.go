// Package auth holds the identity primitives of the authorization core:
// the Principal attached to every authenticated request, user levels,
// canonical role keys, credential resolution, and token handling.
package auth

// UserLevel is the three-tier ordinal privilege. Lower is more
// privileged.
type UserLevel int

const (
	LevelPlatformAdmin UserLevel = 1
	LevelAccountOwner  UserLevel = 2
	LevelSubAccount    UserLevel = 3
)

func (l UserLevel) Valid() bool {
	return l >= LevelPlatformAdmin && l <= LevelSubAccount
}

func (l UserLevel) String() string {
	switch l {
	case LevelPlatformAdmin:
		return "platform_admin"
	case LevelAccountOwner:
		return "account_owner"
	case LevelSubAccount:
		return "sub_account"
	default:
		return "unknown"
	}
}

// TenantAll is the tenant sentinel carried by platform admins: no
// tenant filter, all tenants visible. It is never a concrete tenant id.
const TenantAll = "*"

// Principal is the resolved identity and authorization context attached
// to a request. It is rebuilt fresh on every request from the user
// store and never cached across requests.
type Principal struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"`
	Username       string    `json:"username,omitempty"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	Level          UserLevel `json:"userLevel"`
	AccountOwnerID string    `json:"accountOwnerId,omitempty"`
	CompanyName    string    `json:"companyName,omitempty"`
	OrganizationID string    `json:"organizationId,omitempty"`

	// TenantID is the effective tenant for this request, derived per
	// request by the tenant resolver. Never empty: either a concrete
	// tenant id or TenantAll.
	TenantID string `json:"tenantId"`

	Roles RoleSet `json:"roles"`
}

func (p Principal) IsPlatformAdmin() bool {
	return p.Level == LevelPlatformAdmin
}

// AllTenants reports whether the principal sees across tenant
// boundaries.
func (p Principal) AllTenants() bool {
	return p.TenantID == TenantAll
}
