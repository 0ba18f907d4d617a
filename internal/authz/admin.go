package authz

import (
	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/normalize"
)

// ReservedAdminUsername is the legacy escape hatch: an account whose
// login name is exactly "admin" qualifies for administrative surfaces
// even without the WEBSITE_ADMIN role. Kept for the handful of
// first-generation installs that predate role provisioning.
const ReservedAdminUsername = "admin"

// AdminDecision is the outcome of the admin-access policy. When access
// was granted through the legacy username path, EffectiveRoles carries
// the augmented set and callers must propagate it for the rest of the
// request — downstream role checks have to see WEBSITE_ADMIN too, not
// just a boolean.
type AdminDecision struct {
	Valid          bool
	EffectiveRoles auth.RoleSet
}

// ValidateAdminAccess decides admin qualification: either the roles
// contain WEBSITE_ADMIN, or the login name is the reserved literal.
func ValidateAdminAccess(username string, roles auth.RoleSet) AdminDecision {
	if roles == nil {
		roles = auth.RoleSet{}
	}

	if roles.Has(auth.RoleWebsiteAdmin) {
		return AdminDecision{Valid: true, EffectiveRoles: roles}
	}

	if normalize.EqualFoldTrimmed(username, ReservedAdminUsername) {
		effective := roles.Clone()
		effective.Add(auth.RoleWebsiteAdmin)
		return AdminDecision{Valid: true, EffectiveRoles: effective}
	}

	return AdminDecision{Valid: false, EffectiveRoles: roles}
}
