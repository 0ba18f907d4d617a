package authz

import (
	"context"
	"log/slog"

	"github.com/leadline/leadline/internal/auth"
)

// TenantResolver derives the effective tenant id for a request.
// Resolution runs on every request so an account-owner reassignment
// takes effect immediately; the result must never be cached.
type TenantResolver struct {
	Users  UserSource
	Logger *slog.Logger
}

// Resolve returns the tenant the request operates in. Platform admins
// get the TenantAll sentinel. A sub-account follows its account owner's
// tenant; when the owner cannot be resolved the sub-account keeps its
// own tenant — an unresolvable owner is logged, never fatal. The result
// is never empty: the builder guarantees the principal's own tenant id.
func (r TenantResolver) Resolve(ctx context.Context, p auth.Principal) string {
	if p.IsPlatformAdmin() {
		return auth.TenantAll
	}

	if p.Level == auth.LevelSubAccount && p.AccountOwnerID != "" {
		owner, err := r.Users.GetUser(ctx, p.AccountOwnerID)
		switch {
		case err != nil:
			r.log().WarnContext(ctx, "tenant resolution fell back to own tenant",
				"user_id", p.ID,
				"account_owner_id", p.AccountOwnerID,
				"error", err,
			)
		case owner.TenantID != "":
			return owner.TenantID
		default:
			r.log().WarnContext(ctx, "account owner has no tenant, keeping own",
				"user_id", p.ID,
				"account_owner_id", p.AccountOwnerID,
			)
		}
	}

	return p.TenantID
}

func (r TenantResolver) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
