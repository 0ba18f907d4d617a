// Package authz contains the decision components every protected
// request passes through: principal building, tenant derivation, and
// the level, capability and admin gates.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/store"
)

// UserSource is the slice of the user store that principal building and
// tenant resolution consume.
type UserSource interface {
	GetUser(ctx context.Context, id string) (store.UserRecord, error)
}

// Builder loads a user record and produces the request Principal. Each
// request builds a fresh principal; nothing here is cached, so
// suspensions and role edits take effect on the next request.
type Builder struct {
	Users UserSource
}

func (b Builder) Build(ctx context.Context, subjectID string) (auth.Principal, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return auth.Principal{}, auth.ErrUserNotFound
	}

	rec, err := b.Users.GetUser(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Principal{}, auth.ErrUserNotFound
		}
		return auth.Principal{}, fmt.Errorf("load user %s: %w", subjectID, err)
	}
	if !rec.IsActive {
		return auth.Principal{}, auth.ErrAccountSuspended
	}

	level := auth.UserLevel(rec.Level)
	if !level.Valid() {
		// Records from before the level column default to the most
		// privileged tier; they are all early platform operators.
		level = auth.LevelPlatformAdmin
	}

	tenantID := rec.TenantID
	if tenantID == "" {
		tenantID = rec.ID
	}

	return auth.Principal{
		ID:             rec.ID,
		Email:          rec.Email,
		Username:       rec.Username,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Level:          level,
		AccountOwnerID: rec.OwnerID(),
		CompanyName:    rec.CompanyName,
		OrganizationID: rec.OrganizationID,
		TenantID:       tenantID,
		Roles:          auth.NormalizeRoles(rec.RawRoles),
	}, nil
}
