package providers

import (
	"context"
	"errors"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/authz"
	"github.com/leadline/leadline/internal/store"
)

const MethodPassword = "password"

// UserSource is the store slice password authentication needs.
type UserSource interface {
	GetUser(ctx context.Context, id string) (store.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error)
}

type PasswordProvider struct {
	Users UserSource
}

func NewPasswordProvider(users UserSource) *PasswordProvider {
	return &PasswordProvider{Users: users}
}

func (p *PasswordProvider) Name() string {
	return MethodPassword
}

// Authenticate verifies email+password and returns a freshly built
// principal. Unknown emails and wrong passwords are indistinguishable
// to the caller; suspension is reported as its own failure since the
// credentials themselves were correct.
func (p *PasswordProvider) Authenticate(ctx context.Context, email, password string) (auth.Principal, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return auth.Principal{}, auth.ErrInvalidCredentials
	}

	rec, err := p.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Principal{}, auth.ErrInvalidCredentials
		}
		return auth.Principal{}, err
	}
	if !rec.IsActive {
		return auth.Principal{}, auth.ErrAccountSuspended
	}

	match, err := auth.ComparePassword(password, rec.PasswordHash)
	if err != nil {
		return auth.Principal{}, err
	}
	if !match {
		return auth.Principal{}, auth.ErrInvalidCredentials
	}

	return authz.Builder{Users: p.Users}.Build(ctx, rec.ID)
}
