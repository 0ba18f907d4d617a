// Package providers contains the credential-establishing flows that
// mint new identities, as opposed to the per-request resolution in the
// authn middleware. Password is the only provider today; SSO comes
// later.
package providers

import (
	"context"

	"github.com/leadline/leadline/internal/auth"
)

type Provider interface {
	Name() string
	Authenticate(ctx context.Context, email, password string) (auth.Principal, error)
}
