package auth

import "errors"

// Sentinel errors for every terminal authorization outcome. All of them
// are permanent for the request that produced them; nothing here is
// retried.
var (
	// ErrUnauthenticated means no credential was presented at all.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidToken covers malformed tokens, bad signatures, and
	// tokens signed with an unexpected algorithm.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is split out from ErrInvalidToken so callers can
	// tell clients to re-authenticate rather than report a bad request.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidCredentials is returned by password authentication. It
	// deliberately does not distinguish unknown users from bad passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUserNotFound     = errors.New("user not found")
	ErrAccountSuspended = errors.New("account suspended")

	ErrInsufficientLevel  = errors.New("insufficient user level")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNoPermissionsFound = errors.New("no permissions found for user")
)
