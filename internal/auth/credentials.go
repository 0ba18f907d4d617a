package auth

import (
	"encoding/json"
	"strings"
)

// CredentialKind tags the single authoritative credential source chosen
// for a request.
type CredentialKind int

const (
	CredentialBearer CredentialKind = iota + 1
	CredentialSessionToken
	CredentialSessionSnapshot
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialBearer:
		return "bearer"
	case CredentialSessionToken:
		return "session_token"
	case CredentialSessionSnapshot:
		return "session_snapshot"
	default:
		return "none"
	}
}

// SessionSnapshot is the legacy session shape: older sessions stored a
// serialized user instead of a signed token. Only the subject id is
// trusted from it; the full record is always reloaded from the store.
type SessionSnapshot struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
}

// Credential holds exactly one resolved credential variant.
type Credential struct {
	Kind     CredentialKind
	Token    string
	Snapshot SessionSnapshot
}

// ResolveCredential picks the single authoritative credential source
// for a request. Precedence is strict and non-fallback: an
// Authorization bearer header wins over a session-stored token, which
// wins over a session-stored user snapshot. Once a source is present it
// is authoritative for the request; a later verification failure must
// not fall through to a weaker source.
func ResolveCredential(authorizationHeader, sessionToken string, snapshot []byte) (Credential, bool) {
	if token, ok := parseBearer(authorizationHeader); ok {
		return Credential{Kind: CredentialBearer, Token: token}, true
	}

	if token := strings.TrimSpace(sessionToken); token != "" {
		return Credential{Kind: CredentialSessionToken, Token: token}, true
	}

	if len(snapshot) > 0 {
		var snap SessionSnapshot
		if err := json.Unmarshal(snapshot, &snap); err == nil && strings.TrimSpace(snap.UserID) != "" {
			return Credential{Kind: CredentialSessionSnapshot, Snapshot: snap}, true
		}
		// A snapshot that is present but unreadable is still the
		// authoritative source; it resolves to an unusable credential
		// rather than falling back to "none".
		return Credential{Kind: CredentialSessionSnapshot}, true
	}

	return Credential{}, false
}

func parseBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		// A malformed Authorization header still counts as a presented
		// bearer credential; it will fail verification downstream.
		return header, true
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
