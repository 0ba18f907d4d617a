// Package normalize holds the shared text canonicalization helpers.
// Identifier comparison anywhere in the system goes through these so
// stray whitespace and letter case never decide an authorization
// outcome.
package normalize

import "strings"

func Trim(value string) string {
	return strings.TrimSpace(value)
}

// Lower trims and lowercases; the canonical form for emails and
// usernames.
func Lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func EqualFoldTrimmed(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
