package auth

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Canonical role keys. Stored user records carry roles in several raw
// shapes (JSON-array strings, native arrays, single legacy strings);
// only the keys below survive normalization.
const (
	RoleWebsiteAdmin    = "WEBSITE_ADMIN"
	RoleAccountAdmin    = "ACCOUNT_ADMIN"
	RoleEditor          = "EDITOR"
	RoleSalesAgent      = "SALES_AGENT"
	RoleCampaignManager = "CAMPAIGN_MANAGER"
	RoleSupportAgent    = "SUPPORT_AGENT"
	RoleAnalyst         = "ANALYST"
	RoleViewer          = "VIEWER"
)

var knownRoles = map[string]struct{}{
	RoleWebsiteAdmin:    {},
	RoleAccountAdmin:    {},
	RoleEditor:          {},
	RoleSalesAgent:      {},
	RoleCampaignManager: {},
	RoleSupportAgent:    {},
	RoleAnalyst:         {},
	RoleViewer:          {},
}

// RoleSet is a set of canonical role keys.
type RoleSet map[string]struct{}

func NewRoleSet(keys ...string) RoleSet {
	s := make(RoleSet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s RoleSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s RoleSet) Add(key string) {
	s[key] = struct{}{}
}

func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Slice returns the role keys in sorted order.
func (s RoleSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewRoleSet(keys...)
	return nil
}

// NormalizeRoles canonicalizes whatever role representation a stored
// user record carries. It is total: any input, including nil and
// garbage strings, produces a (possibly empty) set without error.
// Applying it to its own output changes nothing.
//
// Accepted shapes: nil, a RoleSet, a native string slice, an []any from
// decoded JSON, and a string. A string that parses as a JSON array is
// taken structurally; anything else is treated as one literal role.
// Tokens are trimmed and uppercased; empty and unknown tokens are
// dropped silently.
func NormalizeRoles(raw any) RoleSet {
	out := RoleSet{}
	switch v := raw.(type) {
	case nil:
	case RoleSet:
		for k := range v {
			addCanonical(out, k)
		}
	case []string:
		for _, t := range v {
			addCanonical(out, t)
		}
	case []any:
		for _, t := range v {
			addCanonical(out, stringify(t))
		}
	case json.RawMessage:
		return NormalizeRoles(string(v))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return out
		}
		if strings.HasPrefix(trimmed, "[") {
			var parsed []any
			if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
				for _, t := range parsed {
					addCanonical(out, stringify(t))
				}
				return out
			}
			// Not valid JSON after all: fall through to the literal path.
		}
		addCanonical(out, trimmed)
	default:
		addCanonical(out, stringify(v))
	}
	return out
}

func addCanonical(s RoleSet, token string) {
	key := strings.ToUpper(strings.TrimSpace(token))
	if key == "" {
		return
	}
	if _, ok := knownRoles[key]; !ok {
		return
	}
	s[key] = struct{}{}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
