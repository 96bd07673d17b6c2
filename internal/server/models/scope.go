package models

import (
	"sort"
	"strings"
)

// ScopeSuperuser grants access to management endpoints (client registration,
// scope administration, reading other users).
const ScopeSuperuser = "superuser"

// ScopeSet is an unordered set of scope names. Scopes are free-form strings;
// a token's scope set bounds what its bearer may do.
type ScopeSet map[string]struct{}

func NewScopeSet(scopes ...string) ScopeSet {
	s := make(ScopeSet, len(scopes))
	for _, scope := range scopes {
		s[scope] = struct{}{}
	}
	return s
}

// ParseScopes parses a space-separated scope string. Empty segments are
// ignored; an empty input yields an empty set.
func ParseScopes(raw string) ScopeSet {
	s := make(ScopeSet)
	for _, scope := range strings.Split(raw, " ") {
		if scope != "" {
			s[scope] = struct{}{}
		}
	}
	return s
}

func (s ScopeSet) Contains(scope string) bool {
	_, ok := s[scope]
	return ok
}

func (s ScopeSet) IsEmpty() bool { return len(s) == 0 }

// Intersect returns the scopes present in both sets.
func (s ScopeSet) Intersect(other ScopeSet) ScopeSet {
	out := make(ScopeSet)
	for scope := range s {
		if other.Contains(scope) {
			out[scope] = struct{}{}
		}
	}
	return out
}

// Slice returns the scopes sorted, for stable serialization.
func (s ScopeSet) Slice() []string {
	out := make([]string, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

// String serializes the set space-separated, as used in the token claim.
func (s ScopeSet) String() string {
	return strings.Join(s.Slice(), " ")
}
