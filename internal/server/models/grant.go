package models

import "fmt"

// GrantType identifies one of the three supported token-exchange flows.
// The set is closed; anything else is rejected at the parse boundary.
type GrantType string

const (
	GrantPassword          GrantType = "password"
	GrantClientCredentials GrantType = "client_credentials"
	GrantRefreshToken      GrantType = "refresh_token"
)

// ParseGrantType validates a wire-format grant_type value.
func ParseGrantType(raw string) (GrantType, error) {
	switch g := GrantType(raw); g {
	case GrantPassword, GrantClientCredentials, GrantRefreshToken:
		return g, nil
	default:
		return "", fmt.Errorf("unknown grant type %q", raw)
	}
}

// GrantSet is the set of grant types a client is allowed to use.
type GrantSet map[GrantType]struct{}

func NewGrantSet(grants ...GrantType) GrantSet {
	s := make(GrantSet, len(grants))
	for _, g := range grants {
		s[g] = struct{}{}
	}
	return s
}

// ParseGrantSet parses and validates a list of wire-format grant names.
func ParseGrantSet(raw []string) (GrantSet, error) {
	s := make(GrantSet, len(raw))
	for _, r := range raw {
		g, err := ParseGrantType(r)
		if err != nil {
			return nil, err
		}
		s[g] = struct{}{}
	}
	return s, nil
}

func (s GrantSet) Contains(g GrantType) bool {
	_, ok := s[g]
	return ok
}

// Slice returns the grant names as strings, for storage and responses.
func (s GrantSet) Slice() []string {
	out := make([]string, 0, len(s))
	for g := range s {
		out = append(out, string(g))
	}
	return out
}
