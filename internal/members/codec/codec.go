// Package codec maps a member's role set to and from the single text column
// it is stored in, and defines the set equality used for change detection.
//
// The stored form is the canonical role names joined by commas, for example
// "Singer,Council". The empty set is stored as "".
package codec

import (
	"fmt"
	"strings"

	"members/internal/members/models"
	pstrings "members/pkg/platform/strings"
)

const separator = ","

// Policy controls how Decode treats tokens outside the Role enumeration.
type Policy int

const (
	// Strict fails Decode with a *FormatError on the first unknown token.
	Strict Policy = iota
	// IgnoreUnknown drops unknown tokens. Opt-in only.
	IgnoreUnknown
)

// ParsePolicy reads a policy name from configuration.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "ignore", "ignore_unknown":
		return IgnoreUnknown, nil
	default:
		return Strict, fmt.Errorf("unknown role decode policy %q", s)
	}
}

func (p Policy) String() string {
	if p == IgnoreUnknown {
		return "ignore"
	}
	return "strict"
}

// FormatError reports a stored token that is not a known role.
type FormatError struct {
	Token string
	Raw   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("role set %q: unknown role token %q", e.Raw, e.Token)
}

// Codec encodes and decodes role sets under a fixed policy. It is stateless
// and safe for concurrent use.
type Codec struct {
	policy Policy
}

// New returns a codec using policy.
func New(policy Policy) *Codec {
	return &Codec{policy: policy}
}

// Encode returns the canonical stored form of set. Two sets with the same
// members always encode to the same string.
func (c *Codec) Encode(set models.RoleSet) string {
	return strings.Join(models.NewRoleSet(set...).Strings(), separator)
}

// Decode parses a stored value back into a canonical set. Repeated tokens
// collapse and surrounding whitespace is ignored.
func (c *Codec) Decode(raw string) (models.RoleSet, error) {
	tokens := pstrings.SplitTokens(raw, separator)
	roles := make([]models.Role, 0, len(tokens))
	for _, tok := range tokens {
		r := models.Role(tok)
		if !r.IsValid() {
			if c.policy == IgnoreUnknown {
				continue
			}
			return nil, &FormatError{Token: tok, Raw: raw}
		}
		roles = append(roles, r)
	}
	return models.NewRoleSet(roles...), nil
}

// Equal reports set equality: order and repeats are irrelevant.
func Equal(a, b models.RoleSet) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for r := range as {
		if _, ok := bs[r]; !ok {
			return false
		}
	}
	return true
}

func toSet(roles models.RoleSet) map[models.Role]struct{} {
	m := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return m
}
