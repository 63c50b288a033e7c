package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	dErrors "members/pkg/domain-errors"
)

// Role is a capability tag a member may hold.
// Invariant: the value is one of the declared roles; construct via ParseRole.
type Role string

const (
	RoleSinger    Role = "Singer"
	RoleCouncil   Role = "Council"
	RoleConductor Role = "Conductor"
)

// Roles lists every valid role in declaration order. The order defines the
// canonical ordering of a RoleSet.
var Roles = []Role{RoleSinger, RoleCouncil, RoleConductor}

var roleRank = func() map[Role]int {
	m := make(map[Role]int, len(Roles))
	for i, r := range Roles {
		m[r] = i
	}
	return m
}()

// ParseRole matches s case-insensitively against the declared roles.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown role %q", s))
}

// IsValid reports whether the role is one of the declared values.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is a deduplicated, canonically ordered set of roles.
//
// Invariants:
//   - no role appears twice
//   - roles are ordered by declaration order, unknown values last
//   - the empty set is represented as nil
//
// Build it with NewRoleSet or ParseRoles; literal construction skips canonicalization.
type RoleSet []Role

// NewRoleSet canonicalizes roles into a set.
func NewRoleSet(roles ...Role) RoleSet {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[Role]struct{}, len(roles))
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	slices.SortFunc(set, compareRoles)
	return set
}

func compareRoles(a, b Role) int {
	ra, aok := roleRank[a]
	rb, bok := roleRank[b]
	switch {
	case aok && bok:
		return ra - rb
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}

// ParseRoles parses caller-supplied role names. Any unknown name fails the
// whole set with a validation error.
func ParseRoles(names []string) (RoleSet, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...), nil
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	return slices.Contains(s, r)
}

// Strings returns the role names in canonical order; never nil.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// MarshalJSON renders the empty set as [] rather than null.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}
