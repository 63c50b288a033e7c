package models

import (
	"strconv"
	"strings"

	dErrors "members/pkg/domain-errors"
)

// MemberID is assigned by the store on create and never reused.
type MemberID int64

// ParseMemberID parses a positive decimal id from external input.
func ParseMemberID(s string) (MemberID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "member id must be a positive integer")
	}
	return MemberID(n), nil
}

func (id MemberID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Member is a stored directory record.
//
// Invariants:
//   - ID is assigned once by the store and is immutable
//   - Name is non-empty, Section is a declared section
//   - Roles is a canonical RoleSet
type Member struct {
	ID          MemberID
	Name        string
	Section     Section
	PhoneNumber *string
	Email       *string
	Roles       RoleSet
}

// Draft is the caller input for create and full-replace update.
type Draft struct {
	Name        string
	Section     Section
	PhoneNumber *string
	Email       *string
	Roles       RoleSet
}

// Validate normalizes the draft and checks the record invariants.
func (d *Draft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(d.Name) > 256 {
		return dErrors.New(dErrors.CodeValidation, "name must be 256 characters or less")
	}
	if !d.Section.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "section is required and must be a known section")
	}
	for _, r := range d.Roles {
		if !r.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown role "+strconv.Quote(string(r)))
		}
	}
	d.Roles = NewRoleSet(d.Roles...)
	d.PhoneNumber = normalizeOptional(d.PhoneNumber)
	d.Email = normalizeOptional(d.Email)
	return nil
}

// ToMember builds the stored record for the given id. Every field comes from
// the draft; nothing is merged with a previous version.
func (d Draft) ToMember(id MemberID) *Member {
	return &Member{
		ID:          id,
		Name:        d.Name,
		Section:     d.Section,
		PhoneNumber: cloneString(d.PhoneNumber),
		Email:       cloneString(d.Email),
		Roles:       NewRoleSet(d.Roles...),
	}
}

// Clone returns a deep copy so callers cannot alias stored state.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	c := *m
	c.PhoneNumber = cloneString(m.PhoneNumber)
	c.Email = cloneString(m.Email)
	c.Roles = NewRoleSet(m.Roles...)
	return &c
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
