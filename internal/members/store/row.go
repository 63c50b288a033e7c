package store

import (
	"database/sql"
	"fmt"

	"members/internal/members/codec"
	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

// memberRow is the column-level shape of a member, shared by both stores.
type memberRow struct {
	ID          int64
	Name        string
	Section     string
	PhoneNumber sql.NullString
	Email       sql.NullString
	Roles       string
}

func toRow(m *models.Member, c *codec.Codec) memberRow {
	return memberRow{
		ID:          int64(m.ID),
		Name:        m.Name,
		Section:     string(m.Section),
		PhoneNumber: nullString(m.PhoneNumber),
		Email:       nullString(m.Email),
		Roles:       c.Encode(m.Roles),
	}
}

// toMember decodes enum columns strictly for sections; roles follow the codec policy.
// Decode failures wrap sentinel.ErrCorrupt.
func (r memberRow) toMember(c *codec.Codec) (*models.Member, error) {
	section := models.Section(r.Section)
	if !section.IsValid() {
		return nil, fmt.Errorf("member %d: unknown section %q: %w", r.ID, r.Section, sentinel.ErrCorrupt)
	}
	roles, err := c.Decode(r.Roles)
	if err != nil {
		return nil, fmt.Errorf("member %d: %w: %w", r.ID, sentinel.ErrCorrupt, err)
	}
	return &models.Member{
		ID:          models.MemberID(r.ID),
		Name:        r.Name,
		Section:     section,
		PhoneNumber: stringPtr(r.PhoneNumber),
		Email:       stringPtr(r.Email),
		Roles:       roles,
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
