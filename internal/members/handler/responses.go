package handler

import (
	"members/internal/members/models"
)

// MemberResponse is the wire representation of a member.
type MemberResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Section     string   `json:"section"`
	PhoneNumber *string  `json:"phoneNumber,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Roles       []string `json:"roles"`
}

func FromMember(m *models.Member) MemberResponse {
	roles := m.Roles.Strings()
	if roles == nil {
		roles = []string{}
	}
	return MemberResponse{
		ID:          int64(m.ID),
		Name:        m.Name,
		Section:     string(m.Section),
		PhoneNumber: m.PhoneNumber,
		Email:       m.Email,
		Roles:       roles,
	}
}

func FromMembers(list []*models.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMember(m))
	}
	return out
}
