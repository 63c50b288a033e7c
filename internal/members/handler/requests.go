package handler

import (
	"members/internal/members/models"
)

// MemberRequest is the body of create and full-replace update calls.
type MemberRequest struct {
	Name        string   `json:"name"`
	Section     string   `json:"section"`
	PhoneNumber *string  `json:"phoneNumber,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Roles       []string `json:"roles"`

	draft models.Draft
}

// Validate parses the enumerations and normalizes the draft. Unknown section or
// role names are validation errors.
func (r *MemberRequest) Validate() error {
	section, err := models.ParseSection(r.Section)
	if err != nil {
		return err
	}
	roles, err := models.ParseRoles(r.Roles)
	if err != nil {
		return err
	}
	d := models.Draft{
		Name:        r.Name,
		Section:     section,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Roles:       roles,
	}
	if err := d.Validate(); err != nil {
		return err
	}
	r.draft = d
	return nil
}

// Draft returns the validated draft. Only meaningful after Validate succeeds.
func (r *MemberRequest) Draft() models.Draft {
	return r.draft
}
