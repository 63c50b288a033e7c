package service

import (
	"slices"

	"members/internal/members/codec"
	"members/internal/members/models"
)

const (
	fieldName        = "name"
	fieldSection     = "section"
	fieldPhoneNumber = "phoneNumber"
	fieldEmail       = "email"
	fieldRoles       = "roles"
)

// changedFields lists the fields that differ between two versions of a member.
// Roles compare as sets, so a reordered re-save is not a change.
func changedFields(before, after *models.Member) []string {
	var changed []string
	if before.Name != after.Name {
		changed = append(changed, fieldName)
	}
	if before.Section != after.Section {
		changed = append(changed, fieldSection)
	}
	if !equalOptional(before.PhoneNumber, after.PhoneNumber) {
		changed = append(changed, fieldPhoneNumber)
	}
	if !equalOptional(before.Email, after.Email) {
		changed = append(changed, fieldEmail)
	}
	if !codec.Equal(before.Roles, after.Roles) {
		changed = append(changed, fieldRoles)
	}
	return changed
}

func rolesChanged(changed []string) bool {
	return slices.Contains(changed, fieldRoles)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
