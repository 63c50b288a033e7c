package models

import (
	"fmt"
	"strings"

	dErrors "members/pkg/domain-errors"
)

// Section is the single voice section a member belongs to.
// Invariant: the value is one of the declared sections; construct via ParseSection.
type Section string

const (
	SectionSoprano Section = "Soprano"
	SectionAlto    Section = "Alto"
	SectionTenor   Section = "Tenor"
	SectionBass    Section = "Bass"
)

// Sections lists every valid section in declaration order.
var Sections = []Section{SectionSoprano, SectionAlto, SectionTenor, SectionBass}

// ParseSection matches s case-insensitively against the declared sections and
// returns the canonical value.
func ParseSection(s string) (Section, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "section is required")
	}
	for _, sec := range Sections {
		if strings.EqualFold(string(sec), s) {
			return sec, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown section %q", s))
}

// IsValid reports whether the section is one of the declared values.
func (s Section) IsValid() bool {
	for _, sec := range Sections {
		if sec == s {
			return true
		}
	}
	return false
}

func (s Section) String() string {
	return string(s)
}
