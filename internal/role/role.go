package role

import (
	"errors"
	"strings"
)

type Role string

const (
	Applicant Role = "applicant"
	Admin     Role = "admin"
	Committee Role = "committee"
)

var ErrUnknown = errors.New("unknown role")

// Parse maps a claim value onto the closed role set. Anything else is
// rejected, never defaulted.
func Parse(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case Applicant, Admin, Committee:
		return r, nil
	}
	return "", ErrUnknown
}

func (r Role) Valid() bool {
	_, err := Parse(string(r))
	return err == nil && string(r) == strings.ToLower(string(r))
}

// Set is an allow-list of roles.
type Set map[Role]struct{}

func NewSet(roles ...Role) Set {
	s := make(Set, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s Set) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s Set) Slice() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range []Role{Applicant, Admin, Committee} {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

var (
	Staff      = NewSet(Admin, Committee)
	Applicants = NewSet(Applicant)
)
