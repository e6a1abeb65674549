package user

import (
	"github.com/pkg/errors"
)

// Role is the tagged variant over the three kinds of users.
type Role int

// Roles
const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleTeacher
	RoleStudent
)

// Capability is an action a Role may be allowed to perform.
type Capability uint

// Capabilities
const (
	CapViewStats Capability = 1 << iota
	CapViewAllMarks
	CapViewOwnMarks
	CapViewPerformance
	CapEditMarks
	CapListStudents
	CapSelfRegister
)

var (
	ErrUnknownRole = errors.New("unknown role")

	AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

	roleNames = map[Role]string{
		RoleAdmin:   "admin",
		RoleTeacher: "teacher",
		RoleStudent: "student",
	}

	// capabilities is the single source of truth for role-based access.
	capabilities = map[Role]Capability{
		RoleAdmin:   CapViewStats | CapViewAllMarks | CapListStudents,
		RoleTeacher: CapViewAllMarks | CapEditMarks | CapListStudents | CapSelfRegister,
		RoleStudent: CapViewOwnMarks | CapViewPerformance | CapSelfRegister,
	}
)

func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnknown, errors.Wrapf(ErrUnknownRole, "%q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Can reports whether the role holds every capability in c.
func (r Role) Can(c Capability) bool {
	return c != 0 && capabilities[r]&c == c
}

func (r Role) MarshalText() ([]byte, error) {
	name, ok := roleNames[r]
	if !ok {
		return nil, ErrUnknownRole
	}
	return []byte(name), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
