package user

import (
	"github.com/klu2500030136/lptd-app/core"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"` // plaintext or bcrypt hash, see Hasher
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Branch   string `json:"branch,omitempty"` // students only
}

func (u User) Can(c Capability) bool { return u.Role.Can(c) }

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// Result is the discriminated outcome of a login or registration.
type Result struct {
	Success bool   `json:"success"`
	Role    Role   `json:"role,omitempty"`
	Message string `json:"message,omitempty"`
}

func failure(err error) Result {
	return Result{Message: err.Error()}
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	Branch   string `json:"branch"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.Branch = core.CleanString(nu.Branch)
}

// Stats summarizes the roster by role.
type Stats struct {
	Total    int `json:"total"`
	Admins   int `json:"admins"`
	Teachers int `json:"teachers"`
	Students int `json:"students"`
}
