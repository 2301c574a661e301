package user

import (
	"time"

	"github.com/mzalendo/kazi/core"
)

// Roles. A profile carries exactly one and it never changes after signup.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var Roles = []string{RoleStudent, RoleTeacher}

// User is the profile document stored under the account's UID in the
// `users` collection. The UID equals the identity provider's UID.
type User struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to register a new account.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return core.Validate.Struct(nu)
}
