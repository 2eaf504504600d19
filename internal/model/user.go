package model

import (
	"time"

	"github.com/google/uuid"
)

// Role фиксируется при регистрации и больше не меняется
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// Valid проверяет что роль входит в закрытый набор
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// SignupRole - роль при самостоятельной регистрации: только STUDENT или INSTRUCTOR.
// ADMIN заводится напрямую в хранилище, всё прочее становится STUDENT.
func SignupRole(s string) Role {
	if r := Role(s); r == RoleInstructor {
		return r
	}
	return RoleStudent
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	Role         Role      `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	InstructorProfile *InstructorProfile `json:"instructor_profile,omitempty"`
}
