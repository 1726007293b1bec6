package domain

import "time"

// UserRole is supplied by the trusted caller boundary; the core does
// not enforce authorization policy.
type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleUser  UserRole = "User"
)

// Valid reports whether the role is a known enum value.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

// User is a directory entry. Identity storage and authentication live
// outside this module; assignments and activity entries reference
// users by their string id.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserInput carries the fields for a new directory entry; the
// id is generated server-side.
type CreateUserInput struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}
