package domain

import (
	"time"
)

// Role represents a user's role in the system
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleManager   Role = "manager"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleDeveloper || r == RoleManager
}

// User represents a registered account
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a new user with the given identity and password hash
func NewUser(id, name, email, passwordHash string, role Role) *User {
	if !role.IsValid() {
		role = RoleDeveloper
	}
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

// Identity is the resolved caller identity attached to each request.
// It is never ambient state; every operation takes it explicitly.
type Identity struct {
	ID   string
	Role Role
}

// IsManager reports whether the caller holds the manager role
func (i Identity) IsManager() bool {
	return i.Role == RoleManager
}
