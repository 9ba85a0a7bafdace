package models

import (
	"time"

	"github.com/google/uuid"
)

// Role gates which routes and actions a session may access
type Role string

// Known roles
const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user profile
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`

	PasswordHash string `json:"-" db:"password_hash"`

	Phone   string `json:"phone,omitempty" db:"phone"`
	Address string `json:"address,omitempty" db:"address"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// UserRole maps a user id to its role. Roles live apart from the profile
// record so a role change never rewrites the profile row.
type UserRole struct {
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Role       Role      `json:"role" db:"role"`
	AssignedAt time.Time `json:"assignedAt" db:"assigned_at"`
	AssignedBy string    `json:"assignedBy" db:"assigned_by"`
}
