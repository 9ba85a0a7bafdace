package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// RoleStore is the slice of storage the session layer needs. The uid is
// opaque here; the storage adapter decides how to key it.
type RoleStore interface {
	GetRole(ctx context.Context, uid string) (models.Role, error)
	AssignRole(ctx context.Context, uid string, role models.Role, assignedBy string) error
}

// Profile is a raw user profile as delivered by a backend. Id and name
// fields arrive under different aliases depending on the source.
type Profile struct {
	MongoID     string `json:"_id,omitempty"`
	UID         string `json:"uid,omitempty"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// User is the merged session identity handed to clients after login or
// signup: profile fields plus the resolved role.
type User struct {
	UID       string      `json:"uid"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	LastLogin *time.Time  `json:"lastLogin,omitempty"`
}

// NormalizeID picks the uid out of an aliased profile, preferring _id,
// then uid, then id. An empty string means no backend supplied an id.
func NormalizeID(p Profile) string {
	if p.MongoID != "" {
		return p.MongoID
	}
	if p.UID != "" {
		return p.UID
	}
	return p.ID
}

// Resolver merges profiles with role records
type Resolver struct {
	roles RoleStore
}

// NewResolver creates a new session resolver
func NewResolver(roles RoleStore) *Resolver {
	return &Resolver{roles: roles}
}

// Resolve builds the session user for a profile. When no role record
// exists the resolver fails open: it assigns the default tenant role,
// persists it so the next lookup agrees, and proceeds. Login must not
// deadlock just because role provisioning lagged signup.
func (r *Resolver) Resolve(ctx context.Context, profile Profile) (*User, error) {
	uid := NormalizeID(profile)

	role, err := r.roles.GetRole(ctx, uid)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		role = models.RoleTenant
		if err := r.roles.AssignRole(ctx, uid, role, "auto-provision"); err != nil {
			return nil, fmt.Errorf("provision default role: %w", err)
		}
		log.Warn().
			Str("uid", uid).
			Msg("No role record found, provisioned default tenant role")
	case err != nil:
		return nil, fmt.Errorf("resolve role: %w", err)
	}

	name := profile.Name
	if name == "" {
		name = profile.DisplayName
	}

	return &User{
		UID:       uid,
		Name:      name,
		Email:     profile.Email,
		Role:      role,
		Phone:     profile.Phone,
		Address:   profile.Address,
		CreatedAt: profile.CreatedAt,
		LastLogin: profile.LastLoginAt,
	}, nil
}
