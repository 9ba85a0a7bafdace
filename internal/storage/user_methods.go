package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/renteazy/renteazy-server/internal/models"
)

// ========== User Methods ==========

// CreateUser creates a new user. PasswordHash must already be hashed.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, created_at, updated_at, name, email, password_hash,
			phone, address, last_login_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Name, user.Email,
		user.PasswordHash, user.Phone, user.Address, user.LastLoginAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetUser gets a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, created_at, updated_at, name, email, password_hash,
		       phone, address, last_login_at
		FROM users
		WHERE id = $1`

	user := &models.User{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Name, &user.Email,
		&user.PasswordHash, &user.Phone, &user.Address, &user.LastLoginAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return user, err
}

// GetUserByEmail gets a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, created_at, updated_at, name, email, password_hash,
		       phone, address, last_login_at
		FROM users
		WHERE email = $1`

	user := &models.User{}
	err := s.getDB().QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Name, &user.Email,
		&user.PasswordHash, &user.Phone, &user.Address, &user.LastLoginAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return user, err
}

// UpdateUser updates a user
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			updated_at = $2, name = $3, email = $4, phone = $5,
			address = $6, last_login_at = $7
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.UpdatedAt, user.Name, user.Email, user.Phone,
		user.Address, user.LastLoginAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteUser deletes a user
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListUsers lists users
func (s *PostgresStore) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, created_at, updated_at, name, email, phone, address, last_login_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Name,
			&user.Email, &user.Phone, &user.Address, &user.LastLoginAt,
		)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	return users, count, rows.Err()
}

// ========== User Role Methods ==========

// GetUserRole gets the role record for a user
func (s *PostgresStore) GetUserRole(ctx context.Context, userID uuid.UUID) (*models.UserRole, error) {
	query := `
		SELECT user_id, role, assigned_at, assigned_by
		FROM user_roles
		WHERE user_id = $1`

	role := &models.UserRole{}
	err := s.getDB().QueryRowContext(ctx, query, userID).Scan(
		&role.UserID, &role.Role, &role.AssignedAt, &role.AssignedBy,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return role, err
}

// UpsertUserRole creates or replaces the role record for a user. One
// role row exists per user once provisioned.
func (s *PostgresStore) UpsertUserRole(ctx context.Context, role *models.UserRole) error {
	if !role.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidData, role.Role)
	}

	if role.AssignedAt.IsZero() {
		role.AssignedAt = time.Now()
	}

	query := `
		INSERT INTO user_roles (user_id, role, assigned_at, assigned_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role,
			assigned_at = EXCLUDED.assigned_at,
			assigned_by = EXCLUDED.assigned_by`

	_, err := s.getDB().ExecContext(ctx, query,
		role.UserID, role.Role, role.AssignedAt, role.AssignedBy,
	)

	return err
}
