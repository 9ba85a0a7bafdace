package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/renteazy/renteazy-server/internal/models"
)

// ========== Property Methods ==========

// CreateProperty creates a new property listing
func (s *PostgresStore) CreateProperty(ctx context.Context, property *models.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}

	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now

	if property.Status == "" {
		property.Status = models.PropertyStatusActive
	}

	query := `
		INSERT INTO properties (
			id, created_at, updated_at, owner_id, title, description,
			rent_price, location, amenities, images, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		property.ID, property.CreatedAt, property.UpdatedAt, property.OwnerID,
		property.Title, property.Description, property.RentPrice,
		property.Location, pq.Array(property.Amenities), pq.Array(property.Images),
		property.Status,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetProperty gets a property by ID
func (s *PostgresStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `
		SELECT id, created_at, updated_at, owner_id, title, description,
		       rent_price, location, amenities, images, status
		FROM properties
		WHERE id = $1`

	property := &models.Property{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&property.ID, &property.CreatedAt, &property.UpdatedAt, &property.OwnerID,
		&property.Title, &property.Description, &property.RentPrice,
		&property.Location, pq.Array(&property.Amenities), pq.Array(&property.Images),
		&property.Status,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return property, err
}

// UpdateProperty updates a property
func (s *PostgresStore) UpdateProperty(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = time.Now()

	query := `
		UPDATE properties SET
			updated_at = $2, title = $3, description = $4, rent_price = $5,
			location = $6, amenities = $7, images = $8, status = $9
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		property.ID, property.UpdatedAt, property.Title, property.Description,
		property.RentPrice, property.Location, pq.Array(property.Amenities),
		pq.Array(property.Images), property.Status,
	)

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

// DeleteProperty deletes a property. Bookings, payments and issues that
// reference it are left in place.
func (s *PostgresStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM properties WHERE id = $1", id)
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

// ListProperties lists properties with filters
func (s *PostgresStore) ListProperties(ctx context.Context, filters PropertyFilters, limit, offset int) ([]*models.Property, int64, error) {
	query := "SELECT COUNT(*) FROM properties WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if filters.OwnerID != nil {
		argCount++
		query += fmt.Sprintf(" AND owner_id = $%d", argCount)
		args = append(args, *filters.OwnerID)
	}

	if filters.Status != nil {
		argCount++
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filters.Status)
	}

	if filters.Location != nil {
		argCount++
		query += fmt.Sprintf(" AND location ILIKE $%d", argCount)
		args = append(args, "%"+*filters.Location+"%")
	}

	var count int64
	err := s.getDB().QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	selectQuery := strings.Replace(query, "SELECT COUNT(*)",
		`SELECT id, created_at, updated_at, owner_id, title, description,
		        rent_price, location, amenities, images, status`, 1)

	argCount++
	selectQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argCount)
	args = append(args, limit)

	argCount++
	selectQuery += fmt.Sprintf(" OFFSET $%d", argCount)
	args = append(args, offset)

	rows, err := s.getDB().QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		err := rows.Scan(
			&property.ID, &property.CreatedAt, &property.UpdatedAt, &property.OwnerID,
			&property.Title, &property.Description, &property.RentPrice,
			&property.Location, pq.Array(&property.Amenities), pq.Array(&property.Images),
			&property.Status,
		)
		if err != nil {
			return nil, 0, err
		}
		properties = append(properties, property)
	}

	return properties, count, rows.Err()
}
