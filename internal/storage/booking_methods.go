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

// ========== Booking Methods ==========

// CreateBooking creates a new booking
func (s *PostgresStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}

	query := `
		INSERT INTO bookings (
			id, created_at, updated_at, tenant_id, property_id,
			start_date, end_date, amount, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		booking.ID, booking.CreatedAt, booking.UpdatedAt, booking.TenantID,
		booking.PropertyID, booking.StartDate, booking.EndDate,
		booking.Amount, booking.Status,
	)

	return err
}

// GetBooking gets a booking by ID
func (s *PostgresStore) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, property_id,
		       start_date, end_date, amount, status
		FROM bookings
		WHERE id = $1`

	booking := &models.Booking{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.CreatedAt, &booking.UpdatedAt, &booking.TenantID,
		&booking.PropertyID, &booking.StartDate, &booking.EndDate,
		&booking.Amount, &booking.Status,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return booking, err
}

// UpdateBooking updates a booking
func (s *PostgresStore) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now()

	query := `
		UPDATE bookings SET
			updated_at = $2, start_date = $3, end_date = $4,
			amount = $5, status = $6
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		booking.ID, booking.UpdatedAt, booking.StartDate, booking.EndDate,
		booking.Amount, booking.Status,
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

// DeleteBooking deletes a booking
func (s *PostgresStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM bookings WHERE id = $1", id)
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

// ListBookings lists bookings with filters
func (s *PostgresStore) ListBookings(ctx context.Context, filters BookingFilters, limit, offset int) ([]*models.Booking, int64, error) {
	query := "SELECT COUNT(*) FROM bookings WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if filters.TenantID != nil {
		argCount++
		query += fmt.Sprintf(" AND tenant_id = $%d", argCount)
		args = append(args, *filters.TenantID)
	}

	if filters.PropertyID != nil {
		argCount++
		query += fmt.Sprintf(" AND property_id = $%d", argCount)
		args = append(args, *filters.PropertyID)
	}

	if filters.Status != nil {
		argCount++
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filters.Status)
	}

	var count int64
	err := s.getDB().QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	selectQuery := strings.Replace(query, "SELECT COUNT(*)",
		`SELECT id, created_at, updated_at, tenant_id, property_id,
		        start_date, end_date, amount, status`, 1)

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

	var bookings []*models.Booking
	for rows.Next() {
		booking := &models.Booking{}
		err := rows.Scan(
			&booking.ID, &booking.CreatedAt, &booking.UpdatedAt, &booking.TenantID,
			&booking.PropertyID, &booking.StartDate, &booking.EndDate,
			&booking.Amount, &booking.Status,
		)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, count, rows.Err()
}
