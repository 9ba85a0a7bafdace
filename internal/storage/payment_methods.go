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

// ========== Payment Methods ==========

// CreatePayment creates a new payment
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}

	query := `
		INSERT INTO payments (
			id, created_at, updated_at, tenant_id, property_id, booking_id,
			amount, status, order_id, gateway_payment_id, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		payment.ID, payment.CreatedAt, payment.UpdatedAt, payment.TenantID,
		payment.PropertyID, payment.BookingID, payment.Amount, payment.Status,
		payment.OrderID, payment.GatewayPaymentID, payment.Notes,
	)

	return err
}

// GetPayment gets a payment by ID
func (s *PostgresStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, property_id, booking_id,
		       amount, status, order_id, gateway_payment_id, notes
		FROM payments
		WHERE id = $1`

	payment := &models.Payment{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.CreatedAt, &payment.UpdatedAt, &payment.TenantID,
		&payment.PropertyID, &payment.BookingID, &payment.Amount, &payment.Status,
		&payment.OrderID, &payment.GatewayPaymentID, &payment.Notes,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return payment, err
}

// GetPaymentByOrderID gets a payment by its gateway order reference
func (s *PostgresStore) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, property_id, booking_id,
		       amount, status, order_id, gateway_payment_id, notes
		FROM payments
		WHERE order_id = $1`

	payment := &models.Payment{}
	err := s.getDB().QueryRowContext(ctx, query, orderID).Scan(
		&payment.ID, &payment.CreatedAt, &payment.UpdatedAt, &payment.TenantID,
		&payment.PropertyID, &payment.BookingID, &payment.Amount, &payment.Status,
		&payment.OrderID, &payment.GatewayPaymentID, &payment.Notes,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return payment, err
}

// UpdatePayment updates a payment
func (s *PostgresStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now()

	query := `
		UPDATE payments SET
			updated_at = $2, amount = $3, status = $4, order_id = $5,
			gateway_payment_id = $6, notes = $7
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		payment.ID, payment.UpdatedAt, payment.Amount, payment.Status,
		payment.OrderID, payment.GatewayPaymentID, payment.Notes,
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

// DeletePayment deletes a payment
func (s *PostgresStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM payments WHERE id = $1", id)
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

// ListPayments lists payments with filters
func (s *PostgresStore) ListPayments(ctx context.Context, filters PaymentFilters, limit, offset int) ([]*models.Payment, int64, error) {
	query := "SELECT COUNT(*) FROM payments WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if filters.TenantID != nil {
		argCount++
		query += fmt.Sprintf(" AND tenant_id = $%d", argCount)
		args = append(args, *filters.TenantID)
	}

	if filters.BookingID != nil {
		argCount++
		query += fmt.Sprintf(" AND booking_id = $%d", argCount)
		args = append(args, *filters.BookingID)
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
		`SELECT id, created_at, updated_at, tenant_id, property_id, booking_id,
		        amount, status, order_id, gateway_payment_id, notes`, 1)

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

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID, &payment.CreatedAt, &payment.UpdatedAt, &payment.TenantID,
			&payment.PropertyID, &payment.BookingID, &payment.Amount, &payment.Status,
			&payment.OrderID, &payment.GatewayPaymentID, &payment.Notes,
		)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}

	return payments, count, rows.Err()
}
