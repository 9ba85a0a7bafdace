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

// ========== Issue Methods ==========

// CreateIssue creates a new issue
func (s *PostgresStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}

	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	if issue.Status == "" {
		issue.Status = models.IssueStatusReported
	}

	query := `
		INSERT INTO issues (
			id, created_at, updated_at, tenant_id, property_id,
			title, description, status, attachments
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		issue.ID, issue.CreatedAt, issue.UpdatedAt, issue.TenantID,
		issue.PropertyID, issue.Title, issue.Description, issue.Status,
		pq.Array(issue.Attachments),
	)

	return err
}

// GetIssue gets an issue by ID
func (s *PostgresStore) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, property_id,
		       title, description, status, attachments
		FROM issues
		WHERE id = $1`

	issue := &models.Issue{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&issue.ID, &issue.CreatedAt, &issue.UpdatedAt, &issue.TenantID,
		&issue.PropertyID, &issue.Title, &issue.Description, &issue.Status,
		pq.Array(&issue.Attachments),
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return issue, err
}

// UpdateIssue updates an issue
func (s *PostgresStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now()

	query := `
		UPDATE issues SET
			updated_at = $2, title = $3, description = $4,
			status = $5, attachments = $6
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		issue.ID, issue.UpdatedAt, issue.Title, issue.Description,
		issue.Status, pq.Array(issue.Attachments),
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

// DeleteIssue deletes an issue
func (s *PostgresStore) DeleteIssue(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM issues WHERE id = $1", id)
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

// ListIssues lists issues with filters
func (s *PostgresStore) ListIssues(ctx context.Context, filters IssueFilters, limit, offset int) ([]*models.Issue, int64, error) {
	query := "SELECT COUNT(*) FROM issues WHERE 1=1"
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
		        title, description, status, attachments`, 1)

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

	var issues []*models.Issue
	for rows.Next() {
		issue := &models.Issue{}
		err := rows.Scan(
			&issue.ID, &issue.CreatedAt, &issue.UpdatedAt, &issue.TenantID,
			&issue.PropertyID, &issue.Title, &issue.Description, &issue.Status,
			pq.Array(&issue.Attachments),
		)
		if err != nil {
			return nil, 0, err
		}
		issues = append(issues, issue)
	}

	return issues, count, rows.Err()
}
