package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/renteazy/renteazy-server/internal/models"
)

// ========== Announcement Methods ==========

// CreateAnnouncement creates a new announcement
func (s *PostgresStore) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO announcements (id, created_at, updated_at, message, type, date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.getDB().ExecContext(ctx, query,
		a.ID, a.CreatedAt, a.UpdatedAt, a.Message, a.Type, a.Date,
	)

	return err
}

// GetAnnouncement gets an announcement by ID
func (s *PostgresStore) GetAnnouncement(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	query := `
		SELECT id, created_at, updated_at, message, type, date
		FROM announcements
		WHERE id = $1`

	a := &models.Announcement{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Message, &a.Type, &a.Date,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return a, err
}

// DeleteAnnouncement deletes an announcement
func (s *PostgresStore) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
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

// ListAnnouncements lists announcements, newest first
func (s *PostgresStore) ListAnnouncements(ctx context.Context, limit, offset int) ([]*models.Announcement, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM announcements").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, created_at, updated_at, message, type, date
		FROM announcements
		ORDER BY date DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var announcements []*models.Announcement
	for rows.Next() {
		a := &models.Announcement{}
		err := rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Message, &a.Type, &a.Date)
		if err != nil {
			return nil, 0, err
		}
		announcements = append(announcements, a)
	}

	return announcements, count, rows.Err()
}

// ========== Poll Methods ==========

// CreatePoll creates a new poll. Vote counters start at zero, one per
// option.
func (s *PostgresStore) CreatePoll(ctx context.Context, poll *models.Poll) error {
	if poll.ID == uuid.Nil {
		poll.ID = uuid.New()
	}

	now := time.Now()
	poll.CreatedAt = now
	poll.UpdatedAt = now

	if len(poll.Votes) != len(poll.Options) {
		poll.Votes = make([]int64, len(poll.Options))
	}
	if poll.Voters == nil {
		poll.Voters = []string{}
	}

	query := `
		INSERT INTO polls (id, created_at, updated_at, question, options, votes, voters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.getDB().ExecContext(ctx, query,
		poll.ID, poll.CreatedAt, poll.UpdatedAt, poll.Question,
		pq.Array(poll.Options), pq.Array(poll.Votes), pq.Array(poll.Voters),
	)

	return err
}

// GetPoll gets a poll by ID
func (s *PostgresStore) GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	query := `
		SELECT id, created_at, updated_at, question, options, votes, voters
		FROM polls
		WHERE id = $1`

	poll := &models.Poll{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&poll.ID, &poll.CreatedAt, &poll.UpdatedAt, &poll.Question,
		pq.Array(&poll.Options), pq.Array(&poll.Votes), pq.Array(&poll.Voters),
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return poll, err
}

// DeletePoll deletes a poll
func (s *PostgresStore) DeletePoll(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM polls WHERE id = $1", id)
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

// ListPolls lists polls, newest first
func (s *PostgresStore) ListPolls(ctx context.Context, limit, offset int) ([]*models.Poll, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM polls").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, created_at, updated_at, question, options, votes, voters
		FROM polls
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var polls []*models.Poll
	for rows.Next() {
		poll := &models.Poll{}
		err := rows.Scan(
			&poll.ID, &poll.CreatedAt, &poll.UpdatedAt, &poll.Question,
			pq.Array(&poll.Options), pq.Array(&poll.Votes), pq.Array(&poll.Voters),
		)
		if err != nil {
			return nil, 0, err
		}
		polls = append(polls, poll)
	}

	return polls, count, rows.Err()
}

// VotePoll registers one vote. The counter increment and the voter
// append happen in a single conditional statement, so a concurrent
// second vote from the same user cannot double-count.
func (s *PostgresStore) VotePoll(ctx context.Context, pollID uuid.UUID, optionIndex int, userID string) error {
	query := `
		UPDATE polls SET
			votes[$2] = votes[$2] + 1,
			voters = array_append(voters, $3),
			updated_at = $4
		WHERE id = $1
		  AND NOT ($3 = ANY(voters))
		  AND $2 >= 1 AND $2 <= array_length(options, 1)`

	// array subscripts are 1-based in PostgreSQL
	result, err := s.getDB().ExecContext(ctx, query, pollID, optionIndex+1, userID, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Nothing updated: work out which precondition failed.
	var voted bool
	var optionCount int
	err = s.getDB().QueryRowContext(ctx,
		"SELECT $2 = ANY(voters), array_length(options, 1) FROM polls WHERE id = $1",
		pollID, userID,
	).Scan(&voted, &optionCount)

	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}
	return ErrInvalidData
}

// ========== Event Methods ==========

// CreateEvent creates a new event
func (s *PostgresStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO events (id, created_at, updated_at, title, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.getDB().ExecContext(ctx, query,
		event.ID, event.CreatedAt, event.UpdatedAt, event.Title,
		event.Description, event.Date,
	)

	return err
}

// GetEvent gets an event by ID, including its RSVPs
func (s *PostgresStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `
		SELECT id, created_at, updated_at, title, description, date
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.CreatedAt, &event.UpdatedAt, &event.Title,
		&event.Description, &event.Date,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	event.RSVPs, err = s.listEventRSVPs(ctx, event.ID)
	return event, err
}

// UpdateEvent updates an event
func (s *PostgresStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()

	query := `
		UPDATE events SET
			updated_at = $2, title = $3, description = $4, date = $5
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		event.ID, event.UpdatedAt, event.Title, event.Description, event.Date,
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

// DeleteEvent deletes an event and its RSVPs
func (s *PostgresStore) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
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

// ListEvents lists events with their RSVPs, soonest first
func (s *PostgresStore) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, created_at, updated_at, title, description, date
		FROM events
		ORDER BY date ASC
		LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID, &event.CreatedAt, &event.UpdatedAt, &event.Title,
			&event.Description, &event.Date,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, event := range events {
		event.RSVPs, err = s.listEventRSVPs(ctx, event.ID)
		if err != nil {
			return nil, 0, err
		}
	}

	return events, count, nil
}

// SetEventRSVP upserts a user's RSVP. The (event, user) pair is the
// primary key, so a repeated RSVP overwrites in place.
func (s *PostgresStore) SetEventRSVP(ctx context.Context, rsvp *models.EventRSVP) error {
	rsvp.UpdatedAt = time.Now()

	query := `
		INSERT INTO event_rsvps (event_id, user_id, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`

	_, err := s.getDB().ExecContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.UpdatedAt,
	)

	if err != nil && strings.Contains(err.Error(), "foreign key") {
		return ErrNotFound
	}

	return err
}

// listEventRSVPs loads all RSVPs for an event
func (s *PostgresStore) listEventRSVPs(ctx context.Context, eventID uuid.UUID) ([]models.EventRSVP, error) {
	query := `
		SELECT event_id, user_id, status, updated_at
		FROM event_rsvps
		WHERE event_id = $1
		ORDER BY updated_at ASC`

	rows, err := s.getDB().QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []models.EventRSVP
	for rows.Next() {
		var rsvp models.EventRSVP
		err := rows.Scan(&rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.UpdatedAt)
		if err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}

	return rsvps, rows.Err()
}
