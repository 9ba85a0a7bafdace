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

// ========== Chat Methods ==========

// CreateRoom creates a new chat room. Returns ErrDuplicateKey when the
// code is already taken, so the caller can regenerate and retry.
func (s *PostgresStore) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	if room.Members == nil {
		room.Members = []string{}
	}

	query := `
		INSERT INTO chat_rooms (code, created_by, members, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.getDB().ExecContext(ctx, query,
		room.Code, room.CreatedBy, pq.Array(room.Members), room.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetRoom gets a room by invite code
func (s *PostgresStore) GetRoom(ctx context.Context, code string) (*models.ChatRoom, error) {
	query := `
		SELECT code, created_by, members, created_at
		FROM chat_rooms
		WHERE code = $1`

	room := &models.ChatRoom{}
	err := s.getDB().QueryRowContext(ctx, query, code).Scan(
		&room.Code, &room.CreatedBy, pq.Array(&room.Members), &room.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return room, err
}

// DeleteRoom deletes a room and its messages
func (s *PostgresStore) DeleteRoom(ctx context.Context, code string) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM chat_rooms WHERE code = $1", code)
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

// ListRooms lists rooms, newest first
func (s *PostgresStore) ListRooms(ctx context.Context, limit, offset int) ([]*models.ChatRoom, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM chat_rooms").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT code, created_by, members, created_at
		FROM chat_rooms
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []*models.ChatRoom
	for rows.Next() {
		room := &models.ChatRoom{}
		err := rows.Scan(&room.Code, &room.CreatedBy, pq.Array(&room.Members), &room.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}

	return rooms, count, rows.Err()
}

// AddRoomMember adds a user to a room. Re-joining an existing member is
// a no-op, not an error.
func (s *PostgresStore) AddRoomMember(ctx context.Context, code, userID string) error {
	query := `
		UPDATE chat_rooms SET
			members = array_append(members, $2)
		WHERE code = $1 AND NOT ($2 = ANY(members))`

	result, err := s.getDB().ExecContext(ctx, query, code, userID)
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

	// Already a member, or no such room.
	var exists bool
	err = s.getDB().QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM chat_rooms WHERE code = $1)", code,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	return nil
}

// RemoveRoomMember removes a user from a room. The room itself stays,
// even when its member list goes empty; eviction is handled elsewhere.
func (s *PostgresStore) RemoveRoomMember(ctx context.Context, code, userID string) error {
	query := `
		UPDATE chat_rooms SET
			members = array_remove(members, $2)
		WHERE code = $1`

	result, err := s.getDB().ExecContext(ctx, query, code, userID)
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

// CreateMessage appends a message to a room's log
func (s *PostgresStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO chat_messages (id, room_code, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.getDB().ExecContext(ctx, query,
		msg.ID, msg.RoomCode, msg.UserID, msg.Body, msg.CreatedAt,
	)

	if err != nil && strings.Contains(err.Error(), "foreign key") {
		return ErrNotFound
	}

	return err
}

// ListMessages lists a room's messages in arrival order
func (s *PostgresStore) ListMessages(ctx context.Context, roomCode string, limit, offset int) ([]*models.ChatMessage, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_messages WHERE room_code = $1", roomCode,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, room_code, user_id, body, created_at
		FROM chat_messages
		WHERE room_code = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, roomCode, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		err := rows.Scan(&msg.ID, &msg.RoomCode, &msg.UserID, &msg.Body, &msg.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}

	return messages, count, rows.Err()
}
