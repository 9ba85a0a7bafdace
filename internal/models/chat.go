package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomCodeLength is the length of a chat room invite code
const RoomCodeLength = 6

// RoomCodeAlphabet is the character set invite codes are sampled from
const RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ChatRoom represents an invite-coded chat room. The code is the primary
// key; rooms are joined by code and never renamed.
type ChatRoom struct {
	Code      string    `json:"code" db:"code"`
	CreatedBy uuid.UUID `json:"createdBy" db:"created_by"`
	Members   []string  `json:"members" db:"members"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HasMember reports whether the user is a member of the room
func (r *ChatRoom) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ChatMessage represents one message in a room's append-only log
type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RoomCode  string    `json:"roomCode" db:"room_code"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
