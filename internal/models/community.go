package models

import (
	"time"

	"github.com/google/uuid"
)

// AnnouncementType categorizes community announcements
type AnnouncementType string

// Announcement types
const (
	AnnouncementTypeFestival    AnnouncementType = "festival"
	AnnouncementTypeMaintenance AnnouncementType = "maintenance"
	AnnouncementTypeEvent       AnnouncementType = "event"
)

// Announcement represents a community-wide notice
type Announcement struct {
	BaseModel

	Message string           `json:"message" db:"message"`
	Type    AnnouncementType `json:"type" db:"type"`
	Date    time.Time        `json:"date" db:"date"`
}

// Poll represents a community poll. Votes and Options are parallel
// slices; Voters grows monotonically and holds each user at most once.
type Poll struct {
	BaseModel

	Question string   `json:"question" db:"question"`
	Options  []string `json:"options" db:"options"`
	Votes    []int64  `json:"votes" db:"votes"`
	Voters   []string `json:"voters" db:"voters"`
}

// HasVoted reports whether the user already voted on this poll
func (p *Poll) HasVoted(userID string) bool {
	for _, v := range p.Voters {
		if v == userID {
			return true
		}
	}
	return false
}

// TotalVotes returns the sum of all option counters
func (p *Poll) TotalVotes() int64 {
	var total int64
	for _, v := range p.Votes {
		total += v
	}
	return total
}

// RSVPStatus is a user's yes/no answer to an event
type RSVPStatus string

// RSVP statuses
const (
	RSVPYes RSVPStatus = "yes"
	RSVPNo  RSVPStatus = "no"
)

// EventRSVP is one user's answer for one event. The (event, user) pair
// is unique; a repeated RSVP overwrites the previous status.
type EventRSVP struct {
	EventID   uuid.UUID  `json:"eventId" db:"event_id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Status    RSVPStatus `json:"status" db:"status"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// Event represents a community event users can RSVP to
type Event struct {
	BaseModel

	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`

	RSVPs []EventRSVP `json:"rsvps,omitempty" db:"-"`
}

// AttendeeCount returns the number of yes answers
func (e *Event) AttendeeCount() int {
	n := 0
	for _, r := range e.RSVPs {
		if r.Status == RSVPYes {
			n++
		}
	}
	return n
}
