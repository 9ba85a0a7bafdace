package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/renteazy/renteazy-server/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")

	// ErrAlreadyVoted is returned when a user votes twice on one poll
	ErrAlreadyVoted = errors.New("already voted")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int64, error)

	// User role methods
	GetUserRole(ctx context.Context, userID uuid.UUID) (*models.UserRole, error)
	UpsertUserRole(ctx context.Context, role *models.UserRole) error

	// Property methods
	CreateProperty(ctx context.Context, property *models.Property) error
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	UpdateProperty(ctx context.Context, property *models.Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
	ListProperties(ctx context.Context, filters PropertyFilters, limit, offset int) ([]*models.Property, int64, error)

	// Booking methods
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	ListBookings(ctx context.Context, filters BookingFilters, limit, offset int) ([]*models.Booking, int64, error)

	// Payment methods
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	DeletePayment(ctx context.Context, id uuid.UUID) error
	ListPayments(ctx context.Context, filters PaymentFilters, limit, offset int) ([]*models.Payment, int64, error)

	// Issue methods
	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	DeleteIssue(ctx context.Context, id uuid.UUID) error
	ListIssues(ctx context.Context, filters IssueFilters, limit, offset int) ([]*models.Issue, int64, error)

	// Announcement methods
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	GetAnnouncement(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
	ListAnnouncements(ctx context.Context, limit, offset int) ([]*models.Announcement, int64, error)

	// Poll methods
	CreatePoll(ctx context.Context, poll *models.Poll) error
	GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error)
	DeletePoll(ctx context.Context, id uuid.UUID) error
	ListPolls(ctx context.Context, limit, offset int) ([]*models.Poll, int64, error)
	VotePoll(ctx context.Context, pollID uuid.UUID, optionIndex int, userID string) error

	// Event methods
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, int64, error)
	SetEventRSVP(ctx context.Context, rsvp *models.EventRSVP) error

	// Chat methods
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, code string) (*models.ChatRoom, error)
	DeleteRoom(ctx context.Context, code string) error
	ListRooms(ctx context.Context, limit, offset int) ([]*models.ChatRoom, int64, error)
	AddRoomMember(ctx context.Context, code, userID string) error
	RemoveRoomMember(ctx context.Context, code, userID string) error
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, roomCode string, limit, offset int) ([]*models.ChatMessage, int64, error)

	// Close the store
	Close() error
}

// PropertyFilters represents filters for property listings
type PropertyFilters struct {
	OwnerID  *uuid.UUID
	Status   *models.PropertyStatus
	Location *string
}

// BookingFilters represents filters for bookings
type BookingFilters struct {
	TenantID   *uuid.UUID
	PropertyID *uuid.UUID
	Status     *models.BookingStatus
}

// PaymentFilters represents filters for payments
type PaymentFilters struct {
	TenantID  *uuid.UUID
	BookingID *uuid.UUID
	Status    *models.PaymentStatus
}

// IssueFilters represents filters for issues
type IssueFilters struct {
	TenantID   *uuid.UUID
	PropertyID *uuid.UUID
	Status     *models.IssueStatus
}
