package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

// Booking statuses
const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a tenant's reservation of a property
type Booking struct {
	BaseModel

	TenantID   uuid.UUID `json:"tenantId" db:"tenant_id"`
	PropertyID uuid.UUID `json:"propertyId" db:"property_id"`

	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`

	Amount float64 `json:"amount" db:"amount"`

	Status BookingStatus `json:"status" db:"status"`
}

// BookingAmount computes the total rent for a booking period. Rent is
// charged per started 30-day block of the stay.
func BookingAmount(rentPrice float64, start, end time.Time) float64 {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return 0
	}
	blocks := days / 30
	if days%30 != 0 {
		blocks++
	}
	return rentPrice * float64(blocks)
}
