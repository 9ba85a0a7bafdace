package models

import (
	"github.com/google/uuid"
)

// PropertyStatus represents the listing state of a property
type PropertyStatus string

// Property statuses
const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusInactive PropertyStatus = "inactive"
)

// Property represents a rental listing owned by a user
type Property struct {
	BaseModel

	OwnerID uuid.UUID `json:"ownerId" db:"owner_id"`

	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	RentPrice   float64 `json:"rentPrice" db:"rent_price"`
	Location    string  `json:"location" db:"location"`

	Amenities []string `json:"amenities" db:"amenities"`
	Images    []string `json:"images" db:"images"`

	Status PropertyStatus `json:"status" db:"status"`
}
