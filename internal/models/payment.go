package models

import (
	"github.com/google/uuid"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment represents a rent payment against a booking
type Payment struct {
	BaseModel

	TenantID   uuid.UUID `json:"tenantId" db:"tenant_id"`
	PropertyID uuid.UUID `json:"propertyId" db:"property_id"`
	BookingID  uuid.UUID `json:"bookingId" db:"booking_id"`

	Amount float64       `json:"amount" db:"amount"`
	Status PaymentStatus `json:"status" db:"status"`

	// OrderID is the gateway order reference handed to the client at
	// order creation and echoed back during signature verification.
	OrderID           string `json:"orderId,omitempty" db:"order_id"`
	GatewayPaymentID  string `json:"razorpayPaymentId,omitempty" db:"gateway_payment_id"`

	Notes Variables `json:"notes,omitempty" db:"notes"`
}
