package models

import (
	"github.com/google/uuid"
)

// IssueStatus represents the handling state of a reported issue
type IssueStatus string

// Issue statuses
const (
	IssueStatusReported      IssueStatus = "reported"
	IssueStatusInvestigating IssueStatus = "investigating"
	IssueStatusResolved      IssueStatus = "resolved"
	IssueStatusClosed        IssueStatus = "closed"
)

// Issue represents a maintenance issue reported by a tenant
type Issue struct {
	BaseModel

	TenantID   uuid.UUID `json:"tenantId" db:"tenant_id"`
	PropertyID uuid.UUID `json:"propertyId" db:"property_id"`

	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	Status IssueStatus `json:"status" db:"status"`

	Attachments []string `json:"attachments" db:"attachments"`
}
