package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// TenancyApplication is a tenant's marketplace application for a
// property. One row per (tenant, property) pair; a rejected or
// withdrawn row is reset back to pending when the tenant re-applies.
type TenancyApplication struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	PropertyID uuid.UUID `json:"property_id"`

	Status        ApplicationStatus `json:"status"`
	Message       *string           `json:"message,omitempty"`
	LandlordReply *string           `json:"landlord_reply,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *TenancyApplication) GetID() string { return a.ID.String() }

// IsPending reports whether the application still awaits a decision.
func (a *TenancyApplication) IsPending() bool {
	return a.Status == ApplicationPending
}
