package models

import (
	"time"

	"github.com/google/uuid"
)

type MaintenancePriority string

const (
	PriorityLow       MaintenancePriority = "low"
	PriorityMedium    MaintenancePriority = "medium"
	PriorityHigh      MaintenancePriority = "high"
	PriorityEmergency MaintenancePriority = "emergency"
)

// ParseMaintenancePriority converts a raw string to a priority, or "" if unknown.
func ParseMaintenancePriority(s string) MaintenancePriority {
	switch MaintenancePriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return MaintenancePriority(s)
	default:
		return ""
	}
}

type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// ParseMaintenanceStatus converts a raw string to a status, or "" if unknown.
func ParseMaintenanceStatus(s string) MaintenanceStatus {
	switch MaintenanceStatus(s) {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return MaintenanceStatus(s)
	default:
		return ""
	}
}

// MaxImagesPerMaintenanceRequest caps attachments per request across
// create and edit; extra uploads are dropped with a warning.
const MaxImagesPerMaintenanceRequest = 3

// MaintenanceRequest is a tenant-raised issue on their tenancy,
// worked by the owning landlord.
type MaintenanceRequest struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	TenancyID  uuid.UUID `json:"tenancy_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	LandlordID uuid.UUID `json:"landlord_id"`
	PropertyID uuid.UUID `json:"property_id"`

	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    MaintenancePriority `json:"priority"`
	Status      MaintenanceStatus   `json:"status"`

	LandlordNotes    *string    `json:"landlord_notes,omitempty"`
	ViewedByLandlord bool       `json:"viewed_by_landlord"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *MaintenanceRequest) GetID() string { return m.ID.String() }

// IsEditable reports whether the tenant may still edit the request or
// remove its images.
func (m *MaintenanceRequest) IsEditable() bool {
	return m.Status == MaintenancePending || m.Status == MaintenanceInProgress
}

// MaintenanceImage is a photo attached to a maintenance request.
type MaintenanceImage struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	ImageURL  string    `json:"image_url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
