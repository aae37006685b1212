package dtos

import (
	"time"

	"github.com/rentline/rental-service/internal/models"
)

// ----------------------
// Requests
// ----------------------

// CreateMaintenanceRequest has no cap on image_urls here on purpose:
// extras are dropped server-side with a warning instead of rejecting
// the whole request.
type CreateMaintenanceRequest struct {
	PropertyID  string   `json:"property_id" validate:"required,uuid4"`
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"required"`
	Priority    *string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high emergency"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// ----------------------------------------------------------------------
// MaintenancePatchRequest
//   - All fields as pointers, so that "null" or omission => no update
//   - ImageURLs are additions, subject to the same cap as create.
//
// ----------------------------------------------------------------------
type MaintenancePatchRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Priority    *string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high emergency"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

type UpdateMaintenanceStatusRequest struct {
	Status        string  `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
	LandlordNotes *string `json:"landlord_notes,omitempty" validate:"omitempty,max=2000"`
}

// ----------------------
// Responses
// ----------------------

type MaintenanceRequest struct {
	ID               string                     `json:"id"`
	TenancyID        string                     `json:"tenancy_id"`
	TenantID         string                     `json:"tenant_id"`
	LandlordID       string                     `json:"landlord_id"`
	PropertyID       string                     `json:"property_id"`
	Title            string                     `json:"title"`
	Description      string                     `json:"description"`
	Priority         models.MaintenancePriority `json:"priority"`
	Status           models.MaintenanceStatus   `json:"status"`
	LandlordNotes    *string                    `json:"landlord_notes,omitempty"`
	ViewedByLandlord bool                       `json:"viewed_by_landlord"`
	CompletedAt      *time.Time                 `json:"completed_at,omitempty"`
	Images           []MaintenanceImage         `json:"images,omitempty"`
	Warning          string                     `json:"warning,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

func NewMaintenanceRequestFromModel(m models.MaintenanceRequest) MaintenanceRequest {
	return MaintenanceRequest{
		ID:               m.ID.String(),
		TenancyID:        m.TenancyID.String(),
		TenantID:         m.TenantID.String(),
		LandlordID:       m.LandlordID.String(),
		PropertyID:       m.PropertyID.String(),
		Title:            m.Title,
		Description:      m.Description,
		Priority:         m.Priority,
		Status:           m.Status,
		LandlordNotes:    m.LandlordNotes,
		ViewedByLandlord: m.ViewedByLandlord,
		CompletedAt:      m.CompletedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type MaintenanceImage struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMaintenanceImageFromModel(img models.MaintenanceImage) MaintenanceImage {
	return MaintenanceImage{
		ID:        img.ID.String(),
		ImageURL:  img.ImageURL,
		Position:  img.Position,
		CreatedAt: img.CreatedAt,
	}
}

// MaintenanceDetail adds the unit and the reporter for the landlord
// detail view.
type MaintenanceDetail struct {
	MaintenanceRequest
	Property *Property `json:"property,omitempty"`
	Tenant   *User     `json:"tenant,omitempty"`
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
