package dtos

import (
	"time"

	"github.com/rentline/rental-service/internal/models"
)

// ----------------------
// Requests
// ----------------------

type ApplyRequest struct {
	PropertyID string  `json:"property_id" validate:"required,uuid4"`
	Message    *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

type AcceptApplicationRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
}

type RejectApplicationRequest struct {
	Reply *string `json:"reply,omitempty" validate:"omitempty,max=2000"`
}

type ReplyRequest struct {
	Reply string `json:"reply" validate:"required,min=1,max=2000"`
}

// ----------------------
// Responses
// ----------------------

type Application struct {
	ID            string                   `json:"id"`
	TenantID      string                   `json:"tenant_id"`
	PropertyID    string                   `json:"property_id"`
	Status        models.ApplicationStatus `json:"status"`
	Message       *string                  `json:"message,omitempty"`
	LandlordReply *string                  `json:"landlord_reply,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

func NewApplicationFromModel(a models.TenancyApplication) Application {
	return Application{
		ID:            a.ID.String(),
		TenantID:      a.TenantID.String(),
		PropertyID:    a.PropertyID.String(),
		Status:        a.Status,
		Message:       a.Message,
		LandlordReply: a.LandlordReply,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ApplicationDetail enriches an application for list and detail
// views: tenants get the property, landlords get the applicant.
type ApplicationDetail struct {
	Application
	Property *Property `json:"property,omitempty"`
	Tenant   *User     `json:"tenant,omitempty"`
}

type ApplicationActionResponse struct {
	Message string `json:"message"`
}
