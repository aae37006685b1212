package dtos

import (
	"time"

	"github.com/rentline/rental-service/internal/models"
)

// ----------------------
// Requests
// ----------------------

type CreateInvitationRequest struct {
	PropertyID  string  `json:"property_id" validate:"required,uuid4"`
	TenantEmail *string `json:"tenant_email,omitempty" validate:"omitempty,email"`
}

// RedeemInvitationRequest creates the tenant account and starts the
// tenancy in one call. MoveInDate defaults to today when omitted.
type RedeemInvitationRequest struct {
	Username    string     `json:"username" validate:"required,min=3,max=30"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8,max=72"`
	FirstName   string     `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string     `json:"last_name" validate:"required,min=1,max=100"`
	Gender      *string    `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	PhoneNumber *string    `json:"phone_number,omitempty" validate:"omitempty,e164"`
	MoveInDate  *time.Time `json:"move_in_date,omitempty"`
}

// ----------------------
// Responses
// ----------------------

// Invitation state is derived, never stored: a link is used, expired,
// or still valid.
type Invitation struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	Token       string    `json:"token"`
	TenantEmail *string   `json:"tenant_email,omitempty"`
	IsUsed      bool      `json:"is_used"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewInvitationFromModel(l models.InvitationLink) Invitation {
	state := "valid"
	switch {
	case l.IsUsed:
		state = "used"
	case l.IsExpired():
		state = "expired"
	}
	return Invitation{
		ID:          l.ID.String(),
		PropertyID:  l.PropertyID.String(),
		Token:       l.Token.String(),
		TenantEmail: l.TenantEmail,
		IsUsed:      l.IsUsed,
		State:       state,
		CreatedAt:   l.CreatedAt,
		ExpiresAt:   l.ExpiresAt,
	}
}

type RedeemInvitationResponse struct {
	Message string  `json:"message"`
	Tenancy Tenancy `json:"tenancy"`
}
