package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationLink is a single-use tenant invitation for one property.
// A link is redeemable while it is unused and not yet expired.
type InvitationLink struct {
	ID          uuid.UUID `json:"id"`
	LandlordID  uuid.UUID `json:"landlord_id"`
	PropertyID  uuid.UUID `json:"property_id"`
	Token       uuid.UUID `json:"token"`
	TenantEmail *string   `json:"tenant_email,omitempty"`
	IsUsed      bool      `json:"is_used"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (l *InvitationLink) IsExpired() bool {
	return time.Now().After(l.ExpiresAt)
}

// IsValid reports whether the link can still be redeemed.
func (l *InvitationLink) IsValid() bool {
	return !l.IsUsed && !l.IsExpired()
}
