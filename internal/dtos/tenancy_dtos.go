package dtos

import (
	"time"

	"github.com/rentline/rental-service/internal/models"
)

// Tenancy DTO. Lease fields are derived from the property's rent
// period at read time; the base constructor leaves them unset for
// callers that do not have the property at hand.
type Tenancy struct {
	ID                 string               `json:"id"`
	TenantID           string               `json:"tenant_id"`
	LandlordID         string               `json:"landlord_id"`
	PropertyID         string               `json:"property_id"`
	ApplicationID      *string              `json:"application_id,omitempty"`
	Status             models.TenancyStatus `json:"status"`
	LandlordTerminated bool                 `json:"landlord_terminated"`
	TenantTerminated   bool                 `json:"tenant_terminated"`
	StartDate          time.Time            `json:"start_date"`
	LeaseEndDate       *time.Time           `json:"lease_end_date,omitempty"`
	DaysRemaining      *int                 `json:"days_remaining,omitempty"`
	TerminatedAt       *time.Time           `json:"terminated_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

func NewTenancyFromModel(t models.Tenancy) Tenancy {
	out := Tenancy{
		ID:                 t.ID.String(),
		TenantID:           t.TenantID.String(),
		LandlordID:         t.LandlordID.String(),
		PropertyID:         t.PropertyID.String(),
		Status:             t.Status,
		LandlordTerminated: t.LandlordTerminated,
		TenantTerminated:   t.TenantTerminated,
		StartDate:          t.StartDate,
		TerminatedAt:       t.TerminatedAt,
		CreatedAt:          t.CreatedAt,
	}
	if t.ApplicationID != nil {
		id := t.ApplicationID.String()
		out.ApplicationID = &id
	}
	return out
}

// NewTenancyWithLease fills in the derived lease window using the
// property's rent period.
func NewTenancyWithLease(t models.Tenancy, rentPeriodMonths int) Tenancy {
	out := NewTenancyFromModel(t)
	end := t.LeaseEndDate(rentPeriodMonths)
	days := t.DaysRemaining(rentPeriodMonths, time.Now())
	out.LeaseEndDate = &end
	out.DaysRemaining = &days
	return out
}

// TenancyDetail bundles the parties and the unit for detail views.
type TenancyDetail struct {
	Tenancy
	Property *Property `json:"property,omitempty"`
	Tenant   *User     `json:"tenant,omitempty"`
	Landlord *User     `json:"landlord,omitempty"`
}
