package models

import (
	"time"

	"github.com/google/uuid"
)

type TenancyStatus string

const (
	TenancyActive             TenancyStatus = "active"
	TenancyPendingTermination TenancyStatus = "pending_termination"
	TenancyTerminated         TenancyStatus = "terminated"
	TenancyArchived           TenancyStatus = "archived"
)

// Tenancy links a tenant to a property. Termination needs both sides:
// each party sets its own monotonic flag, and the tenancy is terminated
// exactly when both flags are set. Archiving is a manual admin step
// applied to terminated tenancies only.
type Tenancy struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	LandlordID    uuid.UUID  `json:"landlord_id"`
	PropertyID    uuid.UUID  `json:"property_id"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`

	Status             TenancyStatus `json:"status"`
	LandlordTerminated bool          `json:"landlord_terminated"`
	TenantTerminated   bool          `json:"tenant_terminated"`

	StartDate    time.Time  `json:"start_date"`
	TerminatedAt *time.Time `json:"terminated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tenancy) GetID() string { return t.ID.String() }

// IsFinalized reports whether the tenancy has reached a terminal state.
func (t *Tenancy) IsFinalized() bool {
	return t.Status == TenancyTerminated || t.Status == TenancyArchived
}

// RequestTermination records one party's intent to end the tenancy and
// recomputes the status. Returns false when the call changes nothing,
// i.e. the same party asks again. Callers must reject finalized
// tenancies before calling.
func (t *Tenancy) RequestTermination(by RoleType, now time.Time) bool {
	switch by {
	case RoleLandlord:
		if t.LandlordTerminated {
			return false
		}
		t.LandlordTerminated = true
	case RoleTenant:
		if t.TenantTerminated {
			return false
		}
		t.TenantTerminated = true
	default:
		return false
	}
	if t.LandlordTerminated && t.TenantTerminated {
		t.Status = TenancyTerminated
		t.TerminatedAt = &now
	} else {
		t.Status = TenancyPendingTermination
	}
	return true
}

// LeaseEndDate derives the lease end from the start date and the
// property's rent period. Never stored.
func (t *Tenancy) LeaseEndDate(rentPeriodMonths int) time.Time {
	return t.StartDate.AddDate(0, rentPeriodMonths, 0)
}

// DaysRemaining counts whole days until the lease end, floored at zero.
func (t *Tenancy) DaysRemaining(rentPeriodMonths int, now time.Time) int {
	days := int(t.LeaseEndDate(rentPeriodMonths).Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
