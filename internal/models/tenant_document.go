package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantDocument is a tenant-uploaded document reference. The tenant
// manages their own documents; a landlord may list them while holding
// an active tenancy with that tenant.
type TenantDocument struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}
