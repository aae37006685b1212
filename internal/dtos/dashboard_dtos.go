package dtos

// ----------------------
// Landlord
// ----------------------

type LandlordDashboardResponse struct {
	TotalProperties     int `json:"total_properties"`
	OccupiedProperties  int `json:"occupied_properties"`
	VacantProperties    int `json:"vacant_properties"`
	ActiveTenancies     int `json:"active_tenancies"`
	PendingApplications int `json:"pending_applications"`
	UnreadMaintenance   int `json:"unread_maintenance"`
	PendingMaintenance  int `json:"pending_maintenance"`
}

// ----------------------
// Tenant
// ----------------------

type TenantDashboardResponse struct {
	Tenancy             *Tenancy  `json:"tenancy,omitempty"`
	Property            *Property `json:"property,omitempty"`
	PendingApplications int       `json:"pending_applications"`
	OpenMaintenance     int       `json:"open_maintenance"`
}
