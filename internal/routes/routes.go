package routes

const (
	// Health
	Health = "/health"

	// ───────────────────────────────
	// Auth
	// ───────────────────────────────
	AuthRegister     = "/api/v1/auth/register"
	AuthLogin        = "/api/v1/auth/login"
	AuthRefreshToken = "/api/v1/auth/refresh_token"
	AuthLogout       = "/api/v1/auth/logout"

	// ───────────────────────────────
	// Account (any signed-in role)
	// ───────────────────────────────
	AccountProfile        = "/api/v1/account/profile"
	AccountProfilePicture = "/api/v1/account/profile/picture"
	AccountPassword       = "/api/v1/account/password"
	AccountDocuments      = "/api/v1/account/documents"
	AccountDocumentByID   = "/api/v1/account/documents/{document_id}"
	TenantDocuments       = "/api/v1/account/tenants/{tenant_id}/documents"

	// ───────────────────────────────
	// Landlord catalog
	// ───────────────────────────────
	Properties        = "/api/v1/properties"
	PropertyByID      = "/api/v1/properties/{property_id}"
	PropertyImages    = "/api/v1/properties/{property_id}/images"
	PropertyImageByID = "/api/v1/properties/{property_id}/images/{image_id}"

	// ───────────────────────────────
	// Public marketplace
	// ───────────────────────────────
	Marketplace       = "/api/v1/marketplace"
	MarketplaceDetail = "/api/v1/marketplace/{property_id}"

	// ───────────────────────────────
	// Invitations
	// ───────────────────────────────
	Invitations           = "/api/v1/invitations"
	InvitationByID        = "/api/v1/invitations/{invitation_id}"
	InvitationByToken     = "/api/v1/invitations/token/{token}"
	InvitationTokenRedeem = "/api/v1/invitations/token/{token}/redeem"

	// ───────────────────────────────
	// Applications
	// ───────────────────────────────
	Applications         = "/api/v1/applications"
	ApplicationsMine     = "/api/v1/applications/mine"
	ApplicationsIncoming = "/api/v1/applications/incoming"
	ApplicationByID      = "/api/v1/applications/{application_id}"
	ApplicationAccept    = "/api/v1/applications/{application_id}/accept"
	ApplicationReject    = "/api/v1/applications/{application_id}/reject"
	ApplicationReply     = "/api/v1/applications/{application_id}/reply"
	ApplicationWithdraw  = "/api/v1/applications/{application_id}/withdraw"

	// ───────────────────────────────
	// Tenancies
	// ───────────────────────────────
	Tenancies                 = "/api/v1/tenancies"
	TenanciesMine             = "/api/v1/tenancies/mine"
	TenancyByID               = "/api/v1/tenancies/{tenancy_id}"
	TenancyRequestTermination = "/api/v1/tenancies/{tenancy_id}/request_termination"

	// ───────────────────────────────
	// Maintenance
	// ───────────────────────────────
	Maintenance            = "/api/v1/maintenance"
	MaintenanceMine        = "/api/v1/maintenance/mine"
	MaintenanceUnreadCount = "/api/v1/maintenance/unread_count"
	MaintenanceByID        = "/api/v1/maintenance/{request_id}"
	MaintenanceStatus      = "/api/v1/maintenance/{request_id}/status"
	MaintenanceImageByID   = "/api/v1/maintenance/{request_id}/images/{image_id}"

	// ───────────────────────────────
	// Dashboards
	// ───────────────────────────────
	DashboardLandlord = "/api/v1/dashboard/landlord"
	DashboardTenant   = "/api/v1/dashboard/tenant"

	// ───────────────────────────────
	// Admin
	// ───────────────────────────────
	AdminTenancyArchive = "/api/v1/admin/tenancies/{tenancy_id}/archive"
)
