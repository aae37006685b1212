//go:build (dev_test || staging_test) && integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/routes"
	"github.com/rentline/rental-service/internal/utils"
)

func landlordDashboard(t *testing.T, jwtString, clientIP string) *dtos.LandlordDashboardResponse {
	req := h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.DashboardLandlord, jwtString, nil, "web", clientIP)
	resp := h.DoRequest(req, http.DefaultClient)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Body: %s", h.ReadBody(resp))

	var out dtos.LandlordDashboardResponse
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &out))
	return &out
}

func tenantDashboard(t *testing.T, jwtString, deviceID string) *dtos.TenantDashboardResponse {
	req := h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.DashboardTenant, jwtString, nil, "android", deviceID)
	resp := h.DoRequest(req, http.DefaultClient)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Body: %s", h.ReadBody(resp))

	var out dtos.TenantDashboardResponse
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &out))
	return &out
}

// ------------------------------------------------------------
// (A) Home screen numbers for both roles
// ------------------------------------------------------------
func TestDashboardSummaries(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "dash-landlord")
	defer deleteUserRows(ctx, landlord.ID)
	tenant := h.CreateTestTenant(ctx, "dash-tenant")
	defer deleteUserRows(ctx, tenant.ID)
	applicant := h.CreateTestTenant(ctx, "dash-applicant")
	defer deleteUserRows(ctx, applicant.ID)

	home := h.CreateTestProperty(ctx, landlord.ID, "Duplex with a small garden")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, home.ID)
	vacant := h.CreateTestProperty(ctx, landlord.ID, "Studio flat above the shops")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, vacant.ID)

	tenancy := h.CreateTestTenancy(ctx, tenant.ID, landlord.ID, home.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancies WHERE id=$1`, tenancy.ID)
	defer h.DB.Exec(ctx, `DELETE FROM maintenance_requests WHERE tenancy_id=$1`, tenancy.ID)

	application := h.CreateTestApplication(ctx, applicant.ID, vacant.ID, "Keen to move in before the rains.")
	defer h.DB.Exec(ctx, `DELETE FROM tenancy_applications WHERE id=$1`, application.ID)

	maint := h.CreateTestMaintenanceRequest(ctx, tenancy, "Bathroom extractor fan rattles", nil)

	const landlordIP = "203.0.113.110"
	landlordJWT := h.CreateWebJWT(landlord.ID, models.RoleLandlord, landlordIP)
	tenantJWT := h.CreateMobileJWT(tenant.ID, models.RoleTenant, "dash-tenant-phone")
	applicantJWT := h.CreateMobileJWT(applicant.ID, models.RoleTenant, "dash-applicant-phone")

	// ── 1) Landlord summary reflects the portfolio ─────────────────
	summary := landlordDashboard(t, landlordJWT, landlordIP)
	require.Equal(t, 2, summary.TotalProperties)
	require.Equal(t, 1, summary.OccupiedProperties)
	require.Equal(t, 1, summary.VacantProperties)
	require.Equal(t, 1, summary.ActiveTenancies)
	require.Equal(t, 1, summary.PendingApplications)
	require.Equal(t, 1, summary.UnreadMaintenance)
	require.Equal(t, 1, summary.PendingMaintenance)

	// ── 2) Tenant summary carries the lease and open work ──────────
	me := tenantDashboard(t, tenantJWT, "dash-tenant-phone")
	require.NotNil(t, me.Tenancy)
	require.Equal(t, tenancy.ID.String(), me.Tenancy.ID)
	require.NotNil(t, me.Property)
	require.Equal(t, home.ID.String(), me.Property.ID)
	require.NotNil(t, me.Tenancy.LeaseEndDate)
	require.NotNil(t, me.Tenancy.DaysRemaining)
	require.Greater(t, *me.Tenancy.DaysRemaining, 0)
	require.Equal(t, 0, me.PendingApplications)
	require.Equal(t, 1, me.OpenMaintenance)

	// ── 3) An applicant without a tenancy sees only their queue ────
	waiting := tenantDashboard(t, applicantJWT, "dash-applicant-phone")
	require.Nil(t, waiting.Tenancy)
	require.Nil(t, waiting.Property)
	require.Equal(t, 1, waiting.PendingApplications)
	require.Equal(t, 0, waiting.OpenMaintenance)

	// ── 4) The numbers track reads and status changes ──────────────
	_ = getMaintenance(t, maint.ID.String(), landlordJWT, "web", landlordIP)

	body, err := json.Marshal(dtos.UpdateMaintenanceStatusRequest{Status: "in_progress"})
	require.NoError(t, err)
	req := h.BuildAuthRequest(http.MethodPatch, maintenanceURLFor(routes.MaintenanceStatus, maint.ID.String()), landlordJWT, body, "web", landlordIP)
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusOK, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	resp.Body.Close()

	summary = landlordDashboard(t, landlordJWT, landlordIP)
	require.Equal(t, 0, summary.UnreadMaintenance)
	require.Equal(t, 0, summary.PendingMaintenance)
	require.Equal(t, 1, summary.ActiveTenancies)

	// In-progress work still counts as open for the tenant.
	me = tenantDashboard(t, tenantJWT, "dash-tenant-phone")
	require.Equal(t, 1, me.OpenMaintenance)

	// ── 5) The dashboards are role-gated ───────────────────────────
	req = h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.DashboardLandlord, tenantJWT, nil, "android", "dash-tenant-phone")
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusForbidden, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	req = h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.DashboardTenant, landlordJWT, nil, "web", landlordIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusForbidden, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	// ── 6) Fresh accounts get an all-zero slate ────────────────────
	ghostLandlordJWT := h.CreateWebJWT(uuid.New(), models.RoleLandlord, landlordIP)
	blank := landlordDashboard(t, ghostLandlordJWT, landlordIP)
	require.Zero(t, blank.TotalProperties)
	require.Zero(t, blank.ActiveTenancies)
	require.Zero(t, blank.PendingApplications)
	require.Zero(t, blank.UnreadMaintenance)

	ghostTenantJWT := h.CreateMobileJWT(uuid.New(), models.RoleTenant, "dash-ghost-phone")
	empty := tenantDashboard(t, ghostTenantJWT, "dash-ghost-phone")
	require.Nil(t, empty.Tenancy)
	require.Nil(t, empty.Property)
	require.Zero(t, empty.PendingApplications)
	require.Zero(t, empty.OpenMaintenance)
}
