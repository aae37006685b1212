//go:build (dev_test || staging_test) && integration

package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/routes"
	"github.com/rentline/rental-service/internal/utils"
)

func tenancyURLFor(route, tenancyID string) string {
	return h.BaseURL + strings.Replace(route, "{tenancy_id}", tenancyID, 1)
}

// requestTermination posts one side of the termination handshake and
// requires the given status.
func requestTermination(t *testing.T, tenancyID, jwtString, platform, platformVal string, wantStatus int) *http.Response {
	req := h.BuildAuthRequest(http.MethodPost, tenancyURLFor(routes.TenancyRequestTermination, tenancyID), jwtString, nil, platform, platformVal)
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, wantStatus, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	return resp
}

func listTenancies(t *testing.T, route, query, jwtString, platform, platformVal string) []dtos.TenancyDetail {
	urlStr := h.BaseURL + route
	if query != "" {
		urlStr += "?" + query
	}
	req := h.BuildAuthRequest(http.MethodGet, urlStr, jwtString, nil, platform, platformVal)
	resp := h.DoRequest(req, http.DefaultClient)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Body: %s", h.ReadBody(resp))

	var items []dtos.TenancyDetail
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &items))
	return items
}

// ------------------------------------------------------------
// (A) The two-party termination handshake
// ------------------------------------------------------------
func TestTenancyTerminationHandshake(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "ten-landlord")
	defer deleteUserRows(ctx, landlord.ID)
	tenant := h.CreateTestTenant(ctx, "ten-tenant")
	defer deleteUserRows(ctx, tenant.ID)
	outsider := h.CreateTestTenant(ctx, "ten-outsider")
	defer deleteUserRows(ctx, outsider.ID)

	marker := "ten-" + uuid.NewString()[:8]
	prop := h.CreateTestProperty(ctx, landlord.ID, marker+" garden flat")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, prop.ID)

	tenancy := h.CreateTestTenancy(ctx, tenant.ID, landlord.ID, prop.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancies WHERE id=$1`, tenancy.ID)

	const (
		landlordIP = "203.0.113.90"
		adminIP    = "203.0.113.91"
	)
	tenantJWT := h.CreateMobileJWT(tenant.ID, models.RoleTenant, "ten-tenant-phone")
	outsiderJWT := h.CreateMobileJWT(outsider.ID, models.RoleTenant, "ten-outsider-phone")
	landlordJWT := h.CreateWebJWT(landlord.ID, models.RoleLandlord, landlordIP)

	// ── 1) Both parties can see the tenancy ────────────────────────
	mine := listTenancies(t, routes.TenanciesMine, "", tenantJWT, "android", "ten-tenant-phone")
	require.Len(t, mine, 1)
	require.Equal(t, tenancy.ID.String(), mine[0].ID)
	require.Equal(t, models.TenancyActive, mine[0].Status)
	require.NotNil(t, mine[0].Property)
	require.NotNil(t, mine[0].Landlord)
	require.Nil(t, mine[0].Tenant)
	require.NotNil(t, mine[0].LeaseEndDate)
	require.NotNil(t, mine[0].DaysRemaining)
	require.Greater(t, *mine[0].DaysRemaining, 0)

	theirs := listTenancies(t, routes.Tenancies, "", landlordJWT, "web", landlordIP)
	require.Len(t, theirs, 1)
	require.NotNil(t, theirs[0].Tenant)
	require.Nil(t, theirs[0].Landlord)
	require.Equal(t, tenant.Email, theirs[0].Tenant.Email)

	req := h.BuildAuthRequest(http.MethodGet, tenancyURLFor(routes.TenancyByID, tenancy.ID.String()), tenantJWT, nil, "android", "ten-tenant-phone")
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail dtos.TenancyDetail
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &detail))
	resp.Body.Close()
	require.NotNil(t, detail.Property)
	require.NotNil(t, detail.Tenant)
	require.NotNil(t, detail.Landlord)

	req = h.BuildAuthRequest(http.MethodGet, tenancyURLFor(routes.TenancyByID, tenancy.ID.String()), outsiderJWT, nil, "android", "ten-outsider-phone")
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	// ── 2) Tenant asks first ───────────────────────────────────────
	resp = requestTermination(t, tenancy.ID.String(), tenantJWT, "android", "ten-tenant-phone", http.StatusOK)
	var half dtos.Tenancy
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &half))
	resp.Body.Close()
	require.Equal(t, models.TenancyPendingTermination, half.Status)
	require.True(t, half.TenantTerminated)
	require.False(t, half.LandlordTerminated)
	require.Nil(t, half.TerminatedAt)

	// One signature does not free the unit.
	stillTaken, err := h.PropertyRepo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	require.True(t, stillTaken.IsOccupied)
	require.False(t, stillTaken.IsAvailable)

	// Asking twice from the same side changes nothing.
	resp = requestTermination(t, tenancy.ID.String(), tenantJWT, "android", "ten-tenant-phone", http.StatusOK)
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &half))
	resp.Body.Close()
	require.Equal(t, models.TenancyPendingTermination, half.Status)
	require.Nil(t, half.TerminatedAt)

	// An outsider has no say at all.
	resp = requestTermination(t, tenancy.ID.String(), outsiderJWT, "android", "ten-outsider-phone", http.StatusForbidden)
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	// ── 3) Landlord completes the handshake ────────────────────────
	resp = requestTermination(t, tenancy.ID.String(), landlordJWT, "web", landlordIP, http.StatusOK)
	var done dtos.Tenancy
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &done))
	resp.Body.Close()
	require.Equal(t, models.TenancyTerminated, done.Status)
	require.True(t, done.TenantTerminated)
	require.True(t, done.LandlordTerminated)
	require.NotNil(t, done.TerminatedAt)
	require.WithinDuration(t, time.Now(), *done.TerminatedAt, time.Minute)

	// --- repo read-back: the unit is back on the market
	freed, err := h.PropertyRepo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	require.False(t, freed.IsOccupied)
	require.True(t, freed.IsAvailable)

	page := searchPage(t, "search="+marker)
	require.Equal(t, 1, page.Total)

	// A finalized tenancy refuses further requests.
	resp = requestTermination(t, tenancy.ID.String(), landlordJWT, "web", landlordIP, http.StatusConflict)
	requireErrorCode(t, resp, utils.ErrCodeInvalidState)
	resp.Body.Close()

	// ── 4) The lists moved it to history ───────────────────────────
	require.Empty(t, listTenancies(t, routes.TenanciesMine, "", tenantJWT, "android", "ten-tenant-phone"))

	past := listTenancies(t, routes.TenanciesMine, "past=true", tenantJWT, "android", "ten-tenant-phone")
	require.Len(t, past, 1)
	require.Equal(t, models.TenancyTerminated, past[0].Status)

	pastTheirs := listTenancies(t, routes.Tenancies, "past=true", landlordJWT, "web", landlordIP)
	require.Len(t, pastTheirs, 1)

	// ── 5) Admin tucks it away ─────────────────────────────────────
	// The archive gate only reads the role claim, so any admin token
	// will do.
	adminJWT := h.CreateWebJWT(uuid.New(), models.RoleAdmin, adminIP)

	req = h.BuildAuthRequest(http.MethodPost, tenancyURLFor(routes.AdminTenancyArchive, tenancy.ID.String()), landlordJWT, nil, "web", landlordIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusForbidden, resp.StatusCode, "non-admin tokens stop at the archive gate")
	resp.Body.Close()

	req = h.BuildAuthRequest(http.MethodPost, tenancyURLFor(routes.AdminTenancyArchive, tenancy.ID.String()), adminJWT, nil, "web", adminIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusNoContent, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	resp.Body.Close()

	// --- repo read-back
	archived, err := h.TenancyRepo.GetByID(ctx, tenancy.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenancyArchived, archived.Status)

	// Archived rows still show up under past.
	past = listTenancies(t, routes.TenanciesMine, "past=true", tenantJWT, "android", "ten-tenant-phone")
	require.Len(t, past, 1)
	require.Equal(t, models.TenancyArchived, past[0].Status)

	// Archiving twice does not work.
	req = h.BuildAuthRequest(http.MethodPost, tenancyURLFor(routes.AdminTenancyArchive, tenancy.ID.String()), adminJWT, nil, "web", adminIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodeInvalidState)
	resp.Body.Close()
}

// ------------------------------------------------------------
// (B) Archive guards
// ------------------------------------------------------------
func TestTenancyArchiveRequiresTermination(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "arc-landlord")
	defer deleteUserRows(ctx, landlord.ID)
	tenant := h.CreateTestTenant(ctx, "arc-tenant")
	defer deleteUserRows(ctx, tenant.ID)

	prop := h.CreateTestProperty(ctx, landlord.ID, "Flat with a live lease")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, prop.ID)

	tenancy := h.CreateTestTenancy(ctx, tenant.ID, landlord.ID, prop.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancies WHERE id=$1`, tenancy.ID)

	const adminIP = "203.0.113.92"
	adminJWT := h.CreateWebJWT(uuid.New(), models.RoleAdmin, adminIP)

	// A live tenancy cannot be archived over anyone's head.
	req := h.BuildAuthRequest(http.MethodPost, tenancyURLFor(routes.AdminTenancyArchive, tenancy.ID.String()), adminJWT, nil, "web", adminIP)
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodeInvalidState)
	resp.Body.Close()

	live, err := h.TenancyRepo.GetByID(ctx, tenancy.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenancyActive, live.Status)

	// Unknown tenancies come back as such.
	req = h.BuildAuthRequest(http.MethodPost, tenancyURLFor(routes.AdminTenancyArchive, uuid.NewString()), adminJWT, nil, "web", adminIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodeNotFound)
	resp.Body.Close()
}
