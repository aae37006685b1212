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

func applicationURLFor(route, applicationID string) string {
	return h.BaseURL + strings.Replace(route, "{application_id}", applicationID, 1)
}

// applyForProperty submits an application from a mobile tenant session and
// requires it to be created.
func applyForProperty(t *testing.T, jwtString, deviceID, propertyID string, message *string) *dtos.Application {
	body, err := json.Marshal(dtos.ApplyRequest{PropertyID: propertyID, Message: message})
	require.NoError(t, err)

	req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Applications, jwtString, body, "android", deviceID)
	resp := h.DoRequest(req, http.DefaultClient)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "Body: %s", h.ReadBody(resp))

	var a dtos.Application
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &a))
	return &a
}

// applyExpectError submits an application and requires the given refusal.
func applyExpectError(t *testing.T, jwtString, deviceID, propertyID string, wantStatus int, wantCode string) {
	body, err := json.Marshal(dtos.ApplyRequest{PropertyID: propertyID})
	require.NoError(t, err)

	req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Applications, jwtString, body, "android", deviceID)
	resp := h.DoRequest(req, http.DefaultClient)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	requireErrorCode(t, resp, wantCode)
}

// applicationAction fires one of the POST actions on an application and
// requires the given status. The body is left readable for the caller.
func applicationAction(t *testing.T, route, applicationID, jwtString, platform, platformVal string, body []byte, wantStatus int) *http.Response {
	req := h.BuildAuthRequest(http.MethodPost, applicationURLFor(route, applicationID), jwtString, body, platform, platformVal)
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, wantStatus, resp.StatusCode, "Body: %s", h.ReadBody(resp))
	return resp
}

func listApplications(t *testing.T, route, jwtString, platform, platformVal string) []dtos.ApplicationDetail {
	req := h.BuildAuthRequest(http.MethodGet, h.BaseURL+route, jwtString, nil, platform, platformVal)
	resp := h.DoRequest(req, http.DefaultClient)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "Body: %s", h.ReadBody(resp))

	var items []dtos.ApplicationDetail
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &items))
	return items
}

// ------------------------------------------------------------
// (A) Review queue, reply, accept cascade
// ------------------------------------------------------------
func TestApplicationReviewAndAcceptFlow(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "app-landlord")
	defer deleteUserRows(ctx, landlord.ID)
	first := h.CreateTestTenant(ctx, "app-first")
	defer deleteUserRows(ctx, first.ID)
	rival := h.CreateTestTenant(ctx, "app-rival")
	defer deleteUserRows(ctx, rival.ID)

	marker := "app-" + uuid.NewString()[:8]
	prop := h.CreateTestProperty(ctx, landlord.ID, marker+" two bedroom flat")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, prop.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancy_applications WHERE property_id=$1`, prop.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancies WHERE property_id=$1`, prop.ID)

	spare := h.CreateTestProperty(ctx, landlord.ID, marker+" spare mini flat")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, spare.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancy_applications WHERE property_id=$1`, spare.ID)

	const landlordIP = "203.0.113.77"
	firstJWT := h.CreateMobileJWT(first.ID, models.RoleTenant, "first-tenant-phone")
	rivalJWT := h.CreateMobileJWT(rival.ID, models.RoleTenant, "rival-tenant-phone")
	landlordJWT := h.CreateWebJWT(landlord.ID, models.RoleLandlord, landlordIP)

	// ── 1) Both tenants apply ──────────────────────────────────────
	msg := "My family of three is relocating to Lekki in June."
	firstApp := applyForProperty(t, firstJWT, "first-tenant-phone", prop.ID.String(), &msg)
	require.Equal(t, models.ApplicationPending, firstApp.Status)
	require.Equal(t, first.ID.String(), firstApp.TenantID)
	require.Equal(t, prop.ID.String(), firstApp.PropertyID)
	require.NotNil(t, firstApp.Message)
	require.Equal(t, msg, *firstApp.Message)

	// --- repo read-back
	stored, err := h.ApplicationRepo.GetByID(ctx, uuid.MustParse(firstApp.ID))
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, models.ApplicationPending, stored.Status)

	// A second application while the first is still open is refused.
	applyExpectError(t, firstJWT, "first-tenant-phone", prop.ID.String(),
		http.StatusConflict, utils.ErrCodeConflict)

	rivalApp := applyForProperty(t, rivalJWT, "rival-tenant-phone", prop.ID.String(), nil)

	// ── 2) Landlord reviews the queue ──────────────────────────────
	incoming := listApplications(t, routes.ApplicationsIncoming, landlordJWT, "web", landlordIP)
	require.Len(t, incoming, 2)
	// Newest first, each with the applicant and the unit attached.
	require.Equal(t, rivalApp.ID, incoming[0].ID)
	require.Equal(t, firstApp.ID, incoming[1].ID)
	for _, item := range incoming {
		require.NotNil(t, item.Property)
		require.NotNil(t, item.Tenant)
		require.Equal(t, prop.ID.String(), item.Property.ID)
	}
	require.Equal(t, first.Email, incoming[1].Tenant.Email)

	// The same queue scoped to one unit.
	scoped := listApplications(t, routes.ApplicationsIncoming+"?property_id="+prop.ID.String(), landlordJWT, "web", landlordIP)
	require.Len(t, scoped, 2)
	require.Empty(t, listApplications(t, routes.ApplicationsIncoming+"?property_id="+spare.ID.String(), landlordJWT, "web", landlordIP))

	// Scoping only works on your own units.
	strangerJWT := h.CreateWebJWT(uuid.New(), models.RoleLandlord, landlordIP)
	req := h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.ApplicationsIncoming+"?property_id="+prop.ID.String(), strangerJWT, nil, "web", landlordIP)
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	req = h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.ApplicationsIncoming+"?property_id=oneroom", landlordJWT, nil, "web", landlordIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodeInvalidPayload)
	resp.Body.Close()

	// ── 3) Reply without settling ──────────────────────────────────
	note := "Is the first of next month workable for you?"
	replyBody, err := json.Marshal(dtos.ReplyRequest{Reply: note})
	require.NoError(t, err)
	resp = applicationAction(t, routes.ApplicationReply, firstApp.ID, landlordJWT, "web", landlordIP, replyBody, http.StatusOK)
	var replied dtos.Application
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &replied))
	resp.Body.Close()
	require.Equal(t, models.ApplicationPending, replied.Status)
	require.NotNil(t, replied.LandlordReply)
	require.Equal(t, note, *replied.LandlordReply)

	// The tenant sees the note on their own list.
	mine := listApplications(t, routes.ApplicationsMine, firstJWT, "android", "first-tenant-phone")
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Property)
	require.Nil(t, mine[0].Tenant)
	require.NotNil(t, mine[0].LandlordReply)
	require.Equal(t, note, *mine[0].LandlordReply)

	// ── 4) Cross-party access is refused ───────────────────────────
	req = h.BuildAuthRequest(http.MethodGet, applicationURLFor(routes.ApplicationByID, firstApp.ID),
		rivalJWT, nil, "android", "rival-tenant-phone")
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	// ── 5) Accept the first applicant ──────────────────────────────
	resp = applicationAction(t, routes.ApplicationAccept, firstApp.ID, landlordJWT, "web", landlordIP, nil, http.StatusCreated)
	var tenancy dtos.Tenancy
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &tenancy))
	resp.Body.Close()
	require.Equal(t, models.TenancyActive, tenancy.Status)
	require.Equal(t, first.ID.String(), tenancy.TenantID)
	require.Equal(t, landlord.ID.String(), tenancy.LandlordID)
	require.Equal(t, prop.ID.String(), tenancy.PropertyID)
	require.NotNil(t, tenancy.ApplicationID)
	require.Equal(t, firstApp.ID, *tenancy.ApplicationID)
	// No start date in the body means the lease starts now.
	require.WithinDuration(t, time.Now(), tenancy.StartDate, time.Minute)

	// --- repo read-back: the accept transaction touched three tables
	flipped, err := h.PropertyRepo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	require.NotNil(t, flipped)
	require.True(t, flipped.IsOccupied)
	require.False(t, flipped.IsAvailable)

	acceptedRow, err := h.ApplicationRepo.GetByID(ctx, uuid.MustParse(firstApp.ID))
	require.NoError(t, err)
	require.Equal(t, models.ApplicationAccepted, acceptedRow.Status)

	rivalRow, err := h.ApplicationRepo.GetByID(ctx, uuid.MustParse(rivalApp.ID))
	require.NoError(t, err)
	require.Equal(t, models.ApplicationRejected, rivalRow.Status, "rival applications are rejected in the same commit")

	// The unit dropped off the public marketplace.
	page := searchPage(t, "search="+marker+"+two+bedroom")
	require.Zero(t, page.Total)

	// ── 6) The settled queue stays settled ─────────────────────────
	resp = applicationAction(t, routes.ApplicationAccept, rivalApp.ID, landlordJWT, "web", landlordIP, nil, http.StatusConflict)
	requireErrorCode(t, resp, utils.ErrCodeInvalidState)
	resp.Body.Close()

	resp = applicationAction(t, routes.ApplicationReject, firstApp.ID, landlordJWT, "web", landlordIP, nil, http.StatusConflict)
	requireErrorCode(t, resp, utils.ErrCodeInvalidState)
	resp.Body.Close()

	// ── 7) The tenancy blocks further moves ────────────────────────
	// The sitting tenant cannot shop for another unit.
	applyExpectError(t, firstJWT, "first-tenant-phone", spare.ID.String(),
		http.StatusConflict, utils.ErrCodeConflict)

	// The losing rival cannot reapply to a unit that left the market.
	applyExpectError(t, rivalJWT, "rival-tenant-phone", prop.ID.String(),
		http.StatusConflict, utils.ErrCodeInvalidState)

	// The landlord cannot delete a unit with a sitting tenant.
	req = h.BuildAuthRequest(http.MethodDelete, propertyURL(prop.ID.String()), landlordJWT, nil, "web", landlordIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	requireErrorCode(t, resp, utils.ErrCodeConflict)
	resp.Body.Close()

	// The rival is still free to court the spare unit.
	spareApp := applyForProperty(t, rivalJWT, "rival-tenant-phone", spare.ID.String(), nil)
	require.Equal(t, models.ApplicationPending, spareApp.Status)
}

// ------------------------------------------------------------
// (B) Withdraw, reapply, reject with a note
// ------------------------------------------------------------
func TestApplicationWithdrawAndReapplyFlow(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "rw-landlord")
	defer deleteUserRows(ctx, landlord.ID)
	tenant := h.CreateTestTenant(ctx, "rw-tenant")
	defer deleteUserRows(ctx, tenant.ID)

	prop := h.CreateTestProperty(ctx, landlord.ID, "Self contain near the campus gate")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, prop.ID)
	defer h.DB.Exec(ctx, `DELETE FROM tenancy_applications WHERE property_id=$1`, prop.ID)

	const landlordIP = "203.0.113.78"
	tenantJWT := h.CreateMobileJWT(tenant.ID, models.RoleTenant, "rw-tenant-phone")
	landlordJWT := h.CreateWebJWT(landlord.ID, models.RoleLandlord, landlordIP)

	// ── 1) Apply, then think better of it ──────────────────────────
	msg := "Final year student, single occupant."
	app := applyForProperty(t, tenantJWT, "rw-tenant-phone", prop.ID.String(), &msg)

	resp := applicationAction(t, routes.ApplicationWithdraw, app.ID, tenantJWT, "android", "rw-tenant-phone", nil, http.StatusOK)
	var action dtos.ApplicationActionResponse
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &action))
	resp.Body.Close()
	require.Equal(t, "Application withdrawn", action.Message)

	// --- repo read-back
	row, err := h.ApplicationRepo.GetByID(ctx, uuid.MustParse(app.ID))
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, models.ApplicationWithdrawn, row.Status)

	// Withdrawing twice does not work.
	resp = applicationAction(t, routes.ApplicationWithdraw, app.ID, tenantJWT, "android", "rw-tenant-phone", nil, http.StatusConflict)
	requireErrorCode(t, resp, utils.ErrCodeInvalidState)
	resp.Body.Close()

	// Neither does withdrawing somebody else's application.
	resp = applicationAction(t, routes.ApplicationWithdraw, app.ID, landlordJWT, "web", landlordIP, nil, http.StatusForbidden)
	requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	resp.Body.Close()

	// ── 2) Reapplying reuses the settled row ───────────────────────
	second := "I have sorted out my budget now."
	again := applyForProperty(t, tenantJWT, "rw-tenant-phone", prop.ID.String(), &second)
	require.Equal(t, app.ID, again.ID, "reapplying should reuse the same application row")
	require.Equal(t, models.ApplicationPending, again.Status)
	require.Nil(t, again.LandlordReply)
	require.NotNil(t, again.Message)
	require.Equal(t, second, *again.Message)

	// ── 3) Landlord rejects with a note ────────────────────────────
	rejectBody, err := json.Marshal(dtos.RejectApplicationRequest{
		Reply: utils.Ptr("  The unit is reserved for postgraduates.  "),
	})
	require.NoError(t, err)
	resp = applicationAction(t, routes.ApplicationReject, app.ID, landlordJWT, "web", landlordIP, rejectBody, http.StatusOK)
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &action))
	resp.Body.Close()
	require.Equal(t, "Application rejected", action.Message)

	// --- repo read-back: the note is stored trimmed
	row, err = h.ApplicationRepo.GetByID(ctx, uuid.MustParse(app.ID))
	require.NoError(t, err)
	require.Equal(t, models.ApplicationRejected, row.Status)
	require.NotNil(t, row.LandlordReply)
	require.Equal(t, "The unit is reserved for postgraduates.", *row.LandlordReply)

	// ── 4) A rejection is not the end of the road ──────────────────
	third := applyForProperty(t, tenantJWT, "rw-tenant-phone", prop.ID.String(), nil)
	require.Equal(t, app.ID, third.ID)
	require.Equal(t, models.ApplicationPending, third.Status)
	require.Nil(t, third.LandlordReply)
	require.Nil(t, third.Message)
}

// ------------------------------------------------------------
// (C) Refusals on the way in
// ------------------------------------------------------------
func TestApplicationApplyRefusals(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "ref-landlord")
	defer deleteUserRows(ctx, landlord.ID)
	tenant := h.CreateTestTenant(ctx, "ref-tenant")
	defer deleteUserRows(ctx, tenant.ID)

	prop := h.CreateTestProperty(ctx, landlord.ID, "Paused duplex listing")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, prop.ID)

	tenantJWT := h.CreateMobileJWT(tenant.ID, models.RoleTenant, "ref-tenant-phone")

	t.Run("unknownListing", func(t *testing.T) {
		h.T = t
		applyExpectError(t, tenantJWT, "ref-tenant-phone", uuid.NewString(),
			http.StatusNotFound, utils.ErrCodeNotFound)
	})

	t.Run("pausedListing", func(t *testing.T) {
		h.T = t
		require.NoError(t, h.PropertyRepo.UpdateWithRetry(ctx, prop.ID, func(p *models.Property) error {
			p.IsAvailable = false
			return nil
		}))
		applyExpectError(t, tenantJWT, "ref-tenant-phone", prop.ID.String(),
			http.StatusConflict, utils.ErrCodeInvalidState)

		require.NoError(t, h.PropertyRepo.UpdateWithRetry(ctx, prop.ID, func(p *models.Property) error {
			p.IsAvailable = true
			return nil
		}))
	})

	t.Run("ownListing", func(t *testing.T) {
		h.T = t
		// The landlord needs a tenant hat to reach the endpoint at all,
		// so the refusal for self-dealing comes from the role check.
		landlordJWT := h.CreateMobileJWT(landlord.ID, models.RoleLandlord, "ref-landlord-phone")
		body, err := json.Marshal(dtos.ApplyRequest{PropertyID: prop.ID.String()})
		require.NoError(t, err)
		req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Applications, landlordJWT, body, "android", "ref-landlord-phone")
		resp := h.DoRequest(req, http.DefaultClient)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		requireErrorCode(t, resp, utils.ErrCodePermissionDenied)
	})

	t.Run("malformedPropertyID", func(t *testing.T) {
		h.T = t
		body, err := json.Marshal(map[string]string{"property_id": "not-a-uuid"})
		require.NoError(t, err)
		req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Applications, tenantJWT, body, "android", "ref-tenant-phone")
		resp := h.DoRequest(req, http.DefaultClient)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireErrorCode(t, resp, utils.ErrCodeValidation)
	})
}
