//go:build (dev_test || staging_test) && integration

package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/routes"
	"github.com/rentline/rental-service/internal/utils"
)

func propertyURL(id string) string {
	return h.BaseURL + strings.Replace(routes.PropertyByID, "{property_id}", id, 1)
}

func marketplaceDetailURL(id string) string {
	return h.BaseURL + strings.Replace(routes.MarketplaceDetail, "{property_id}", id, 1)
}

// searchPage runs a public marketplace query and decodes the page.
func searchPage(t *testing.T, query string) *dtos.MarketplacePage {
	resp := doRequest(t, http.MethodGet, h.BaseURL+routes.Marketplace+"?"+query, nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page dtos.MarketplacePage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return &page
}

func pageIDs(page *dtos.MarketplacePage) []string {
	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ------------------------------------------------------------
// (A) Public search and filters
// ------------------------------------------------------------
func TestMarketplaceSearchAndFilters(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "mkt-landlord")
	defer deleteUserRows(ctx, landlord.ID)

	// Titles share a marker so the queries only ever see this test's rows.
	marker := "mkt-" + uuid.NewString()[:8]

	lekki := h.CreateTestProperty(ctx, landlord.ID, marker+" two-bed flat in Lekki")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, lekki.ID)

	abuja := &models.Property{
		ID:               uuid.New(),
		LandlordID:       landlord.ID,
		Title:            marker + " four-bed house in Maitama",
		Description:      "Detached house with a garden and boys' quarters.",
		Address:          "7 Panama Crescent",
		City:             "Maitama",
		State:            "abuja",
		PropertyType:     models.PropertyHouse,
		ListingType:      models.ListingRent,
		Bedrooms:         utils.Ptr(4),
		RentAmount:       decimal.NewFromInt(8_000_000),
		RentPeriodMonths: 12,
		IsAvailable:      true,
	}
	require.NoError(t, h.PropertyRepo.Create(ctx, abuja))
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, abuja.ID)

	occupied := h.CreateTestProperty(ctx, landlord.ID, marker+" studio already taken")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, occupied.ID)
	require.NoError(t, h.PropertyRepo.UpdateWithRetry(ctx, occupied.ID, func(p *models.Property) error {
		p.IsOccupied = true
		p.IsAvailable = false
		return nil
	}))

	t.Run("textSearchHidesUnavailable", func(t *testing.T) {
		h.T = t
		page := searchPage(t, "q="+marker)
		require.Equal(t, 2, page.Total)
		require.Len(t, page.Items, 2)

		ids := pageIDs(page)
		require.Contains(t, ids, lekki.ID.String())
		require.Contains(t, ids, abuja.ID.String())
		require.NotContains(t, ids, occupied.ID.String(), "an off-market listing must never surface in search")
	})

	t.Run("derivedDisplayFields", func(t *testing.T) {
		h.T = t
		page := searchPage(t, "q="+marker+"&state=abuja")
		require.Len(t, page.Items, 1)

		got := page.Items[0]
		require.Equal(t, "Abuja (FCT)", got.StateDisplay)
		require.Equal(t, "₦8000000.00", got.FormattedRent)
		require.Equal(t, "1 Year", got.RentPeriodDisplay)
	})

	t.Run("bedroomsAndPriceFilters", func(t *testing.T) {
		h.T = t
		page := searchPage(t, "q="+marker+"&min_bedrooms=3")
		require.Equal(t, []string{abuja.ID.String()}, pageIDs(page))

		page = searchPage(t, "q="+marker+"&max_price=2000000")
		require.Equal(t, []string{lekki.ID.String()}, pageIDs(page))

		page = searchPage(t, "q="+marker+"&min_price=5000000")
		require.Equal(t, []string{abuja.ID.String()}, pageIDs(page))
	})

	t.Run("pagination", func(t *testing.T) {
		h.T = t
		page1 := searchPage(t, "q="+marker+"&page=1&size=1")
		require.Equal(t, 2, page1.Total)
		require.Len(t, page1.Items, 1)

		page2 := searchPage(t, "q="+marker+"&page=2&size=1")
		require.Equal(t, 2, page2.Total)
		require.Len(t, page2.Items, 1)
		require.NotEqual(t, page1.Items[0].ID, page2.Items[0].ID)
	})

	t.Run("unknownFilterValuesRejected", func(t *testing.T) {
		h.T = t
		for _, query := range []string{"state=atlantis", "listing_type=lease", "property_type=castle", "min_bedrooms=-2"} {
			resp := doRequest(t, http.MethodGet, h.BaseURL+routes.Marketplace+"?"+query, nil, nil)
			resp.Body.Close()
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q should be rejected", query)
		}
	})
}

// ------------------------------------------------------------
// (B) Listing detail and landlord contact visibility
// ------------------------------------------------------------
func TestMarketplaceDetailLandlordContact(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "contact-landlord")
	defer deleteUserRows(ctx, landlord.ID)

	prop := h.CreateTestProperty(ctx, landlord.ID, "Detail flat with gallery")
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, prop.ID)
	defer h.DB.Exec(ctx, `DELETE FROM property_images WHERE property_id=$1`, prop.ID)

	for i, url := range []string{
		"https://cdn.rentline.test/detail-front.jpg",
		"https://cdn.rentline.test/detail-kitchen.jpg",
	} {
		require.NoError(t, h.ImageRepo.Create(ctx, &models.PropertyImage{
			ID:         uuid.New(),
			PropertyID: prop.ID,
			ImageURL:   url,
			Position:   i,
		}))
	}

	getDetail := func(t *testing.T) *dtos.PropertyDetail {
		resp := doRequest(t, http.MethodGet, marketplaceDetailURL(prop.ID.String()), nil, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var detail dtos.PropertyDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
		return &detail
	}

	// Phone numbers stay hidden until the landlord opts in.
	detail := getDetail(t)
	require.Len(t, detail.Images, 2)
	require.NotNil(t, detail.Landlord)
	require.Equal(t, landlord.FullName(), detail.Landlord.FullName)
	require.Equal(t, landlord.Email, detail.Landlord.Email)
	require.Nil(t, detail.Landlord.PhoneNumber)

	require.NoError(t, h.UserRepo.UpdateWithRetry(ctx, landlord.ID, func(u *models.User) error {
		u.ShowPhone = true
		return nil
	}))

	detail = getDetail(t)
	require.NotNil(t, detail.Landlord.PhoneNumber)
	require.Equal(t, *landlord.PhoneNumber, *detail.Landlord.PhoneNumber)

	// Unknown listing IDs are a clean 404.
	resp := doRequest(t, http.MethodGet, marketplaceDetailURL(uuid.NewString()), nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ------------------------------------------------------------
// (C) Landlord catalog CRUD over REST
// ------------------------------------------------------------
func TestLandlordPropertyCRUDFlow(t *testing.T) {
	h.T = t
	ctx := h.Ctx

	landlord := h.CreateTestLandlord(ctx, "crud-landlord")
	defer deleteUserRows(ctx, landlord.ID)

	const clientIP = "203.0.113.50"
	jwtString := h.CreateWebJWT(landlord.ID, models.RoleLandlord, clientIP)

	marker := "crud-" + uuid.NewString()[:8]

	// ── 1) Create ───────────────────────────────────────────
	createReq := dtos.CreatePropertyRequest{
		Title:            marker + " studio in Yaba",
		Description:      "Ground-floor studio close to the tech cluster.",
		Address:          "23 Herbert Macaulay Way",
		City:             "Yaba",
		State:            "lagos",
		PropertyType:     "apartment",
		ListingType:      "rent",
		Bedrooms:         utils.Ptr(1),
		RentAmount:       decimal.NewFromInt(650_000),
		RentPeriodMonths: 6,
	}
	body, err := json.Marshal(createReq)
	require.NoError(t, err)

	req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Properties, jwtString, body, "web", clientIP)
	resp := h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusCreated, resp.StatusCode, h.ReadBody(resp))

	var created dtos.Property
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &created))
	resp.Body.Close()
	defer h.DB.Exec(ctx, `DELETE FROM properties WHERE id=$1`, created.ID)

	require.Equal(t, landlord.ID.String(), created.LandlordID)
	require.True(t, created.IsAvailable, "new listings go straight on the market")
	require.False(t, created.IsOccupied)
	require.Equal(t, "₦650000.00", created.FormattedRent)
	require.Equal(t, "6 Months", created.RentPeriodDisplay)

	// ── 2) List mine ────────────────────────────────────────
	req = h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.Properties, jwtString, nil, "web", clientIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mine []dtos.Property
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &mine))
	resp.Body.Close()
	require.Len(t, mine, 1)
	require.Equal(t, created.ID, mine[0].ID)

	// ── 3) Owned detail carries no contact block ────────────
	req = h.BuildAuthRequest(http.MethodGet, propertyURL(created.ID), jwtString, nil, "web", clientIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ownedDetail dtos.PropertyDetail
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &ownedDetail))
	resp.Body.Close()
	require.Nil(t, ownedDetail.Landlord)

	// ── 4) Patch rent and pull it off the market ────────────
	newRent := decimal.NewFromInt(700_000)
	patch := dtos.PropertyPatchRequest{
		RentAmount:  &newRent,
		IsAvailable: utils.Ptr(false),
	}
	body, err = json.Marshal(patch)
	require.NoError(t, err)

	req = h.BuildAuthRequest(http.MethodPatch, propertyURL(created.ID), jwtString, body, "web", clientIP)
	resp = h.DoRequest(req, http.DefaultClient)
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))

	var updated dtos.Property
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &updated))
	resp.Body.Close()
	require.True(t, newRent.Equal(updated.RentAmount))
	require.False(t, updated.IsAvailable)

	page := searchPage(t, "q="+marker)
	require.Equal(t, 0, page.Total, "a listing pulled off the market must leave search")

	// ── 5) Gallery ──────────────────────────────────────────
	imagesURL := h.BaseURL + strings.Replace(routes.PropertyImages, "{property_id}", created.ID, 1)

	addImage := func(t *testing.T, imageURL string) dtos.PropertyImage {
		body, err := json.Marshal(dtos.AddPropertyImageRequest{ImageURL: imageURL})
		require.NoError(t, err)

		req := h.BuildAuthRequest(http.MethodPost, imagesURL, jwtString, body, "web", clientIP)
		resp := h.DoRequest(req, http.DefaultClient)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode, h.ReadBody(resp))

		var img dtos.PropertyImage
		require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &img))
		return img
	}

	first := addImage(t, "https://cdn.rentline.test/yaba-front.jpg")
	second := addImage(t, "https://cdn.rentline.test/yaba-kitchen.jpg")
	require.Equal(t, 0, first.Position)
	require.Equal(t, 1, second.Position)

	imageURL := h.BaseURL + strings.Replace(
		strings.Replace(routes.PropertyImageByID, "{property_id}", created.ID, 1),
		"{image_id}", second.ID, 1,
	)
	req = h.BuildAuthRequest(http.MethodDelete, imageURL, jwtString, nil, "web", clientIP)
	resp = h.DoRequest(req, http.DefaultClient)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// ── 6) Delete removes the listing and its gallery ───────
	req = h.BuildAuthRequest(http.MethodDelete, propertyURL(created.ID), jwtString, nil, "web", clientIP)
	resp = h.DoRequest(req, http.DefaultClient)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	gone, err := h.PropertyRepo.GetByID(ctx, uuid.MustParse(created.ID))
	require.NoError(t, err)
	require.Nil(t, gone)

	req = h.BuildAuthRequest(http.MethodGet, propertyURL(created.ID), jwtString, nil, "web", clientIP)
	resp = h.DoRequest(req, http.DefaultClient)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	t.Run("tenantRoleRejected", func(t *testing.T) {
		h.T = t
		tenant := h.CreateTestTenant(ctx, "crud-tenant")
		defer deleteUserRows(ctx, tenant.ID)

		tenantJWT := h.CreateWebJWT(tenant.ID, models.RoleTenant, clientIP)
		body, err := json.Marshal(createReq)
		require.NoError(t, err)

		req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Properties, tenantJWT, body, "web", clientIP)
		resp := h.DoRequest(req, http.DefaultClient)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("shortletNeedsWindow", func(t *testing.T) {
		h.T = t
		shortlet := createReq
		shortlet.Title = marker + " shortlet without dates"
		shortlet.ListingType = "shortlet"

		body, err := json.Marshal(shortlet)
		require.NoError(t, err)

		req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.Properties, jwtString, body, "web", clientIP)
		resp := h.DoRequest(req, http.DefaultClient)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
