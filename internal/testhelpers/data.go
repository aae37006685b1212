package testhelpers

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

// DefaultTestPassword is the plaintext behind every factory-created account.
const DefaultTestPassword = "P@ssword123"

var (
	testPasswordOnce sync.Once
	testPasswordHash string
)

// testPassword hashes DefaultTestPassword once. bcrypt at production cost
// takes around a second, so every test user shares the same hash.
func (h *TestHelper) testPassword() string {
	testPasswordOnce.Do(func() {
		hash, err := utils.HashPassword(DefaultTestPassword)
		require.NoError(h.T, err, "Failed to hash the shared test password")
		testPasswordHash = hash
	})
	return testPasswordHash
}

// UniquePhone generates a unique Nigerian mobile number for testing.
func UniquePhone() string {
	return fmt.Sprintf("%s%08d", utils.TestPhoneBase, rand.New(rand.NewSource(time.Now().UnixNano())).Int31n(1e8))
}

// UniqueEmail generates a unique throwaway address. The local part keeps
// the caller's prefix for grepping through test data, and the suffix keeps
// the deliverability checks happy.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d.%s", prefix, time.Now().UnixNano(), utils.TestEmailSuffix)
}

// UniqueUsername generates a unique username that stays inside the 30-char limit.
func UniqueUsername(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

// CreateTestLandlord creates and persists a landlord account.
func (h *TestHelper) CreateTestLandlord(ctx context.Context, prefix string) *models.User {
	return h.createTestUser(ctx, models.RoleLandlord, prefix)
}

// CreateTestTenant creates and persists a tenant account.
func (h *TestHelper) CreateTestTenant(ctx context.Context, prefix string) *models.User {
	return h.createTestUser(ctx, models.RoleTenant, prefix)
}

func (h *TestHelper) createTestUser(ctx context.Context, role models.RoleType, prefix string) *models.User {
	u := &models.User{
		ID:           uuid.New(),
		Username:     UniqueUsername(prefix),
		Email:        UniqueEmail(prefix),
		PasswordHash: h.testPassword(),
		Role:         role,
		FirstName:    "Test",
		LastName:     prefix,
		PhoneNumber:  utils.Ptr(UniquePhone()),
	}
	require.NoError(h.T, h.UserRepo.Create(ctx, u), "Failed to create test user")

	created, err := h.UserRepo.GetByID(ctx, u.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch user immediately after creation")
	return created
}

// CreateTestProperty creates and persists an available rent listing.
func (h *TestHelper) CreateTestProperty(ctx context.Context, landlordID uuid.UUID, title string) *models.Property {
	p := &models.Property{
		ID:               uuid.New(),
		LandlordID:       landlordID,
		Title:            title,
		Description:      title + " with a fitted kitchen and parking space.",
		Address:          "15 Admiralty Way",
		City:             "Lekki",
		State:            "lagos",
		PropertyType:     models.PropertyFlat,
		ListingType:      models.ListingRent,
		Bedrooms:         utils.Ptr(2),
		RentAmount:       decimal.NewFromInt(1_200_000),
		RentPeriodMonths: 12,
		IsAvailable:      true,
	}
	require.NoError(h.T, h.PropertyRepo.Create(ctx, p), "Failed to create test property")

	created, err := h.PropertyRepo.GetByID(ctx, p.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch property immediately after creation")
	return created
}

// CreateTestTenancy opens an active tenancy and flips the listing the way
// the accept/redeem transactions do.
func (h *TestHelper) CreateTestTenancy(ctx context.Context, tenantID, landlordID, propertyID uuid.UUID) *models.Tenancy {
	ten := &models.Tenancy{
		ID:         uuid.New(),
		TenantID:   tenantID,
		LandlordID: landlordID,
		PropertyID: propertyID,
		Status:     models.TenancyActive,
		StartDate:  time.Now().UTC().AddDate(0, -1, 0),
	}
	require.NoError(h.T, h.TenancyRepo.Create(ctx, ten), "Failed to create test tenancy")

	require.NoError(h.T, h.PropertyRepo.UpdateWithRetry(ctx, propertyID, func(p *models.Property) error {
		p.IsOccupied = true
		p.IsAvailable = false
		return nil
	}), "Failed to mark test property occupied")

	created, err := h.TenancyRepo.GetByID(ctx, ten.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch tenancy immediately after creation")
	return created
}

// CreateTestApplication files a pending application for a property.
func (h *TestHelper) CreateTestApplication(ctx context.Context, tenantID, propertyID uuid.UUID, message string) *models.TenancyApplication {
	a := &models.TenancyApplication{
		ID:         uuid.New(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		Status:     models.ApplicationPending,
	}
	if message != "" {
		a.Message = &message
	}
	require.NoError(h.T, h.ApplicationRepo.Create(ctx, a), "Failed to create test application")

	created, err := h.ApplicationRepo.GetByID(ctx, a.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch application immediately after creation")
	return created
}

// CreateTestInvitation mints an unused invitation link for a property.
func (h *TestHelper) CreateTestInvitation(ctx context.Context, landlordID, propertyID uuid.UUID, ttl time.Duration) *models.InvitationLink {
	l := &models.InvitationLink{
		ID:         uuid.New(),
		LandlordID: landlordID,
		PropertyID: propertyID,
		Token:      uuid.New(),
		ExpiresAt:  time.Now().UTC().Add(ttl),
	}
	require.NoError(h.T, h.InvitationRepo.Create(ctx, l), "Failed to create test invitation")
	return l
}

// CreateTestMaintenanceRequest raises a pending request on a tenancy.
func (h *TestHelper) CreateTestMaintenanceRequest(ctx context.Context, ten *models.Tenancy, title string, imageURLs []string) *models.MaintenanceRequest {
	m := &models.MaintenanceRequest{
		ID:          uuid.New(),
		TenancyID:   ten.ID,
		TenantID:    ten.TenantID,
		LandlordID:  ten.LandlordID,
		PropertyID:  ten.PropertyID,
		Title:       title,
		Description: title + ", please take a look.",
		Priority:    models.PriorityMedium,
		Status:      models.MaintenancePending,
	}
	require.NoError(h.T, h.MaintenanceRepo.CreateWithImages(ctx, m, imageURLs), "Failed to create test maintenance request")

	created, err := h.MaintenanceRepo.GetByID(ctx, m.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch maintenance request immediately after creation")
	return created
}
