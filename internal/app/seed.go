package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

// Fixed IDs so repeated boots recognise their own seed data.
var (
	seedAdminID    = uuid.MustParse("11111111-2222-3333-4444-555555555555")
	seedLandlordID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	seedTenantID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")

	seedListingLekkiID    = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	seedListingGwarinpaID = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	seedPropertyYabaID    = uuid.MustParse("66666666-6666-6666-6666-666666666666")

	seedTenancyID     = uuid.MustParse("77777777-7777-7777-7777-777777777777")
	seedMaintenanceID = uuid.MustParse("88888888-8888-8888-8888-888888888888")
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

/* ------------------------------------------------------------------
   Seed a default admin account
------------------------------------------------------------------ */
func SeedDefaultAdmin(userRepo repositories.UserRepository) error {
	ctx := context.Background()

	existing, err := userRepo.GetByUsername(ctx, "seedadmin")
	if err != nil {
		return fmt.Errorf("error checking for existing admin: %w", err)
	}
	if existing != nil {
		utils.Logger.Infof("Default admin already exists (username=%s); skipping seed.", existing.Username)
		return nil
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte("P@ssword123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to bcrypt-hash default admin password: %w", err)
	}

	admin := &models.User{
		ID:           seedAdminID,
		Username:     "seedadmin",
		Email:        "admin@rentline.ng",
		PasswordHash: string(hashedPass),
		Role:         models.RoleAdmin,
		FirstName:    "Seed",
		LastName:     "Admin",
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Default admin already present (id=%s); skipping.", admin.ID)
			return nil
		}
		return fmt.Errorf("failed to insert default admin: %w", err)
	}

	utils.Logger.Infof("Successfully seeded default admin (ID=%s, username=%s).", seedAdminID, admin.Username)
	return nil
}

/* ------------------------------------------------------------------
   Seed a demo landlord and a demo tenant (test/demo purposes only)
------------------------------------------------------------------ */
func seedDemoUsersIfNeeded(ctx context.Context, userRepo repositories.UserRepository) error {
	hashedPass, err := bcrypt.GenerateFromPassword([]byte("P@ssword123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to bcrypt-hash demo password: %w", err)
	}

	landlord := &models.User{
		ID:           seedLandlordID,
		Username:     "demolandlord",
		Email:        "landlord@rentline.ng",
		PasswordHash: string(hashedPass),
		Role:         models.RoleLandlord,
		FirstName:    "Adaeze",
		LastName:     "Okafor",
		PhoneNumber:  utils.Ptr("+2348012340001"),
		ShowPhone:    true,
	}
	if err := userRepo.Create(ctx, landlord); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Demo landlord already present (id=%s); skipping.", landlord.ID)
		} else {
			return fmt.Errorf("insert demo landlord: %w", err)
		}
	} else {
		utils.Logger.Infof("Created demo landlord (id=%s).", landlord.ID)
	}

	tenant := &models.User{
		ID:           seedTenantID,
		Username:     "demotenant",
		Email:        "tenant@rentline.ng",
		PasswordHash: string(hashedPass),
		Role:         models.RoleTenant,
		FirstName:    "Tunde",
		LastName:     "Bakare",
		PhoneNumber:  utils.Ptr("+2348012340002"),
	}
	if err := userRepo.Create(ctx, tenant); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Demo tenant already present (id=%s); skipping.", tenant.ID)
		} else {
			return fmt.Errorf("insert demo tenant: %w", err)
		}
	} else {
		utils.Logger.Infof("Created demo tenant (id=%s).", tenant.ID)
	}

	return nil
}

/* ------------------------------------------------------------------
   Seed two vacant marketplace listings for the demo landlord
------------------------------------------------------------------ */
func seedDemoListingsIfNeeded(ctx context.Context, propRepo repositories.PropertyRepository) error {
	listings := []*models.Property{
		{
			ID:               seedListingLekkiID,
			LandlordID:       seedLandlordID,
			Title:            "2 Bedroom Flat, Lekki Phase 1",
			Description:      "Serviced flat with 24h power, fitted kitchen and secure parking.",
			Address:          "14 Admiralty Way",
			City:             "Lekki",
			State:            "lagos",
			UnitNumber:       "2B",
			PropertyType:     models.PropertyFlat,
			ListingType:      models.ListingRent,
			Bedrooms:         utils.Ptr(2),
			RentAmount:       decimal.NewFromInt(2_500_000),
			RentPeriodMonths: 12,
			IsAvailable:      true,
		},
		{
			ID:               seedListingGwarinpaID,
			LandlordID:       seedLandlordID,
			Title:            "4 Bedroom Duplex, Gwarinpa",
			Description:      "Detached duplex on a corner plot, borehole and gated estate.",
			Address:          "7 Third Avenue, Gwarinpa Estate",
			City:             "Abuja",
			State:            "abuja",
			PropertyType:     models.PropertyHouse,
			ListingType:      models.ListingRent,
			Bedrooms:         utils.Ptr(4),
			RentAmount:       decimal.NewFromInt(6_000_000),
			RentPeriodMonths: 12,
			IsAvailable:      true,
		},
	}

	for _, p := range listings {
		if err := propRepo.Create(ctx, p); err != nil {
			if isUniqueViolation(err) {
				utils.Logger.Infof("Demo listing (id=%s) already exists; skipping.", p.ID)
				continue
			}
			return fmt.Errorf("create demo listing %q: %w", p.Title, err)
		}
		utils.Logger.Infof("Created demo listing %q (id=%s).", p.Title, p.ID)
	}
	return nil
}

/* ------------------------------------------------------------------
   Seed an occupied property with a running tenancy and one open
   maintenance request, so both dashboards have data on first boot.
------------------------------------------------------------------ */
func seedDemoTenancyIfNeeded(
	ctx context.Context,
	propRepo repositories.PropertyRepository,
	tenancyRepo repositories.TenancyRepository,
	maintRepo repositories.MaintenanceRepository,
) error {
	occupied := &models.Property{
		ID:               seedPropertyYabaID,
		LandlordID:       seedLandlordID,
		Title:            "Self-Contained Studio, Yaba",
		Description:      "Compact studio close to Unilag, prepaid meter installed.",
		Address:          "23 Herbert Macaulay Way",
		City:             "Yaba",
		State:            "lagos",
		PropertyType:     models.PropertyApartment,
		ListingType:      models.ListingRent,
		Bedrooms:         utils.Ptr(1),
		RentAmount:       decimal.NewFromInt(800_000),
		RentPeriodMonths: 12,
		IsOccupied:       true,
		IsAvailable:      false,
	}
	if err := propRepo.Create(ctx, occupied); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Demo occupied property (id=%s) already exists; skipping tenancy seeding.", occupied.ID)
			return nil
		}
		return fmt.Errorf("create demo occupied property: %w", err)
	}
	utils.Logger.Infof("Created demo occupied property %q (id=%s).", occupied.Title, occupied.ID)

	tenancy := &models.Tenancy{
		ID:         seedTenancyID,
		TenantID:   seedTenantID,
		LandlordID: seedLandlordID,
		PropertyID: seedPropertyYabaID,
		Status:     models.TenancyActive,
		StartDate:  time.Now().UTC().AddDate(0, -3, 0),
	}
	if err := tenancyRepo.Create(ctx, tenancy); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Demo tenancy (id=%s) already exists; skipping.", tenancy.ID)
		} else {
			return fmt.Errorf("create demo tenancy: %w", err)
		}
	} else {
		utils.Logger.Infof("Created demo tenancy (id=%s).", tenancy.ID)
	}

	req := &models.MaintenanceRequest{
		ID:          seedMaintenanceID,
		TenancyID:   seedTenancyID,
		TenantID:    seedTenantID,
		LandlordID:  seedLandlordID,
		PropertyID:  seedPropertyYabaID,
		Title:       "Leaking kitchen tap",
		Description: "The kitchen tap drips steadily even when closed fully.",
		Priority:    models.PriorityMedium,
		Status:      models.MaintenancePending,
	}
	if err := maintRepo.CreateWithImages(ctx, req, nil); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Demo maintenance request (id=%s) already exists; skipping.", req.ID)
			return nil
		}
		return fmt.Errorf("create demo maintenance request: %w", err)
	}
	utils.Logger.Infof("Created demo maintenance request (id=%s).", req.ID)

	return nil
}

/* ------------------------------------------------------------------
   SeedAllTestData – convenience called from main() behind the flag.
------------------------------------------------------------------ */
func SeedAllTestData(
	userRepo repositories.UserRepository,
	propRepo repositories.PropertyRepository,
	tenancyRepo repositories.TenancyRepository,
	maintRepo repositories.MaintenanceRepository,
) error {
	ctx := context.Background()

	if err := seedDemoUsersIfNeeded(ctx, userRepo); err != nil {
		return fmt.Errorf("seed demo users: %w", err)
	}
	if err := seedDemoListingsIfNeeded(ctx, propRepo); err != nil {
		return fmt.Errorf("seed demo listings: %w", err)
	}
	if err := seedDemoTenancyIfNeeded(ctx, propRepo, tenancyRepo, maintRepo); err != nil {
		return fmt.Errorf("seed demo tenancy: %w", err)
	}
	return nil
}
