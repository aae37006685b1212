package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

type TenancyService struct {
	cfg         *config.Config
	tenancyRepo repositories.TenancyRepository
	propRepo    repositories.PropertyRepository
	userRepo    repositories.UserRepository
}

func NewTenancyService(
	cfg *config.Config,
	tenancyRepo repositories.TenancyRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
) *TenancyService {
	return &TenancyService{
		cfg:         cfg,
		tenancyRepo: tenancyRepo,
		propRepo:    propRepo,
		userRepo:    userRepo,
	}
}

// ---------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------

// ListForLandlord returns the landlord's tenancies with unit and
// tenant attached. past=true switches to terminated and archived rows.
func (s *TenancyService) ListForLandlord(ctx context.Context, landlordID uuid.UUID, past bool) ([]dtos.TenancyDetail, error) {
	var (
		rows []*models.Tenancy
		err  error
	)
	if past {
		rows, err = s.tenancyRepo.ListPastByLandlordID(ctx, landlordID)
	} else {
		rows, err = s.tenancyRepo.ListActiveByLandlordID(ctx, landlordID)
	}
	if err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, rows, true, false)
}

// ListForTenant returns the tenant's current or past tenancies with
// unit and landlord attached.
func (s *TenancyService) ListForTenant(ctx context.Context, tenantID uuid.UUID, past bool) ([]dtos.TenancyDetail, error) {
	var (
		rows []*models.Tenancy
		err  error
	)
	if past {
		rows, err = s.tenancyRepo.ListPastByTenantID(ctx, tenantID)
	} else {
		rows, err = s.tenancyRepo.ListActiveByTenantID(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, rows, false, true)
}

// Get returns one tenancy to either party.
func (s *TenancyService) Get(
	ctx context.Context,
	callerID uuid.UUID,
	callerRole models.RoleType,
	tenancyID uuid.UUID,
) (*dtos.TenancyDetail, error) {

	t, err := s.tenancyRepo.GetByID(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	if t.TenantID != callerID && t.LandlordID != callerID && callerRole != models.RoleAdmin {
		return nil, utils.ErrNotTenancyParty
	}

	details, err := s.buildDetails(ctx, []*models.Tenancy{t}, true, true)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ---------------------------------------------------------------------
// Termination / archive
// ---------------------------------------------------------------------

// RequestTermination records the caller's side of the handshake. The
// repository finalizes and frees the unit once both parties have
// asked; the same party asking twice is a no-op.
func (s *TenancyService) RequestTermination(
	ctx context.Context,
	actorID uuid.UUID,
	role models.RoleType,
	tenancyID uuid.UUID,
) (*models.Tenancy, error) {
	return s.tenancyRepo.RecordTerminationAtomic(ctx, tenancyID, actorID, role)
}

// Archive tucks a terminated tenancy away from the default lists. This
// is an admin call; callers are gated at the route layer.
func (s *TenancyService) Archive(ctx context.Context, tenancyID uuid.UUID) error {
	t, err := s.tenancyRepo.GetByID(ctx, tenancyID)
	if err != nil {
		return err
	}
	if t == nil {
		return pgx.ErrNoRows
	}

	ok, err := s.tenancyRepo.Archive(ctx, tenancyID)
	if err != nil {
		return err
	}
	if !ok {
		return utils.ErrTenancyNotEnded
	}
	return nil
}

/* ---------- internals ---------- */

// buildDetails resolves each tenancy's unit once and derives the lease
// window from its rent period.
func (s *TenancyService) buildDetails(
	ctx context.Context,
	rows []*models.Tenancy,
	withTenant, withLandlord bool,
) ([]dtos.TenancyDetail, error) {

	propCache := make(map[uuid.UUID]*models.Property)

	out := make([]dtos.TenancyDetail, 0, len(rows))
	for _, t := range rows {
		prop, ok := propCache[t.PropertyID]
		if !ok {
			var pErr error
			prop, pErr = s.propRepo.GetByID(ctx, t.PropertyID)
			if pErr != nil {
				utils.Logger.WithError(pErr).Errorf("could not resolve property %s for tenancy %s", t.PropertyID, t.ID)
			}
			propCache[t.PropertyID] = prop
		}

		var d dtos.TenancyDetail
		if prop != nil {
			rentPeriod := prop.RentPeriodMonths
			if rentPeriod <= 0 {
				rentPeriod = models.DefaultRentPeriodMonths
			}
			d.Tenancy = dtos.NewTenancyWithLease(*t, rentPeriod)
			p := dtos.NewPropertyFromModel(*prop)
			d.Property = &p
		} else {
			d.Tenancy = dtos.NewTenancyFromModel(*t)
		}

		if withTenant {
			if u, uErr := s.userRepo.GetByID(ctx, t.TenantID); uErr == nil && u != nil {
				tenant := dtos.NewUserFromModel(*u)
				d.Tenant = &tenant
			}
		}
		if withLandlord {
			if u, uErr := s.userRepo.GetByID(ctx, t.LandlordID); uErr == nil && u != nil {
				landlord := dtos.NewUserFromModel(*u)
				d.Landlord = &landlord
			}
		}
		out = append(out, d)
	}
	return out, nil
}
