package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

type ApplicationService struct {
	cfg          *config.Config
	appRepo      repositories.ApplicationRepository
	propRepo     repositories.PropertyRepository
	userRepo     repositories.UserRepository
	notification *NotificationService
}

func NewApplicationService(
	cfg *config.Config,
	appRepo repositories.ApplicationRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	notification *NotificationService,
) *ApplicationService {
	return &ApplicationService{
		cfg:          cfg,
		appRepo:      appRepo,
		propRepo:     propRepo,
		userRepo:     userRepo,
		notification: notification,
	}
}

// ---------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------

// Apply files an application for a listed property. A tenant gets one
// row per property; settled rows are reset back to pending instead of
// inserting duplicates.
func (s *ApplicationService) Apply(
	ctx context.Context,
	tenantID uuid.UUID,
	req dtos.ApplyRequest,
) (*models.TenancyApplication, error) {

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, err
	}

	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, nil
	}
	if prop.LandlordID == tenantID {
		return nil, utils.ErrPermissionDenied
	}
	if !prop.IsAvailable {
		return nil, utils.ErrPropertyUnavailable
	}
	if prop.IsOccupied {
		return nil, utils.ErrPropertyOccupied
	}

	busy, err := s.appRepo.HasActiveTenancy(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, utils.ErrActiveTenancyExists
	}

	existing, err := s.appRepo.GetByTenantAndProperty(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsPending() {
			return nil, utils.ErrDuplicatePending
		}
		if err := s.appRepo.Reapply(ctx, existing.ID, req.Message); err != nil {
			return nil, err
		}
		return s.appRepo.GetByID(ctx, existing.ID)
	}

	a := &models.TenancyApplication{
		ID:         uuid.New(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		Status:     models.ApplicationPending,
		Message:    req.Message,
	}
	if err := s.appRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.appRepo.GetByID(ctx, a.ID)
}

// ---------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------

// ListMine returns the tenant's applications with their properties.
func (s *ApplicationService) ListMine(ctx context.Context, tenantID uuid.UUID) ([]dtos.ApplicationDetail, error) {
	apps, err := s.appRepo.ListByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.ApplicationDetail, 0, len(apps))
	for _, a := range apps {
		d := dtos.ApplicationDetail{Application: dtos.NewApplicationFromModel(*a)}
		if prop, pErr := s.propRepo.GetByID(ctx, a.PropertyID); pErr == nil && prop != nil {
			p := dtos.NewPropertyFromModel(*prop)
			d.Property = &p
		}
		out = append(out, d)
	}
	return out, nil
}

// ListForLandlord returns applications across the landlord's
// properties, newest first, with the applicant attached.
func (s *ApplicationService) ListForLandlord(ctx context.Context, landlordID uuid.UUID) ([]dtos.ApplicationDetail, error) {
	apps, err := s.appRepo.ListByLandlordID(ctx, landlordID)
	if err != nil {
		return nil, err
	}

	// Several applications usually target the same unit.
	propCache := make(map[uuid.UUID]*dtos.Property)

	out := make([]dtos.ApplicationDetail, 0, len(apps))
	for _, a := range apps {
		d := dtos.ApplicationDetail{Application: dtos.NewApplicationFromModel(*a)}

		if cached, ok := propCache[a.PropertyID]; ok {
			d.Property = cached
		} else if prop, pErr := s.propRepo.GetByID(ctx, a.PropertyID); pErr == nil && prop != nil {
			p := dtos.NewPropertyFromModel(*prop)
			propCache[a.PropertyID] = &p
			d.Property = &p
		}

		if tenant, tErr := s.userRepo.GetByID(ctx, a.TenantID); tErr == nil && tenant != nil {
			u := dtos.NewUserFromModel(*tenant)
			d.Tenant = &u
		}
		out = append(out, d)
	}
	return out, nil
}

// ListForProperty narrows the incoming queue to one unit.
func (s *ApplicationService) ListForProperty(ctx context.Context, landlordID, propertyID uuid.UUID) ([]dtos.ApplicationDetail, error) {
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, pgx.ErrNoRows
	}
	if prop.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}

	apps, err := s.appRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	p := dtos.NewPropertyFromModel(*prop)
	out := make([]dtos.ApplicationDetail, 0, len(apps))
	for _, a := range apps {
		d := dtos.ApplicationDetail{Application: dtos.NewApplicationFromModel(*a), Property: &p}
		if tenant, tErr := s.userRepo.GetByID(ctx, a.TenantID); tErr == nil && tenant != nil {
			u := dtos.NewUserFromModel(*tenant)
			d.Tenant = &u
		}
		out = append(out, d)
	}
	return out, nil
}

// Get returns one application to either party.
func (s *ApplicationService) Get(
	ctx context.Context,
	callerID uuid.UUID,
	callerRole models.RoleType,
	applicationID uuid.UUID,
) (*dtos.ApplicationDetail, error) {

	a, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	prop, err := s.propRepo.GetByID(ctx, a.PropertyID)
	if err != nil {
		return nil, err
	}

	isTenant := a.TenantID == callerID
	isLandlord := prop != nil && prop.LandlordID == callerID
	if !isTenant && !isLandlord && callerRole != models.RoleAdmin {
		return nil, utils.ErrPermissionDenied
	}

	d := &dtos.ApplicationDetail{Application: dtos.NewApplicationFromModel(*a)}
	if prop != nil {
		p := dtos.NewPropertyFromModel(*prop)
		d.Property = &p
	}
	if isLandlord || callerRole == models.RoleAdmin {
		if tenant, tErr := s.userRepo.GetByID(ctx, a.TenantID); tErr == nil && tenant != nil {
			u := dtos.NewUserFromModel(*tenant)
			d.Tenant = &u
		}
	}
	return d, nil
}

// ---------------------------------------------------------------------
// Landlord decisions
// ---------------------------------------------------------------------

// Accept opens a tenancy from a pending application. The transaction
// re-checks everything under row locks; rival pending applications on
// the unit are rejected in the same commit.
func (s *ApplicationService) Accept(
	ctx context.Context,
	landlordID, applicationID uuid.UUID,
	startDate *time.Time,
) (*models.Tenancy, error) {

	a, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, pgx.ErrNoRows
	}

	prop, err := s.propRepo.GetByID(ctx, a.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, pgx.ErrNoRows
	}
	if prop.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}

	start := time.Now()
	if startDate != nil {
		start = *startDate
	}

	tenancy, err := s.appRepo.AcceptAtomic(ctx, applicationID, start)
	if err != nil {
		return nil, err
	}

	s.sendDecisionEmail(ctx, a.TenantID, prop.Title, true, nil)
	return tenancy, nil
}

// Reject settles a pending application, optionally with a note the
// tenant will see.
func (s *ApplicationService) Reject(
	ctx context.Context,
	landlordID, applicationID uuid.UUID,
	reply *string,
) error {

	a, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if a == nil {
		return pgx.ErrNoRows
	}

	prop, err := s.propRepo.GetByID(ctx, a.PropertyID)
	if err != nil {
		return err
	}
	if prop == nil {
		return pgx.ErrNoRows
	}
	if prop.LandlordID != landlordID {
		return utils.ErrPermissionDenied
	}

	tag, err := s.appRepo.UpdateStatusIfPending(ctx, applicationID, models.ApplicationRejected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrApplicationNotPending
	}

	if reply != nil {
		trimmed := strings.TrimSpace(*reply)
		if trimmed != "" {
			if rErr := s.appRepo.SetLandlordReply(ctx, applicationID, trimmed); rErr != nil {
				utils.Logger.WithError(rErr).Warnf("application %s rejected but the reply was not stored", applicationID)
			}
		}
	}

	s.sendDecisionEmail(ctx, a.TenantID, prop.Title, false, reply)
	return nil
}

// Reply attaches or replaces the landlord's note on an application
// without touching its status.
func (s *ApplicationService) Reply(ctx context.Context, landlordID, applicationID uuid.UUID, reply string) (*models.TenancyApplication, error) {
	a, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	prop, err := s.propRepo.GetByID(ctx, a.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil || prop.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}

	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return nil, utils.ErrEmptyReply
	}

	if err := s.appRepo.SetLandlordReply(ctx, applicationID, trimmed); err != nil {
		return nil, err
	}
	return s.appRepo.GetByID(ctx, applicationID)
}

// ---------------------------------------------------------------------
// Withdraw
// ---------------------------------------------------------------------

// Withdraw lets the tenant pull a still-pending application.
func (s *ApplicationService) Withdraw(ctx context.Context, tenantID, applicationID uuid.UUID) error {
	a, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if a == nil {
		return pgx.ErrNoRows
	}
	if a.TenantID != tenantID {
		return utils.ErrPermissionDenied
	}

	tag, err := s.appRepo.UpdateStatusIfPending(ctx, applicationID, models.ApplicationWithdrawn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrApplicationNotPending
	}
	return nil
}

/* ---------- internals ---------- */

func (s *ApplicationService) sendDecisionEmail(
	ctx context.Context,
	tenantID uuid.UUID,
	propertyTitle string,
	accepted bool,
	reply *string,
) {
	tenant, err := s.userRepo.GetByID(ctx, tenantID)
	if err != nil || tenant == nil {
		utils.Logger.WithError(err).Warnf("decision recorded but tenant %s could not be resolved for email", tenantID)
		return
	}
	if err := s.notification.SendApplicationDecisionEmail(tenant.Email, tenant.FirstName, propertyTitle, accepted, reply); err != nil {
		utils.Logger.WithError(err).Warnf("decision recorded but the email to %s did not go out", tenant.Email)
	}
}
