package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

type MaintenanceService struct {
	cfg          *config.Config
	maintRepo    repositories.MaintenanceRepository
	tenancyRepo  repositories.TenancyRepository
	propRepo     repositories.PropertyRepository
	userRepo     repositories.UserRepository
	notification *NotificationService
	triage       *TriageService
}

func NewMaintenanceService(
	cfg *config.Config,
	maintRepo repositories.MaintenanceRepository,
	tenancyRepo repositories.TenancyRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	notification *NotificationService,
	triage *TriageService,
) *MaintenanceService {
	return &MaintenanceService{
		cfg:          cfg,
		maintRepo:    maintRepo,
		tenancyRepo:  tenancyRepo,
		propRepo:     propRepo,
		userRepo:     userRepo,
		notification: notification,
		triage:       triage,
	}
}

// ---------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------

// Create raises a request on the unit the tenant actively rents. When
// the tenant leaves the priority blank it is triaged from the text,
// falling back to medium.
func (s *MaintenanceService) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	req dtos.CreateMaintenanceRequest,
) (*dtos.MaintenanceRequest, error) {

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, err
	}

	tenancy, err := s.tenancyRepo.GetActiveByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	// A tenancy already winding down takes no new requests.
	if tenancy == nil || tenancy.PropertyID != propertyID || tenancy.Status != models.TenancyActive {
		return nil, utils.ErrTenancyNotActive
	}

	priority := models.PriorityMedium
	if req.Priority != nil {
		priority = models.ParseMaintenancePriority(*req.Priority)
	} else {
		suggested, tErr := s.triage.SuggestPriority(ctx, req.Title, req.Description)
		if tErr != nil {
			utils.Logger.WithError(tErr).Warn("priority triage failed, defaulting to medium")
			suggested = models.PriorityMedium
		}
		priority = suggested
	}

	urls, warning := capImages(req.ImageURLs)

	m := &models.MaintenanceRequest{
		ID:          uuid.New(),
		TenancyID:   tenancy.ID,
		TenantID:    tenantID,
		LandlordID:  tenancy.LandlordID,
		PropertyID:  propertyID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      models.MaintenancePending,
	}
	if err := s.maintRepo.CreateWithImages(ctx, m, urls); err != nil {
		return nil, err
	}

	created, err := s.maintRepo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	out := s.withImages(ctx, created)
	out.Warning = warning

	if priority == models.PriorityEmergency {
		s.sendEmergencyAlert(ctx, m)
	}
	return &out, nil
}

// ---------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------

// ListMine returns the tenant's own requests, newest first.
func (s *MaintenanceService) ListMine(ctx context.Context, tenantID uuid.UUID) ([]dtos.MaintenanceRequest, error) {
	rows, err := s.maintRepo.ListByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.MaintenanceRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, s.withImages(ctx, m))
	}
	return out, nil
}

// ListForLandlord returns requests across the landlord's units with
// the unit and reporter attached, optionally narrowed to one status.
func (s *MaintenanceService) ListForLandlord(ctx context.Context, landlordID uuid.UUID, status *models.MaintenanceStatus) ([]dtos.MaintenanceDetail, error) {
	rows, err := s.maintRepo.ListByLandlordID(ctx, landlordID, status)
	if err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, rows)
}

// ListForProperty narrows the landlord view to one unit.
func (s *MaintenanceService) ListForProperty(ctx context.Context, landlordID, propertyID uuid.UUID, status *models.MaintenanceStatus) ([]dtos.MaintenanceDetail, error) {
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

	rows, err := s.maintRepo.ListByPropertyID(ctx, propertyID, status)
	if err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, rows)
}

// Get returns one request to either party. A landlord opening an
// unread request marks it read.
func (s *MaintenanceService) Get(
	ctx context.Context,
	callerID uuid.UUID,
	callerRole models.RoleType,
	requestID uuid.UUID,
) (*dtos.MaintenanceDetail, error) {

	m, err := s.maintRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	isTenant := m.TenantID == callerID
	isLandlord := m.LandlordID == callerID
	if !isTenant && !isLandlord && callerRole != models.RoleAdmin {
		return nil, utils.ErrPermissionDenied
	}

	if isLandlord && !m.ViewedByLandlord {
		if vErr := s.maintRepo.MarkViewed(ctx, m.ID); vErr != nil {
			utils.Logger.WithError(vErr).Warnf("could not mark maintenance request %s viewed", m.ID)
		} else {
			m.ViewedByLandlord = true
		}
	}

	d := &dtos.MaintenanceDetail{MaintenanceRequest: s.withImages(ctx, m)}
	if prop, pErr := s.propRepo.GetByID(ctx, m.PropertyID); pErr == nil && prop != nil {
		p := dtos.NewPropertyFromModel(*prop)
		d.Property = &p
	}
	if isLandlord || callerRole == models.RoleAdmin {
		if tenant, tErr := s.userRepo.GetByID(ctx, m.TenantID); tErr == nil && tenant != nil {
			u := dtos.NewUserFromModel(*tenant)
			d.Tenant = &u
		}
	}
	return d, nil
}

// UnreadCount powers the landlord's notification badge.
func (s *MaintenanceService) UnreadCount(ctx context.Context, landlordID uuid.UUID) (int, error) {
	return s.maintRepo.CountUnreadByLandlordID(ctx, landlordID)
}

// ---------------------------------------------------------------------
// Landlord status changes
// ---------------------------------------------------------------------

// UpdateStatus moves a request through its lifecycle. Completion time
// is stamped on the first move to completed and survives later
// status changes.
func (s *MaintenanceService) UpdateStatus(
	ctx context.Context,
	landlordID, requestID uuid.UUID,
	req dtos.UpdateMaintenanceStatusRequest,
) (*dtos.MaintenanceRequest, error) {

	m, err := s.maintRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	if m.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}

	status := models.ParseMaintenanceStatus(req.Status)

	err = s.maintRepo.UpdateWithRetry(ctx, requestID, func(cur *models.MaintenanceRequest) error {
		cur.Status = status
		if req.LandlordNotes != nil {
			cur.LandlordNotes = req.LandlordNotes
		}
		if status == models.MaintenanceCompleted && cur.CompletedAt == nil {
			now := time.Now()
			cur.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.maintRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := s.withImages(ctx, updated)
	return &out, nil
}

// ---------------------------------------------------------------------
// Tenant edits
// ---------------------------------------------------------------------

// Edit lets the tenant amend a request while it is still being worked.
// Completed and cancelled requests are locked.
func (s *MaintenanceService) Edit(
	ctx context.Context,
	tenantID, requestID uuid.UUID,
	req dtos.MaintenancePatchRequest,
) (*dtos.MaintenanceRequest, error) {

	m, err := s.maintRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	if m.TenantID != tenantID {
		return nil, utils.ErrPermissionDenied
	}
	if !m.IsEditable() {
		return nil, utils.ErrRequestLocked
	}

	err = s.maintRepo.UpdateWithRetry(ctx, requestID, func(cur *models.MaintenanceRequest) error {
		if !cur.IsEditable() {
			return utils.ErrRequestLocked
		}
		if req.Title != nil {
			cur.Title = *req.Title
		}
		if req.Description != nil {
			cur.Description = *req.Description
		}
		if req.Priority != nil {
			cur.Priority = models.ParseMaintenancePriority(*req.Priority)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var warning string
	if len(req.ImageURLs) > 0 {
		existing, cErr := s.maintRepo.CountImages(ctx, requestID)
		if cErr != nil {
			return nil, cErr
		}
		room := models.MaxImagesPerMaintenanceRequest - existing
		switch {
		case room <= 0:
			warning = fmt.Sprintf("a request holds at most %d images; %d dropped",
				models.MaxImagesPerMaintenanceRequest, len(req.ImageURLs))
		case len(req.ImageURLs) > room:
			warning = fmt.Sprintf("a request holds at most %d images; %d dropped",
				models.MaxImagesPerMaintenanceRequest, len(req.ImageURLs)-room)
			if aErr := s.maintRepo.AddImages(ctx, requestID, req.ImageURLs[:room], existing); aErr != nil {
				return nil, aErr
			}
		default:
			if aErr := s.maintRepo.AddImages(ctx, requestID, req.ImageURLs, existing); aErr != nil {
				return nil, aErr
			}
		}
	}

	updated, err := s.maintRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := s.withImages(ctx, updated)
	out.Warning = warning
	return &out, nil
}

// DeleteImage removes one attachment while the request is editable.
func (s *MaintenanceService) DeleteImage(ctx context.Context, tenantID, requestID, imageID uuid.UUID) error {
	m, err := s.maintRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if m == nil {
		return pgx.ErrNoRows
	}
	if m.TenantID != tenantID {
		return utils.ErrPermissionDenied
	}
	if !m.IsEditable() {
		return utils.ErrRequestLocked
	}

	img, err := s.maintRepo.GetImage(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil || img.RequestID != requestID {
		return pgx.ErrNoRows
	}
	return s.maintRepo.DeleteImage(ctx, imageID)
}

/* ---------- internals ---------- */

// capImages enforces the per-request attachment limit without failing
// the whole request.
func capImages(urls []string) ([]string, string) {
	if len(urls) <= models.MaxImagesPerMaintenanceRequest {
		return urls, ""
	}
	warning := fmt.Sprintf("a request holds at most %d images; %d dropped",
		models.MaxImagesPerMaintenanceRequest, len(urls)-models.MaxImagesPerMaintenanceRequest)
	return urls[:models.MaxImagesPerMaintenanceRequest], warning
}

func (s *MaintenanceService) withImages(ctx context.Context, m *models.MaintenanceRequest) dtos.MaintenanceRequest {
	out := dtos.NewMaintenanceRequestFromModel(*m)
	imgs, err := s.maintRepo.ListImages(ctx, m.ID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("could not list images for maintenance request %s", m.ID)
		return out
	}
	for _, img := range imgs {
		out.Images = append(out.Images, dtos.NewMaintenanceImageFromModel(*img))
	}
	return out
}

func (s *MaintenanceService) buildDetails(ctx context.Context, rows []*models.MaintenanceRequest) ([]dtos.MaintenanceDetail, error) {
	propCache := make(map[uuid.UUID]*dtos.Property)
	tenantCache := make(map[uuid.UUID]*dtos.User)

	out := make([]dtos.MaintenanceDetail, 0, len(rows))
	for _, m := range rows {
		d := dtos.MaintenanceDetail{MaintenanceRequest: s.withImages(ctx, m)}

		if cached, ok := propCache[m.PropertyID]; ok {
			d.Property = cached
		} else if prop, pErr := s.propRepo.GetByID(ctx, m.PropertyID); pErr == nil && prop != nil {
			p := dtos.NewPropertyFromModel(*prop)
			propCache[m.PropertyID] = &p
			d.Property = &p
		}

		if cached, ok := tenantCache[m.TenantID]; ok {
			d.Tenant = cached
		} else if tenant, tErr := s.userRepo.GetByID(ctx, m.TenantID); tErr == nil && tenant != nil {
			u := dtos.NewUserFromModel(*tenant)
			tenantCache[m.TenantID] = &u
			d.Tenant = &u
		}
		out = append(out, d)
	}
	return out, nil
}

// sendEmergencyAlert texts the landlord about an emergency request.
// Delivery problems never fail the create.
func (s *MaintenanceService) sendEmergencyAlert(ctx context.Context, m *models.MaintenanceRequest) {
	landlord, err := s.userRepo.GetByID(ctx, m.LandlordID)
	if err != nil || landlord == nil {
		utils.Logger.WithError(err).Warnf("emergency request %s created but landlord %s could not be resolved", m.ID, m.LandlordID)
		return
	}
	if landlord.PhoneNumber == nil || *landlord.PhoneNumber == "" {
		utils.Logger.Debugf("landlord %s has no phone number on file, skipping emergency SMS", landlord.ID)
		return
	}

	propertyTitle := ""
	if prop, pErr := s.propRepo.GetByID(ctx, m.PropertyID); pErr == nil && prop != nil {
		propertyTitle = prop.Title
	}

	if err := s.notification.SendMaintenanceAlertSMS(*landlord.PhoneNumber, propertyTitle, m.Title); err != nil {
		utils.Logger.WithError(err).Warnf("emergency SMS for request %s did not go out", m.ID)
	}
}
