package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/twilio/twilio-go"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/constants"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

type InvitationService struct {
	cfg          *config.Config
	invRepo      repositories.InvitationRepository
	propRepo     repositories.PropertyRepository
	userRepo     repositories.UserRepository
	notification *NotificationService
	twilioClient *twilio.RestClient
}

func NewInvitationService(
	cfg *config.Config,
	invRepo repositories.InvitationRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	notification *NotificationService,
) *InvitationService {
	tClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &InvitationService{
		cfg:          cfg,
		invRepo:      invRepo,
		propRepo:     propRepo,
		userRepo:     userRepo,
		notification: notification,
		twilioClient: tClient,
	}
}

// ---------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------

// Create issues a single-use link for a free unit. The invitation
// email is best-effort: a SendGrid failure is logged and the link
// survives.
func (s *InvitationService) Create(
	ctx context.Context,
	landlordID uuid.UUID,
	req dtos.CreateInvitationRequest,
) (*models.InvitationLink, error) {

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
	if prop.LandlordID != landlordID {
		return nil, utils.ErrPermissionDenied
	}
	if prop.IsOccupied {
		return nil, utils.ErrPropertyOccupied
	}
	if !prop.IsAvailable {
		return nil, utils.ErrPropertyUnavailable
	}

	var tenantEmail *string
	if req.TenantEmail != nil && *req.TenantEmail != "" {
		email := strings.ToLower(*req.TenantEmail)
		ok, err := utils.ValidateEmail(ctx, s.cfg.SendGridAPIKey, email, s.cfg.LDFlag_ValidateEmailWithSendGrid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.ErrInvalidEmail
		}
		tenantEmail = &email
	}

	link := &models.InvitationLink{
		ID:          uuid.New(),
		LandlordID:  landlordID,
		PropertyID:  propertyID,
		Token:       uuid.New(),
		TenantEmail: tenantEmail,
		IsUsed:      false,
		ExpiresAt:   time.Now().Add(constants.InvitationLinkTTL),
	}
	if err := s.invRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	created, err := s.invRepo.GetByID(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	if tenantEmail != nil {
		landlord, lErr := s.userRepo.GetByID(ctx, landlordID)
		if lErr != nil || landlord == nil {
			utils.Logger.WithError(lErr).Error("invitation created but landlord lookup failed; skipping email")
			return created, nil
		}
		if sendErr := s.notification.SendInvitationEmail(*tenantEmail, landlord, prop, created); sendErr != nil {
			utils.Logger.WithError(sendErr).Warnf("invitation %s created but the email did not go out", created.ID)
		}
	}

	return created, nil
}

// ---------------------------------------------------------------------
// List / Cancel
// ---------------------------------------------------------------------

func (s *InvitationService) List(ctx context.Context, landlordID uuid.UUID) ([]*models.InvitationLink, error) {
	return s.invRepo.ListByLandlordID(ctx, landlordID)
}

// Cancel removes an unused link. Redeemed links are history and stay.
func (s *InvitationService) Cancel(ctx context.Context, landlordID, linkID uuid.UUID) error {
	link, err := s.invRepo.GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return pgx.ErrNoRows
	}
	if link.LandlordID != landlordID {
		return utils.ErrPermissionDenied
	}
	if link.IsUsed {
		return utils.ErrInvitationUsed
	}
	return s.invRepo.Delete(ctx, linkID)
}

// GetByToken resolves a link for the public landing page.
func (s *InvitationService) GetByToken(ctx context.Context, token uuid.UUID) (*models.InvitationLink, error) {
	return s.invRepo.GetByToken(ctx, token)
}

// ---------------------------------------------------------------------
// Redeem
// ---------------------------------------------------------------------

// Redeem turns a valid link into a tenant account plus an active
// tenancy in one transaction. Used/expired checks happen again inside
// the row lock; these pre-checks only shape friendlier errors.
func (s *InvitationService) Redeem(
	ctx context.Context,
	token uuid.UUID,
	req dtos.RedeemInvitationRequest,
) (*models.User, *models.Tenancy, error) {

	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		ok, err := utils.ValidatePhoneNumber(*req.PhoneNumber, s.cfg.LDFlag_ValidatePhoneWithTwilio, s.twilioClient)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, utils.ErrInvalidPhone
		}
	}

	email := strings.ToLower(req.Email)
	ok, err := utils.ValidateEmail(ctx, s.cfg.SendGridAPIKey, email, s.cfg.LDFlag_ValidateEmailWithSendGrid)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, utils.ErrInvalidEmail
	}

	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		return nil, nil, err
	} else if existing != nil {
		return nil, nil, utils.ErrUsernameExists
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, nil, err
	} else if existing != nil {
		return nil, nil, utils.ErrEmailExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	tenant := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleTenant,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
	}
	if req.Gender != nil {
		g := models.GenderType(*req.Gender)
		tenant.Gender = &g
	}

	moveIn := time.Now()
	if req.MoveInDate != nil {
		moveIn = *req.MoveInDate
	}

	tenancy, err := s.invRepo.RedeemAtomic(ctx, token, tenant, moveIn)
	if err != nil {
		// Unique-index collisions inside the transaction surface as
		// the same sentinels the pre-checks use.
		msg := err.Error()
		switch {
		case strings.Contains(msg, "users_username"):
			return nil, nil, utils.ErrUsernameExists
		case strings.Contains(msg, "users_email"):
			return nil, nil, utils.ErrEmailExists
		}
		return nil, nil, err
	}

	created, err := s.userRepo.GetByID(ctx, tenant.ID)
	if err != nil || created == nil {
		return tenant, tenancy, nil
	}
	return created, tenancy, nil
}
