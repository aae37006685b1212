package services

import (
	"context"
	"strings"

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

type AccountService struct {
	cfg          *config.Config
	userRepo     repositories.UserRepository
	tokenRepo    repositories.TokenRepository
	docRepo      repositories.TenantDocumentRepository
	tenancyRepo  repositories.TenancyRepository
	twilioClient *twilio.RestClient
}

func NewAccountService(
	cfg *config.Config,
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	docRepo repositories.TenantDocumentRepository,
	tenancyRepo repositories.TenancyRepository,
) *AccountService {
	tClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &AccountService{
		cfg:          cfg,
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		docRepo:      docRepo,
		tenancyRepo:  tenancyRepo,
		twilioClient: tClient,
	}
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a patch under the optimistic-lock retry loop.
// Username and role never change after registration.
func (s *AccountService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.UserPatchRequest,
) (*models.User, error) {

	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		ok, err := utils.ValidateEmail(ctx, s.cfg.SendGridAPIKey, email, s.cfg.LDFlag_ValidateEmailWithSendGrid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.ErrInvalidEmail
		}
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, utils.ErrEmailExists
		}
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		ok, err := utils.ValidatePhoneNumber(*req.PhoneNumber, s.cfg.LDFlag_ValidatePhoneWithTwilio, s.twilioClient)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.ErrInvalidPhone
		}
	}

	err := s.userRepo.UpdateWithRetry(ctx, userID, func(u *models.User) error {
		if req.Email != nil {
			u.Email = strings.ToLower(*req.Email)
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.Gender != nil {
			g := models.GenderType(*req.Gender)
			u.Gender = &g
		}
		if req.PhoneNumber != nil {
			u.PhoneNumber = req.PhoneNumber
		}
		if req.WhatsappNumber != nil {
			u.WhatsappNumber = req.WhatsappNumber
		}
		if req.TelegramUsername != nil {
			u.TelegramUsername = req.TelegramUsername
		}
		if req.ShowPhone != nil {
			u.ShowPhone = *req.ShowPhone
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// SetProfilePicture stores a reference to an already-uploaded image.
// The declared size is the only gate; storage never re-checks.
func (s *AccountService) SetProfilePicture(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.ProfilePictureRequest,
) (*models.User, error) {

	if req.SizeBytes > constants.ProfilePictureMaxBytes {
		return nil, utils.ErrFileTooLarge
	}

	err := s.userRepo.UpdateWithRetry(ctx, userID, func(u *models.User) error {
		u.ProfilePictureURL = &req.URL
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password, swaps the hash and
// drops every refresh token so stolen sessions die with the old
// password.
func (s *AccountService) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	currentPassword string,
	newPassword string,
) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return utils.ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateWithRetry(ctx, userID, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	}); err != nil {
		return err
	}

	if err := s.tokenRepo.RemoveAllRefreshTokensByUserID(ctx, userID); err != nil {
		utils.Logger.WithError(err).Error("failed to revoke refresh tokens after password change")
	}
	return nil
}

/* ------------------------------------------------------------------
   Tenant documents
------------------------------------------------------------------ */

func (s *AccountService) AddTenantDocument(
	ctx context.Context,
	tenantID uuid.UUID,
	req dtos.CreateTenantDocumentRequest,
) (*models.TenantDocument, error) {
	doc := &models.TenantDocument{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     req.Name,
		FileURL:  req.FileURL,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return s.docRepo.GetByID(ctx, doc.ID)
}

// ListTenantDocuments serves the tenant's own list, and a landlord's
// view while that landlord holds an in-force tenancy with the tenant.
func (s *AccountService) ListTenantDocuments(
	ctx context.Context,
	callerID uuid.UUID,
	callerRole models.RoleType,
	tenantID uuid.UUID,
) ([]*models.TenantDocument, error) {

	switch {
	case callerID == tenantID:
		// self
	case callerRole == models.RoleAdmin:
		// admin
	case callerRole == models.RoleLandlord:
		t, err := s.tenancyRepo.GetActiveByTenantID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if t == nil || t.LandlordID != callerID {
			return nil, utils.ErrPermissionDenied
		}
	default:
		return nil, utils.ErrPermissionDenied
	}

	return s.docRepo.ListByTenantID(ctx, tenantID)
}

func (s *AccountService) DeleteTenantDocument(
	ctx context.Context,
	tenantID uuid.UUID,
	docID uuid.UUID,
) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return pgx.ErrNoRows
	}
	if doc.TenantID != tenantID {
		return utils.ErrPermissionDenied
	}
	return s.docRepo.Delete(ctx, docID)
}
