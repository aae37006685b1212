package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

// AuthService interface
type AuthService interface {
	Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error)

	Login(
		ctx context.Context,
		identifier string,
		password string,
		clientIdentifier utils.ClientIdentifier,
		tokenExpiry time.Duration,
		refreshExpiry time.Duration,
	) (*models.User, string, string, error)

	RefreshToken(
		ctx context.Context,
		refreshTokenString string,
		clientIdentifier utils.ClientIdentifier,
		tokenExpiry time.Duration,
		refreshExpiry time.Duration,
	) (string, string, error)

	Logout(ctx context.Context, refreshTokenString string) error
}

type authService struct {
	userRepo  repositories.UserRepository
	loginRepo repositories.LoginAttemptsRepository
	tokenRepo repositories.TokenRepository

	Cfg          *config.Config
	jwtService   JWTService
	twilioClient *twilio.RestClient
}

// Constructor
func NewAuthService(
	userRepo repositories.UserRepository,
	loginRepo repositories.LoginAttemptsRepository,
	tokenRepo repositories.TokenRepository,
	cfg *config.Config,
) AuthService {

	jwtSvc := NewJWTService(cfg, tokenRepo, userRepo)
	tClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &authService{
		userRepo:     userRepo,
		loginRepo:    loginRepo,
		tokenRepo:    tokenRepo,
		Cfg:          cfg,
		jwtService:   jwtSvc,
		twilioClient: tClient,
	}
}

// ---------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------
func (s *authService) Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error) {
	role := models.ParseRole(req.Role)
	if role != models.RoleLandlord && role != models.RoleTenant {
		// Admin accounts are seeded, never self-registered.
		return nil, utils.ErrPermissionDenied
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		ok, err := utils.ValidatePhoneNumber(*req.PhoneNumber, s.Cfg.LDFlag_ValidatePhoneWithTwilio, s.twilioClient)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.ErrInvalidPhone
		}
	}

	email := strings.ToLower(req.Email)
	ok, err := utils.ValidateEmail(ctx, s.Cfg.SendGridAPIKey, email, s.Cfg.LDFlag_ValidateEmailWithSendGrid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.ErrInvalidEmail
	}

	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, utils.ErrUsernameExists
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, utils.ErrEmailExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
	}
	if req.Gender != nil {
		g := models.GenderType(*req.Gender)
		user.Gender = &g
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique indexes are the last word; map them back to the
		// same sentinels the pre-checks use.
		msg := err.Error()
		switch {
		case strings.Contains(msg, "users_username"):
			return nil, utils.ErrUsernameExists
		case strings.Contains(msg, "users_email"):
			return nil, utils.ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// ---------------------------------------------------------------------
// Login – identifier is a username or an email
// ---------------------------------------------------------------------
func (s *authService) Login(
	ctx context.Context,
	identifier string,
	password string,
	clientIdentifier utils.ClientIdentifier,
	tokenExpiry time.Duration,
	refreshExpiry time.Duration,
) (*models.User, string, string, error) {

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil || user == nil || user.DeletedAt != nil {
		return nil, "", "", utils.ErrInvalidCredentials
	}

	// Ensure a login attempt record exists before we check or increment it.
	if _, err := s.loginRepo.GetOrCreate(ctx, user.ID); err != nil {
		utils.Logger.WithError(err).Error("Failed to get or create login attempt record")
		return nil, "", "", errors.New("internal server error")
	}

	locked, lockedUntil, err := s.loginRepo.IsLocked(ctx, user.ID)
	if err == nil && locked {
		return nil, "", "", fmt.Errorf("%w: until %s", utils.ErrAccountLocked, lockedUntil.Format(time.RFC3339))
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		if incErr := s.loginRepo.Increment(ctx, user.ID, s.Cfg.LockDuration, s.Cfg.AttemptWindow, s.Cfg.MaxLoginAttempts); incErr != nil {
			utils.Logger.WithError(incErr).Error("Failed to increment login attempts")
		}
		return nil, "", "", utils.ErrInvalidCredentials
	}
	_ = s.loginRepo.Reset(ctx, user.ID)

	// remove old refresh tokens
	if removeErr := s.tokenRepo.RemoveAllRefreshTokensByUserID(ctx, user.ID); removeErr != nil {
		utils.Logger.WithError(removeErr).Error("failed to remove old tokens on login")
	}

	accessToken, aErr := s.jwtService.GenerateAccessToken(ctx, user.ID, user.Role, clientIdentifier, tokenExpiry)
	if aErr != nil {
		utils.Logger.WithError(aErr).Error("Failed to generate access token (login)")
		return nil, "", "", errors.New("token generation failed")
	}

	refreshObj, rErr := s.jwtService.GenerateRefreshToken(ctx, user.ID, clientIdentifier, refreshExpiry)
	if rErr != nil {
		utils.Logger.WithError(rErr).Error("Failed to generate refresh token (login)")
		return nil, "", "", errors.New("token generation failed")
	}

	return user, accessToken, refreshObj.Token, nil
}

// ---------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------
func (s *authService) RefreshToken(
	ctx context.Context,
	refreshTokenString string,
	clientIdentifier utils.ClientIdentifier,
	tokenExpiry time.Duration,
	refreshExpiry time.Duration,
) (string, string, error) {

	return s.jwtService.RefreshToken(
		ctx,
		refreshTokenString,
		clientIdentifier,
		tokenExpiry,
		refreshExpiry,
	)
}

// ---------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------
func (s *authService) Logout(ctx context.Context, refreshTokenString string) error {
	return s.jwtService.Logout(ctx, refreshTokenString)
}
