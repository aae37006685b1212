package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// RefreshCookiePath scopes the refresh cookie to the one endpoint that
// ever reads it.
const RefreshCookiePath = "/api/v1/auth/refresh_token"

type AuthController struct {
	authService services.AuthService
	cfg         *config.Config
}

func NewAuthController(auth services.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{authService: auth, cfg: cfg}
}

var authValidate = validator.New()

// ---------------------------------------------------------------------
// POST /api/v1/auth/register
// ---------------------------------------------------------------------
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err,
		)
		return
	}

	if _, err := c.authService.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidEmail):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Email failed validation checks", nil, err)
		case errors.Is(err, utils.ErrInvalidPhone):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone number failed validation checks", nil, err)
		case errors.Is(err, utils.ErrEmailExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Email already in use", nil, err)
		case errors.Is(err, utils.ErrUsernameExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Username already taken", nil, err)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodePermissionDenied, "Role not allowed at registration", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register user", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegisterResponse{Message: "Registration successful"})
}

// ---------------------------------------------------------------------
// POST /api/v1/auth/login
// ---------------------------------------------------------------------
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err,
		)
		return
	}

	platform := utils.GetClientPlatform(r)
	clientID := utils.GetClientIdentifier(r, platform)
	tokenPolicy := DecideTokenPolicy(platform, c.cfg)

	user, access, refresh, err := c.authService.Login(
		r.Context(),
		req.Identifier,
		req.Password,
		clientID,
		tokenPolicy.AccessTTL,
		tokenPolicy.RefreshTTL,
	)
	if err != nil {
		if errors.Is(err, utils.ErrAccountLocked) {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeLockedAccount, err.Error(), nil, err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Login failed", nil, err)
		}
		return
	}

	resp := dtos.LoginResponse{
		User: dtos.NewUserFromModel(*user),
	}

	if platform == utils.PlatformWeb {
		utils.SetAuthCookies(w, access, refresh, tokenPolicy.AccessTTL, tokenPolicy.RefreshTTL, RefreshCookiePath, c.cfg.LDFlag_CORSHighSecurity)
	} else {
		resp.AccessToken = access
		resp.RefreshToken = refresh
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// POST /api/v1/auth/refresh_token
// ---------------------------------------------------------------------
func (c *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	platform := utils.GetClientPlatform(r)
	clientID := utils.GetClientIdentifier(r, platform)
	tokenPolicy := DecideTokenPolicy(platform, c.cfg)

	var refresh string
	if platform == utils.PlatformWeb {
		cookie, err := r.Cookie(utils.RefreshTokenCookieName)
		if err != nil || cookie.Value == "" {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing refresh cookie", nil, err)
			return
		}
		refresh = cookie.Value
	} else {
		var req dtos.RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
			return
		}
		if err := authValidate.Struct(req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err)
			return
		}
		refresh = req.RefreshToken
	}

	access, newRefresh, err := c.authService.RefreshToken(
		r.Context(),
		refresh,
		clientID,
		tokenPolicy.AccessTTL,
		tokenPolicy.RefreshTTL,
	)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Refresh token failed", nil, err)
		return
	}

	resp := dtos.RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: newRefresh,
	}

	if platform == utils.PlatformWeb {
		utils.SetAuthCookies(w, access, newRefresh, tokenPolicy.AccessTTL, tokenPolicy.RefreshTTL, RefreshCookiePath, c.cfg.LDFlag_CORSHighSecurity)
		resp.AccessToken = ""
		resp.RefreshToken = ""
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// POST /api/v1/auth/logout
// ---------------------------------------------------------------------
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	platform := utils.GetClientPlatform(r)

	var refresh string
	if platform == utils.PlatformWeb {
		if ck, err := r.Cookie(utils.RefreshTokenCookieName); err == nil {
			refresh = ck.Value
		}
	} else {
		var req dtos.LogoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
			return
		}
		if err := authValidate.Struct(req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err)
			return
		}
		refresh = req.RefreshToken
	}

	if err := c.authService.Logout(r.Context(), refresh); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to logout", nil, err)
		return
	}

	if platform == utils.PlatformWeb {
		utils.ClearAuthCookies(w, RefreshCookiePath, c.cfg.LDFlag_CORSHighSecurity)
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LogoutResponse{Message: "Logged out successfully"})
}
