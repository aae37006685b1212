package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/middleware"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

type TokenPolicy struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DecideTokenPolicy inspects the PlatformType and returns the matching
// AccessTTL / RefreshTTL from config. If IsMobile(platform) is true, it
// returns the mobile durations; otherwise it returns the web durations.
func DecideTokenPolicy(p utils.PlatformType, cfg *config.Config) TokenPolicy {
	if utils.IsMobile(p) {
		return TokenPolicy{
			AccessTTL:  cfg.MobileTokenExpiry,
			RefreshTTL: cfg.MobileRefreshTokenExpiry,
		}
	}
	return TokenPolicy{
		AccessTTL:  cfg.WebTokenExpiry,
		RefreshTTL: cfg.WebRefreshTokenExpiry,
	}
}

// requireUserID pulls the authenticated subject out of the request
// context, answering 401 itself when the middleware did not run.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value(middleware.ContextKeyUserID).(string)
	if !ok || raw == "" {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil,
		)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed userID in context", nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}

func roleFromContext(r *http.Request) models.RoleType {
	raw, _ := r.Context().Value(middleware.ContextKeyUserRole).(string)
	return models.RoleType(raw)
}

// pathUUID parses one uuid path variable, answering 400 itself on bad
// input.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name+" in path", nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}

// validationDetails flattens validator errors into field-level details
// the frontend can attach to inputs.
func validationDetails(err error) []dtos.ValidationErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]dtos.ValidationErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, dtos.ValidationErrorDetail{
			Field:   fe.Field(),
			Message: fe.Error(),
			Code:    fe.Tag(),
		})
	}
	return out
}
