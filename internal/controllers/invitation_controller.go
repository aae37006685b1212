package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// InvitationController owns the landlord invitation endpoints and the
// public token landing/redemption endpoints.
type InvitationController struct {
	invitationService *services.InvitationService
}

func NewInvitationController(invitationService *services.InvitationService) *InvitationController {
	return &InvitationController{invitationService: invitationService}
}

var invitationValidate = validator.New()

// ---------------------------------------------------------------------
// POST /api/v1/invitations
// ---------------------------------------------------------------------
func (c *InvitationController) CreateInvitationHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for invitation payload", nil, err,
		)
		return
	}
	if err := invitationValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Invitation payload failed validation", validationDetails(err), err,
		)
		return
	}

	link, err := c.invitationService.Create(r.Context(), landlordID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Property belongs to another landlord", nil, err,
			)
		case errors.Is(err, utils.ErrPropertyOccupied):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Property already has a tenant", nil, err,
			)
		case errors.Is(err, utils.ErrPropertyUnavailable):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Property is not open for new tenants", nil, err,
			)
		case errors.Is(err, utils.ErrInvalidEmail):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Tenant email failed validation checks", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to create invitation", nil, err,
			)
		}
		return
	}
	if link == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Property not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewInvitationFromModel(*link))
}

// ---------------------------------------------------------------------
// GET /api/v1/invitations
// ---------------------------------------------------------------------
func (c *InvitationController) ListInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	links, err := c.invitationService.List(r.Context(), landlordID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to list invitations", nil, err,
		)
		return
	}

	out := make([]dtos.Invitation, 0, len(links))
	for _, l := range links {
		out = append(out, dtos.NewInvitationFromModel(*l))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------
// DELETE /api/v1/invitations/{invitation_id}
// ---------------------------------------------------------------------
func (c *InvitationController) CancelInvitationHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	invitationID, ok := pathUUID(w, r, "invitation_id")
	if !ok {
		return
	}

	err := c.invitationService.Cancel(r.Context(), landlordID, invitationID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Invitation not found", nil, err,
			)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Invitation belongs to another landlord", nil, err,
			)
		case errors.Is(err, utils.ErrInvitationUsed):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Invitation has already been redeemed", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to cancel invitation", nil, err,
			)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// GET /api/v1/invitations/token/{token}
// Public landing page lookup. Used and expired links still resolve so
// the page can say why the link no longer works.
// ---------------------------------------------------------------------
func (c *InvitationController) GetInvitationByTokenHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := pathUUID(w, r, "token")
	if !ok {
		return
	}

	link, err := c.invitationService.GetByToken(r.Context(), token)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to resolve invitation", nil, err,
		)
		return
	}
	if link == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Invitation not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewInvitationFromModel(*link))
}

// ---------------------------------------------------------------------
// POST /api/v1/invitations/token/{token}/redeem
// ---------------------------------------------------------------------
func (c *InvitationController) RedeemInvitationHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := pathUUID(w, r, "token")
	if !ok {
		return
	}

	var req dtos.RedeemInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for redeem payload", nil, err,
		)
		return
	}
	if err := invitationValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Redeem payload failed validation", validationDetails(err), err,
		)
		return
	}

	_, tenancy, err := c.invitationService.Redeem(r.Context(), token, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Invitation not found", nil, err,
			)
		case errors.Is(err, utils.ErrInvitationUsed):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Invitation has already been redeemed", nil, err,
			)
		case errors.Is(err, utils.ErrInvitationExpired):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Invitation has expired", nil, err,
			)
		case errors.Is(err, utils.ErrPropertyOccupied):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Property already has a tenant", nil, err,
			)
		case errors.Is(err, utils.ErrInvalidEmail):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Email failed validation checks", nil, err,
			)
		case errors.Is(err, utils.ErrInvalidPhone):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Phone number failed validation checks", nil, err,
			)
		case errors.Is(err, utils.ErrUsernameExists):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict,
				"Username already taken", nil, err,
			)
		case errors.Is(err, utils.ErrEmailExists):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict,
				"Email already in use", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to redeem invitation", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.RedeemInvitationResponse{
		Message: "Welcome aboard. You can now sign in with your new account.",
		Tenancy: dtos.NewTenancyFromModel(*tenancy),
	})
}
