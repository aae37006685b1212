package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// ApplicationController owns the tenancy application endpoints for both
// sides of the marketplace.
type ApplicationController struct {
	applicationService *services.ApplicationService
}

func NewApplicationController(applicationService *services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

var applicationValidate = validator.New()

// ---------------------------------------------------------------------
// POST /api/v1/applications
// ---------------------------------------------------------------------
func (c *ApplicationController) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for application payload", nil, err,
		)
		return
	}
	if err := applicationValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Application payload failed validation", validationDetails(err), err,
		)
		return
	}

	a, err := c.applicationService.Apply(r.Context(), tenantID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"You cannot apply to your own listing", nil, err,
			)
		case errors.Is(err, utils.ErrPropertyUnavailable):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Listing is not open for applications", nil, err,
			)
		case errors.Is(err, utils.ErrPropertyOccupied):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Property already has a tenant", nil, err,
			)
		case errors.Is(err, utils.ErrActiveTenancyExists):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict,
				"You already hold an active tenancy", nil, err,
			)
		case errors.Is(err, utils.ErrDuplicatePending):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict,
				"You already have a pending application for this property", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to submit application", nil, err,
			)
		}
		return
	}
	if a == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Listing not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewApplicationFromModel(*a))
}

// ---------------------------------------------------------------------
// GET /api/v1/applications/mine
// ---------------------------------------------------------------------
func (c *ApplicationController) ListMyApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := c.applicationService.ListMine(r.Context(), tenantID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to list applications", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// ---------------------------------------------------------------------
// GET /api/v1/applications/incoming
// ---------------------------------------------------------------------
func (c *ApplicationController) ListIncomingApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var (
		items []dtos.ApplicationDetail
		err   error
	)
	if raw := r.URL.Query().Get("property_id"); raw != "" {
		propertyID, perr := uuid.Parse(raw)
		if perr != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"Invalid property_id query param", nil, perr,
			)
			return
		}
		items, err = c.applicationService.ListForProperty(r.Context(), landlordID, propertyID)
	} else {
		items, err = c.applicationService.ListForLandlord(r.Context(), landlordID)
	}
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Property not found", nil, err,
			)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Property belongs to another landlord", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to list incoming applications", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// ---------------------------------------------------------------------
// GET /api/v1/applications/{application_id}
// ---------------------------------------------------------------------
func (c *ApplicationController) GetApplicationHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(w, r, "application_id")
	if !ok {
		return
	}

	detail, err := c.applicationService.Get(r.Context(), callerID, roleFromContext(r), applicationID)
	if err != nil {
		if errors.Is(err, utils.ErrPermissionDenied) {
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Application involves another tenant and landlord", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to fetch application", nil, err,
		)
		return
	}
	if detail == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Application not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// ---------------------------------------------------------------------
// POST /api/v1/applications/{application_id}/accept
// ---------------------------------------------------------------------
func (c *ApplicationController) AcceptApplicationHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(w, r, "application_id")
	if !ok {
		return
	}

	// Body is optional; an empty one means the tenancy starts today.
	var req dtos.AcceptApplicationRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"Invalid JSON for accept payload", nil, err,
			)
			return
		}
	}

	tenancy, err := c.applicationService.Accept(r.Context(), landlordID, applicationID, req.StartDate)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Application not found", nil, err,
			)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Application targets another landlord's property", nil, err,
			)
		case errors.Is(err, utils.ErrApplicationNotPending):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Application has already been settled", nil, err,
			)
		case errors.Is(err, utils.ErrPropertyOccupied):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Property already has a tenant", nil, err,
			)
		case errors.Is(err, utils.ErrActiveTenancyExists):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict,
				"Applicant already holds an active tenancy", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to accept application", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewTenancyFromModel(*tenancy))
}

// ---------------------------------------------------------------------
// POST /api/v1/applications/{application_id}/reject
// ---------------------------------------------------------------------
func (c *ApplicationController) RejectApplicationHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(w, r, "application_id")
	if !ok {
		return
	}

	var req dtos.RejectApplicationRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"Invalid JSON for reject payload", nil, err,
			)
			return
		}
	}
	if err := applicationValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Reject payload failed validation", validationDetails(err), err,
		)
		return
	}

	err := c.applicationService.Reject(r.Context(), landlordID, applicationID, req.Reply)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Application not found", nil, err,
			)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Application targets another landlord's property", nil, err,
			)
		case errors.Is(err, utils.ErrApplicationNotPending):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Application has already been settled", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to reject application", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ApplicationActionResponse{Message: "Application rejected"})
}

// ---------------------------------------------------------------------
// POST /api/v1/applications/{application_id}/reply
// ---------------------------------------------------------------------
func (c *ApplicationController) ReplyToApplicationHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(w, r, "application_id")
	if !ok {
		return
	}

	var req dtos.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for reply payload", nil, err,
		)
		return
	}
	if err := applicationValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Reply payload failed validation", validationDetails(err), err,
		)
		return
	}

	a, err := c.applicationService.Reply(r.Context(), landlordID, applicationID, req.Reply)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Application targets another landlord's property", nil, err,
			)
		case errors.Is(err, utils.ErrEmptyReply):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Reply cannot be blank", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to store reply", nil, err,
			)
		}
		return
	}
	if a == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Application not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewApplicationFromModel(*a))
}

// ---------------------------------------------------------------------
// POST /api/v1/applications/{application_id}/withdraw
// ---------------------------------------------------------------------
func (c *ApplicationController) WithdrawApplicationHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(w, r, "application_id")
	if !ok {
		return
	}

	err := c.applicationService.Withdraw(r.Context(), tenantID, applicationID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Application not found", nil, err,
			)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Application belongs to another tenant", nil, err,
			)
		case errors.Is(err, utils.ErrApplicationNotPending):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Application has already been settled", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to withdraw application", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ApplicationActionResponse{Message: "Application withdrawn"})
}
