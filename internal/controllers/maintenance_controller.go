package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// MaintenanceController owns the maintenance request endpoints for
// reporting tenants and resolving landlords.
type MaintenanceController struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceController(maintenanceService *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{maintenanceService: maintenanceService}
}

var maintenanceValidate = validator.New()

// ---------------------------------------------------------------------
// POST /api/v1/maintenance
// ---------------------------------------------------------------------
func (c *MaintenanceController) CreateMaintenanceRequestHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for maintenance payload", nil, err,
		)
		return
	}
	if err := maintenanceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Maintenance payload failed validation", validationDetails(err), err,
		)
		return
	}

	out, err := c.maintenanceService.Create(r.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, utils.ErrTenancyNotActive) {
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"You need an active tenancy on this property", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to create maintenance request", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, out)
}

// ---------------------------------------------------------------------
// GET /api/v1/maintenance/mine
// ---------------------------------------------------------------------
func (c *MaintenanceController) ListMyMaintenanceRequestsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := c.maintenanceService.ListMine(r.Context(), tenantID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to list maintenance requests", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// ---------------------------------------------------------------------
// GET /api/v1/maintenance   (landlord, ?property_id= and ?status= optional)
// ---------------------------------------------------------------------
func (c *MaintenanceController) ListLandlordMaintenanceRequestsHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var status *models.MaintenanceStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := models.ParseMaintenanceStatus(raw)
		if parsed == "" {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Unknown status filter", nil, nil,
			)
			return
		}
		status = &parsed
	}

	var (
		items []dtos.MaintenanceDetail
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
		items, err = c.maintenanceService.ListForProperty(r.Context(), landlordID, propertyID, status)
	} else {
		items, err = c.maintenanceService.ListForLandlord(r.Context(), landlordID, status)
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
				"Failed to list maintenance requests", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// ---------------------------------------------------------------------
// GET /api/v1/maintenance/unread_count
// ---------------------------------------------------------------------
func (c *MaintenanceController) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	n, err := c.maintenanceService.UnreadCount(r.Context(), landlordID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to count unread maintenance requests", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.UnreadCountResponse{Unread: n})
}

// ---------------------------------------------------------------------
// GET /api/v1/maintenance/{request_id}
// ---------------------------------------------------------------------
func (c *MaintenanceController) GetMaintenanceRequestHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "request_id")
	if !ok {
		return
	}

	detail, err := c.maintenanceService.Get(r.Context(), callerID, roleFromContext(r), requestID)
	if err != nil {
		if errors.Is(err, utils.ErrPermissionDenied) {
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Request involves another tenant and landlord", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to fetch maintenance request", nil, err,
		)
		return
	}
	if detail == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Maintenance request not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// ---------------------------------------------------------------------
// PATCH /api/v1/maintenance/{request_id}/status
// ---------------------------------------------------------------------
func (c *MaintenanceController) UpdateMaintenanceStatusHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "request_id")
	if !ok {
		return
	}

	var req dtos.UpdateMaintenanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for status payload", nil, err,
		)
		return
	}
	if err := maintenanceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Status payload failed validation", validationDetails(err), err,
		)
		return
	}

	out, err := c.maintenanceService.UpdateStatus(r.Context(), landlordID, requestID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Request belongs to another landlord's property", nil, err,
			)
		case errors.Is(err, utils.ErrRowVersionConflict):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
				"Another update occurred, please refresh", nil, err,
			)
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Maintenance request not found", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to update maintenance status", nil, err,
			)
		}
		return
	}
	if out == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Maintenance request not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------
// PATCH /api/v1/maintenance/{request_id}
// ---------------------------------------------------------------------
func (c *MaintenanceController) EditMaintenanceRequestHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "request_id")
	if !ok {
		return
	}

	var req dtos.MaintenancePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for maintenance patch", nil, err,
		)
		return
	}
	if err := maintenanceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Maintenance patch failed validation", validationDetails(err), err,
		)
		return
	}

	out, err := c.maintenanceService.Edit(r.Context(), tenantID, requestID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Request belongs to another tenant", nil, err,
			)
		case errors.Is(err, utils.ErrRequestLocked):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Request can no longer be edited", nil, err,
			)
		case errors.Is(err, utils.ErrRowVersionConflict):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
				"Another update occurred, please refresh", nil, err,
			)
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Maintenance request not found", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to edit maintenance request", nil, err,
			)
		}
		return
	}
	if out == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Maintenance request not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------
// DELETE /api/v1/maintenance/{request_id}/images/{image_id}
// ---------------------------------------------------------------------
func (c *MaintenanceController) DeleteMaintenanceImageHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "request_id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(w, r, "image_id")
	if !ok {
		return
	}

	err := c.maintenanceService.DeleteImage(r.Context(), tenantID, requestID, imageID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Image not found", nil, err,
			)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Request belongs to another tenant", nil, err,
			)
		case errors.Is(err, utils.ErrRequestLocked):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Request can no longer be edited", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to delete image", nil, err,
			)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
