package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// TenancyController owns the tenancy lifecycle endpoints. Termination
// is a two-party handshake, so the same endpoint serves landlord and
// tenant.
type TenancyController struct {
	tenancyService *services.TenancyService
}

func NewTenancyController(tenancyService *services.TenancyService) *TenancyController {
	return &TenancyController{tenancyService: tenancyService}
}

// pastParam reads ?past=true; anything unparseable means current.
func pastParam(r *http.Request) bool {
	past, err := strconv.ParseBool(r.URL.Query().Get("past"))
	return err == nil && past
}

// ---------------------------------------------------------------------
// GET /api/v1/tenancies          (landlord)
// ---------------------------------------------------------------------
func (c *TenancyController) ListLandlordTenanciesHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := c.tenancyService.ListForLandlord(r.Context(), landlordID, pastParam(r))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to list tenancies", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// ---------------------------------------------------------------------
// GET /api/v1/tenancies/mine     (tenant)
// ---------------------------------------------------------------------
func (c *TenancyController) ListTenantTenanciesHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := c.tenancyService.ListForTenant(r.Context(), tenantID, pastParam(r))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to list tenancies", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// ---------------------------------------------------------------------
// GET /api/v1/tenancies/{tenancy_id}
// ---------------------------------------------------------------------
func (c *TenancyController) GetTenancyHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tenancyID, ok := pathUUID(w, r, "tenancy_id")
	if !ok {
		return
	}

	detail, err := c.tenancyService.Get(r.Context(), callerID, roleFromContext(r), tenancyID)
	if err != nil {
		if errors.Is(err, utils.ErrNotTenancyParty) {
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Tenancy involves another landlord and tenant", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to fetch tenancy", nil, err,
		)
		return
	}
	if detail == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Tenancy not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// ---------------------------------------------------------------------
// POST /api/v1/tenancies/{tenancy_id}/request_termination
// ---------------------------------------------------------------------
func (c *TenancyController) RequestTerminationHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tenancyID, ok := pathUUID(w, r, "tenancy_id")
	if !ok {
		return
	}

	t, err := c.tenancyService.RequestTermination(r.Context(), actorID, roleFromContext(r), tenancyID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Tenancy not found", nil, err,
			)
		case errors.Is(err, utils.ErrNotTenancyParty):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Tenancy involves another landlord and tenant", nil, err,
			)
		case errors.Is(err, utils.ErrTenancyFinalized):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Tenancy has already ended", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to record termination request", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewTenancyFromModel(*t))
}

// ---------------------------------------------------------------------
// POST /api/v1/admin/tenancies/{tenancy_id}/archive
// ---------------------------------------------------------------------
func (c *TenancyController) ArchiveTenancyHandler(w http.ResponseWriter, r *http.Request) {
	tenancyID, ok := pathUUID(w, r, "tenancy_id")
	if !ok {
		return
	}

	err := c.tenancyService.Archive(r.Context(), tenancyID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound,
				"Tenancy not found", nil, err,
			)
		case errors.Is(err, utils.ErrTenancyNotEnded):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeInvalidState,
				"Only terminated tenancies can be archived", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to archive tenancy", nil, err,
			)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
