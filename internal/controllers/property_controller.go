package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/rentline/rental-service/internal/constants"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// PropertyController owns the landlord catalog endpoints and the public
// marketplace endpoints.
type PropertyController struct {
	propertyService *services.PropertyService
}

func NewPropertyController(propertyService *services.PropertyService) *PropertyController {
	return &PropertyController{propertyService: propertyService}
}

var propertyValidate = validator.New()

// ---------------------------------------------------------------------
// POST /api/v1/properties
// ---------------------------------------------------------------------
func (c *PropertyController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for property payload", nil, err,
		)
		return
	}
	if err := propertyValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Property payload failed validation", validationDetails(err), err,
		)
		return
	}

	p, err := c.propertyService.Create(r.Context(), landlordID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrUnknownState):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"State is not a recognised Nigerian state key", nil, err,
			)
		case errors.Is(err, utils.ErrInvalidDateRange):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Shortlet listings need a start and end date, end after start", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to create property", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewPropertyFromModel(*p))
}

// ---------------------------------------------------------------------
// GET /api/v1/properties
// ---------------------------------------------------------------------
func (c *PropertyController) ListMyPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := c.propertyService.ListMine(r.Context(), landlordID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to list properties", nil, err,
		)
		return
	}

	out := make([]dtos.Property, 0, len(items))
	for _, p := range items {
		out = append(out, dtos.NewPropertyFromModel(*p))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------
// GET /api/v1/properties/{property_id}
// ---------------------------------------------------------------------
func (c *PropertyController) GetMyPropertyHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, r, "property_id")
	if !ok {
		return
	}

	detail, err := c.propertyService.OwnedDetail(r.Context(), landlordID, propertyID)
	if err != nil {
		if errors.Is(err, utils.ErrPermissionDenied) {
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Property belongs to another landlord", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to fetch property", nil, err,
		)
		return
	}
	if detail == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Property not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// ---------------------------------------------------------------------
// PATCH /api/v1/properties/{property_id}
// ---------------------------------------------------------------------
func (c *PropertyController) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, r, "property_id")
	if !ok {
		return
	}

	var req dtos.PropertyPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for property patch", nil, err,
		)
		return
	}
	if err := propertyValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Property patch failed validation", validationDetails(err), err,
		)
		return
	}

	p, err := c.propertyService.Update(r.Context(), landlordID, propertyID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Property belongs to another landlord", nil, err,
			)
		case errors.Is(err, utils.ErrUnknownState):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"State is not a recognised Nigerian state key", nil, err,
			)
		case errors.Is(err, utils.ErrInvalidDateRange):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Shortlet listings need a start and end date, end after start", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to update property", nil, err,
			)
		}
		return
	}
	if p == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Property not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPropertyFromModel(*p))
}

// ---------------------------------------------------------------------
// DELETE /api/v1/properties/{property_id}
// ---------------------------------------------------------------------
func (c *PropertyController) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, r, "property_id")
	if !ok {
		return
	}

	err := c.propertyService.Delete(r.Context(), landlordID, propertyID)
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
		case errors.Is(err, utils.ErrPropertyOccupied):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict,
				"Property still has an active tenancy", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to delete property", nil, err,
			)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// POST /api/v1/properties/{property_id}/images
// ---------------------------------------------------------------------
func (c *PropertyController) AddPropertyImageHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, r, "property_id")
	if !ok {
		return
	}

	var req dtos.AddPropertyImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for image payload", nil, err,
		)
		return
	}
	if err := propertyValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Image payload failed validation", validationDetails(err), err,
		)
		return
	}

	img, err := c.propertyService.AddImage(r.Context(), landlordID, propertyID, req)
	if err != nil {
		if errors.Is(err, utils.ErrPermissionDenied) {
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodePermissionDenied,
				"Property belongs to another landlord", nil, err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to add property image", nil, err,
		)
		return
	}
	if img == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Property not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewPropertyImageFromModel(*img))
}

// ---------------------------------------------------------------------
// DELETE /api/v1/properties/{property_id}/images/{image_id}
// ---------------------------------------------------------------------
func (c *PropertyController) DeletePropertyImageHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, r, "property_id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(w, r, "image_id")
	if !ok {
		return
	}

	err := c.propertyService.DeleteImage(r.Context(), landlordID, propertyID, imageID)
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
				"Property belongs to another landlord", nil, err,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"Failed to delete property image", nil, err,
			)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// GET /api/v1/marketplace
// Public. Filters arrive as query params; unknown enum values are a 400
// rather than a silent empty result.
// ---------------------------------------------------------------------
func (c *PropertyController) MarketplaceHandler(w http.ResponseWriter, r *http.Request) {
	f, page, size, err := parseMarketplaceQuery(r)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			err.Error(), nil, nil,
		)
		return
	}

	result, err := c.propertyService.Marketplace(r.Context(), f, page, size)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to search listings", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// ---------------------------------------------------------------------
// GET /api/v1/marketplace/{property_id}
// ---------------------------------------------------------------------
func (c *PropertyController) MarketplaceDetailHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := pathUUID(w, r, "property_id")
	if !ok {
		return
	}

	detail, err := c.propertyService.MarketplaceDetail(r.Context(), propertyID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to fetch listing", nil, err,
		)
		return
	}
	if detail == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Listing not found", nil, nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// ----------------------------------------------------------------
// parseMarketplaceQuery
// ----------------------------------------------------------------
func parseMarketplaceQuery(r *http.Request) (repositories.MarketplaceFilter, int, int, error) {
	var f repositories.MarketplaceFilter
	q := r.URL.Query()

	f.Query = strings.TrimSpace(q.Get("q"))

	if state := strings.ToLower(strings.TrimSpace(q.Get("state"))); state != "" {
		if !models.IsValidState(state) {
			return f, 0, 0, fmt.Errorf("unknown state filter %q", state)
		}
		f.State = state
	}
	if raw := q.Get("listing_type"); raw != "" {
		lt := models.ParseListingType(raw)
		if lt == "" {
			return f, 0, 0, fmt.Errorf("unknown listing_type %q", raw)
		}
		f.ListingType = lt
	}
	if raw := q.Get("property_type"); raw != "" {
		pt := models.ParsePropertyType(raw)
		if pt == "" {
			return f, 0, 0, fmt.Errorf("unknown property_type %q", raw)
		}
		f.PropertyType = pt
	}
	if raw := q.Get("min_bedrooms"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, 0, 0, fmt.Errorf("invalid min_bedrooms param: %q", raw)
		}
		f.MinBedrooms = &n
	}
	if raw := q.Get("min_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, 0, 0, fmt.Errorf("invalid min_price param: %w", err)
		}
		f.MinPrice = &d
	}
	if raw := q.Get("max_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, 0, 0, fmt.Errorf("invalid max_price param: %w", err)
		}
		f.MaxPrice = &d
	}

	// Bad page/size values fall back to defaults instead of erroring.
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size < 1 {
		size = constants.DefaultPageSize
	}
	if size > constants.MaxPageSize {
		size = constants.MaxPageSize
	}

	return f, page, size, nil
}
