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

type AccountController struct {
	accountService *services.AccountService
}

func NewAccountController(accountService *services.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

var accountValidate = validator.New()

// ---------------------------------------------------------------------
// GET /api/v1/account/profile
// ---------------------------------------------------------------------
func (c *AccountController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := c.accountService.GetProfile(r.Context(), userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load profile", nil, err)
		return
	}
	if user == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Account not found", nil)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserFromModel(*user))
}

// ---------------------------------------------------------------------
// PATCH /api/v1/account/profile
// ---------------------------------------------------------------------
func (c *AccountController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.UserPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := accountValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err)
		return
	}

	user, err := c.accountService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidEmail):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Email failed validation checks", nil, err)
		case errors.Is(err, utils.ErrInvalidPhone):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone number failed validation checks", nil, err)
		case errors.Is(err, utils.ErrEmailExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Email already in use", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to update profile", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserFromModel(*user))
}

// ---------------------------------------------------------------------
// PUT /api/v1/account/profile/picture
// ---------------------------------------------------------------------
func (c *AccountController) SetProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.ProfilePictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := accountValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err)
		return
	}

	user, err := c.accountService.SetProfilePicture(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, utils.ErrFileTooLarge) {
			utils.RespondErrorWithCode(w, http.StatusRequestEntityTooLarge, utils.ErrCodeValidation, "Profile picture exceeds the size limit", nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to update profile picture", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserFromModel(*user))
}

// ---------------------------------------------------------------------
// PUT /api/v1/account/password
// ---------------------------------------------------------------------
func (c *AccountController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := accountValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err)
		return
	}

	if err := c.accountService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Current password is incorrect", nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to change password", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ChangePasswordResponse{Message: "Password changed; please sign in again"})
}

// ---------------------------------------------------------------------
// Tenant documents
// ---------------------------------------------------------------------

// POST /api/v1/account/documents
func (c *AccountController) AddTenantDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreateTenantDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := accountValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", validationDetails(err), err)
		return
	}

	doc, err := c.accountService.AddTenantDocument(r.Context(), userID, req)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to store document", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewTenantDocumentFromModel(*doc))
}

// GET /api/v1/account/documents
func (c *AccountController) ListMyDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	docs, err := c.accountService.ListTenantDocuments(r.Context(), userID, roleFromContext(r), userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list documents", nil, err)
		return
	}

	out := make([]dtos.TenantDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, dtos.NewTenantDocumentFromModel(*d))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/v1/account/tenants/{tenant_id}/documents
//
// Landlords see the documents of their current tenant only.
func (c *AccountController) ListTenantDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tenantID, ok := pathUUID(w, r, "tenant_id")
	if !ok {
		return
	}

	docs, err := c.accountService.ListTenantDocuments(r.Context(), userID, roleFromContext(r), tenantID)
	if err != nil {
		if errors.Is(err, utils.ErrPermissionDenied) {
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodePermissionDenied, "Not allowed to view these documents", nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list documents", nil, err)
		return
	}

	out := make([]dtos.TenantDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, dtos.NewTenantDocumentFromModel(*d))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// DELETE /api/v1/account/documents/{document_id}
func (c *AccountController) DeleteTenantDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	docID, ok := pathUUID(w, r, "document_id")
	if !ok {
		return
	}

	if err := c.accountService.DeleteTenantDocument(r.Context(), userID, docID); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Document not found", nil, err)
		case errors.Is(err, utils.ErrPermissionDenied):
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodePermissionDenied, "Not allowed to delete this document", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to delete document", nil, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
