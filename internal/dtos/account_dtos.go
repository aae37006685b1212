package dtos

import (
	"time"

	"github.com/rentline/rental-service/internal/models"
)

// User DTO for GET endpoints. PasswordHash never leaves the model
// layer; everything else mirrors the account as stored.
type User struct {
	ID                string             `json:"id"`
	Username          string             `json:"username"`
	Email             string             `json:"email"`
	Role              models.RoleType    `json:"role"`
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	Gender            *models.GenderType `json:"gender,omitempty"`
	PhoneNumber       *string            `json:"phone_number,omitempty"`
	WhatsappNumber    *string            `json:"whatsapp_number,omitempty"`
	TelegramUsername  *string            `json:"telegram_username,omitempty"`
	ShowPhone         bool               `json:"show_phone"`
	ProfilePictureURL *string            `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

func NewUserFromModel(u models.User) User {
	return User{
		ID:                u.ID.String(),
		Username:          u.Username,
		Email:             u.Email,
		Role:              u.Role,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Gender:            u.Gender,
		PhoneNumber:       u.PhoneNumber,
		WhatsappNumber:    u.WhatsappNumber,
		TelegramUsername:  u.TelegramUsername,
		ShowPhone:         u.ShowPhone,
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
	}
}

// ----------------------------------------------------------------------
// UserPatchRequest
//   - All fields as pointers, so that "null" or omission => no update
//
// ----------------------------------------------------------------------
type UserPatchRequest struct {
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName        *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName         *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Gender           *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	PhoneNumber      *string `json:"phone_number,omitempty" validate:"omitempty,e164"`
	WhatsappNumber   *string `json:"whatsapp_number,omitempty" validate:"omitempty,e164"`
	TelegramUsername *string `json:"telegram_username,omitempty" validate:"omitempty,min=1,max=32"`
	ShowPhone        *bool   `json:"show_phone,omitempty"`
}

// ProfilePictureRequest points at an already-uploaded image. The
// declared size is checked against the account picture cap.
type ProfilePictureRequest struct {
	URL       string `json:"url" validate:"required,url"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type ChangePasswordResponse struct {
	Message string `json:"message"`
}

// ----------------------
// Tenant documents
// ----------------------

type CreateTenantDocumentRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	FileURL string `json:"file_url" validate:"required,url"`
}

type TenantDocument struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTenantDocumentFromModel(d models.TenantDocument) TenantDocument {
	return TenantDocument{
		ID:        d.ID.String(),
		TenantID:  d.TenantID.String(),
		Name:      d.Name,
		FileURL:   d.FileURL,
		CreatedAt: d.CreatedAt,
	}
}
