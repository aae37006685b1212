package models

import (
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleLandlord RoleType = "landlord"
	RoleTenant   RoleType = "tenant"
	RoleAdmin    RoleType = "admin"
)

// ParseRole converts a raw string to a RoleType, or "" if unknown.
func ParseRole(s string) RoleType {
	switch RoleType(s) {
	case RoleLandlord, RoleTenant, RoleAdmin:
		return RoleType(s)
	default:
		return ""
	}
}

type GenderType string

const (
	GenderMale   GenderType = "male"
	GenderFemale GenderType = "female"
)

type User struct {
	Versioned

	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         RoleType  `json:"role"`

	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	Gender           *GenderType `json:"gender,omitempty"`
	PhoneNumber      *string     `json:"phone_number,omitempty"`
	WhatsappNumber   *string     `json:"whatsapp_number,omitempty"`
	TelegramUsername *string     `json:"telegram_username,omitempty"`
	ShowPhone        bool        `json:"show_phone"`

	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ----- concurrency helpers -----
func (u *User) GetID() string { return u.ID.String() }

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
