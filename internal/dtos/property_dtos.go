package dtos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentline/rental-service/internal/models"
)

// ----------------------
// Requests
// ----------------------

type CreatePropertyRequest struct {
	Title            string          `json:"title" validate:"required,min=1,max=255"`
	Description      string          `json:"description" validate:"required"`
	Address          string          `json:"address" validate:"required,min=1,max=255"`
	City             string          `json:"city" validate:"required,min=1,max=100"`
	State            string          `json:"state" validate:"required"`
	UnitNumber       string          `json:"unit_number" validate:"omitempty,max=50"`
	PropertyType     string          `json:"property_type" validate:"required,oneof=house apartment flat shop land other"`
	ListingType      string          `json:"listing_type" validate:"required,oneof=rent sale shortlet land"`
	Bedrooms         *int            `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	RentAmount       decimal.Decimal `json:"rent_amount" validate:"required"`
	RentPeriodMonths int             `json:"rent_period_months" validate:"omitempty,oneof=1 2 3 6 12"`
	ShortletStart    *time.Time      `json:"shortlet_start,omitempty"`
	ShortletEnd      *time.Time      `json:"shortlet_end,omitempty"`
	PhotoURL         *string         `json:"photo_url,omitempty" validate:"omitempty,url"`
}

// ----------------------------------------------------------------------
// PropertyPatchRequest
//   - All fields as pointers, so that "null" or omission => no update
//   - Occupancy is never patchable; it only changes inside the
//     tenancy transactions.
//
// ----------------------------------------------------------------------
type PropertyPatchRequest struct {
	Title            *string          `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,min=1"`
	Address          *string          `json:"address,omitempty" validate:"omitempty,min=1,max=255"`
	City             *string          `json:"city,omitempty" validate:"omitempty,min=1,max=100"`
	State            *string          `json:"state,omitempty"`
	UnitNumber       *string          `json:"unit_number,omitempty" validate:"omitempty,max=50"`
	PropertyType     *string          `json:"property_type,omitempty" validate:"omitempty,oneof=house apartment flat shop land other"`
	ListingType      *string          `json:"listing_type,omitempty" validate:"omitempty,oneof=rent sale shortlet land"`
	Bedrooms         *int             `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	RentAmount       *decimal.Decimal `json:"rent_amount,omitempty"`
	RentPeriodMonths *int             `json:"rent_period_months,omitempty" validate:"omitempty,oneof=1 2 3 6 12"`
	ShortletStart    *time.Time       `json:"shortlet_start,omitempty"`
	ShortletEnd      *time.Time       `json:"shortlet_end,omitempty"`
	PhotoURL         *string          `json:"photo_url,omitempty" validate:"omitempty,url"`
	IsAvailable      *bool            `json:"is_available,omitempty"`
}

type AddPropertyImageRequest struct {
	ImageURL string  `json:"image_url" validate:"required,url"`
	Caption  *string `json:"caption,omitempty" validate:"omitempty,max=255"`
}

// ----------------------
// Responses
// ----------------------

type Property struct {
	ID                string              `json:"id"`
	LandlordID        string              `json:"landlord_id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Address           string              `json:"address"`
	City              string              `json:"city"`
	State             string              `json:"state"`
	StateDisplay      string              `json:"state_display"`
	UnitNumber        string              `json:"unit_number,omitempty"`
	PropertyType      models.PropertyType `json:"property_type"`
	ListingType       models.ListingType  `json:"listing_type"`
	Bedrooms          *int                `json:"bedrooms,omitempty"`
	RentAmount        decimal.Decimal     `json:"rent_amount"`
	FormattedRent     string              `json:"formatted_rent"`
	RentPeriodMonths  int                 `json:"rent_period_months"`
	RentPeriodDisplay string              `json:"rent_period_display"`
	ShortletStart     *time.Time          `json:"shortlet_start,omitempty"`
	ShortletEnd       *time.Time          `json:"shortlet_end,omitempty"`
	IsOccupied        bool                `json:"is_occupied"`
	IsAvailable       bool                `json:"is_available"`
	PhotoURL          *string             `json:"photo_url,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

func NewPropertyFromModel(p models.Property) Property {
	return Property{
		ID:                p.ID.String(),
		LandlordID:        p.LandlordID.String(),
		Title:             p.Title,
		Description:       p.Description,
		Address:           p.Address,
		City:              p.City,
		State:             p.State,
		StateDisplay:      models.NigerianStates[p.State],
		UnitNumber:        p.UnitNumber,
		PropertyType:      p.PropertyType,
		ListingType:       p.ListingType,
		Bedrooms:          p.Bedrooms,
		RentAmount:        p.RentAmount,
		FormattedRent:     p.FormattedRent(),
		RentPeriodMonths:  p.RentPeriodMonths,
		RentPeriodDisplay: p.RentPeriodDisplay(),
		ShortletStart:     p.ShortletStart,
		ShortletEnd:       p.ShortletEnd,
		IsOccupied:        p.IsOccupied,
		IsAvailable:       p.IsAvailable,
		PhotoURL:          p.PhotoURL,
		CreatedAt:         p.CreatedAt,
	}
}

type PropertyImage struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	Caption   *string   `json:"caption,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPropertyImageFromModel(img models.PropertyImage) PropertyImage {
	return PropertyImage{
		ID:        img.ID.String(),
		ImageURL:  img.ImageURL,
		Caption:   img.Caption,
		Position:  img.Position,
		CreatedAt: img.CreatedAt,
	}
}

// LandlordContact is the public subset shown on marketplace listings.
// Phone numbers are included only when the landlord opted in.
type LandlordContact struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	WhatsappNumber *string `json:"whatsapp_number,omitempty"`
}

func NewLandlordContactFromModel(u models.User) LandlordContact {
	c := LandlordContact{
		ID:       u.ID.String(),
		FullName: u.FullName(),
		Email:    u.Email,
	}
	if u.ShowPhone {
		c.PhoneNumber = u.PhoneNumber
		c.WhatsappNumber = u.WhatsappNumber
	}
	return c
}

// PropertyDetail is the listing detail payload. The landlord block is
// present on the public marketplace view only.
type PropertyDetail struct {
	Property
	Images   []PropertyImage  `json:"images"`
	Landlord *LandlordContact `json:"landlord,omitempty"`
}

// MarketplacePage is one page of marketplace search results.
type MarketplacePage struct {
	Items []Property `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}
