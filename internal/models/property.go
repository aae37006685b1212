package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingType string

const (
	ListingRent     ListingType = "rent"
	ListingSale     ListingType = "sale"
	ListingShortlet ListingType = "shortlet"
	ListingLand     ListingType = "land"
)

// ParseListingType converts a raw string to a ListingType, or "" if unknown.
func ParseListingType(s string) ListingType {
	switch ListingType(s) {
	case ListingRent, ListingSale, ListingShortlet, ListingLand:
		return ListingType(s)
	default:
		return ""
	}
}

type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyApartment PropertyType = "apartment"
	PropertyFlat      PropertyType = "flat"
	PropertyShop      PropertyType = "shop"
	PropertyLand      PropertyType = "land"
	PropertyOther     PropertyType = "other"
)

// ParsePropertyType converts a raw string to a PropertyType, or "" if unknown.
func ParsePropertyType(s string) PropertyType {
	switch PropertyType(s) {
	case PropertyHouse, PropertyApartment, PropertyFlat, PropertyShop, PropertyLand, PropertyOther:
		return PropertyType(s)
	default:
		return ""
	}
}

// NigerianStates maps the state key stored in the DB to its display name.
// Covers the 36 states plus the FCT.
var NigerianStates = map[string]string{
	"abia":        "Abia",
	"adamawa":     "Adamawa",
	"akwa_ibom":   "Akwa Ibom",
	"anambra":     "Anambra",
	"bauchi":      "Bauchi",
	"bayelsa":     "Bayelsa",
	"benue":       "Benue",
	"borno":       "Borno",
	"cross_river": "Cross River",
	"delta":       "Delta",
	"ebonyi":      "Ebonyi",
	"edo":         "Edo",
	"ekiti":       "Ekiti",
	"enugu":       "Enugu",
	"abuja":       "Abuja (FCT)",
	"gombe":       "Gombe",
	"imo":         "Imo",
	"jigawa":      "Jigawa",
	"kaduna":      "Kaduna",
	"kano":        "Kano",
	"katsina":     "Katsina",
	"kebbi":       "Kebbi",
	"kogi":        "Kogi",
	"kwara":       "Kwara",
	"lagos":       "Lagos",
	"nasarawa":    "Nasarawa",
	"niger":       "Niger",
	"ogun":        "Ogun",
	"ondo":        "Ondo",
	"osun":        "Osun",
	"oyo":         "Oyo",
	"plateau":     "Plateau",
	"rivers":      "Rivers",
	"sokoto":      "Sokoto",
	"taraba":      "Taraba",
	"yobe":        "Yobe",
	"zamfara":     "Zamfara",
}

// IsValidState reports whether key is a known Nigerian state key.
func IsValidState(key string) bool {
	_, ok := NigerianStates[key]
	return ok
}

// Rent periods offered on listings, in months.
var AllowedRentPeriods = []int{1, 2, 3, 6, 12}

const DefaultRentPeriodMonths = 12

// IsValidRentPeriod reports whether months is one of the offered periods.
func IsValidRentPeriod(months int) bool {
	for _, m := range AllowedRentPeriods {
		if months == m {
			return true
		}
	}
	return false
}

// Property is a unit listed by a landlord. Plain field edits are
// last-write-wins; is_occupied flips inside the tenancy transactions
// only.
type Property struct {
	Versioned

	ID          uuid.UUID `json:"id"`
	LandlordID  uuid.UUID `json:"landlord_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	UnitNumber  string    `json:"unit_number"`

	PropertyType PropertyType `json:"property_type"`
	ListingType  ListingType  `json:"listing_type"`
	Bedrooms     *int         `json:"bedrooms,omitempty"`

	RentAmount       decimal.Decimal `json:"rent_amount"`
	RentPeriodMonths int             `json:"rent_period_months"`

	// Shortlet listings carry a check-in / check-out window.
	ShortletStart *time.Time `json:"shortlet_start,omitempty"`
	ShortletEnd   *time.Time `json:"shortlet_end,omitempty"`

	IsOccupied  bool    `json:"is_occupied"`
	IsAvailable bool    `json:"is_available"`
	PhotoURL    *string `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Property) GetID() string { return p.ID.String() }

// FormattedRent renders the rent amount in Naira for display.
func (p *Property) FormattedRent() string {
	return "₦" + p.RentAmount.StringFixed(2)
}

// RentPeriodDisplay returns a human-readable rent period.
func (p *Property) RentPeriodDisplay() string {
	switch p.RentPeriodMonths {
	case 1:
		return "1 Month"
	case 12:
		return "1 Year"
	default:
		return strconv.Itoa(p.RentPeriodMonths) + " Months"
	}
}
