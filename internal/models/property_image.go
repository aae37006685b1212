package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyImage is a gallery photo attached to a marketplace listing.
type PropertyImage struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	ImageURL   string    `json:"image_url"`
	Caption    *string   `json:"caption,omitempty"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}
