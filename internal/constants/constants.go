package constants

import (
	"time"
)

// Invitation links
const (
	InvitationLinkTTL = 7 * 24 * time.Hour // single-use links die a week after creation
)

// Marketplace paging
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Upload limits
const (
	ProfilePictureMaxBytes = 5 * 1024 * 1024 // enforced at the boundary, storage itself never checks
)

// Tenancy defaults
const (
	DefaultMoveInLeadDays = 0 // move-in defaults to the day of redemption/acceptance
)
