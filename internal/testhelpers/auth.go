package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/middleware"
	"github.com/rentline/rental-service/internal/models"
)

// CreateMobileJWT mints an access token bound to a device ID, the shape the
// middleware expects from android/ios clients.
func (h *TestHelper) CreateMobileJWT(userID uuid.UUID, role models.RoleType, deviceID string) string {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss":       middleware.TokenIssuer,
		"sub":       userID.String(),
		"iat":       now,
		"exp":       now + 15*60,
		"role":      string(role),
		"device_id": deviceID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test JWT (mobile style)")
	return signed
}

// CreateWebJWT mints an access token bound to an IP address, the shape the
// middleware expects from web clients.
func (h *TestHelper) CreateWebJWT(userID uuid.UUID, role models.RoleType, ipAddress string) string {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss":  middleware.TokenIssuer,
		"sub":  userID.String(),
		"iat":  now,
		"exp":  now + 15*60,
		"role": string(role),
		"ip":   ipAddress,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test JWT (web style)")
	return signed
}
