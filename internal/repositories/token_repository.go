package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

// TokenRepository is the interface used by the JWT service and the
// auth service to manage refresh tokens in the DB.
//
// Normal usage (login, refresh, logout) should call `Remove*` methods
// so that tokens are fully deleted from the database.
//
// Admin / security usage may call the `Revoke*` methods, which set
// revoked = TRUE (keeping the row present for audit / compliance).
type TokenRepository interface {
	// CreateRefreshToken stores a newly issued refresh token (hashed) in the DB.
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken fetches a refresh token by its raw token (we hash it internally).
	// Returns nil if not found.
	GetRefreshToken(ctx context.Context, rawToken string) (*models.RefreshToken, error)

	// RemoveRefreshToken DELETEs a single token row (by its UUID) from the DB.
	RemoveRefreshToken(ctx context.Context, id uuid.UUID) error

	// RemoveAllRefreshTokensByUserID DELETEs all refresh tokens for a given user.
	RemoveAllRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error

	// RevokeRefreshToken sets revoked = TRUE for the given token ID.
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error

	// RevokeAllRefreshTokensByUserID sets revoked = TRUE for all tokens of a user.
	RevokeAllRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error

	// Blacklisting for short-lived access tokens:
	BlacklistToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)

	CleanupExpiredRefreshTokens(ctx context.Context) error
}

type tokenRepository struct {
	db DB
}

func NewTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db}
}

// ----------------------------
// Create / Get
// ----------------------------

func (r *tokenRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
        INSERT INTO refresh_tokens (id, user_id, refresh_token, expires_at, created_at, revoked, ip_address, device_id)
        VALUES ($1, $2, $3, $4, NOW(), $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		utils.HashToken(token.Token),
		token.ExpiresAt,
		token.Revoked,
		token.IPAddress,
		token.DeviceID,
	)
	return err
}

func (r *tokenRepository) GetRefreshToken(ctx context.Context, rawToken string) (*models.RefreshToken, error) {
	hashed := utils.HashToken(rawToken)
	query := `
        SELECT id, user_id, refresh_token, expires_at, created_at, revoked, ip_address, device_id
        FROM refresh_tokens
        WHERE refresh_token = $1
    `
	row := r.db.QueryRow(ctx, query, hashed)

	var rt models.RefreshToken
	err := row.Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Token,
		&rt.ExpiresAt,
		&rt.CreatedAt,
		&rt.Revoked,
		&rt.IPAddress,
		&rt.DeviceID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

// ----------------------------
// Remove methods (normal usage)
// ----------------------------

func (r *tokenRepository) RemoveRefreshToken(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM refresh_tokens WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *tokenRepository) RemoveAllRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// ----------------------------
// Revoke methods (admin usage)
// ----------------------------

func (r *tokenRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *tokenRepository) RevokeAllRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// ----------------------------
// Blacklist / Cleanup
// ----------------------------

func (r *tokenRepository) BlacklistToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	query := `
        INSERT INTO blacklisted_tokens (id, token_id, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
    `
	_, err := r.db.Exec(ctx, query, uuid.New(), tokenID, expiresAt)
	return err
}

func (r *tokenRepository) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM blacklisted_tokens
            WHERE token_id = $1 AND expires_at > NOW()
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, tokenID).Scan(&exists)
	return exists, err
}

func (r *tokenRepository) CleanupExpiredRefreshTokens(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`); err != nil {
		return err
	}
	// Blacklist rows only matter until the token they block expires.
	_, err := r.db.Exec(ctx, `DELETE FROM blacklisted_tokens WHERE expires_at < NOW()`)
	return err
}
