package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LoginAttempts struct {
	UserID       uuid.UUID
	AttemptCount int
	LockedUntil  *time.Time
	UpdatedAt    time.Time
	CreatedAt    time.Time
}

type LoginAttemptsRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*LoginAttempts, error)
	Increment(ctx context.Context, userID uuid.UUID, lockDuration, window time.Duration, maxAttempts int) error
	Reset(ctx context.Context, userID uuid.UUID) error
	IsLocked(ctx context.Context, userID uuid.UUID) (bool, time.Time, error)
}

type loginAttemptsRepository struct {
	db DB
}

func NewLoginAttemptsRepository(db DB) LoginAttemptsRepository {
	return &loginAttemptsRepository{db: db}
}

func (r *loginAttemptsRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*LoginAttempts, error) {
	query := `
        SELECT user_id, attempt_count, locked_until, updated_at, created_at
        FROM login_attempts
        WHERE user_id = $1
    `
	row := r.db.QueryRow(ctx, query, userID)
	la := &LoginAttempts{}
	err := row.Scan(
		&la.UserID,
		&la.AttemptCount,
		&la.LockedUntil,
		&la.UpdatedAt,
		&la.CreatedAt,
	)
	if err == nil {
		return la, nil
	}
	// If no record => insert fresh
	insert := `
        INSERT INTO login_attempts (user_id, attempt_count, locked_until, updated_at, created_at)
        VALUES ($1, 0, NULL, NOW(), NOW())
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING user_id, attempt_count, locked_until, updated_at, created_at
    `
	row = r.db.QueryRow(ctx, insert, userID)
	err = row.Scan(
		&la.UserID,
		&la.AttemptCount,
		&la.LockedUntil,
		&la.UpdatedAt,
		&la.CreatedAt,
	)
	return la, err
}

func (r *loginAttemptsRepository) Increment(
	ctx context.Context,
	userID uuid.UUID,
	lockDuration, window time.Duration,
	maxAttempts int,
) error {
	query := `
WITH current AS (
    SELECT user_id,
           attempt_count,
           locked_until,
           updated_at
    FROM login_attempts
    WHERE user_id = $1
    FOR UPDATE
)
UPDATE login_attempts
SET attempt_count = CASE
    WHEN (current.locked_until IS NOT NULL AND current.locked_until > NOW())
         THEN current.attempt_count
    ELSE CASE
        WHEN (NOW() - current.updated_at) > $3
            THEN 1
        ELSE current.attempt_count + 1
    END
END,
locked_until = CASE
    WHEN (current.locked_until IS NOT NULL AND current.locked_until > NOW())
         THEN current.locked_until
    ELSE CASE
        WHEN ((NOW() - current.updated_at) <= $3
              AND (current.attempt_count + 1) >= $4)
            THEN NOW() + $2
        ELSE NULL
    END
END,
updated_at = NOW()
FROM current
WHERE login_attempts.user_id = current.user_id
RETURNING login_attempts.user_id
    `
	_, err := r.db.Exec(ctx, query, userID, lockDuration, window, maxAttempts)
	return err
}

func (r *loginAttemptsRepository) Reset(ctx context.Context, userID uuid.UUID) error {
	query := `
        UPDATE login_attempts
        SET attempt_count = 0,
            locked_until = NULL,
            updated_at = NOW()
        WHERE user_id = $1
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *loginAttemptsRepository) IsLocked(ctx context.Context, userID uuid.UUID) (bool, time.Time, error) {
	query := `
        SELECT locked_until
        FROM login_attempts
        WHERE user_id = $1
    `
	row := r.db.QueryRow(ctx, query, userID)
	var lockedUntil *time.Time
	if err := row.Scan(&lockedUntil); err != nil {
		return false, time.Time{}, err
	}
	if lockedUntil != nil && lockedUntil.After(time.Now()) {
		return true, *lockedUntil, nil
	}
	return false, time.Time{}, nil
}
