package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/utils"
)

// One retry on transient network errors with a small back-off.
const cleanupRetryDelay = 3 * time.Second

// Stale invitation links stay visible for a month past expiry before
// the nightly job removes them. Validity never depends on the job
// running; expiry is checked on every redeem.
const invitationPurgeGrace = 30 * 24 * time.Hour

// CleanupService runs the nightly housekeeping pass.
type CleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type cleanupService struct {
	tokenRepo repositories.TokenRepository
	invRepo   repositories.InvitationRepository
}

func NewCleanupService(
	tokenRepo repositories.TokenRepository,
	invRepo repositories.InvitationRepository,
) CleanupService {
	return &cleanupService{
		tokenRepo: tokenRepo,
		invRepo:   invRepo,
	}
}

// runWithRetry executes op(ctx) and, if it returns a transient network
// error (EOF, pgconn safe-to-retry, or the common closed-connection
// message), waits a moment then retries once.
func (s *cleanupService) runWithRetry(
	ctx context.Context,
	op func(context.Context) error,
) error {
	if err := op(ctx); err != nil {
		if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
			strings.Contains(err.Error(), "connection was closed") {
			utils.Logger.WithError(err).Warn("nightly cleanup hit transient DB error; retrying once")
			time.Sleep(cleanupRetryDelay)
			return op(ctx)
		}
		return err
	}
	return nil
}

// CleanupDaily removes expired refresh tokens and long-dead
// invitation links.
func (s *cleanupService) CleanupDaily(ctx context.Context) error {
	logger := utils.Logger

	if err := s.runWithRetry(ctx, s.tokenRepo.CleanupExpiredRefreshTokens); err != nil {
		logger.WithError(err).Error("Failed to cleanup expired refresh_tokens")
		return err
	}

	if err := s.runWithRetry(ctx, func(ctx context.Context) error {
		cutoff := time.Now().Add(-invitationPurgeGrace)
		purged, err := s.invRepo.PurgeExpired(ctx, cutoff)
		if err != nil {
			return err
		}
		if purged > 0 {
			logger.Infof("Purged %d stale invitation links", purged)
		}
		return nil
	}); err != nil {
		logger.WithError(err).Error("Failed to purge stale invitation_links")
		return err
	}

	logger.Info("Daily cleanup completed successfully.")
	return nil
}
