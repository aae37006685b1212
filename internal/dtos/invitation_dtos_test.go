package dtos

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rentline/rental-service/internal/models"
)

func TestNewInvitationFromModelState(t *testing.T) {
	base := models.InvitationLink{
		ID:         uuid.New(),
		LandlordID: uuid.New(),
		PropertyID: uuid.New(),
		Token:      uuid.New(),
		CreatedAt:  time.Now().Add(-time.Hour),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}

	if got := NewInvitationFromModel(base).State; got != "valid" {
		t.Fatalf("Expected a fresh link to render state 'valid', got %q", got)
	}

	used := base
	used.IsUsed = true
	if got := NewInvitationFromModel(used).State; got != "used" {
		t.Fatalf("Expected a used link to render state 'used', got %q", got)
	}

	expired := base
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if got := NewInvitationFromModel(expired).State; got != "expired" {
		t.Fatalf("Expected a stale link to render state 'expired', got %q", got)
	}

	// A used link that has also expired still reads as used.
	usedAndExpired := used
	usedAndExpired.ExpiresAt = time.Now().Add(-time.Minute)
	if got := NewInvitationFromModel(usedAndExpired).State; got != "used" {
		t.Fatalf("Expected 'used' to win over 'expired', got %q", got)
	}
}
