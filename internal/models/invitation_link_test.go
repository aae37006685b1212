package models

import (
	"testing"
	"time"
)

func TestInvitationLinkIsValid(t *testing.T) {
	fresh := &InvitationLink{ExpiresAt: time.Now().Add(24 * time.Hour)}
	if !fresh.IsValid() {
		t.Fatal("Expected an unused, unexpired link to be valid")
	}
	if fresh.IsExpired() {
		t.Fatal("Expected a link expiring tomorrow to not be expired")
	}

	used := &InvitationLink{IsUsed: true, ExpiresAt: time.Now().Add(24 * time.Hour)}
	if used.IsValid() {
		t.Fatal("Expected a used link to be invalid")
	}

	expired := &InvitationLink{ExpiresAt: time.Now().Add(-time.Minute)}
	if !expired.IsExpired() {
		t.Fatal("Expected a link past its expiry to report expired")
	}
	if expired.IsValid() {
		t.Fatal("Expected an expired link to be invalid")
	}
}
