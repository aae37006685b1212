package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newActiveTenancy() *Tenancy {
	return &Tenancy{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		LandlordID: uuid.New(),
		PropertyID: uuid.New(),
		Status:     TenancyActive,
		StartDate:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRequestTerminationOneParty(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	ten := newActiveTenancy()
	if !ten.RequestTermination(RoleLandlord, now) {
		t.Fatal("Expected first landlord request to change the tenancy")
	}
	if ten.Status != TenancyPendingTermination {
		t.Fatalf("Expected status %q after one party, got %q", TenancyPendingTermination, ten.Status)
	}
	if !ten.LandlordTerminated || ten.TenantTerminated {
		t.Fatalf("Expected only the landlord flag set, got landlord=%v tenant=%v",
			ten.LandlordTerminated, ten.TenantTerminated)
	}
	if ten.TerminatedAt != nil {
		t.Fatalf("Expected no TerminatedAt while pending, got %v", *ten.TerminatedAt)
	}
}

func TestRequestTerminationBothParties(t *testing.T) {
	first := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	ten := newActiveTenancy()
	if !ten.RequestTermination(RoleTenant, first) {
		t.Fatal("Expected tenant request to change the tenancy")
	}
	if !ten.RequestTermination(RoleLandlord, second) {
		t.Fatal("Expected landlord request to change the tenancy")
	}

	if ten.Status != TenancyTerminated {
		t.Fatalf("Expected status %q after both parties, got %q", TenancyTerminated, ten.Status)
	}
	if ten.TerminatedAt == nil {
		t.Fatal("Expected TerminatedAt to be set on the second request")
	}
	if !ten.TerminatedAt.Equal(second) {
		t.Fatalf("Expected TerminatedAt %v, got %v", second, *ten.TerminatedAt)
	}
}

func TestRequestTerminationSamePartyTwice(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	ten := newActiveTenancy()
	if !ten.RequestTermination(RoleTenant, now) {
		t.Fatal("Expected first tenant request to change the tenancy")
	}
	if ten.RequestTermination(RoleTenant, now.Add(time.Hour)) {
		t.Fatal("Expected repeated tenant request to be a no-op")
	}
	if ten.Status != TenancyPendingTermination {
		t.Fatalf("Expected status to stay %q, got %q", TenancyPendingTermination, ten.Status)
	}
	if ten.TerminatedAt != nil {
		t.Fatal("Expected TerminatedAt to stay unset after a repeated request")
	}
}

func TestRequestTerminationUnknownRole(t *testing.T) {
	ten := newActiveTenancy()
	if ten.RequestTermination(RoleAdmin, time.Now()) {
		t.Fatal("Expected admin termination request to be rejected")
	}
	if ten.Status != TenancyActive {
		t.Fatalf("Expected status to stay %q, got %q", TenancyActive, ten.Status)
	}
}

func TestIsFinalized(t *testing.T) {
	cases := map[TenancyStatus]bool{
		TenancyActive:             false,
		TenancyPendingTermination: false,
		TenancyTerminated:         true,
		TenancyArchived:           true,
	}
	for status, want := range cases {
		ten := &Tenancy{Status: status}
		if got := ten.IsFinalized(); got != want {
			t.Fatalf("IsFinalized() with status %q: expected %v, got %v", status, want, got)
		}
	}
}

func TestLeaseEndDate(t *testing.T) {
	ten := newActiveTenancy()

	end := ten.LeaseEndDate(12)
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("Expected 12-month lease end %v, got %v", want, end)
	}

	end = ten.LeaseEndDate(6)
	want = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("Expected 6-month lease end %v, got %v", want, end)
	}
}

func TestDaysRemaining(t *testing.T) {
	ten := newActiveTenancy()

	// Lease runs 2025-01-01 .. 2026-01-01.
	now := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	if got := ten.DaysRemaining(12, now); got != 1 {
		t.Fatalf("Expected 1 day remaining, got %d", got)
	}

	// Partial days do not count.
	now = time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC)
	if got := ten.DaysRemaining(12, now); got != 0 {
		t.Fatalf("Expected 0 whole days remaining at half a day, got %d", got)
	}

	// Past the lease end the count floors at zero.
	now = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := ten.DaysRemaining(12, now); got != 0 {
		t.Fatalf("Expected 0 days remaining after lease end, got %d", got)
	}
}
