package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseListingType(t *testing.T) {
	for _, s := range []string{"rent", "sale", "shortlet", "land"} {
		if got := ParseListingType(s); string(got) != s {
			t.Fatalf("Expected ParseListingType(%q) to round-trip, got %q", s, got)
		}
	}
	for _, s := range []string{"", "lease", "RENT", "penthouse"} {
		if got := ParseListingType(s); got != "" {
			t.Fatalf("Expected ParseListingType(%q) to be rejected, got %q", s, got)
		}
	}
}

func TestParsePropertyType(t *testing.T) {
	for _, s := range []string{"house", "apartment", "flat", "shop", "land", "other"} {
		if got := ParsePropertyType(s); string(got) != s {
			t.Fatalf("Expected ParsePropertyType(%q) to round-trip, got %q", s, got)
		}
	}
	for _, s := range []string{"", "duplex", "House"} {
		if got := ParsePropertyType(s); got != "" {
			t.Fatalf("Expected ParsePropertyType(%q) to be rejected, got %q", s, got)
		}
	}
}

func TestIsValidState(t *testing.T) {
	for _, key := range []string{"lagos", "abuja", "akwa_ibom", "cross_river"} {
		if !IsValidState(key) {
			t.Fatalf("Expected %q to be a known state key", key)
		}
	}
	// Keys are stored lowercase; display casing is not a key.
	for _, key := range []string{"", "Lagos", "LAGOS", "atlantis"} {
		if IsValidState(key) {
			t.Fatalf("Expected %q to be rejected as a state key", key)
		}
	}

	// 36 states plus the FCT.
	if len(NigerianStates) != 37 {
		t.Fatalf("Expected 37 state keys, got %d", len(NigerianStates))
	}
}

func TestIsValidRentPeriod(t *testing.T) {
	for _, m := range AllowedRentPeriods {
		if !IsValidRentPeriod(m) {
			t.Fatalf("Expected %d months to be an offered rent period", m)
		}
	}
	for _, m := range []int{0, -1, 4, 5, 24} {
		if IsValidRentPeriod(m) {
			t.Fatalf("Expected %d months to be rejected", m)
		}
	}
	if !IsValidRentPeriod(DefaultRentPeriodMonths) {
		t.Fatalf("Default rent period %d is not in the offered set", DefaultRentPeriodMonths)
	}
}

func TestRentPeriodDisplay(t *testing.T) {
	cases := map[int]string{
		1:  "1 Month",
		2:  "2 Months",
		6:  "6 Months",
		12: "1 Year",
	}
	for months, want := range cases {
		p := &Property{RentPeriodMonths: months}
		if got := p.RentPeriodDisplay(); got != want {
			t.Fatalf("RentPeriodDisplay() for %d months: expected %q, got %q", months, want, got)
		}
	}
}

func TestFormattedRent(t *testing.T) {
	p := &Property{RentAmount: decimal.NewFromInt(2_500_000)}
	if got := p.FormattedRent(); got != "₦2500000.00" {
		t.Fatalf("Expected '₦2500000.00', got %q", got)
	}

	p.RentAmount = decimal.RequireFromString("1500.5")
	if got := p.FormattedRent(); got != "₦1500.50" {
		t.Fatalf("Expected '₦1500.50', got %q", got)
	}
}
