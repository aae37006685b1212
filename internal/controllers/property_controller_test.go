package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/rentline/rental-service/internal/constants"
	"github.com/rentline/rental-service/internal/models"
)

func TestParseMarketplaceQueryDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/marketplace", nil)

	f, page, size, err := parseMarketplaceQuery(r)
	if err != nil {
		t.Fatalf("Expected empty query to parse, got %v", err)
	}
	if f.Query != "" || f.State != "" || f.ListingType != "" || f.PropertyType != "" {
		t.Fatalf("Expected an unconstrained filter, got %+v", f)
	}
	if f.MinBedrooms != nil || f.MinPrice != nil || f.MaxPrice != nil {
		t.Fatalf("Expected nil range filters, got %+v", f)
	}
	if page != 1 {
		t.Fatalf("Expected default page 1, got %d", page)
	}
	if size != constants.DefaultPageSize {
		t.Fatalf("Expected default size %d, got %d", constants.DefaultPageSize, size)
	}
}

func TestParseMarketplaceQueryFull(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/marketplace?q=+lekki+&state=Lagos&listing_type=rent&property_type=flat"+
			"&min_bedrooms=2&min_price=500000&max_price=3000000&page=3&size=10", nil)

	f, page, size, err := parseMarketplaceQuery(r)
	if err != nil {
		t.Fatalf("Expected full query to parse, got %v", err)
	}
	if f.Query != "lekki" {
		t.Fatalf("Expected trimmed query 'lekki', got %q", f.Query)
	}
	// State keys are normalized to lowercase before validation.
	if f.State != "lagos" {
		t.Fatalf("Expected state 'lagos', got %q", f.State)
	}
	if f.ListingType != models.ListingRent || f.PropertyType != models.PropertyFlat {
		t.Fatalf("Unexpected type filters: %+v", f)
	}
	if f.MinBedrooms == nil || *f.MinBedrooms != 2 {
		t.Fatalf("Expected min bedrooms 2, got %v", f.MinBedrooms)
	}
	if f.MinPrice == nil || f.MinPrice.String() != "500000" {
		t.Fatalf("Expected min price 500000, got %v", f.MinPrice)
	}
	if f.MaxPrice == nil || f.MaxPrice.String() != "3000000" {
		t.Fatalf("Expected max price 3000000, got %v", f.MaxPrice)
	}
	if page != 3 || size != 10 {
		t.Fatalf("Expected page 3 size 10, got page %d size %d", page, size)
	}
}

func TestParseMarketplaceQueryRejectsUnknownValues(t *testing.T) {
	for _, raw := range []string{
		"state=atlantis",
		"listing_type=lease",
		"property_type=duplex",
		"min_bedrooms=-1",
		"min_bedrooms=two",
		"min_price=lots",
		"max_price=12,5",
	} {
		r := httptest.NewRequest("GET", "/api/v1/marketplace?"+raw, nil)
		if _, _, _, err := parseMarketplaceQuery(r); err == nil {
			t.Fatalf("Expected %q to be rejected, got no error", raw)
		} else {
			t.Logf("Correctly rejected %q: %v", raw, err)
		}
	}
}

func TestParseMarketplaceQueryPagingFallbacks(t *testing.T) {
	// Bad paging input falls back to defaults instead of erroring.
	r := httptest.NewRequest("GET", "/api/v1/marketplace?page=zero&size=-5", nil)
	_, page, size, err := parseMarketplaceQuery(r)
	if err != nil {
		t.Fatalf("Expected bad paging to fall back, got %v", err)
	}
	if page != 1 || size != constants.DefaultPageSize {
		t.Fatalf("Expected fallback paging, got page %d size %d", page, size)
	}

	// Oversized requests are clamped.
	r = httptest.NewRequest("GET", "/api/v1/marketplace?size=5000", nil)
	_, _, size, err = parseMarketplaceQuery(r)
	if err != nil {
		t.Fatalf("Expected oversized size to clamp, got %v", err)
	}
	if size != constants.MaxPageSize {
		t.Fatalf("Expected size clamped to %d, got %d", constants.MaxPageSize, size)
	}
}
