package repositories

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rentline/rental-service/internal/models"
)

func TestBuildMarketplaceWhereNoFilters(t *testing.T) {
	where, args := buildMarketplaceWhere(MarketplaceFilter{})
	if where != " WHERE is_available = TRUE" {
		t.Fatalf("Unexpected WHERE clause for empty filter: %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("Expected no args for empty filter, got %v", args)
	}
}

func TestBuildMarketplaceWhereTextQuery(t *testing.T) {
	where, args := buildMarketplaceWhere(MarketplaceFilter{Query: "  lekki  "})

	want := " WHERE is_available = TRUE AND (title ILIKE $1 OR address ILIKE $1 OR description ILIKE $1)"
	if where != want {
		t.Fatalf("Expected %q, got %q", want, where)
	}
	if len(args) != 1 {
		t.Fatalf("Expected one arg, got %v", args)
	}
	// Whitespace is trimmed before the wildcard wrap.
	if args[0] != "%lekki%" {
		t.Fatalf("Expected arg '%%lekki%%', got %q", args[0])
	}
}

func TestBuildMarketplaceWhereAllFilters(t *testing.T) {
	minBedrooms := 2
	minPrice := decimal.NewFromInt(500_000)
	maxPrice := decimal.NewFromInt(3_000_000)

	where, args := buildMarketplaceWhere(MarketplaceFilter{
		Query:        "flat",
		State:        "lagos",
		ListingType:  models.ListingRent,
		PropertyType: models.PropertyFlat,
		MinBedrooms:  &minBedrooms,
		MinPrice:     &minPrice,
		MaxPrice:     &maxPrice,
	})

	want := " WHERE is_available = TRUE" +
		" AND (title ILIKE $1 OR address ILIKE $1 OR description ILIKE $1)" +
		" AND state = $2" +
		" AND listing_type = $3" +
		" AND property_type = $4" +
		" AND bedrooms >= $5" +
		" AND rent_amount >= $6" +
		" AND rent_amount <= $7"
	if where != want {
		t.Fatalf("Expected:\n%s\ngot:\n%s", want, where)
	}

	if len(args) != 7 {
		t.Fatalf("Expected 7 args, got %d", len(args))
	}
	if args[0] != "%flat%" {
		t.Fatalf("Expected first arg '%%flat%%', got %v", args[0])
	}
	if args[1] != "lagos" || args[2] != "rent" || args[3] != "flat" {
		t.Fatalf("Unexpected equality args: %v", args[1:4])
	}
	if args[4] != 2 {
		t.Fatalf("Expected min bedrooms arg 2, got %v", args[4])
	}
	if got, ok := args[5].(decimal.Decimal); !ok || !got.Equal(minPrice) {
		t.Fatalf("Expected min price arg %s, got %v", minPrice, args[5])
	}
	if got, ok := args[6].(decimal.Decimal); !ok || !got.Equal(maxPrice) {
		t.Fatalf("Expected max price arg %s, got %v", maxPrice, args[6])
	}
}

func TestBuildMarketplaceWherePlaceholdersStayDense(t *testing.T) {
	// Skipping the text query must not leave a gap in the numbering.
	minBedrooms := 3
	where, args := buildMarketplaceWhere(MarketplaceFilter{
		State:       "abuja",
		MinBedrooms: &minBedrooms,
	})

	want := " WHERE is_available = TRUE AND state = $1 AND bedrooms >= $2"
	if where != want {
		t.Fatalf("Expected %q, got %q", want, where)
	}
	if len(args) != 2 {
		t.Fatalf("Expected 2 args, got %v", args)
	}
}
