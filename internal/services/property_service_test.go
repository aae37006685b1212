package services

import (
	"errors"
	"testing"
	"time"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

func TestCheckShortletWindow(t *testing.T) {
	start := time.Date(2025, time.August, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	// Non-shortlet listings never carry a window.
	if err := checkShortletWindow(models.ListingRent, nil, nil); err != nil {
		t.Fatalf("Expected no error for a rent listing without dates, got %v", err)
	}

	if err := checkShortletWindow(models.ListingShortlet, &start, &end); err != nil {
		t.Fatalf("Expected a valid shortlet window to pass, got %v", err)
	}

	// Check-in equal to check-out is still a window.
	if err := checkShortletWindow(models.ListingShortlet, &start, &start); err != nil {
		t.Fatalf("Expected a zero-length window to pass, got %v", err)
	}

	if err := checkShortletWindow(models.ListingShortlet, nil, &end); err == nil {
		t.Fatal("Expected an error when check-in is missing")
	} else if !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("Expected ErrInvalidDateRange, got %v", err)
	}

	if err := checkShortletWindow(models.ListingShortlet, &start, nil); err == nil {
		t.Fatal("Expected an error when check-out is missing")
	}

	if err := checkShortletWindow(models.ListingShortlet, &end, &start); err == nil {
		t.Fatal("Expected an error when check-out precedes check-in")
	} else if !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("Expected ErrInvalidDateRange, got %v", err)
	}
}
