package services

import (
	"testing"

	"github.com/rentline/rental-service/internal/models"
)

func TestCapImagesUnderLimit(t *testing.T) {
	urls := []string{"https://cdn.rentline.test/a.jpg", "https://cdn.rentline.test/b.jpg"}

	kept, warning := capImages(urls)
	if len(kept) != 2 {
		t.Fatalf("Expected both images kept, got %d", len(kept))
	}
	if warning != "" {
		t.Fatalf("Expected no warning under the limit, got %q", warning)
	}

	kept, warning = capImages(nil)
	if kept != nil || warning != "" {
		t.Fatalf("Expected nil input to pass through, got %v / %q", kept, warning)
	}
}

func TestCapImagesOverLimit(t *testing.T) {
	urls := []string{
		"https://cdn.rentline.test/1.jpg",
		"https://cdn.rentline.test/2.jpg",
		"https://cdn.rentline.test/3.jpg",
		"https://cdn.rentline.test/4.jpg",
		"https://cdn.rentline.test/5.jpg",
	}

	kept, warning := capImages(urls)
	if len(kept) != models.MaxImagesPerMaintenanceRequest {
		t.Fatalf("Expected %d images kept, got %d", models.MaxImagesPerMaintenanceRequest, len(kept))
	}
	// The first uploads win.
	for i, url := range kept {
		if url != urls[i] {
			t.Fatalf("Expected image %d to be %q, got %q", i, urls[i], url)
		}
	}
	if warning != "a request holds at most 3 images; 2 dropped" {
		t.Fatalf("Unexpected warning text: %q", warning)
	}
}
