package utils

import (
	"net/http/httptest"
	"testing"
)

func TestGetClientPlatform(t *testing.T) {
	cases := map[string]PlatformType{
		"":        PlatformWeb,
		"web":     PlatformWeb,
		"android": PlatformAndroid,
		"ios":     PlatformIOS,
		"IOS":     PlatformIOS,
		"toaster": PlatformWeb,
	}
	for header, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("X-Platform", header)
		}
		if got := GetClientPlatform(r); got != want {
			t.Fatalf("X-Platform %q: expected %v, got %v", header, want, got)
		}
	}
}

func TestGetClientIdentifierMobile(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Device-ID", "device-abc-123")

	id := GetClientIdentifier(r, PlatformAndroid)
	if id.Type != ClientIDTypeDeviceID {
		t.Fatalf("Expected device-ID identifier, got %v", id.Type)
	}
	if id.Value != "device-abc-123" {
		t.Fatalf("Expected device id from header, got %q", id.Value)
	}
}

func TestGetClientIdentifierWeb(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	id := GetClientIdentifier(r, PlatformWeb)
	if id.Type != ClientIDTypeIP {
		t.Fatalf("Expected IP identifier, got %v", id.Type)
	}
	// First valid entry in X-Forwarded-For wins.
	if id.Value != "203.0.113.7" {
		t.Fatalf("Expected forwarded IP, got %q", id.Value)
	}
}

func TestDetectIPFallbacks(t *testing.T) {
	// Garbage in X-Forwarded-For falls through to the next header.
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "not-an-ip")
	r.Header.Set("X-Real-IP", "198.51.100.4")
	if got := detectIP(r); got != "198.51.100.4" {
		t.Fatalf("Expected X-Real-IP fallback, got %q", got)
	}

	// With no headers at all, RemoteAddr is used.
	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	if got := detectIP(r); got != "192.0.2.10" {
		t.Fatalf("Expected RemoteAddr host, got %q", got)
	}
}
