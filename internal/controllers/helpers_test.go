package controllers

import (
	"testing"
	"time"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/utils"
)

func TestDecideTokenPolicy(t *testing.T) {
	cfg := &config.Config{
		MobileTokenExpiry:        15 * time.Minute,
		MobileRefreshTokenExpiry: 30 * 24 * time.Hour,
		WebTokenExpiry:           10 * time.Minute,
		WebRefreshTokenExpiry:    7 * 24 * time.Hour,
	}

	for _, platform := range []utils.PlatformType{utils.PlatformAndroid, utils.PlatformIOS} {
		policy := DecideTokenPolicy(platform, cfg)
		if policy.AccessTTL != cfg.MobileTokenExpiry {
			t.Fatalf("Expected mobile access TTL %v for %s, got %v", cfg.MobileTokenExpiry, platform, policy.AccessTTL)
		}
		if policy.RefreshTTL != cfg.MobileRefreshTokenExpiry {
			t.Fatalf("Expected mobile refresh TTL %v for %s, got %v", cfg.MobileRefreshTokenExpiry, platform, policy.RefreshTTL)
		}
	}

	policy := DecideTokenPolicy(utils.PlatformWeb, cfg)
	if policy.AccessTTL != cfg.WebTokenExpiry {
		t.Fatalf("Expected web access TTL %v, got %v", cfg.WebTokenExpiry, policy.AccessTTL)
	}
	if policy.RefreshTTL != cfg.WebRefreshTokenExpiry {
		t.Fatalf("Expected web refresh TTL %v, got %v", cfg.WebRefreshTokenExpiry, policy.RefreshTTL)
	}
}
