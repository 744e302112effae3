package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.ChatPollInterval != 10*time.Second {
		t.Errorf("ChatPollInterval = %v", cfg.ChatPollInterval)
	}
	if cfg.NotificationPollInterval != 60*time.Second {
		t.Errorf("NotificationPollInterval = %v", cfg.NotificationPollInterval)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.StateDir == "" {
		t.Error("StateDir is empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SKILLSHIKHI_API_URL", "https://api.skillshikhi.example/")
	t.Setenv("SKILLSHIKHI_REQUEST_TIMEOUT", "3s")
	t.Setenv("SKILLSHIKHI_ENV", "production")

	cfg := Load()

	// Trailing slash is trimmed so path joins stay predictable.
	if cfg.BaseURL != "https://api.skillshikhi.example" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.IsDevelopment() {
		t.Error("production env reported as development")
	}
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("SKILLSHIKHI_REQUEST_TIMEOUT", "soon")
	cfg := Load()
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s fallback", cfg.RequestTimeout)
	}
}
