package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.DefaultCountry != "UG" {
		t.Errorf("DefaultCountry = %s, want UG", cfg.DefaultCountry)
	}
	if cfg.SMSSenderID != "AgriBuddy" {
		t.Errorf("SMSSenderID = %s, want AgriBuddy", cfg.SMSSenderID)
	}
	if cfg.RateLimitMaxPerWindow != 10 {
		t.Errorf("RateLimitMaxPerWindow = %d, want 10", cfg.RateLimitMaxPerWindow)
	}
	if cfg.RateLimitSMS {
		t.Error("RateLimitSMS should default to false")
	}
	if !cfg.RateLimitEmail {
		t.Error("RateLimitEmail should default to true")
	}
	if cfg.BulkBatchSize != 10 {
		t.Errorf("BulkBatchSize = %d, want 10", cfg.BulkBatchSize)
	}
	if cfg.BulkDelay() != time.Second {
		t.Errorf("BulkDelay() = %s, want 1s", cfg.BulkDelay())
	}
	if cfg.RateLimitConfig().Window != time.Hour {
		t.Errorf("RateLimitConfig().Window = %s, want 1h", cfg.RateLimitConfig().Window)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_MAX_PER_WINDOW", "3")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "30")
	t.Setenv("BULK_BATCH_DELAY_MS", "250")
	t.Setenv("SMS_TEST_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.RateLimitMaxPerWindow != 3 {
		t.Errorf("RateLimitMaxPerWindow = %d, want 3", cfg.RateLimitMaxPerWindow)
	}
	if cfg.RateLimitConfig().Window != 30*time.Minute {
		t.Errorf("RateLimitConfig().Window = %s, want 30m", cfg.RateLimitConfig().Window)
	}
	if cfg.BulkDelay() != 250*time.Millisecond {
		t.Errorf("BulkDelay() = %s, want 250ms", cfg.BulkDelay())
	}
	if !cfg.SMSTestMode {
		t.Error("SMSTestMode should be true")
	}
}

func TestProviderSettings(t *testing.T) {
	t.Setenv("AFRICASTALKING_USERNAME", "agribuddy")
	t.Setenv("AFRICASTALKING_API_KEY", "atsk_live_key_1234567890")
	t.Setenv("SMS_TEST_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settings := cfg.ProviderSettings()
	if settings.AfricasTalkingUsername != "agribuddy" {
		t.Errorf("AfricasTalkingUsername = %s", settings.AfricasTalkingUsername)
	}
	if !settings.TestMode {
		t.Error("TestMode should carry over from SMS_TEST_MODE")
	}
}

func TestEmailEnabled(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EmailEnabled() {
		t.Error("EmailEnabled() should be false without SMTP settings")
	}

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "alerts@agribuddy.ug")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.EmailEnabled() {
		t.Error("EmailEnabled() should be true with host and from set")
	}
}
