package config

import (
	"testing"
	"time"
)

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_GETENV_INT", "")
	if got := getEnvAsInt("TEST_GETENV_INT", 42); got != 42 {
		t.Errorf("Expected default value 42, got %d", got)
	}

	t.Setenv("TEST_GETENV_INT", "100")
	if got := getEnvAsInt("TEST_GETENV_INT", 42); got != 100 {
		t.Errorf("Expected 100, got %d", got)
	}

	t.Setenv("TEST_GETENV_INT", "not-an-int")
	if got := getEnvAsInt("TEST_GETENV_INT", 42); got != 42 {
		t.Errorf("Expected default value 42, got %d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_GETENV_BOOL", "false")
	if got := getEnvAsBool("TEST_GETENV_BOOL", true); got != false {
		t.Errorf("Expected false, got %v", got)
	}

	t.Setenv("TEST_GETENV_BOOL", "not-a-bool")
	if got := getEnvAsBool("TEST_GETENV_BOOL", true); got != true {
		t.Errorf("Expected default value true, got %v", got)
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_GETENV_LIST", " Admin@Example.com, ,ops@example.com ")
	got := getEnvAsList("TEST_GETENV_LIST")
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d (%v)", len(got), got)
	}
	if got[0] != "admin@example.com" || got[1] != "ops@example.com" {
		t.Errorf("Unexpected entries %v", got)
	}

	t.Setenv("TEST_GETENV_LIST", "")
	if got := getEnvAsList("TEST_GETENV_LIST"); got != nil {
		t.Errorf("Expected nil for empty value, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "")
	t.Setenv("CART_IDLE_TTL_MINUTES", "15")
	t.Setenv("AUTH_BOOTSTRAP_ADMIN_EMAILS", "root@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.App.Port)
	}
	if cfg.Cart.IdleTTL() != 15*time.Minute {
		t.Errorf("Expected idle TTL 15m, got %v", cfg.Cart.IdleTTL())
	}
	if len(cfg.Auth.BootstrapAdminEmails) != 1 {
		t.Errorf("Expected one bootstrap admin, got %v", cfg.Auth.BootstrapAdminEmails)
	}
	if cfg.Payment.MerchantParam == "" {
		t.Error("Expected a default merchant param")
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	if _, err := Load(); err == nil {
		t.Error("Expected error for non-numeric REDIS_DB")
	}
}

func TestRequestTimeout(t *testing.T) {
	if (AppConfig{RequestTimeoutSeconds: 0}).RequestTimeout() != 0 {
		t.Error("Expected zero timeout when disabled")
	}
	if (AppConfig{RequestTimeoutSeconds: 5}).RequestTimeout() != 5*time.Second {
		t.Error("Expected 5s timeout")
	}
	if (CartConfig{IdleTTLMinutes: 120}).SweepInterval() != 30*time.Minute {
		t.Error("Expected 30m sweep interval")
	}
	if (CartConfig{IdleTTLMinutes: 2}).SweepInterval() != time.Minute {
		t.Error("Expected sweep interval floor of 1m")
	}
	if (CartConfig{}).SweepInterval() != 0 {
		t.Error("Expected no sweeping when eviction is off")
	}
	if (AuthConfig{}).ResumeTTL() != time.Hour {
		t.Error("Expected 1h default resume TTL")
	}
}
