package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func cleanupEnv() {
	for _, key := range []string{
		"PORT", "ADDRESS", "ENV", "LOG_LEVEL", "DATABASE_PATH",
		"RXNORM_BASE_URL", "OPENFDA_BASE_URL", "API_TIMEOUT_SECONDS",
		"HEALTH_PROBE_MINUTES", "MAX_REQUEST_BODY", "MAX_HEADER_SIZE",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.DatabasePath != "medications.db" {
		t.Errorf("Expected default database path, got %s", cfg.DatabasePath)
	}
	if cfg.RxNormBaseURL != "https://rxnav.nlm.nih.gov/REST" {
		t.Errorf("Unexpected RxNorm base URL: %s", cfg.RxNormBaseURL)
	}
	if cfg.OpenFDABaseURL != "https://api.fda.gov/drug" {
		t.Errorf("Unexpected OpenFDA base URL: %s", cfg.OpenFDABaseURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %s", cfg.APITimeout)
	}
	if cfg.HealthProbeMinutes != 15 {
		t.Errorf("Expected default probe interval 15, got %d", cfg.HealthProbeMinutes)
	}
	if cfg.MaxRequestBody != 1048576 {
		t.Errorf("Expected default body limit 1MB, got %d", cfg.MaxRequestBody)
	}
}

func TestLoadValidConfig(t *testing.T) {
	cleanupEnv()
	_ = os.Setenv("PORT", "9090")
	_ = os.Setenv("DATABASE_PATH", "/tmp/meds.db")
	_ = os.Setenv("API_TIMEOUT_SECONDS", "10")
	_ = os.Setenv("HEALTH_PROBE_MINUTES", "5")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.DatabasePath != "/tmp/meds.db" {
		t.Errorf("Expected overridden database path, got %s", cfg.DatabasePath)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %s", cfg.APITimeout)
	}
	if cfg.HealthProbeMinutes != 5 {
		t.Errorf("Expected probe interval 5, got %d", cfg.HealthProbeMinutes)
	}
}

func TestInvalidPort(t *testing.T) {
	testCases := []string{"abc", "0", "65536", "80"}

	for _, port := range testCases {
		cleanupEnv()
		_ = os.Setenv("PORT", port)

		if _, err := Load(); err == nil {
			t.Errorf("Expected error for port %s, got nil", port)
		}
	}
	cleanupEnv()
}

func TestInvalidAddress(t *testing.T) {
	cleanupEnv()
	_ = os.Setenv("ADDRESS", "not-an-ip")
	defer cleanupEnv()

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid address, got nil")
	}
}

func TestInvalidBaseURL(t *testing.T) {
	testCases := []string{"ftp://rxnav.nlm.nih.gov", "not a url", "https://"}

	for _, raw := range testCases {
		cleanupEnv()
		_ = os.Setenv("RXNORM_BASE_URL", raw)

		if _, err := Load(); err == nil {
			t.Errorf("Expected error for base URL %q, got nil", raw)
		}
	}
	cleanupEnv()
}

func TestInvalidTimeout(t *testing.T) {
	testCases := []string{"0", "301"}

	for _, secs := range testCases {
		cleanupEnv()
		_ = os.Setenv("API_TIMEOUT_SECONDS", secs)

		if _, err := Load(); err == nil {
			t.Errorf("Expected error for timeout %s seconds, got nil", secs)
		}
	}
	cleanupEnv()
}

func TestInvalidProbeInterval(t *testing.T) {
	testCases := []string{"0", "1441"}

	for _, minutes := range testCases {
		cleanupEnv()
		_ = os.Setenv("HEALTH_PROBE_MINUTES", minutes)

		if _, err := Load(); err == nil {
			t.Errorf("Expected error for probe interval %s, got nil", minutes)
		}
	}
	cleanupEnv()
}

func TestInvalidSizeLimit(t *testing.T) {
	cleanupEnv()
	_ = os.Setenv("MAX_REQUEST_BODY", "-1")
	defer cleanupEnv()

	if _, err := Load(); err == nil {
		t.Error("Expected error for negative body limit, got nil")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.expected {
			t.Errorf("SlogLevel(%q) = %v, expected %v", tt.level, got, tt.expected)
		}
	}
}
