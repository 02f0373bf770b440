// Package config has the configuration file for the app
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port               string
	Address            string
	Env                string
	LogLevel           string
	LogDir             string
	DatabasePath       string
	RxNormBaseURL      string
	OpenFDABaseURL     string
	APITimeout         time.Duration // Timeout for outbound API calls
	HealthProbeMinutes int           // Interval between API health probes
	MaxRequestBody     int64         // Maximum request body size in bytes
	MaxHeaderSize      int64         // Maximum header size in bytes
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnvWithDefault("PORT", "8000"),
		Address:            getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:                getEnvWithDefault("ENV", "dev"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:             getEnvWithDefault("LOG_DIR", "logs"),
		DatabasePath:       getEnvWithDefault("DATABASE_PATH", "medications.db"),
		RxNormBaseURL:      getEnvWithDefault("RXNORM_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),
		OpenFDABaseURL:     getEnvWithDefault("OPENFDA_BASE_URL", "https://api.fda.gov/drug"),
		APITimeout:         time.Duration(getIntEnvWithDefault("API_TIMEOUT_SECONDS", 30)) * time.Second,
		HealthProbeMinutes: getIntEnvWithDefault("HEALTH_PROBE_MINUTES", 15),
		MaxRequestBody:     getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576), // 1MB default
		MaxHeaderSize:      getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),  // 1MB default
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.DatabasePath == "" {
		return fmt.Errorf("invalid DATABASE_PATH: cannot be empty")
	}

	if err := validateBaseURL(cfg.RxNormBaseURL, "RXNORM_BASE_URL"); err != nil {
		return err
	}

	if err := validateBaseURL(cfg.OpenFDABaseURL, "OPENFDA_BASE_URL"); err != nil {
		return err
	}

	if cfg.APITimeout < time.Second || cfg.APITimeout > 5*time.Minute {
		return fmt.Errorf("invalid API_TIMEOUT_SECONDS: must be between 1 and 300, got: %s", cfg.APITimeout)
	}

	if cfg.HealthProbeMinutes < 1 || cfg.HealthProbeMinutes > 1440 {
		return fmt.Errorf("invalid HEALTH_PROBE_MINUTES: must be between 1 and 1440, got: %d", cfg.HealthProbeMinutes)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env string) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	validEnvs := []string{"dev", "staging", "prod", "test"}
	env = strings.ToLower(env)

	for _, validEnv := range validEnvs {
		if env == validEnv {
			return nil
		}
	}

	return fmt.Errorf("ENV must be one of: %v, got: %s", validEnvs, env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateBaseURL validates an external API base URL
func validateBaseURL(raw, configName string) error {
	if raw == "" {
		return fmt.Errorf("invalid %s: cannot be empty", configName)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", configName, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s: must use http or https, got: %s", configName, raw)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid %s: missing host, got: %s", configName, raw)
	}

	return nil
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SlogLevel maps the configured LOG_LEVEL to its slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
