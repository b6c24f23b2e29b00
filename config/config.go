// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/travelmeds/analogues-api/catalog/entities"
)

// Catalog backend selection. The static table and the remote registry are
// the same capability surface behind one interface; which one serves a
// deployment is configuration, never a runtime toggle.
const (
	BackendStatic = "static"
	BackendRemote = "remote"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	CatalogBackend  string // static | remote
	CatalogFile     string // optional path overriding the embedded seed
	RemoteAPIURL    string // base URL of the remote drug registry
	RemoteTimeout   int    // remote request timeout in seconds
	RemoteCountry   string // jurisdiction assigned to remote candidates lacking one
	MaxAnalogues    int    // result limit per search
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               getEnvWithDefault("ENV", "dev"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default
		CatalogBackend:    getEnvWithDefault("CATALOG_BACKEND", BackendStatic),
		CatalogFile:       os.Getenv("CATALOG_FILE"),
		RemoteAPIURL:      os.Getenv("REMOTE_API_URL"),
		RemoteTimeout:     getIntEnvWithDefault("REMOTE_TIMEOUT_SECONDS", 10),
		RemoteCountry:     getEnvWithDefault("REMOTE_COUNTRY", "US"),
		MaxAnalogues:      getIntEnvWithDefault("MAX_ANALOGUES", 10),
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

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateCatalogBackend(cfg); err != nil {
		return err
	}

	if err := validateMaxAnalogues(cfg.MaxAnalogues); err != nil {
		return fmt.Errorf("invalid MAX_ANALOGUES: %w", err)
	}

	if !entities.IsKnownCountry(cfg.RemoteCountry) {
		return fmt.Errorf("invalid REMOTE_COUNTRY: must be one of %v, got: %s", entities.Countries, cfg.RemoteCountry)
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

	if !ip.IsLoopback() && !ip.IsPrivate() {
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

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateCatalogBackend validates CATALOG_BACKEND and its dependent settings
func validateCatalogBackend(cfg *Config) error {
	switch cfg.CatalogBackend {
	case BackendStatic:
		return nil
	case BackendRemote:
		if cfg.RemoteAPIURL == "" {
			return fmt.Errorf("invalid REMOTE_API_URL: required when CATALOG_BACKEND is %q", BackendRemote)
		}
		u, err := url.Parse(cfg.RemoteAPIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid REMOTE_API_URL: must be an absolute URL, got: %s", cfg.RemoteAPIURL)
		}
		if cfg.RemoteTimeout < 1 || cfg.RemoteTimeout > 120 {
			return fmt.Errorf("invalid REMOTE_TIMEOUT_SECONDS: must be between 1 and 120, got: %d", cfg.RemoteTimeout)
		}
		return nil
	default:
		return fmt.Errorf("invalid CATALOG_BACKEND: must be %q or %q, got: %s", BackendStatic, BackendRemote, cfg.CatalogBackend)
	}
}

// validateMaxAnalogues validates the MAX_ANALOGUES environment variable
func validateMaxAnalogues(limit int) error {
	if limit < 1 {
		return fmt.Errorf("MAX_ANALOGUES must be positive, got: %d", limit)
	}

	if limit > 50 {
		return fmt.Errorf("MAX_ANALOGUES is too large (max 50), got: %d", limit)
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
