package config

import (
	"os"
	"strconv"

	"tabreport/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Report   ReportConfig
	Server   ServerConfig
	Database DatabaseConfig
	LogLevel string
}

// ReportConfig holds process-wide reporting defaults consulted when a caller
// does not pass an explicit override.
type ReportConfig struct {
	// PValueStyle names the registered p-value formatter used for new
	// p-value columns.
	PValueStyle string
	// PermutationDraws is the number of Monte Carlo draws used by
	// permutation-based tests.
	PermutationDraws int
	// PermutationSeed fixes the random source of permutation-based tests so
	// repeated runs produce identical output.
	PermutationSeed int64
}

// ServerConfig holds preview server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds connection settings for the Postgres frame reader
type DatabaseConfig struct {
	URL string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			PValueStyle:      "pvalue_3sig",
			PermutationDraws: 2000,
			PermutationSeed:  42,
		},
		Server:   ServerConfig{Port: "8080"},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := Default()

	cfg.Report.PValueStyle = getEnvOrDefault("TABREPORT_PVALUE_STYLE", cfg.Report.PValueStyle)
	cfg.Report.PermutationDraws = getEnvIntOrDefault("TABREPORT_PERMUTATION_DRAWS", cfg.Report.PermutationDraws)
	cfg.Report.PermutationSeed = getEnvInt64OrDefault("TABREPORT_PERMUTATION_SEED", cfg.Report.PermutationSeed)
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", "")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Report.PValueStyle == "" {
		return errors.ConfigInvalid("p-value style is required")
	}
	if cfg.Report.PermutationDraws < 100 {
		return errors.ConfigInvalid("permutation draw count must be at least 100")
	}
	return nil
}

// active is the process-wide configuration. It is set once at startup via
// SetActive and read-only afterwards.
var active = Default()

// Active returns the process-wide configuration
func Active() *Config {
	return active
}

// SetActive installs the process-wide configuration
func SetActive(cfg *Config) {
	if cfg != nil {
		active = cfg
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
