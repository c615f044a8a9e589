package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"bookwish/internal/catalog"
	"bookwish/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DBPath        string
	DefaultRegion string
	AudnexusURL   string
	Workers       int
	LogLevel      string
	LogFormat     string
	SessionSecret string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", constants.DefaultPort),
		DBPath:        getEnv("DB_PATH", constants.DefaultDBPath),
		DefaultRegion: getEnv("DEFAULT_REGION", constants.DefaultRegion),
		AudnexusURL:   getEnv("AUDNEXUS_URL", constants.DefaultAudnexusURL),
		Workers:       getEnvInt("WORKERS", constants.DefaultWorkers),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if !catalog.ValidRegion(c.DefaultRegion) {
		errors = append(errors, fmt.Sprintf("DEFAULT_REGION must be one of: %s, got: %s",
			strings.Join(catalog.RegionList(), ", "), c.DefaultRegion))
	}

	if c.AudnexusURL == "" {
		errors = append(errors, "AUDNEXUS_URL cannot be empty")
	} else if _, err := url.Parse(c.AudnexusURL); err != nil {
		errors = append(errors, fmt.Sprintf("AUDNEXUS_URL is not a valid URL: %s", c.AudnexusURL))
	}

	if c.Workers < 1 {
		errors = append(errors, fmt.Sprintf("WORKERS must be at least 1, got: %d", c.Workers))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.SessionSecret == "" {
		errors = append(errors, "SESSION_SECRET cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
