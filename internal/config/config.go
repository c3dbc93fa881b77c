// Package config provides configuration loading and validation for the server
// and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents service configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// AI collaborator
	APIKey string `json:"api_key,omitempty"` // Gemini API key

	// Payments
	PaymentsBaseURL   string `json:"payments_base_url,omitempty"`   // Gateway base URL; empty selects simulation mode
	PaymentsSecretKey string `json:"payments_secret_key,omitempty"` // Gateway secret key; empty selects simulation mode

	// Email
	EmailFrom string `json:"email_from,omitempty"` // Sender address stamped on simulated sends

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables, leaving zero values
// where a variable is unset.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIKey:            os.Getenv("GEMINI_API_KEY"),
		PaymentsBaseURL:   os.Getenv("PAYMENTS_BASE_URL"),
		PaymentsSecretKey: os.Getenv("PAYMENTS_SECRET_KEY"),
		EmailFrom:         os.Getenv("EMAIL_FROM"),
	}
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &cfg.Port)
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.PaymentsSecretKey != "" && c.PaymentsBaseURL == "" {
		return fmt.Errorf("config error: 'payments_secret_key' requires 'payments_base_url'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags and environment variables.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		if defaults.Port > 0 {
			result.Port = defaults.Port
		} else {
			result.Port = 8080
		}
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.PaymentsBaseURL == "" {
		result.PaymentsBaseURL = defaults.PaymentsBaseURL
	}
	if result.PaymentsSecretKey == "" {
		result.PaymentsSecretKey = defaults.PaymentsSecretKey
	}
	if result.EmailFrom == "" {
		result.EmailFrom = defaults.EmailFrom
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
