// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, CLI flags, or
// environment variables.
type Config struct {
	// Pipeline
	Count    int    `json:"count,omitempty"`     // Number of new emails to fetch per run
	JobsFile string `json:"jobs_file,omitempty"` // Path to the job application spreadsheet

	// Credentials
	APIKey       string `json:"api_key,omitempty"`       // Gemini API key
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL
	IMAPServer   string `json:"imap_server,omitempty"`   // Mail server host:port
	IMAPUsername string `json:"imap_username,omitempty"` // Mail account username
	IMAPPassword string `json:"imap_password,omitempty"` // Mail account password

	// Behavior
	Debug bool `json:"debug,omitempty"` // Print detailed per-stage information
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

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// after flag and environment merging.
func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("config error: 'count' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.JobsFile == "" {
		result.JobsFile = defaults.JobsFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.IMAPServer == "" {
		result.IMAPServer = defaults.IMAPServer
	}
	if result.IMAPUsername == "" {
		result.IMAPUsername = defaults.IMAPUsername
	}
	if result.IMAPPassword == "" {
		result.IMAPPassword = defaults.IMAPPassword
	}

	// Int fields: use default if zero
	if result.Count == 0 {
		result.Count = defaults.Count
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnvironment fills credentials still missing after flag and file
// merging from the process environment.
func (c *Config) ApplyEnvironment() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.IMAPServer == "" {
		c.IMAPServer = os.Getenv("IMAP_SERVER")
	}
	if c.IMAPUsername == "" {
		c.IMAPUsername = os.Getenv("IMAP_USERNAME")
	}
	if c.IMAPPassword == "" {
		c.IMAPPassword = os.Getenv("IMAP_PASSWORD")
	}
}
