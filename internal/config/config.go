// Package config loads portal configuration with the priority
// defaults -> TOML files -> FOLIO_* environment variables -> flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/folioadmin/folio-portal/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig         `toml:"server"`
	API       APIConfig            `toml:"api"`
	Session   SessionConfig        `toml:"session"`
	Reference ReferenceConfig      `toml:"reference"`
	Cache     CacheConfig          `toml:"cache"`
	Logging   common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// APIConfig contains settings for the folio-server backend.
type APIConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the request timeout duration.
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SessionConfig identifies the backend session the portal acts under.
// The token is sent as a bearer header on every backend request.
type SessionConfig struct {
	Token  string `toml:"token"`
	UserID int    `toml:"user_id"`
}

// ReferenceConfig selects the benchmark security used when duplicating
// transactions for performance comparison.
type ReferenceConfig struct {
	Ticker string `toml:"ticker"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	TTL     string `toml:"ttl"`
}

// GetTTL parses and returns the cache TTL duration.
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. Missing files are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies FOLIO_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url := os.Getenv("FOLIO_API_URL"); url != "" {
		config.API.URL = url
	}
	if timeout := os.Getenv("FOLIO_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if token := os.Getenv("FOLIO_SESSION_TOKEN"); token != "" {
		config.Session.Token = token
	}
	if userID := os.Getenv("FOLIO_SESSION_USER_ID"); userID != "" {
		if id, err := strconv.Atoi(userID); err == nil {
			config.Session.UserID = id
		}
	}
	if ticker := os.Getenv("FOLIO_REFERENCE_TICKER"); ticker != "" {
		config.Reference.Ticker = strings.ToUpper(ticker)
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("FOLIO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string, apiURL string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if apiURL != "" {
		config.API.URL = apiURL
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.API.URL == "" {
		return fmt.Errorf("api.url must not be empty")
	}
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", c.API.URL)
	}
	if c.Reference.Ticker == "" {
		return fmt.Errorf("reference.ticker must not be empty")
	}
	return nil
}
