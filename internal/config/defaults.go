package config

import "github.com/folioadmin/folio-portal/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4241,
			Host: "localhost",
		},
		API: APIConfig{
			URL:     "http://localhost:4242",
			Timeout: "30s",
		},
		Reference: ReferenceConfig{
			Ticker: "VOO",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "5m",
		},
		Logging: common.LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
