package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port 4241, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.API.URL != "http://localhost:4242" {
		t.Errorf("expected default api url http://localhost:4242, got %s", cfg.API.URL)
	}
	if cfg.Reference.Ticker != "VOO" {
		t.Errorf("expected default reference ticker VOO, got %s", cfg.Reference.Ticker)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port 4241, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[server]
port = 9090
host = "0.0.0.0"

[api]
url = "http://folio-server:8080"
timeout = "10s"

[reference]
ticker = "SPY"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.API.URL != "http://folio-server:8080" {
		t.Errorf("expected api url http://folio-server:8080, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.API.GetTimeout())
	}
	if cfg.Reference.Ticker != "SPY" {
		t.Errorf("expected reference ticker SPY, got %s", cfg.Reference.Ticker)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadFromFiles("/nonexistent/folio.toml")
	if err != nil {
		t.Fatalf("missing files should be skipped: %v", err)
	}
	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port 4241, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(tomlPath, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFiles(tomlPath)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadFromFiles_LaterFileOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")

	if err := os.WriteFile(base, []byte("[server]\nport = 8000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(local, []byte("[server]\nport = 9000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, local)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected later file to win with port 9000, got %d", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_SERVER_PORT", "7777")
	t.Setenv("FOLIO_API_URL", "http://api.test:9999")
	t.Setenv("FOLIO_REFERENCE_TICKER", "ivv")
	t.Setenv("FOLIO_SESSION_TOKEN", "env-token")
	t.Setenv("FOLIO_SESSION_USER_ID", "42")
	t.Setenv("FOLIO_LOG_LEVEL", "warn")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected env port 7777, got %d", cfg.Server.Port)
	}
	if cfg.API.URL != "http://api.test:9999" {
		t.Errorf("expected env api url, got %s", cfg.API.URL)
	}
	if cfg.Reference.Ticker != "IVV" {
		t.Errorf("expected env ticker uppercased to IVV, got %s", cfg.Reference.Ticker)
	}
	if cfg.Session.Token != "env-token" {
		t.Errorf("expected env session token, got %s", cfg.Session.Token)
	}
	if cfg.Session.UserID != 42 {
		t.Errorf("expected env session user id 42, got %d", cfg.Session.UserID)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env log level warn, got %s", cfg.Logging.Level)
	}
}

func TestEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("FOLIO_SERVER_PORT", "not-a-number")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port kept, got %d", cfg.Server.Port)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 5555, "127.0.0.1", "http://flag-api:1234")
	if cfg.Server.Port != 5555 {
		t.Errorf("expected flag port 5555, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected flag host, got %s", cfg.Server.Host)
	}
	if cfg.API.URL != "http://flag-api:1234" {
		t.Errorf("expected flag api url, got %s", cfg.API.URL)
	}

	// Zero values leave config untouched.
	ApplyFlagOverrides(cfg, 0, "", "")
	if cfg.Server.Port != 5555 || cfg.Server.Host != "127.0.0.1" {
		t.Error("zero flag values must not override")
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}

	bad := NewDefaultConfig()
	bad.Server.Port = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative port")
	}

	bad = NewDefaultConfig()
	bad.API.URL = "folio-server:8080"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-http api url")
	}

	bad = NewDefaultConfig()
	bad.Reference.Ticker = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty reference ticker")
	}
}

func TestCacheTTL(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Cache.GetTTL() != 5*time.Minute {
		t.Errorf("expected default TTL 5m, got %v", cfg.Cache.GetTTL())
	}
	cfg.Cache.TTL = "bogus"
	if cfg.Cache.GetTTL() != 5*time.Minute {
		t.Errorf("expected fallback TTL 5m, got %v", cfg.Cache.GetTTL())
	}
}
