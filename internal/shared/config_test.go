package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:5110" {
			t.Errorf("expected api base URL http://localhost:5110, got %s", config.API.BaseURL)
		}

		if config.Session.Scope != "default" {
			t.Errorf("expected session scope default, got %s", config.Session.Scope)
		}

		if config.Database.Path != "./promo.db" {
			t.Errorf("expected database path ./promo.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "127.0.0.1:5110" {
			t.Errorf("expected server addr 127.0.0.1:5110, got %s", config.Server.Addr())
		}

		if config.UI.CelebrationDuration() != 2*time.Second {
			t.Errorf("expected 2s celebration, got %v", config.UI.CelebrationDuration())
		}

		if config.API.Timeout() != 15*time.Second {
			t.Errorf("expected 15s timeout, got %v", config.API.Timeout())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://promo.example.com"
rate_limit = 5.5
token = "secret"

[session]
scope = "work"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://promo.example.com" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}
		if config.API.RateLimit != 5.5 {
			t.Errorf("expected rate limit 5.5, got %v", config.API.RateLimit)
		}
		if config.Session.Scope != "work" {
			t.Errorf("expected scope work, got %s", config.Session.Scope)
		}
		if config.Server.Port != 5110 {
			t.Errorf("omitted keys should keep defaults, got port %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[api]\nrate_limit = -1\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			EnvAPIURL: "http://api.local:9000/",
			EnvScope:  "tab-2",
		}

		config.ApplyEnv(func(k string) string { return env[k] })

		if config.API.BaseURL != "http://api.local:9000" {
			t.Errorf("expected trimmed env base URL, got %s", config.API.BaseURL)
		}
		if config.Session.Scope != "tab-2" {
			t.Errorf("expected env scope, got %s", config.Session.Scope)
		}
	})
}
