package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvAPIURL = "PROMO_API_URL"
	EnvScope  = "PROMO_SCOPE"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
}

// APIConfig contains settings for the promotion tracker REST API.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
	Token          string  `toml:"token"`
}

// Timeout returns the request timeout, zero meaning none.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig selects the storage slot holding the logged-in user.
type SessionConfig struct {
	Scope string `toml:"scope"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains development server settings.
type ServerConfig struct {
	Host  string `toml:"host"`
	Port  int    `toml:"port"`
	Token string `toml:"token"` // when set, requests must carry it as a bearer token
}

// Addr is the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UIConfig contains terminal UI timings and the log destination.
type UIConfig struct {
	NoticeSeconds      int    `toml:"notice_seconds"`
	CelebrationSeconds int    `toml:"celebration_seconds"`
	LogPath            string `toml:"log_path"`
}

// NoticeDuration is how long a toast notice stays visible.
func (c UIConfig) NoticeDuration() time.Duration {
	return time.Duration(c.NoticeSeconds) * time.Second
}

// CelebrationDuration is how long a completion celebration plays.
func (c UIConfig) CelebrationDuration() time.Duration {
	return time.Duration(c.CelebrationSeconds) * time.Second
}

// LoadConfig reads a TOML file on top of the defaults so omitted keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: api.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides config values from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv(EnvScope); v != "" {
		c.Session.Scope = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
