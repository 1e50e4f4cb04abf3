package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Desktop   Desktop
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StorageConfig holds the persistent key/value store location.
type StorageConfig struct {
	Dir string `envconfig:"STORAGE_DIR" default:"/tmp/deskos-storage"`
}

// DesktopFile is the optional path to a desktop.yaml overriding the
// compiled surface defaults.
type DesktopFile struct {
	Path string `envconfig:"DESKTOP_CONFIG" default:""`
}

// Load loads configuration from environment variables, then applies the
// desktop.yaml overlay when DESKTOP_CONFIG is set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var file DesktopFile
	if err := envconfig.Process("", &file); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	desktop := DefaultDesktop()
	if file.Path != "" {
		loaded, err := LoadDesktop(file.Path)
		if err != nil {
			return nil, err
		}
		desktop = loaded
	}
	cfg.Desktop = desktop

	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			Dir: "/tmp/deskos-storage",
		},
		Desktop: DefaultDesktop(),
	}
}
