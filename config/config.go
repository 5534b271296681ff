// Package config provides configuration loading and management for
// palletforge.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete palletforge configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	NATS   NATSConfig   `yaml:"nats"`
	Rates  RatesConfig  `yaml:"rates"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address for the HTTP API
	Addr string `yaml:"addr" env:"PALLETFORGE_ADDR"`
	// ShutdownTimeout bounds the graceful drain on exit
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PALLETFORGE_SHUTDOWN_TIMEOUT"`
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url" env:"PALLETFORGE_NATS_URL"`
	// Embedded indicates whether to run an embedded NATS server
	Embedded bool `yaml:"embedded" env:"PALLETFORGE_NATS_EMBEDDED"`
	// StoreDir is the JetStream storage directory for the embedded server
	StoreDir string `yaml:"store_dir" env:"PALLETFORGE_NATS_STORE_DIR"`
}

// RatesConfig configures where the initial rate table comes from.
type RatesConfig struct {
	// SeedPath is an optional YAML rate file loaded when the settings
	// bucket is empty
	SeedPath string `yaml:"seed_path" env:"PALLETFORGE_RATES_SEED"`
	// Watch re-seeds the rate cache when the seed file changes
	Watch bool `yaml:"watch" env:"PALLETFORGE_RATES_WATCH"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" env:"PALLETFORGE_LOG_LEVEL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
			StoreDir: "",
		},
		Rates: RatesConfig{
			SeedPath: "",
			Watch:    false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if !c.NATS.Embedded && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when the embedded server is disabled")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LogLevel maps the configured level to slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
	if other.NATS.StoreDir != "" {
		c.NATS.StoreDir = other.NATS.StoreDir
	}

	if other.Rates.SeedPath != "" {
		c.Rates.SeedPath = other.Rates.SeedPath
	}
	if other.Rates.Watch {
		c.Rates.Watch = true
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
