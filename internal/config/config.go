// Package config holds the brandscan runtime configuration. Values come
// from a YAML file merged over defaults; secrets (the hint API key) come
// from the environment, never from the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full brandscan configuration.
type Config struct {
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"` // debug | info | warn | error
	Store    StoreConfig   `yaml:"store"`
	Browser  BrowserConfig `yaml:"browser"`
	Hint     HintConfig    `yaml:"hint"`
	Cache    CacheConfig   `yaml:"cache"`
}

// StoreConfig configures the scan history database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// BrowserConfig configures the headless rendering path.
type BrowserConfig struct {
	Enabled bool `yaml:"enabled"`
	// Remote is a DevTools control URL; empty means launch a local browser.
	Remote string `yaml:"remote"`
}

// HintConfig configures the external oracle. The API key is read from the
// HINT_API_KEY environment variable.
type HintConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Referer  string        `yaml:"referer"`
	Title    string        `yaml:"title"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig configures the extraction result cache.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Default returns sane defaults.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Store:    StoreConfig{Path: "brandscan.db"},
		Browser:  BrowserConfig{Enabled: true},
		Cache:    CacheConfig{Size: 128, TTL: 15 * time.Minute},
	}
}

// Load reads and parses a YAML config file merged over defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q (use debug, info, warn, or error)", c.LogLevel)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must be >= 0")
	}
	return nil
}

// HintAPIKey reads the oracle credential from the environment.
func HintAPIKey() string { return os.Getenv("HINT_API_KEY") }
