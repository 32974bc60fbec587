// Package config handles domscope configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level domscope configuration.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Server   ServerConfig   `yaml:"server"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Search   SearchConfig   `yaml:"search"`
	History  HistoryConfig  `yaml:"history"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote          string        `yaml:"remote"` // ws:// devtools URL; empty launches a local browser
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SnapshotConfig bounds tree captures.
type SnapshotConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MaxTextLen int `yaml:"max_text_len"`
	MaxRules   int `yaml:"max_rules"`
}

// SearchConfig controls query debouncing.
type SearchConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
}

// HistoryConfig controls the optional snapshot store.
type HistoryConfig struct {
	Path      string        `yaml:"path"` // empty disables history
	Retention time.Duration `yaml:"retention"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8367"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Snapshot.MaxDepth <= 0 {
		c.Snapshot.MaxDepth = 50
	}
	if c.Snapshot.MaxTextLen <= 0 {
		c.Snapshot.MaxTextLen = 200
	}
	if c.Snapshot.MaxRules <= 0 {
		c.Snapshot.MaxRules = 50
	}
	if c.Search.DebounceWindow <= 0 {
		c.Search.DebounceWindow = 400 * time.Millisecond
	}
	if c.History.Retention <= 0 {
		c.History.Retention = 7 * 24 * time.Hour
	}
}
