package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full kurate configuration.
type Config struct {
	Listen          string    `yaml:"listen"`
	DBPath          string    `yaml:"db_path"`
	MaxFileMB       int       `yaml:"max_file_mb"`
	FetchTimeoutSec int       `yaml:"fetch_timeout_sec"`
	AuthHeader      string    `yaml:"auth_header"`
	LogLevel        string    `yaml:"log_level"`
	MCP             MCPConfig `yaml:"mcp"`
}

// FetchTimeout returns the configured fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// MCPConfig enables the stdio MCP server instead of HTTP.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:          ":8080",
		DBPath:          "kurate.db",
		MaxFileMB:       50,
		FetchTimeoutSec: 10,
		AuthHeader:      "X-User-ID",
		LogLevel:        "info",
	}
}

// LoadConfig reads a YAML config file merged over DefaultConfig. An
// empty path returns the defaults with only env overrides applied.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KURATE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("KURATE_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be > 0")
	}
	if c.FetchTimeoutSec <= 0 {
		return fmt.Errorf("fetch_timeout_sec must be > 0")
	}
	return nil
}
