// Package config provides configuration management for netatlas.
//
// Config file locations (priority order):
//  1. $NETATLAS_CONFIG
//  2. ./netatlas.yaml
//  3. $XDG_CONFIG_HOME/netatlas/config.yaml
//  4. ~/.config/netatlas/config.yaml
//  5. /etc/netatlas/config.yaml
//
// The encryption key may be supplied in the file or through
// $NETATLAS_ENCRYPTION_KEY; the env var wins. The key is loaded once at
// process start and held for the process lifetime — there is no hot rotation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvEncryptionKey overrides encryption.key from the file.
const EnvEncryptionKey = "NETATLAS_ENCRYPTION_KEY"

// Config is the root configuration structure.
type Config struct {
	Version    int              `yaml:"version"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Encryption EncryptionConfig `yaml:"encryption"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EncryptionConfig holds the vault key material. Key is required: the
// process refuses to start without one, since sealed values would be
// unrecoverable noise.
type EncryptionConfig struct {
	Key string `yaml:"key"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, path, nil
}

// Save writes config to the specified path. The encryption key is written
// as-is; keep file permissions tight.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":3000"},
		Database: DatabaseConfig{Path: "./netatlas.db"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

// Validate checks invariants that must hold before the server starts.
func (c *Config) Validate() error {
	if c.Encryption.Key == "" {
		return fmt.Errorf("encryption key is required (encryption.key or $%s)", EnvEncryptionKey)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./netatlas.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if key := os.Getenv(EnvEncryptionKey); key != "" {
		c.Encryption.Key = key
	}
}
