// Package config holds the settings shared by every eliza command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultWidth is the teletype line width.
const DefaultWidth = 72

// Config is the on-disk configuration.
type Config struct {
	// Script is the path of a script file. Empty means the built-in DOCTOR script.
	Script string    `yaml:"script,omitempty"`
	DB     string    `yaml:"db"`
	Width  int       `yaml:"width"`
	Log    LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Dir returns the directory holding eliza's files, ~/.eliza.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".eliza")
}

// DefaultPath returns the config file location: $ELIZA_CONFIG or
// ~/.eliza/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("ELIZA_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DB:    filepath.Join(Dir(), "sessions.db"),
		Width: DefaultWidth,
		Log:   LogConfig{Level: "warn"},
	}
}

// Load reads the configuration at path. A missing file yields the
// defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("ELIZA_SCRIPT"); v != "" {
		c.Script = v
	}
	if v := os.Getenv("ELIZA_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("ELIZA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ELIZA_WIDTH"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ELIZA_WIDTH: %w", err)
		}
		c.Width = w
	}
	return nil
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Width < 1 {
		return fmt.Errorf("invalid width %d", c.Width)
	}
	for _, l := range ValidLevels {
		if c.Log.Level == l {
			return nil
		}
	}
	return fmt.Errorf("invalid log level %q (valid: %v)", c.Log.Level, ValidLevels)
}
