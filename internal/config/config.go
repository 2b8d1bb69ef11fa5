// Package config loads the wise configuration file and overlays flag and
// environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/wise/internal/layout"
)

const (
	DefaultConfigDir  = ".config/wise"
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, as in WISE_SOCKET.
	EnvPrefix = "WISE"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	prompt := true
	insets := layout.DefaultInsets()
	return &Config{
		Prompt: &prompt,
		Insets: &insets,
	}
}

// LoadConfig loads configuration from the specified path or default location
// If path is empty, uses ~/.config/wise/config.yaml, then config.json, then
// config.toml, and falls back to Default if none exists.
// Supports .yaml, .json and .toml extensions
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		// Try YAML first, then JSON, then TOML
		for _, name := range []string{"config.yaml", "config.json", "config.toml"} {
			candidate := filepath.Join(home, DefaultConfigDir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := LoadConfigFromBytes(data, ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigFromBytes loads configuration from raw bytes
// format should be "yaml", "json" or "toml"
// Fields missing from data keep their Default values.
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// NewViper returns a viper instance reading WISE_* environment variables.
// Flags are bound to it by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides overlays values set by flag or environment variable on
// the file values, then validates the result.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	if v.IsSet("socket") {
		c.Bridge.Socket = v.GetString("socket")
	}
	if v.IsSet("timeout") {
		c.Bridge.Timeout = Duration(v.GetDuration("timeout"))
	}
	if v.IsSet("prompt") {
		prompt := v.GetBool("prompt")
		c.Prompt = &prompt
	}
	return c.Validate()
}

// ShouldPrompt reports whether the accessibility prompt should be shown
// when permission is missing.
func (c *Config) ShouldPrompt() bool {
	return c.Prompt == nil || *c.Prompt
}

// GetInsets returns the configured insets or the defaults.
func (c *Config) GetInsets() layout.Insets {
	if c.Insets == nil {
		return layout.DefaultInsets()
	}
	return *c.Insets
}
