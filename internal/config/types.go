package config

import (
	"fmt"
	"time"

	"github.com/yourusername/wise/internal/layout"
)

// Config is the root configuration structure
type Config struct {
	Apps   []string       `yaml:"apps" json:"apps" toml:"apps"`                                      // Bundle ids to manage
	Bridge BridgeConfig   `yaml:"bridge" json:"bridge" toml:"bridge"`
	Prompt *bool          `yaml:"prompt,omitempty" json:"prompt,omitempty" toml:"prompt,omitempty"` // Ask the OS to show the accessibility prompt
	Insets *layout.Insets `yaml:"insets,omitempty" json:"insets,omitempty" toml:"insets,omitempty"` // Screen margins, defaults when omitted
}

// BridgeConfig locates the accessibility bridge
type BridgeConfig struct {
	Socket  string   `yaml:"socket,omitempty" json:"socket,omitempty" toml:"socket,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" toml:"timeout,omitempty"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
