package config

import (
	"fmt"
	"strings"

	"github.com/yourusername/wise/internal/layout"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	// Validate apps
	seen := make(map[string]bool)
	for i, app := range c.Apps {
		if _, err := ParseBundleID(app); err != nil {
			return fmt.Errorf("apps[%d]: %w", i, err)
		}
		key := strings.ToLower(strings.TrimSpace(app))
		if seen[key] {
			return fmt.Errorf("duplicate app: %s", app)
		}
		seen[key] = true
	}

	// Validate bridge
	if c.Bridge.Timeout < 0 {
		return fmt.Errorf("bridge: timeout must not be negative")
	}

	// Validate insets
	if c.Insets != nil {
		if err := validateInsets(c.Insets); err != nil {
			return fmt.Errorf("insets: %w", err)
		}
	}

	return nil
}

func validateInsets(in *layout.Insets) error {
	values := []struct {
		name  string
		value float64
	}{
		{"left", in.Left},
		{"right", in.Right},
		{"top", in.Top},
		{"bottom", in.Bottom},
		{"innerSpacing", in.InnerSpacing},
		{"notch", in.Notch},
	}
	for _, v := range values {
		if v.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", v.name, v.value)
		}
	}
	return nil
}
