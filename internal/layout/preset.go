package layout

import (
	"fmt"
	"strings"
)

// Preset names one of the fixed screen regions a window can be pinned to.
type Preset int

const (
	Full Preset = iota
	Left
	Right

	// PresetCount is the number of presets.
	PresetCount
)

// String returns the lowercase preset name
func (p Preset) String() string {
	switch p {
	case Full:
		return "full"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the presets.
func (p Preset) Valid() bool {
	return p >= Full && p < PresetCount
}

// ParsePreset converts a name to a Preset
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return Full, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("unknown layout preset: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Preset) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid layout preset %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Preset) UnmarshalText(text []byte) error {
	parsed, err := ParsePreset(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
