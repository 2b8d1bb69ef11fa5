package layout

import (
	"fmt"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/types"
)

// Insets configures the margins around preset rectangles, in screen units.
type Insets struct {
	Left         float64 `yaml:"left" json:"left" toml:"left"`
	Right        float64 `yaml:"right" json:"right" toml:"right"`
	Top          float64 `yaml:"top" json:"top" toml:"top"`
	Bottom       float64 `yaml:"bottom" json:"bottom" toml:"bottom"`
	InnerSpacing float64 `yaml:"innerSpacing" json:"innerSpacing" toml:"innerSpacing"` // Split evenly between Left and Right
	Notch        float64 `yaml:"notch" json:"notch" toml:"notch"`                      // Reserved above the work area
}

// DefaultInsets returns the built-in margins
func DefaultInsets() Insets {
	return Insets{
		Left:         8,
		Right:        8,
		Top:          6,
		Bottom:       8,
		InnerSpacing: 12,
		Notch:        40,
	}
}

// Calculate returns the rectangle of every preset for a screen frame,
// indexed by Preset.
func Calculate(screen types.Rect, in Insets) [PresetCount]types.Rect {
	frame := types.Rect{
		X:      screen.X,
		Y:      screen.Y + in.Notch,
		Width:  screen.Width,
		Height: screen.Height - in.Notch,
	}
	left, right := frame.SplitHorizontal()

	return [PresetCount]types.Rect{
		Full:  frame.Inset(in.Left, in.Right, in.Top, in.Bottom),
		Left:  left.Inset(in.Left, in.InnerSpacing/2, in.Top, in.Bottom),
		Right: right.Inset(in.InnerSpacing/2, in.Right, in.Top, in.Bottom),
	}
}

// AXRect is a rectangle encoded as the two foreign values written to a
// window's position and size attributes.
type AXRect struct {
	Frame  types.Rect
	origin *foreign.Unique[ax.Value]
	size   *foreign.Unique[ax.Value]
}

// NewAXRect encodes frame as foreign values.
func NewAXRect(api ax.API, frame types.Rect) (*AXRect, error) {
	origin, ok := foreign.AdoptUnique[ax.Value](api, api.CreatePointValue(frame.Origin()))
	if !ok {
		return nil, fmt.Errorf("failed to encode origin of %v: %w", frame, ax.ErrCouldNotCreateForeignObject)
	}
	size, ok := foreign.AdoptUnique[ax.Value](api, api.CreateSizeValue(frame.Size()))
	if !ok {
		origin.Close()
		return nil, fmt.Errorf("failed to encode size of %v: %w", frame, ax.ErrCouldNotCreateForeignObject)
	}
	return &AXRect{Frame: frame, origin: origin, size: size}, nil
}

// Origin returns the encoded position. It is valid until r is closed.
func (r *AXRect) Origin() foreign.Handle {
	return r.origin.Get()
}

// Size returns the encoded size. It is valid until r is closed.
func (r *AXRect) Size() foreign.Handle {
	return r.size.Get()
}

// Close releases both values.
func (r *AXRect) Close() {
	if r == nil {
		return
	}
	r.origin.Close()
	r.size.Close()
}

// Presets holds the encoded rectangle of every preset for the main screen.
// It is read-only after construction and safe for concurrent use.
type Presets struct {
	rects [PresetCount]*AXRect
}

// NewPresets computes and encodes the presets for the primary screen.
func NewPresets(api ax.API, in Insets) (*Presets, error) {
	screen, ok := api.MainScreenFrame()
	if !ok {
		return nil, fmt.Errorf("failed to read main screen frame: %w", ax.ErrUnexpectedNull)
	}

	p := &Presets{}
	for i, frame := range Calculate(screen, in) {
		rect, err := NewAXRect(api, frame)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to create %s preset: %w", Preset(i), err)
		}
		p.rects[i] = rect
	}
	return p, nil
}

// Get returns the rectangle for preset.
func (p *Presets) Get(preset Preset) *AXRect {
	if !preset.Valid() {
		return nil
	}
	return p.rects[preset]
}

// Frames returns the plain rectangles, indexed by Preset.
func (p *Presets) Frames() [PresetCount]types.Rect {
	var frames [PresetCount]types.Rect
	for i, r := range p.rects {
		if r != nil {
			frames[i] = r.Frame
		}
	}
	return frames
}

// Close releases every encoded rectangle.
func (p *Presets) Close() {
	for i, r := range p.rects {
		r.Close()
		p.rects[i] = nil
	}
}
