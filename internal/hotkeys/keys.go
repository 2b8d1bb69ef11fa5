// Package hotkeys turns raw key events into layout commands.
package hotkeys

import (
	"fmt"
	"strings"
)

// Key is a physical key, with left and right modifier variants folded
// together.
type Key int

const (
	KeyUnknown Key = iota
	KeyCommand
	KeyControl
	KeyOption
	KeyShift
	KeyH
	KeyL
	KeyC
	KeySpace
)

var keyNames = map[Key]string{
	KeyUnknown: "unknown",
	KeyCommand: "command",
	KeyControl: "control",
	KeyOption:  "option",
	KeyShift:   "shift",
	KeyH:       "h",
	KeyL:       "l",
	KeyC:       "c",
	KeySpace:   "space",
}

// aliases maps lower-cased key names, as typed by a user or sent by the
// bridge, to keys.
var aliases = map[string]Key{
	"cmd":          KeyCommand,
	"command":      KeyCommand,
	"meta":         KeyCommand,
	"super":        KeyCommand,
	"metaleft":     KeyCommand,
	"metaright":    KeyCommand,
	"ctrl":         KeyControl,
	"control":      KeyControl,
	"controlleft":  KeyControl,
	"controlright": KeyControl,
	"alt":          KeyOption,
	"opt":          KeyOption,
	"option":       KeyOption,
	"altleft":      KeyOption,
	"altright":     KeyOption,
	"altgr":        KeyOption,
	"shift":        KeyShift,
	"shiftleft":    KeyShift,
	"shiftright":   KeyShift,
	"h":            KeyH,
	"keyh":         KeyH,
	"l":            KeyL,
	"keyl":         KeyL,
	"c":            KeyC,
	"keyc":         KeyC,
	"space":        KeySpace,
}

// String returns the canonical name of the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// IsModifier reports whether k is one of the four chord modifiers.
func (k Key) IsModifier() bool {
	return k >= KeyCommand && k <= KeyShift
}

// ParseKey maps a key name to a Key. Names are case-insensitive; keys that
// play no part in a chord map to KeyUnknown.
func ParseKey(name string) Key {
	if name == " " {
		return KeySpace
	}
	if k, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return KeyUnknown
}

// ParseBinding splits a binding such as "cmd+ctrl+alt+shift+h" into its
// modifiers and final key.
func ParseBinding(binding string) (modifiers []Key, key Key, err error) {
	parts := strings.Split(binding, "+")
	if len(parts) < 2 {
		return nil, KeyUnknown, fmt.Errorf("invalid binding: %s (need modifier+key)", binding)
	}
	for _, part := range parts[:len(parts)-1] {
		m := ParseKey(part)
		if !m.IsModifier() {
			return nil, KeyUnknown, fmt.Errorf("invalid binding: %s (%q is not a modifier)", binding, part)
		}
		modifiers = append(modifiers, m)
	}
	key = ParseKey(parts[len(parts)-1])
	if key == KeyUnknown || key.IsModifier() {
		return nil, KeyUnknown, fmt.Errorf("invalid binding: %s (unknown key %q)", binding, parts[len(parts)-1])
	}
	return modifiers, key, nil
}
