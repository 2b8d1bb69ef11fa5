package hotkeys

import (
	"fmt"
	"sync"

	"github.com/yourusername/wise/internal/layout"
)

// Event is a key press or release from the global key source.
type Event struct {
	Press bool
	Key   Key
}

func (e Event) String() string {
	if e.Press {
		return "press " + e.Key.String()
	}
	return "release " + e.Key.String()
}

// Command is a layout command for the focused window. With Toggle set the
// window's enabled flag is flipped and Preset is ignored; otherwise the
// window is assigned Preset and enabled.
type Command struct {
	Preset layout.Preset
	Toggle bool
}

func (c Command) String() string {
	if c.Toggle {
		return "toggle"
	}
	return "assign " + c.Preset.String()
}

// bindings lists every chord in display order.
var bindings = []struct {
	binding string
	command Command
}{
	{"cmd+ctrl+option+shift+h", Command{Preset: layout.Left}},
	{"cmd+ctrl+option+shift+l", Command{Preset: layout.Right}},
	{"cmd+ctrl+option+shift+c", Command{Preset: layout.Full}},
	{"cmd+ctrl+option+shift+space", Command{Toggle: true}},
}

// chordKeys maps the final key of a chord to its command.
var chordKeys = func() map[Key]Command {
	keys := make(map[Key]Command, len(bindings))
	for _, b := range bindings {
		mods, key, err := ParseBinding(b.binding)
		if err != nil {
			panic(err)
		}
		if len(mods) != int(KeyShift-KeyCommand)+1 {
			panic(fmt.Sprintf("binding %s must hold every modifier", b.binding))
		}
		keys[key] = b.command
	}
	return keys
}()

// Chord describes a command binding for display.
type Chord struct {
	Binding string
	Command Command
}

// Chords returns every binding the tracker recognizes.
func Chords() []Chord {
	chords := make([]Chord, 0, len(bindings))
	for _, b := range bindings {
		chords = append(chords, Chord{Binding: b.binding, Command: b.command})
	}
	return chords
}

// Tracker follows which modifiers are held and recognizes a chord: all of
// Command, Control, Option and Shift held, then H, L, C or Space pressed.
// It is safe for concurrent use, though the key source delivers events from
// a single goroutine.
type Tracker struct {
	mu   sync.Mutex
	held [KeyShift + 1]bool
}

// NewTracker creates a tracker with no keys held.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Handle updates the modifier state with e and returns the command it
// completes, if any. Holding the chord and pressing the key again (or key
// repeat) produces the command again.
func (t *Tracker) Handle(e Event) (Command, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.Key.IsModifier() {
		t.held[e.Key] = e.Press
		return Command{}, false
	}
	if !e.Press || !t.allHeld() {
		return Command{}, false
	}
	cmd, ok := chordKeys[e.Key]
	return cmd, ok
}

// allHeld must be called with mu held.
func (t *Tracker) allHeld() bool {
	for k := KeyCommand; k <= KeyShift; k++ {
		if !t.held[k] {
			return false
		}
	}
	return true
}
