package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/ax/axtest"
	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/hotkeys"
	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/state"
	"github.com/yourusername/wise/internal/types"
)

const (
	safari    = "com.apple.Safari"
	safariPID = 100
)

var (
	fullRect  = types.Rect{X: 8, Y: 46, Width: 1424, Height: 846}
	leftRect  = types.Rect{X: 8, Y: 46, Width: 706, Height: 846}
	rightRect = types.Rect{X: 726, Y: 46, Width: 706, Height: 846}
	elsewhere = types.Rect{X: 300, Y: 200, Width: 640, Height: 480}
)

type fixture struct {
	rt     *axtest.Runtime
	engine *Engine
	store  *state.Store
	logs   *bytes.Buffer
	w1, w2 foreign.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt := axtest.NewRuntime()
	rt.SetScreen(types.Rect{Width: 1440, Height: 900})
	rt.AddApplication(safariPID, safari)
	w1 := rt.AddWindow(safariPID, 1, elsewhere)
	w2 := rt.AddWindow(safariPID, 2, elsewhere)
	return newFixtureWith(t, rt, rt, w1, w2)
}

func newFixtureWith(t *testing.T, rt *axtest.Runtime, api ax.API, w1, w2 foreign.Handle) *fixture {
	t.Helper()
	presets, err := layout.NewPresets(rt, layout.DefaultInsets())
	if err != nil {
		t.Fatalf("NewPresets() error = %v", err)
	}
	logs := &bytes.Buffer{}
	store := state.NewStore()
	e := New(api, presets, store, WithLogger(zerolog.New(logs)))

	t.Cleanup(func() {
		e.Close()
		presets.Close()
		if n := rt.Outstanding(); n != 0 {
			t.Errorf("outstanding references = %d, want 0", n)
		}
		if m := rt.Misuse(); len(m) != 0 {
			t.Errorf("handle misuse: %v", m)
		}
	})
	return &fixture{rt: rt, engine: e, store: store, logs: logs, w1: w1, w2: w2}
}

func (f *fixture) chord(k hotkeys.Key) {
	for _, m := range []hotkeys.Key{hotkeys.KeyCommand, hotkeys.KeyControl, hotkeys.KeyOption, hotkeys.KeyShift} {
		f.engine.HandleKey(hotkeys.Event{Press: true, Key: m})
	}
	f.engine.HandleKey(hotkeys.Event{Press: true, Key: k})
	f.engine.HandleKey(hotkeys.Event{Press: false, Key: k})
}

func (f *fixture) focus(w foreign.Handle) {
	f.rt.SetFrontmost(safariPID)
	f.rt.SetFocusedWindow(safariPID, w)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Register(safari)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Register() = %d windows, want 2", n)
	}

	for _, w := range []foreign.Handle{f.w1, f.w2} {
		if got := f.rt.Frame(w); got != fullRect {
			t.Errorf("frame = %v, want %v", got, fullRect)
		}
	}

	subs := f.rt.Subscriptions()
	if len(subs) != 4 {
		t.Fatalf("got %d subscriptions, want 4", len(subs))
	}
	seen := make(map[foreign.Handle][]ax.Notification)
	for _, s := range subs {
		if s.PID != safariPID || s.Context != f.engine.Context() {
			t.Errorf("subscription = %+v", s)
		}
		seen[s.Element] = append(seen[s.Element], s.Notification)
	}
	for _, w := range []foreign.Handle{f.w1, f.w2} {
		if len(seen[w]) != 2 {
			t.Errorf("window %#x subscribed to %v, want moves and resizes", w, seen[w])
		}
	}

	for _, id := range []entity.WindowID{1, 2} {
		want := state.Assignment{Preset: layout.Full, Enabled: true}
		if got := f.store.Get(safari, id); got != want {
			t.Errorf("window %d assignment = %+v, want %+v", id, got, want)
		}
	}
}

func TestRegister_NoApplications(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Register("org.example.NotRunning")
	if err != nil || n != 0 {
		t.Errorf("Register() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestRegister_AlreadySubscribed(t *testing.T) {
	f := newFixture(t)
	f.rt.AddNotification(safariPID, f.w1, ax.WindowMoved, 0)

	if _, err := f.engine.Register(safari); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !f.store.Observed(safari, 1) {
		t.Error("window should be marked observed")
	}
}

func TestRegister_SubscribeFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.rt.FailSubscribe(f.w2, ax.ErrorCannotComplete)

	n, err := f.engine.Register(safari)
	if !ax.IsCode(err, ax.ErrorCannotComplete) {
		t.Errorf("Register() error = %v, want kAXErrorCannotComplete", err)
	}
	if n != 1 {
		t.Errorf("Register() = %d windows, want 1 before the failure", n)
	}
	if f.store.Observed(safari, 2) {
		t.Error("failed window must not be marked observed")
	}
}

func TestRegister_RelayoutFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.rt.FailSet(f.w1, "AXSize", ax.ErrorAttributeUnsupported)

	if _, err := f.engine.Register(safari); err == nil {
		t.Fatal("Register() should fail")
	}
	if len(f.rt.Subscriptions()) != 0 {
		t.Error("window was subscribed after its relayout failed")
	}
}

func TestNotification_EnabledWindowSnapsBack(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)

	f.rt.MoveWindow(f.w1, elsewhere)
	if n := f.rt.Deliver(f.w1, ax.WindowMoved); n != 1 {
		t.Fatalf("delivered %d notifications, want 1", n)
	}
	if got := f.rt.Frame(f.w1); got != fullRect {
		t.Errorf("frame = %v, want %v", got, fullRect)
	}
	if got := f.rt.Frame(f.w2); got != fullRect {
		t.Errorf("sibling frame = %v, want %v", got, fullRect)
	}
}

func TestNotification_DisabledWindowIgnored(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.store.Set(safari, 1, state.Assignment{Preset: layout.Left, Enabled: false})
	f.rt.ResetSetCalls()

	f.rt.MoveWindow(f.w1, elsewhere)
	f.rt.Deliver(f.w1, ax.WindowResized)

	if calls := f.rt.SetCalls(); len(calls) != 0 {
		t.Errorf("disabled window was relaid out: %v", calls)
	}
	if got := f.rt.Frame(f.w1); got != elsewhere {
		t.Errorf("frame = %v, want %v", got, elsewhere)
	}
}

func TestNotification_UnassignedWindowIgnored(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleNotification(f.w1, ax.WindowMoved)

	if calls := f.rt.SetCalls(); len(calls) != 0 {
		t.Errorf("unassigned window was relaid out: %v", calls)
	}
}

func TestNotification_FailuresAreLogged(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		want  string
	}{
		{
			name:  "relayout fails",
			setup: func(f *fixture) { f.rt.FailSet(f.w1, "AXPosition", ax.ErrorCannotComplete) },
			want:  "relayout failed",
		},
		{
			name:  "application quit",
			setup: func(f *fixture) { f.rt.Quit(safariPID) },
			want:  "failed to resolve window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.engine.Register(safari)
			tt.setup(f)

			f.engine.HandleNotification(f.w1, ax.WindowMoved)

			if !strings.Contains(f.logs.String(), tt.want) {
				t.Errorf("logs %q missing %q", f.logs.String(), tt.want)
			}
		})
	}
}

func TestNotification_NullElement(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleNotification(foreign.Null, ax.WindowMoved)

	if !strings.Contains(f.logs.String(), "failed to resolve window") {
		t.Errorf("logs = %q", f.logs.String())
	}
}

// panickingAPI panics while resolving notification elements.
type panickingAPI struct {
	*axtest.Runtime
}

func (panickingAPI) ElementPID(foreign.Handle) (int, ax.Code) {
	panic("bridge exploded")
}

func TestNotification_PanicRecovered(t *testing.T) {
	rt := axtest.NewRuntime()
	rt.SetScreen(types.Rect{Width: 1440, Height: 900})
	rt.AddApplication(safariPID, safari)
	w1 := rt.AddWindow(safariPID, 1, elsewhere)
	f := newFixtureWith(t, rt, panickingAPI{rt}, w1, foreign.Null)

	f.engine.HandleNotification(w1, ax.WindowMoved)

	if !strings.Contains(f.logs.String(), "bridge exploded") {
		t.Errorf("logs %q missing the panic", f.logs.String())
	}
}

func TestDispatch(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.rt.MoveWindow(f.w2, elsewhere)

	Dispatch(f.w2, ax.WindowResized, f.engine.Context())
	if got := f.rt.Frame(f.w2); got != fullRect {
		t.Errorf("frame = %v, want %v", got, fullRect)
	}

	// Unknown contexts are dropped.
	f.rt.MoveWindow(f.w2, elsewhere)
	Dispatch(f.w2, ax.WindowResized, f.engine.Context()+1000)
	if got := f.rt.Frame(f.w2); got != elsewhere {
		t.Errorf("frame = %v after unknown context, want %v", got, elsewhere)
	}
}

func TestDispatch_AfterClose(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.engine.Close()
	f.rt.MoveWindow(f.w1, elsewhere)

	f.rt.Deliver(f.w1, ax.WindowMoved)

	if got := f.rt.Frame(f.w1); got != elsewhere {
		t.Errorf("closed engine relaid out a window: %v", got)
	}
}

func TestCommand_AssignPreset(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.store.Assign(safari, 2, layout.Right)
	f.focus(f.w1)

	f.chord(hotkeys.KeyH)

	want := state.Assignment{Preset: layout.Left, Enabled: true}
	if got := f.store.Get(safari, 1); got != want {
		t.Errorf("focused assignment = %+v, want %+v", got, want)
	}
	if got := f.rt.Frame(f.w1); got != leftRect {
		t.Errorf("focused frame = %v, want %v", got, leftRect)
	}
	// Siblings keep their own preset.
	if got := f.store.Get(safari, 2).Preset; got != layout.Right {
		t.Errorf("sibling preset = %s, want Right", got)
	}
	if got := f.rt.Frame(f.w2); got != rightRect {
		t.Errorf("sibling frame = %v, want %v", got, rightRect)
	}
}

func TestCommand_Toggle(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.focus(f.w1)
	f.chord(hotkeys.KeyL)
	f.rt.ResetSetCalls()

	f.chord(hotkeys.KeySpace)

	want := state.Assignment{Preset: layout.Right, Enabled: false}
	if got := f.store.Get(safari, 1); got != want {
		t.Errorf("assignment = %+v, want %+v", got, want)
	}
	for _, c := range f.rt.SetCalls() {
		if c.Window == f.w1 {
			t.Errorf("disabled window was relaid out: %+v", c)
		}
	}
	if len(f.rt.SetCalls()) != 2 {
		t.Errorf("got %d set calls, want position and size of the sibling", len(f.rt.SetCalls()))
	}

	// Disabled windows stay where they are moved.
	f.rt.MoveWindow(f.w1, elsewhere)
	f.rt.Deliver(f.w1, ax.WindowMoved)
	if got := f.rt.Frame(f.w1); got != elsewhere {
		t.Errorf("frame = %v, want %v", got, elsewhere)
	}

	f.chord(hotkeys.KeySpace)
	want.Enabled = true
	if got := f.store.Get(safari, 1); got != want {
		t.Errorf("assignment = %+v, want %+v", got, want)
	}
	if got := f.rt.Frame(f.w1); got != rightRect {
		t.Errorf("frame = %v, want %v", got, rightRect)
	}
}

func TestCommand_UnregisteredWindowIsObserved(t *testing.T) {
	f := newFixture(t)
	f.focus(f.w2)

	f.chord(hotkeys.KeyC)

	if got := f.rt.Frame(f.w2); got != fullRect {
		t.Errorf("frame = %v, want %v", got, fullRect)
	}
	if got := f.rt.Frame(f.w1); got != elsewhere {
		t.Errorf("unassigned sibling moved to %v", got)
	}
	if !f.store.Observed(safari, 2) {
		t.Error("window should be observed after a command")
	}
	if n := len(f.rt.Subscriptions()); n != 2 {
		t.Errorf("got %d subscriptions, want 2", n)
	}

	f.rt.MoveWindow(f.w2, elsewhere)
	f.rt.Deliver(f.w2, ax.WindowResized)
	if got := f.rt.Frame(f.w2); got != fullRect {
		t.Errorf("frame = %v after resize, want %v", got, fullRect)
	}
}

func TestCommand_FirstToggleEnablesFull(t *testing.T) {
	f := newFixture(t)
	f.focus(f.w1)

	res, ok, err := f.engine.Apply(hotkeys.Command{Toggle: true})
	if err != nil || !ok {
		t.Fatalf("Apply() = (%v, %v)", ok, err)
	}
	want := state.Assignment{Preset: layout.Full, Enabled: true}
	if res.Assignment != want || res.Applied != 1 || res.BundleID != safari || res.WindowID != 1 {
		t.Errorf("Apply() = %+v", res)
	}
}

func TestCommand_SiblingFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.focus(f.w2)
	f.rt.FailSet(f.w1, "AXPosition", ax.ErrorCannotComplete)

	res, ok, err := f.engine.Apply(hotkeys.Command{Preset: layout.Left})
	if err != nil || !ok {
		t.Fatalf("Apply() = (%v, %v)", ok, err)
	}
	if res.Applied != 1 || res.Failed != 1 {
		t.Errorf("Apply() applied %d failed %d, want 1 and 1", res.Applied, res.Failed)
	}
	if got := f.rt.Frame(f.w2); got != leftRect {
		t.Errorf("frame = %v, want %v", got, leftRect)
	}
}

func TestCommand_ReappliesAcrossProcesses(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.rt.AddApplication(200, safari)
	w3 := f.rt.AddWindow(200, 3, elsewhere)
	f.store.Set(safari, 3, state.Assignment{Preset: layout.Right, Enabled: true})
	f.focus(f.w1)

	res, ok, err := f.engine.Apply(hotkeys.Command{Preset: layout.Left})
	if err != nil || !ok {
		t.Fatalf("Apply() = (%v, %v)", ok, err)
	}
	if res.Applied != 3 || res.Failed != 0 {
		t.Errorf("Apply() applied %d failed %d, want 3 and 0", res.Applied, res.Failed)
	}
	if got := f.rt.Frame(f.w1); got != leftRect {
		t.Errorf("focused frame = %v, want %v", got, leftRect)
	}
	if got := f.rt.Frame(w3); got != rightRect {
		t.Errorf("second process window frame = %v, want %v", got, rightRect)
	}
}

func TestCommand_NoFocus(t *testing.T) {
	t.Run("no frontmost application", func(t *testing.T) {
		f := newFixture(t)
		f.chord(hotkeys.KeyH)
		if len(f.rt.SetCalls()) != 0 {
			t.Error("windows changed without a frontmost application")
		}
		if !strings.Contains(f.logs.String(), "no focused window") {
			t.Errorf("logs = %q", f.logs.String())
		}
	})

	t.Run("no focused window", func(t *testing.T) {
		f := newFixture(t)
		f.rt.SetFrontmost(safariPID)
		_, ok, err := f.engine.Apply(hotkeys.Command{Preset: layout.Left})
		if ok || err != nil {
			t.Errorf("Apply() = (%v, %v), want (false, nil)", ok, err)
		}
	})
}

func TestCommand_IncompleteChordIgnored(t *testing.T) {
	f := newFixture(t)
	f.focus(f.w1)

	f.engine.HandleKey(hotkeys.Event{Press: true, Key: hotkeys.KeyCommand})
	f.engine.HandleKey(hotkeys.Event{Press: true, Key: hotkeys.KeyShift})
	f.engine.HandleKey(hotkeys.Event{Press: true, Key: hotkeys.KeyH})

	if len(f.rt.SetCalls()) != 0 {
		t.Error("incomplete chord changed a window")
	}
}

func TestConcurrentNotificationsAndCommands(t *testing.T) {
	f := newFixture(t)
	f.engine.Register(safari)
	f.focus(f.w1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			f.rt.Deliver(f.w2, ax.WindowMoved)
		}
	}()
	for i := 0; i < 50; i++ {
		f.engine.Apply(hotkeys.Command{Preset: layout.Left})
	}
	<-done

	if got := f.rt.Frame(f.w1); got != leftRect {
		t.Errorf("focused frame = %v, want %v", got, leftRect)
	}
	if got := f.rt.Frame(f.w2); got != fullRect {
		t.Errorf("sibling frame = %v, want %v", got, fullRect)
	}
}
