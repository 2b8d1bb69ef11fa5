package engine

import (
	"fmt"

	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/hotkeys"
	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/state"
)

// Result reports what a command did.
type Result struct {
	BundleID   string
	WindowID   entity.WindowID
	Assignment state.Assignment
	// Applied counts enabled windows of the bundle that were laid out.
	Applied int
	// Failed counts enabled windows that could not be laid out.
	Failed int
}

// HandleKey feeds a key event to the chord tracker and applies the command
// it completes. It is the key source's callback: failures are logged and
// panics recovered.
func (e *Engine) HandleKey(ev hotkeys.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Stringer("event", ev).Msg("key handler panicked")
		}
	}()

	cmd, ok := e.tracker.Handle(ev)
	if !ok {
		return
	}
	res, ok, err := e.Apply(cmd)
	switch {
	case err != nil:
		e.log.Warn().Err(err).Stringer("command", cmd).Msg("command failed")
	case !ok:
		e.log.Info().Stringer("command", cmd).Msg("no focused window")
	default:
		e.log.Info().
			Stringer("command", cmd).
			Str("bundleId", res.BundleID).
			Uint32("windowId", uint32(res.WindowID)).
			Stringer("preset", res.Assignment.Preset).
			Bool("enabled", res.Assignment.Enabled).
			Int("applied", res.Applied).
			Int("failed", res.Failed).
			Msg("command applied")
	}
}

// Apply runs cmd against the focused window of the frontmost application,
// then lays out every enabled window of that bundle, across all of its
// running processes, at its own preset. It returns false if there is no
// focused window. A failure to lay out one window is logged and does not
// stop the others.
func (e *Engine) Apply(cmd hotkeys.Command) (Result, bool, error) {
	app, ok, err := entity.FrontmostApplication(e.api)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to get frontmost application: %w", err)
	}
	if !ok {
		return Result{}, false, nil
	}
	defer app.Close()

	focused, ok, err := app.FocusedWindow()
	if err != nil || !ok {
		return Result{}, false, err
	}
	defer focused.Close()

	id, err := focused.ID()
	if err != nil {
		return Result{}, false, err
	}

	res := Result{BundleID: app.BundleID(), WindowID: id}
	if cmd.Toggle {
		res.Assignment = e.store.Toggle(res.BundleID, id)
	} else {
		res.Assignment = e.store.Assign(res.BundleID, id, cmd.Preset)
	}

	// A window first seen here is kept in place from now on.
	if err := e.observe(focused, id); err != nil {
		e.log.Warn().Err(err).Str("bundleId", res.BundleID).Uint32("windowId", uint32(id)).Msg("failed to observe window")
	}

	apps, err := entity.RunningApplications(e.api, res.BundleID)
	if err != nil {
		return res, true, fmt.Errorf("failed to get running applications: %w", err)
	}
	defer entity.CloseApplications(apps)

	enabled := e.store.EnabledWindows(res.BundleID)
	var firstErr error
	for _, a := range apps {
		applied, failed, err := e.reapply(a, enabled)
		res.Applied += applied
		res.Failed += failed
		if err != nil {
			e.log.Warn().Err(err).Str("bundleId", res.BundleID).Int("pid", a.PID()).Msg("failed to list windows")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return res, true, firstErr
}

// reapply lays out every window of app found in enabled at its preset.
func (e *Engine) reapply(app *entity.Application, enabled map[entity.WindowID]layout.Preset) (applied, failed int, err error) {
	windows, err := app.Windows()
	if err != nil {
		return 0, 0, err
	}
	defer entity.CloseWindows(windows)

	for _, w := range windows {
		id, err := w.ID()
		if err != nil {
			failed++
			e.log.Warn().Err(err).Str("bundleId", w.BundleID()).Msg("failed to resolve window id")
			continue
		}
		preset, ok := enabled[id]
		if !ok {
			continue
		}
		if err := w.Relayout(e.presets.Get(preset)); err != nil {
			failed++
			e.log.Warn().
				Err(err).
				Str("bundleId", w.BundleID()).
				Uint32("windowId", uint32(id)).
				Stringer("preset", preset).
				Msg("relayout failed")
			continue
		}
		applied++
	}
	return applied, failed, nil
}
