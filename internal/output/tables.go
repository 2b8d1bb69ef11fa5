package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/wise/internal/hotkeys"
	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/state"
	"github.com/yourusername/wise/internal/types"
)

// PrintPresetsTable prints the rectangle of every preset
func PrintPresetsTable(w io.Writer, frames [layout.PresetCount]types.Rect) {
	table := tablewriter.NewWriter(w)
	table.Header("Preset", "Position", "Size")

	for i, frame := range frames {
		table.Append(
			layout.Preset(i).String(),
			fmt.Sprintf("%.0f, %.0f", frame.X, frame.Y),
			fmt.Sprintf("%.0fx%.0f", frame.Width, frame.Height),
		)
	}

	table.Render()
}

// PrintAssignmentsTable prints the layout assignment of every known window.
// Entries are printed in the order given; Store.Snapshot sorts them.
func PrintAssignmentsTable(w io.Writer, entries []state.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No windows assigned")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Bundle ID", "Window", "Preset", "Enabled", "Observed")

	for _, e := range entries {
		table.Append(
			truncate(e.BundleID, 35),
			strconv.FormatUint(uint64(e.WindowID), 10),
			e.Preset.String(),
			yesNo(e.Enabled),
			yesNo(e.Observed),
		)
	}

	table.Render()
}

// PrintAssignmentSummary prints one line counting the windows in store.
func PrintAssignmentSummary(w io.Writer, store *state.Store) {
	total, enabled := store.Count()
	fmt.Fprintf(w, "%d windows (%d enabled) across %d applications\n", total, enabled, len(store.BundleIDs()))
}

// PrintChordsTable prints the key chords and the command each triggers
func PrintChordsTable(w io.Writer, chords []hotkeys.Chord) {
	table := tablewriter.NewWriter(w)
	table.Header("Chord", "Command")

	for _, c := range chords {
		table.Append(c.Binding, c.Command.String())
	}

	table.Render()
}

// Helper functions

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
