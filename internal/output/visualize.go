package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sys/unix"

	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/types"
)

// VisualizationOptions controls the appearance of the visualization
type VisualizationOptions struct {
	UseUnicode bool
	MaxWidth   int
	MaxHeight  int
}

// DefaultVisualizationOptions sizes the drawing to the terminal
func DefaultVisualizationOptions() VisualizationOptions {
	width, height := getTerminalSize()
	return VisualizationOptions{
		UseUnicode: supportsUnicode(),
		MaxWidth:   width,
		MaxHeight:  height - 2,
	}
}

// VisualizePresets draws the screen with the given preset rectangles inside
// it. Left and Right are drawn over Full, so Full shows as their outline.
func VisualizePresets(screen types.Rect, frames [layout.PresetCount]types.Rect, opts VisualizationOptions) string {
	style := ASCIIStyle
	if opts.UseUnicode {
		style = UnicodeStyle
	}

	sc := NewScalingContext(screen, opts.MaxWidth, opts.MaxHeight)
	canvas := NewCanvas(sc.TermWidth, sc.TermHeight, style)
	canvas.DrawBox(0, 0, sc.TermWidth, sc.TermHeight)

	for _, p := range []layout.Preset{layout.Full, layout.Left, layout.Right} {
		x, y, w, h := sc.ToTerminal(frames[p])
		canvas.DrawBox(x, y, w, h)

		if p != layout.Full {
			canvas.DrawLabel(x+1, y+h/2, w-2, p.String())
		}
	}

	return canvas.String()
}

// PrintVisualization writes the preset drawing to w, coloured unless
// colour is disabled.
func PrintVisualization(w io.Writer, screen types.Rect, frames [layout.PresetCount]types.Rect, opts VisualizationOptions) {
	result := VisualizePresets(screen, frames, opts)
	header := fmt.Sprintf("Screen %s\n", screen)

	if color.NoColor {
		fmt.Fprint(w, header+result+"\n")
		return
	}
	color.New(color.Bold).Fprint(w, header)
	color.New(color.FgCyan).Fprintln(w, result)
}

// getTerminalSize returns the current terminal dimensions
func getTerminalSize() (width, height int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// supportsUnicode checks if the terminal supports Unicode
func supportsUnicode() bool {
	lang := os.Getenv("LANG")
	lcAll := os.Getenv("LC_ALL")

	return strings.Contains(lang, "UTF-8") || strings.Contains(lcAll, "UTF-8")
}
