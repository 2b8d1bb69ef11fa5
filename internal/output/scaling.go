package output

import (
	"math"

	"github.com/yourusername/wise/internal/types"
)

// ScalingContext maps screen coordinates onto terminal cells.
type ScalingContext struct {
	// Screen bounds in screen units
	Screen types.Rect

	// Terminal dimensions in characters
	TermWidth  int
	TermHeight int

	// Characters per screen unit
	ScaleX float64
	ScaleY float64
}

// NewScalingContext fits screen into a terminal of the given size. Terminal
// cells are about twice as tall as they are wide, so the vertical scale is
// halved and the narrower axis decides the fit.
func NewScalingContext(screen types.Rect, termWidth, termHeight int) *ScalingContext {
	if termWidth < 10 {
		termWidth = 10
	}
	if termHeight < 5 {
		termHeight = 5
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		screen = types.Rect{Width: 1920, Height: 1080}
	}

	scale := math.Min(float64(termWidth-1)/screen.Width, 2*float64(termHeight-1)/screen.Height)

	return &ScalingContext{
		Screen:     screen,
		TermWidth:  int(math.Round(screen.Width*scale)) + 1,
		TermHeight: int(math.Round(screen.Height*scale/2)) + 1,
		ScaleX:     scale,
		ScaleY:     scale / 2,
	}
}

// ToTerminal converts a screen rectangle to a terminal box, clamped to the
// canvas and at least 3x2 so it stays visible.
func (sc *ScalingContext) ToTerminal(r types.Rect) (x, y, w, h int) {
	x = int(math.Round((r.X - sc.Screen.X) * sc.ScaleX))
	y = int(math.Round((r.Y - sc.Screen.Y) * sc.ScaleY))
	right := int(math.Round((r.X + r.Width - sc.Screen.X) * sc.ScaleX))
	bottom := int(math.Round((r.Y + r.Height - sc.Screen.Y) * sc.ScaleY))

	x = clamp(x, 0, sc.TermWidth-1)
	y = clamp(y, 0, sc.TermHeight-1)
	right = clamp(right, 0, sc.TermWidth-1)
	bottom = clamp(bottom, 0, sc.TermHeight-1)

	w = max(right-x+1, 3)
	h = max(bottom-y+1, 2)
	return x, y, w, h
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
