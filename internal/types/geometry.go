package types

import "fmt"

// Point is a position in screen coordinates, origin at the top-left of the
// primary screen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width and height in screen units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect represents bounds on screen
type Rect struct {
	X      float64 `json:"x"`      // Left edge
	Y      float64 `json:"y"`      // Top edge
	Width  float64 `json:"width"`  // Width in screen units
	Height float64 `json:"height"` // Height in screen units
}

// Origin returns the top-left corner of r.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the dimensions of r.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Inset shrinks r by the given amount on each edge.
func (r Rect) Inset(left, right, top, bottom float64) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - (left + right),
		Height: r.Height - (top + bottom),
	}
}

// SplitHorizontal cuts r into equal left and right halves.
func (r Rect) SplitHorizontal() (Rect, Rect) {
	half := r.Width / 2
	left := r
	left.Width = half

	right := r
	right.X += half
	right.Width = half
	return left, right
}

// String formats r as "WxH @ (X, Y)".
func (r Rect) String() string {
	return fmt.Sprintf("%.0fx%.0f @ (%.0f, %.0f)", r.Width, r.Height, r.X, r.Y)
}
