package output

import (
	"strings"
)

// BoxStyle defines the character set for drawing boxes
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
}

var (
	ASCIIStyle = BoxStyle{'+', '+', '+', '+', '-', '|'}

	UnicodeStyle = BoxStyle{'┌', '┐', '└', '┘', '─', '│'}
)

// Canvas is a fixed-size grid of runes that boxes and labels are drawn on.
type Canvas struct {
	Width  int
	Height int
	rows   [][]rune
	style  BoxStyle
}

// NewCanvas creates a blank canvas
func NewCanvas(width, height int, style BoxStyle) *Canvas {
	rows := make([][]rune, height)
	for y := range rows {
		rows[y] = []rune(strings.Repeat(" ", width))
	}
	return &Canvas{Width: width, Height: height, rows: rows, style: style}
}

// Set writes r at (x, y). Points outside the canvas are ignored.
func (c *Canvas) Set(x, y int, r rune) {
	if x >= 0 && x < c.Width && y >= 0 && y < c.Height {
		c.rows[y][x] = r
	}
}

// At returns the rune at (x, y), or a space outside the canvas.
func (c *Canvas) At(x, y int) rune {
	if x >= 0 && x < c.Width && y >= 0 && y < c.Height {
		return c.rows[y][x]
	}
	return ' '
}

// DrawBox outlines the rectangle with its top-left corner at (x, y).
func (c *Canvas) DrawBox(x, y, width, height int) {
	if width < 2 || height < 2 {
		return
	}
	right, bottom := x+width-1, y+height-1

	for i := x + 1; i < right; i++ {
		c.Set(i, y, c.style.Horizontal)
		c.Set(i, bottom, c.style.Horizontal)
	}
	for j := y + 1; j < bottom; j++ {
		c.Set(x, j, c.style.Vertical)
		c.Set(right, j, c.style.Vertical)
	}
	c.Set(x, y, c.style.TopLeft)
	c.Set(right, y, c.style.TopRight)
	c.Set(x, bottom, c.style.BottomLeft)
	c.Set(right, bottom, c.style.BottomRight)
}

// DrawLabel centers text on row y between x and x+width, truncating it to
// fit.
func (c *Canvas) DrawLabel(x, y, width int, text string) {
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	start := x + (width-len(runes))/2
	for i, r := range runes {
		c.Set(start+i, y, r)
	}
}

// String renders the canvas, one line per row, without trailing spaces.
func (c *Canvas) String() string {
	lines := make([]string, len(c.rows))
	for y, row := range c.rows {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
