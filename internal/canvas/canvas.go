// Package canvas provides a terminal drawing surface addressed in
// physical pixels. Each terminal cell holds two vertically stacked pixels
// rendered with the upper-half-block rune, so the effective pixel ratio
// is 2 on the vertical axis.
package canvas

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// PixelRatio is the number of vertical pixels per terminal cell.
const PixelRatio = 2

// Canvas is a rectangle-fill drawing surface backed by an RGB pixel grid.
// Not safe for concurrent use; the render driver owns it.
type Canvas struct {
	cols, rows int
	px         []rgb // cols * rows * PixelRatio, row-major
}

// New returns an empty canvas. It has zero size until Resize is called.
func New() *Canvas {
	return &Canvas{}
}

// Resize sets the backing store to cols x rows terminal cells, discarding
// previous contents.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols = cols
	c.rows = rows
	c.px = make([]rgb, cols*rows*PixelRatio)
}

// Width returns the surface width in pixels.
func (c *Canvas) Width() int { return c.cols }

// Height returns the surface height in pixels.
func (c *Canvas) Height() int { return c.rows * PixelRatio }

// PixelRatio returns the vertical pixels per cell.
func (c *Canvas) PixelRatio() int { return PixelRatio }

// Clear fills the whole surface with col.
func (c *Canvas) Clear(col colorful.Color) {
	v := toRGB(col)
	for i := range c.px {
		c.px[i] = v
	}
}

// FillRect fills the rectangle at (x,y) with the given pixel extent,
// clipped to the surface bounds.
func (c *Canvas) FillRect(x, y, w, h int, col colorful.Color) {
	if c.cols == 0 || len(c.px) == 0 {
		return
	}
	x0, x1 := clip(x, c.Width()), clip(x+w, c.Width())
	y0, y1 := clip(y, c.Height()), clip(y+h, c.Height())
	v := toRGB(col)
	for py := y0; py < y1; py++ {
		row := py * c.cols
		for px := x0; px < x1; px++ {
			c.px[row+px] = v
		}
	}
}

// Render returns the surface as terminal output, one line per cell row.
func (c *Canvas) Render() string {
	return c.render(currentColorProfile())
}

func (c *Canvas) render(p colorProfile) string {
	if c.cols == 0 || c.rows == 0 {
		return ""
	}
	var sb strings.Builder
	state := newANSIState(p)
	for row := 0; row < c.rows; row++ {
		upper := row * PixelRatio * c.cols
		lower := upper + c.cols
		for col := 0; col < c.cols; col++ {
			top := c.px[upper+col]
			bottom := c.px[lower+col]
			if p == colorNone {
				sb.WriteRune(monochromeCell(top, bottom))
				continue
			}
			state.setFg(&sb, top)
			state.setBg(&sb, bottom)
			sb.WriteRune('▀')
		}
		state.reset(&sb)
		if row < c.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// monochromeCell approximates a pixel pair with plain block characters
// for terminals without color support.
func monochromeCell(top, bottom rgb) rune {
	const threshold = 48
	t := luma(top) > threshold
	b := luma(bottom) > threshold
	switch {
	case t && b:
		return '█'
	case t:
		return '▀'
	case b:
		return '▄'
	default:
		return ' '
	}
}

func luma(c rgb) int {
	return (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
}

func toRGB(col colorful.Color) rgb {
	r, g, b := col.Clamped().RGB255()
	return rgb{R: r, G: g, B: b}
}

func clip(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
