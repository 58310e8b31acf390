// Package geometry lays out the weekly bar chart and the time-of-day bubble
// chart in pixel space. It only computes coordinates; painting is left to
// the render package.
package geometry

import (
	"fmt"
	"time"
)

// Padding is the margin between the surface edge and the plot area
type Padding struct {
	Top, Right, Bottom, Left float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner
type Rect struct {
	X, Y, W, H float64
}

// Point is a position on the surface
type Point struct {
	X, Y float64
}

// Align is the horizontal anchoring of a label relative to its position
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Label is text whose baseline starts, centers or ends at (X, Y)
type Label struct {
	Text  string
	X, Y  float64
	Align Align
}

// Line is a straight segment
type Line struct {
	From, To Point
}

// Gridline is a reference line with its axis label
type Gridline struct {
	Line  Line
	Label Label
}

// plotArea returns the inner rectangle of a width x height surface. Tiny
// surfaces collapse to an empty plot instead of a negative one.
func plotArea(width, height int, pad Padding) Rect {
	w := float64(width) - pad.Left - pad.Right
	h := float64(height) - pad.Top - pad.Bottom
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: pad.Left, Y: pad.Top, W: w, H: h}
}

// Bottom returns the y coordinate of the rectangle's lower edge
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Right returns the x coordinate of the rectangle's right edge
func (r Rect) Right() float64 {
	return r.X + r.W
}

// DayLabel formats a date the way both chart axes show it (8 May)
func DayLabel(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), t.Format("Jan"))
}
