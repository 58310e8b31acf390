// Package render paints laid-out charts onto a go-chart renderer and writes
// them as SVG or PNG.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jgoulah/pumplog/internal/geometry"
)

// Format is an output image format
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q (want svg or png)", s)
	}
}

// ContentType returns the MIME type for HTTP responses
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Colors shared by both charts
const (
	colorBackground  = "#ffffff"
	colorGrid        = "#eeeeee"
	colorText        = "#7f8c8d"
	colorMorning     = "#f8a5c2"
	colorAfternoon   = "#e84393"
	colorTotalLabel  = "#b83b7c"
	colorBubbleLabel = "#ffffff"

	labelSize = 10.0
	totalSize = 12.0
)

// canvas wraps a renderer with helpers taking geometry types. All helpers
// set the style they need, so call order does not leak state.
type canvas struct {
	r chart.Renderer
}

func newCanvas(f Format, width, height int) (*canvas, error) {
	r, err := f.provider()(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating %s renderer: %w", f, err)
	}
	// 72 dpi makes font points equal to pixels
	r.SetDPI(72)

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	r.SetFont(font)

	c := &canvas{r: r}
	c.rect(geometry.Rect{W: float64(width), H: float64(height)}, colorBackground)
	return c, nil
}

func hex(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

func px(v float64) int {
	return int(math.Round(v))
}

func (c *canvas) rect(r geometry.Rect, fill string) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	col := hex(fill)
	c.r.SetFillColor(col)
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(px(r.X), px(r.Y))
	c.r.LineTo(px(r.Right()), px(r.Y))
	c.r.LineTo(px(r.Right()), px(r.Bottom()))
	c.r.LineTo(px(r.X), px(r.Bottom()))
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) line(l geometry.Line, stroke string) {
	c.r.SetStrokeColor(hex(stroke))
	c.r.SetFillColor(drawing.ColorTransparent)
	c.r.SetStrokeWidth(1)
	c.r.MoveTo(px(l.From.X), px(l.From.Y))
	c.r.LineTo(px(l.To.X), px(l.To.Y))
	c.r.Stroke()
}

func (c *canvas) circle(center geometry.Point, radius float64, fill string) {
	if math.IsNaN(radius) || radius <= 0 {
		return
	}
	col := hex(fill)
	c.r.SetFillColor(col)
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(0)
	c.r.Circle(radius, px(center.X), px(center.Y))
	c.r.Fill()
}

// text draws l with its baseline at l.Y, shifted horizontally by its
// alignment
func (c *canvas) text(l geometry.Label, color string, size float64) {
	if l.Text == "" {
		return
	}
	c.r.SetFontColor(hex(color))
	c.r.SetFontSize(size)

	x := l.X
	switch l.Align {
	case geometry.AlignCenter:
		x -= float64(c.r.MeasureText(l.Text).Width()) / 2
	case geometry.AlignRight:
		x -= float64(c.r.MeasureText(l.Text).Width())
	}
	c.r.Text(l.Text, px(x), px(l.Y))
}
