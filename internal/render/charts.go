package render

import (
	"fmt"
	"io"

	"github.com/jgoulah/pumplog/internal/geometry"
)

// WeeklyChart paints the stacked daily bars
func WeeklyChart(w io.Writer, f Format, bars geometry.BarChart) error {
	c, err := newCanvas(f, bars.Width, bars.Height)
	if err != nil {
		return err
	}

	for _, g := range bars.Gridlines {
		c.line(g.Line, colorGrid)
		c.text(g.Label, colorText, labelSize)
	}

	for _, b := range bars.Bars {
		c.rect(b.Morning, colorMorning)
		c.rect(b.Afternoon, colorAfternoon)
		c.text(b.ValueLabel, colorTotalLabel, totalSize)
		c.text(b.DateLabel, colorText, labelSize)
	}

	if err := c.r.Save(w); err != nil {
		return fmt.Errorf("writing weekly chart: %w", err)
	}
	return nil
}

// BubbleChart paints the time-of-day bubbles. Amounts are written inside
// bubbles large enough to hold them.
func BubbleChart(w io.Writer, f Format, bubbles geometry.BubbleChart) error {
	c, err := newCanvas(f, bubbles.Width, bubbles.Height)
	if err != nil {
		return err
	}

	for _, g := range bubbles.HourLines {
		c.line(g.Line, colorGrid)
		c.text(g.Label, colorText, labelSize)
	}
	for _, g := range bubbles.RowLines {
		c.line(g.Line, colorGrid)
		c.text(g.Label, colorText, labelSize)
	}

	for _, b := range bubbles.Bubbles {
		c.circle(b.Center, b.Radius, b.Color)
		if b.ShowAmount {
			// vertically centered on the bubble
			c.text(geometry.Label{
				Text:  b.Amount.String(),
				X:     b.Center.X,
				Y:     b.Center.Y + labelSize*0.35,
				Align: geometry.AlignCenter,
			}, colorBubbleLabel, labelSize)
		}
	}

	if err := c.r.Save(w); err != nil {
		return fmt.Errorf("writing bubble chart: %w", err)
	}
	return nil
}
