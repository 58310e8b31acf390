package geometry

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/jgoulah/pumplog/pkg/models"
)

const (
	// HoursPerDay is the fixed horizontal domain of the bubble chart
	HoursPerDay = 24
	// HourStep is the spacing of the vertical gridlines
	HourStep = 4
	// MinRadius keeps tiny amounts visible
	MinRadius = 5
	// LabelRadius is the radius a bubble must exceed to carry its amount
	LabelRadius = 12

	hourLabelGap = 15
)

// BubblePadding is the bubble chart's margin
var BubblePadding = Padding{Top: 30, Right: 20, Bottom: 40, Left: 60}

// Bubble is one drawn sample
type Bubble struct {
	Center     Point
	Radius     float64 // at least MinRadius, NaN for an invalid amount
	Color      string
	Amount     models.Volume
	TimeLabel  string
	ShowAmount bool
}

// BubbleChart is the laid-out time-of-day chart
type BubbleChart struct {
	Width, Height int
	Plot          Rect
	XScale        float64 // pixels per hour
	RowHeight     float64
	Days          []time.Time // one row per distinct day, oldest first
	HourLines     []Gridline
	RowLines      []Gridline
	Bubbles       []Bubble
}

// LayoutBubbles places samples on a width x height surface. Rows come from
// the distinct days present in samples, so a day without events has no row.
func LayoutBubbles(samples []models.BubbleSample, width, height int) BubbleChart {
	plot := plotArea(width, height, BubblePadding)
	days := distinctDays(samples)

	rows := len(days)
	if rows == 0 {
		rows = 1
	}

	chart := BubbleChart{
		Width:     width,
		Height:    height,
		Plot:      plot,
		XScale:    plot.W / HoursPerDay,
		RowHeight: plot.H / float64(rows),
		Days:      days,
	}

	for hour := 0; hour <= HoursPerDay; hour += HourStep {
		x := plot.X + float64(hour)*chart.XScale
		chart.HourLines = append(chart.HourLines, Gridline{
			Line:  Line{From: Point{x, plot.Y}, To: Point{x, plot.Bottom()}},
			Label: Label{Text: fmt.Sprintf("%d:00", hour), X: x, Y: plot.Bottom() + hourLabelGap, Align: AlignCenter},
		})
	}

	rowIndex := make(map[string]int, len(days))
	for i, day := range days {
		y := chart.rowCenter(i)
		rowIndex[dayKey(day)] = i
		chart.RowLines = append(chart.RowLines, Gridline{
			Line:  Line{From: Point{plot.X, y}, To: Point{plot.Right(), y}},
			Label: Label{Text: DayLabel(day), X: plot.X - axisLabelGap, Y: y + axisLabelLift, Align: AlignRight},
		})
	}

	for _, s := range samples {
		radius := math.Max(s.Radius, MinRadius)
		chart.Bubbles = append(chart.Bubbles, Bubble{
			Center:     Point{X: plot.X + s.HourOfDay*chart.XScale, Y: chart.rowCenter(rowIndex[dayKey(s.Day)])},
			Radius:     radius,
			Color:      s.Band.Color(),
			Amount:     s.Amount,
			TimeLabel:  s.TimeLabel,
			ShowAmount: radius > LabelRadius,
		})
	}

	return chart
}

func (c BubbleChart) rowCenter(i int) float64 {
	return c.Plot.Y + float64(i)*c.RowHeight + c.RowHeight/2
}

// HitRegions returns the pointer targets of the drawn bubbles, in draw order
func (c BubbleChart) HitRegions() HitRegions {
	regions := make(HitRegions, 0, len(c.Bubbles))
	for _, b := range c.Bubbles {
		regions = append(regions, HitRegion{
			X:         b.Center.X,
			Y:         b.Center.Y,
			Radius:    b.Radius,
			Amount:    b.Amount,
			TimeLabel: b.TimeLabel,
		})
	}
	return regions
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func distinctDays(samples []models.BubbleSample) []time.Time {
	seen := make(map[string]bool)
	var days []time.Time
	for _, s := range samples {
		k := dayKey(s.Day)
		if seen[k] {
			continue
		}
		seen[k] = true
		days = append(days, s.Day)
	}
	slices.SortFunc(days, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return days
}
