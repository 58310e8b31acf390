package geometry

import (
	"math"
	"time"

	"github.com/jgoulah/pumplog/pkg/models"
)

const (
	// MinScaleMax keeps the bar scale usable when every total is small or zero
	MinScaleMax = 100
	// GridIntervals is the number of equal steps between 0 and the scale max
	GridIntervals = 5
	// BarFill is the share of each cell the bar occupies; the rest is split
	// evenly on both sides
	BarFill = 0.7

	valueLabelGap = 5
	dateLabelGap  = 15
	axisLabelGap  = 5
	axisLabelLift = 3
)

// BarPadding is the bar chart's margin
var BarPadding = Padding{Top: 40, Right: 20, Bottom: 40, Left: 40}

// Bar is one stacked day column
type Bar struct {
	Date       time.Time
	Morning    Rect // drawn from the baseline up
	Afternoon  Rect // stacked directly on the morning segment
	Total      models.Volume
	ValueLabel Label
	DateLabel  Label
}

// Top returns the y coordinate of the top of the stack
func (b Bar) Top() float64 {
	return b.Afternoon.Y
}

// BarChart is the laid-out weekly chart
type BarChart struct {
	Width, Height int
	Plot          Rect
	MaxTotal      float64 // largest valid daily total
	ScaleMax      float64 // MaxTotal floored at MinScaleMax
	YScale        float64 // pixels per ml
	Gridlines     []Gridline
	Bars          []Bar
}

// LayoutBars lays out one stacked bar per summary on a width x height surface
func LayoutBars(days []models.DaySummary, width, height int) BarChart {
	plot := plotArea(width, height, BarPadding)

	maxTotal := 0.0
	for _, d := range days {
		if d.Total.Valid {
			maxTotal = math.Max(maxTotal, float64(d.Total.ML))
		}
	}
	scaleMax := math.Max(maxTotal, MinScaleMax)
	yScale := plot.H / scaleMax

	chart := BarChart{
		Width:    width,
		Height:   height,
		Plot:     plot,
		MaxTotal: maxTotal,
		ScaleMax: scaleMax,
		YScale:   yScale,
	}

	baseline := plot.Bottom()
	for i := 0; i <= GridIntervals; i++ {
		y := baseline - plot.H/GridIntervals*float64(i)
		value := math.Round(scaleMax / GridIntervals * float64(i))
		chart.Gridlines = append(chart.Gridlines, Gridline{
			Line: Line{From: Point{plot.X, y}, To: Point{plot.Right(), y}},
			Label: Label{
				Text:  models.ML(int(value)).String(),
				X:     plot.X - axisLabelGap,
				Y:     y + axisLabelLift,
				Align: AlignRight,
			},
		})
	}

	if len(days) == 0 {
		return chart
	}

	cell := plot.W / float64(len(days))
	barWidth := cell * BarFill
	gap := cell * (1 - BarFill)

	for i, d := range days {
		x := plot.X + cell*float64(i) + gap/2
		morningH := segmentHeight(d.Morning, yScale)
		afternoonH := segmentHeight(d.Afternoon, yScale)
		top := baseline - morningH - afternoonH
		center := x + barWidth/2

		chart.Bars = append(chart.Bars, Bar{
			Date:       d.Date,
			Morning:    Rect{X: x, Y: baseline - morningH, W: barWidth, H: morningH},
			Afternoon:  Rect{X: x, Y: top, W: barWidth, H: afternoonH},
			Total:      d.Total,
			ValueLabel: Label{Text: d.Total.String(), X: center, Y: top - valueLabelGap, Align: AlignCenter},
			DateLabel:  Label{Text: DayLabel(d.Date), X: center, Y: baseline + dateLabelGap, Align: AlignCenter},
		})
	}

	return chart
}

// segmentHeight is zero for invalid volumes, so a NaN day draws no bar
func segmentHeight(v models.Volume, yScale float64) float64 {
	if !v.Valid {
		return 0
	}
	return float64(v.ML) * yScale
}
