package geometry

import (
	"fmt"
	"math"

	"github.com/jgoulah/pumplog/pkg/models"
)

// TooltipOffset is the tooltip's displacement from the pointer
var TooltipOffset = Point{X: 15, Y: -15}

// HitRegion is the circular pointer target of one drawn bubble
type HitRegion struct {
	X, Y      float64
	Radius    float64
	Amount    models.Volume
	TimeLabel string
}

// HitRegions is a snapshot of the regions of one bubble chart render
type HitRegions []HitRegion

// Hit returns the first region containing (x, y). Overlapping bubbles
// resolve to the one drawn first.
func (h HitRegions) Hit(x, y float64) (HitRegion, bool) {
	for _, r := range h {
		if math.Hypot(x-r.X, y-r.Y) <= r.Radius {
			return r, true
		}
	}
	return HitRegion{}, false
}

// Tooltip describes what to show for a pointer position
type Tooltip struct {
	Visible bool          `json:"hit"`
	Time    string        `json:"time,omitempty"`
	Amount  models.Volume `json:"amount_ml"`
	Text    string        `json:"text,omitempty"`
	Left    float64       `json:"left"`
	Top     float64       `json:"top"`
}

// Tooltip hit-tests the surface position (x, y) and, on a hit, places the
// tooltip at the page position (pageX, pageY) plus TooltipOffset
func (h HitRegions) Tooltip(x, y, pageX, pageY float64, unit string) Tooltip {
	r, ok := h.Hit(x, y)
	if !ok {
		return Tooltip{}
	}
	return Tooltip{
		Visible: true,
		Time:    r.TimeLabel,
		Amount:  r.Amount,
		Text:    fmt.Sprintf("Time: %s\nAmount: %s %s", r.TimeLabel, r.Amount, unit),
		Left:    pageX + TooltipOffset.X,
		Top:     pageY + TooltipOffset.Y,
	}
}
