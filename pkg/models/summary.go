package models

import "time"

// DaySummary holds one calendar day's totals, split at noon
type DaySummary struct {
	Date      time.Time `json:"date"` // midnight in the dashboard's timezone
	Total     Volume    `json:"total_ml"`
	Morning   Volume    `json:"morning_ml"`
	Afternoon Volume    `json:"afternoon_ml"`
}

// ColorBand is one of six 4-hour slices of the day
type ColorBand int

const (
	BandNight     ColorBand = iota // [0,4)
	BandDawn                       // [4,8)
	BandMorning                    // [8,12)
	BandAfternoon                  // [12,16)
	BandEvening                    // [16,20)
	BandLate                       // [20,24)
)

var bandColors = [...]string{
	BandNight:     "#2E86C1",
	BandDawn:      "#3498DB",
	BandMorning:   "#F1C40F",
	BandAfternoon: "#E67E22",
	BandEvening:   "#CB4335",
	BandLate:      "#884EA0",
}

var bandNames = [...]string{"night", "dawn", "morning", "afternoon", "evening", "late"}

// BandForHour maps a fractional hour of day to its band. Hours outside
// [0,24) fall into the last band.
func BandForHour(hour float64) ColorBand {
	if hour >= 0 && hour < 24 {
		return ColorBand(int(hour) / 4)
	}
	return BandLate
}

// Color returns the band's hex color
func (b ColorBand) Color() string {
	if b < BandNight || b > BandLate {
		return bandColors[BandLate]
	}
	return bandColors[b]
}

func (b ColorBand) String() string {
	if b < BandNight || b > BandLate {
		return "unknown"
	}
	return bandNames[b]
}

// MarshalText lets bands appear by name in JSON
func (b ColorBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// BubbleSample is one event placed on the time-of-day chart
type BubbleSample struct {
	HourOfDay float64   `json:"hour_of_day"` // hour + minute/60
	Day       time.Time `json:"day"`         // event date truncated to midnight
	Radius    float64   `json:"-"`           // sqrt(ml) * 1.2, NaN for an invalid amount
	Band      ColorBand `json:"band"`
	Amount    Volume    `json:"amount_ml"`
	TimeLabel string    `json:"time"`
}
