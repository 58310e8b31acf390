// Package aggregate derives the dashboard's three views from a normalized,
// newest-first event sequence. Every function takes "now" explicitly; the
// day boundaries are computed in now's location.
package aggregate

import (
	"math"
	"time"

	"github.com/jgoulah/pumplog/pkg/models"
)

const (
	// WindowDays is the length of the trailing window, today included
	WindowDays = 7
	// NoonHour splits morning from afternoon; 12:00 counts as afternoon
	NoonHour = 12
	// RadiusScale sizes bubbles by sqrt(ml)
	RadiusScale = 1.2
)

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addDays moves by calendar days, so DST changes do not shift midnight
func addDays(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, day.Location())
}

// within reports start <= t < end. Undated events are never within a window.
func within(e models.Event, start, end time.Time) bool {
	return e.HasTime() && !e.Timestamp.Before(start) && e.Timestamp.Before(end)
}

// TodayView is the list shown in the "today" table
type TodayView struct {
	Date   time.Time      `json:"date"`
	Events []models.Event `json:"events"`
	Total  models.Volume  `json:"total_ml"`
}

// Empty reports whether nothing was recorded today
func (v TodayView) Empty() bool {
	return len(v.Events) == 0
}

// Today keeps the events of now's calendar day, in their incoming order,
// and sums them
func Today(events []models.Event, now time.Time) TodayView {
	start := StartOfDay(now)
	end := addDays(start, 1)

	view := TodayView{Date: start, Events: []models.Event{}, Total: models.ML(0)}
	for _, e := range events {
		if within(e, start, end) {
			view.Events = append(view.Events, e)
			view.Total = view.Total.Add(e.Amount)
		}
	}
	return view
}

// Weekly returns exactly WindowDays summaries, oldest first, ending today.
// Days with no events are zero.
func Weekly(events []models.Event, now time.Time) []models.DaySummary {
	today := StartOfDay(now)
	week := make([]models.DaySummary, 0, WindowDays)

	for i := WindowDays - 1; i >= 0; i-- {
		day := addDays(today, -i)
		next := addDays(day, 1)

		morning, afternoon := models.ML(0), models.ML(0)
		for _, e := range events {
			if !within(e, day, next) {
				continue
			}
			if e.Timestamp.Hour() < NoonHour {
				morning = morning.Add(e.Amount)
			} else {
				afternoon = afternoon.Add(e.Amount)
			}
		}

		week = append(week, models.DaySummary{
			Date:      day,
			Total:     morning.Add(afternoon),
			Morning:   morning,
			Afternoon: afternoon,
		})
	}

	return week
}

// Bubbles places every event from the start of the trailing window onward.
// The window has no upper bound, so future-dated events are included.
func Bubbles(events []models.Event, now time.Time) []models.BubbleSample {
	since := addDays(StartOfDay(now), -(WindowDays - 1))
	samples := []models.BubbleSample{}

	for _, e := range events {
		if !e.HasTime() || e.Timestamp.Before(since) {
			continue
		}

		hour := float64(e.Timestamp.Hour()) + float64(e.Timestamp.Minute())/60
		samples = append(samples, models.BubbleSample{
			HourOfDay: hour,
			Day:       StartOfDay(e.Timestamp),
			Radius:    Radius(e.Amount),
			Band:      models.BandForHour(hour),
			Amount:    e.Amount,
			TimeLabel: e.TimeLabel(),
		})
	}

	return samples
}

// Radius is the raw bubble radius for an amount, NaN when the amount is invalid
func Radius(v models.Volume) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return math.Sqrt(float64(v.ML)) * RadiusScale
}
