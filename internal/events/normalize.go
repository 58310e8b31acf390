// Package events turns raw feed records into typed, time-ordered events.
package events

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/pumplog/pkg/models"
)

var (
	// ErrDatetimeFormat means the datetime field is not DD.MM.YYYY HH:MM[:SS]
	ErrDatetimeFormat = errors.New("expected DD.MM.YYYY HH:MM[:SS]")
	// ErrDatetimeRange means the fields parsed but do not name a real calendar time
	ErrDatetimeRange = errors.New("date or time out of range")
	// ErrAmountNotNumber means the amount has no leading decimal digits
	ErrAmountNotNumber = errors.New("amount is not a number")
	// ErrAmountNegative means the amount parsed below zero
	ErrAmountNegative = errors.New("amount is negative")
)

// FieldError reports one malformed field. The record is still kept, carrying
// an invalid timestamp or amount.
type FieldError struct {
	Line  int
	Field string // "datetime" or "amount"
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseTimestamp reads "DD.MM.YYYY HH:MM" with optional ":SS" as a wall
// clock time in loc. Seconds are accepted but dropped.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	datePart, timePart, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return time.Time{}, ErrDatetimeFormat
	}

	dmy := strings.Split(datePart, ".")
	hms := strings.Split(strings.TrimSpace(timePart), ":")
	if len(dmy) != 3 || len(hms) < 2 || len(hms) > 3 {
		return time.Time{}, ErrDatetimeFormat
	}

	nums := make([]int, 0, 5)
	for _, part := range append(dmy, hms[:2]...) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, ErrDatetimeFormat
		}
		nums = append(nums, n)
	}
	day, month, year, hour, minute := nums[0], nums[1], nums[2], nums[3], nums[4]

	if month < 1 || month > 12 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, ErrDatetimeRange
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		// time.Date normalizes 31.02 into March
		return time.Time{}, ErrDatetimeRange
	}

	return t, nil
}

// ParseAmount reads the leading base-10 integer of s, ignoring surrounding
// whitespace and any trailing text ("90ml" is 90).
func ParseAmount(s string) (models.Volume, error) {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return models.Volume{}, ErrAmountNotNumber
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return models.Volume{}, ErrAmountNotNumber
	}
	if n < 0 {
		return models.Volume{}, ErrAmountNegative
	}

	return models.ML(n), nil
}

// Normalize converts records into events sorted most recent first. Equal
// timestamps keep their input order; events without a usable timestamp sort
// after all others. Malformed fields never drop a record: they are returned
// as FieldErrors alongside the events.
func Normalize(records []models.RawRecord, loc *time.Location) ([]models.Event, []*FieldError) {
	events := make([]models.Event, 0, len(records))
	var issues []*FieldError

	for _, rec := range records {
		ts, err := ParseTimestamp(rec.Datetime, loc)
		if err != nil {
			issues = append(issues, &FieldError{Line: rec.Line, Field: "datetime", Value: rec.Datetime, Err: err})
		}

		amount, err := ParseAmount(rec.Amount)
		if err != nil {
			issues = append(issues, &FieldError{Line: rec.Line, Field: "amount", Value: rec.Amount, Err: err})
		}

		events = append(events, models.Event{
			Timestamp: ts,
			Amount:    amount,
			Flag:      rec.Flag,
		})
	}

	SortNewestFirst(events)
	return events, issues
}

// SortNewestFirst stable-sorts events by descending timestamp
func SortNewestFirst(events []models.Event) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		switch {
		case a.HasTime() && !b.HasTime():
			return -1
		case !a.HasTime() && b.HasTime():
			return 1
		case !a.HasTime() && !b.HasTime():
			return 0
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
}
