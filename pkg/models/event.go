package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// RawRecord is one tokenized data line from the feed, before any typing
type RawRecord struct {
	Line     int    `json:"line"` // 1-based physical line in the feed text
	Datetime string `json:"datetime"`
	Amount   string `json:"amount"`
	Flag     string `json:"flag"`
}

// Volume is an amount in millilitres. An invalid Volume poisons every sum it
// takes part in, so a single unreadable amount makes its day total NaN.
type Volume struct {
	ML    int
	Valid bool
}

// ML returns a valid Volume of n millilitres
func ML(n int) Volume {
	return Volume{ML: n, Valid: true}
}

// Add returns v+o, invalid if either operand is invalid
func (v Volume) Add(o Volume) Volume {
	if !v.Valid || !o.Valid {
		return Volume{}
	}
	return Volume{ML: v.ML + o.ML, Valid: true}
}

// String renders the number of millilitres, or NaN
func (v Volume) String() string {
	if !v.Valid {
		return "NaN"
	}
	return strconv.Itoa(v.ML)
}

// MarshalJSON encodes an invalid volume as null
func (v Volume) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.ML)
}

// UnmarshalJSON accepts a number or null
func (v *Volume) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Volume{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = ML(n)
	return nil
}

// Event is one normalized observation from the feed
type Event struct {
	Timestamp time.Time `json:"timestamp"` // zero when the datetime field was unreadable
	Amount    Volume    `json:"amount_ml"`
	Flag      string    `json:"flag"` // rendered verbatim, typically "Yes" or "No"
}

// HasTime reports whether the event carries a usable timestamp
func (e Event) HasTime() bool {
	return !e.Timestamp.IsZero()
}

// TimeLabel formats the event time as zero-padded HH:MM
func (e Event) TimeLabel() string {
	if !e.HasTime() {
		return "--:--"
	}
	return e.Timestamp.Format("15:04")
}
