package feed

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/jgoulah/pumplog/pkg/models"
)

const (
	sampleTodayEntries = 5
	samplePastDays     = 6
)

// Sample generates demo records for today and the six days before it. It is
// what the dashboard shows when the feed cannot be read.
func Sample(now time.Time, rng *rand.Rand) []models.RawRecord {
	var records []models.RawRecord
	y, m, d := now.Date()

	add := func(day int) {
		hour := rng.Intn(14) + 6
		minute := rng.Intn(60)
		t := time.Date(y, m, day, hour, minute, 0, 0, now.Location())

		flag := "No"
		if rng.Float64() > 0.7 {
			flag = "Yes"
		}

		records = append(records, models.RawRecord{
			Line:     len(records) + 2,
			Datetime: FormatDatetime(t),
			Amount:   strconv.Itoa(rng.Intn(80) + 40),
			Flag:     flag,
		})
	}

	for i := 0; i < sampleTodayEntries; i++ {
		add(d)
	}
	for i := 1; i <= samplePastDays; i++ {
		sessions := rng.Intn(5) + 3
		for j := 0; j < sessions; j++ {
			add(d - i)
		}
	}

	return records
}

// FormatDatetime renders t the way the feed does: DD.MM.YYYY HH:MM:SS
func FormatDatetime(t time.Time) string {
	return t.Format("02.01.2006 15:04") + ":00"
}
