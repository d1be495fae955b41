package pkg

import (
	"time"
)

const DateKeyLayout = "2006-01-02"

// DateKey is the calendar-day key used by the daily feature ledger. The
// engine pins all day boundaries to UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// WeekStart returns the Monday 00:00 UTC opening the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func WeekStartKey(t time.Time) string {
	return WeekStart(t).Format(DateKeyLayout)
}

// DateKeysBack returns the n date keys ending at t's day, most recent first.
func DateKeysBack(t time.Time, n int) []string {
	t = t.UTC()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, t.AddDate(0, 0, -i).Format(DateKeyLayout))
	}
	return keys
}

// WeekDateKeys returns the seven date keys of the week containing t.
func WeekDateKeys(t time.Time) []string {
	start := WeekStart(t)
	keys := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		keys = append(keys, start.AddDate(0, 0, i).Format(DateKeyLayout))
	}
	return keys
}
