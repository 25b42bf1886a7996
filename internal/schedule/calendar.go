package schedule

import (
	"time"

	"bandroom/internal/models"
)

// DateKey formats a time as the canonical YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.Format(models.DateKeyFormat)
}

// ParseDateKey parses a canonical YYYY-MM-DD key in the given location.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(models.DateKeyFormat, key, loc)
}

// Weekday returns the weekday as 0 (Sunday) .. 6 (Saturday).
func Weekday(t time.Time) int {
	return int(t.Weekday())
}

// MonthDays enumerates every day of the month at midnight local time, in
// order.
func MonthDays(year int, month time.Month, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := make([]time.Time, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsPastDay reports whether the date lies strictly before now's calendar
// day. Today does not count as past.
func IsPastDay(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
