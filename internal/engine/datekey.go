package engine

import (
	"fmt"
	"time"
)

// Date buckets are keyed by local calendar day ("2006-01-02"), ISO-8601
// week ("2006-W02", Thursday-anchored year boundary) and month
// ("2006-01"). Keys sort lexicographically in chronological order.

const dateKeyLayout = "2006-01-02"

// DateKey returns the day bucket key for a time.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// TodayKey returns the day bucket key for the current local day.
func TodayKey() string {
	return DateKey(time.Now())
}

// FromKey parses a day bucket key back into a local midnight time.
func FromKey(key string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey returns the month bucket key for a time.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// FormatMonthKey renders a month key for display ("January 2006").
func FormatMonthKey(key string) string {
	t, err := time.ParseInLocation("2006-01", key, time.Local)
	if err != nil {
		return "Invalid month"
	}
	return t.Format("January 2006")
}

// ISOWeekKey returns the ISO-8601 week bucket key for a time.
func ISOWeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// ISOWeekRange returns the Monday and Sunday bounding an ISO week key.
func ISOWeekRange(weekKey string) (start, end time.Time, ok bool) {
	var y, w int
	if _, err := fmt.Sscanf(weekKey, "%d-W%d", &y, &w); err != nil || w < 1 || w > 53 {
		return time.Time{}, time.Time{}, false
	}
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(y, time.January, 4, 0, 0, 0, 0, time.Local)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	start = week1Monday.AddDate(0, 0, (w-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end, true
}

// NiceDate renders a day key for display ("Jan 2, 2006").
func NiceDate(key string) string {
	t, ok := FromKey(key)
	if !ok {
		return "Invalid date"
	}
	return t.Format("Jan 2, 2006")
}

// CompletionTime parses a completion timestamp into local time.
func CompletionTime(c Completion) (time.Time, bool) {
	if c.CompletedAtISO == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.CompletedAtISO)
	if err != nil {
		return time.Time{}, false
	}
	return t.Local(), true
}
