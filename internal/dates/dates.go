package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AddDays returns t shifted by n calendar days (n may be negative).
// The input is never mutated.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FormatISO renders t as "YYYY-MM-DDTHH:MM:00" in t's own location,
// truncated to minute precision. It is deliberately NOT UTC-normalized:
// day bucketing is a local-time contract and callers must preserve it.
func FormatISO(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// SameDay reports whether a and b fall on the same calendar day,
// comparing year, month and day-of-month in each value's own location.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayKey is the canonical bucket key for t: "YYYY-MM-DD" by local-time
// field extraction, never by slicing a UTC ISO string.
func DayKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDayKey parses a "YYYY-MM-DD" key into local midnight of that day.
func ParseDayKey(key string) (time.Time, error) {
	return CombineDayTime(key, "00:00")
}

// CombineDayTime merges a "YYYY-MM-DD" day and an "HH:MM" clock into a
// local time.
func CombineDayTime(day, hhmm string) (time.Time, error) {
	dp := strings.Split(day, "-")
	if len(dp) != 3 {
		return time.Time{}, fmt.Errorf("invalid day %q", day)
	}
	tp := strings.SplitN(hhmm, ":", 2)
	if len(tp) != 2 {
		return time.Time{}, fmt.Errorf("invalid time %q", hhmm)
	}

	nums := make([]int, 0, 5)
	for _, s := range append(dp, tp...) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day/time %q %q", day, hhmm)
		}
		nums = append(nums, n)
	}

	return time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], 0, 0, time.Local), nil
}

// WeekDays returns the seven day keys of t's week, starting from Monday.
func WeekDays(t time.Time) []string {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	monday := AddDays(t, -offset)

	days := make([]string, 7)
	for i := range days {
		days[i] = DayKey(AddDays(monday, i))
	}
	return days
}
