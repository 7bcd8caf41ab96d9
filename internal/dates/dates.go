// Package dates holds the calendar helpers shared by the workout log and the statistics:
// day keys are YYYY-MM-DD strings in the user's local calendar, and day arithmetic is
// done on civil dates so DST transitions never shift a difference.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DayKeyLayout = "2006-01-02"

var ErrInvalidDayKey = errors.New("invalid day key")

// DayKey formats t as YYYY-MM-DD in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// Today returns the day key of now in loc (nil means now's location).
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return DayKey(now)
}

// Normalize returns the day part of a stored date; a trailing time component
// ("2026-01-02T10:00:00Z") is dropped.
func Normalize(date string) string {
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		return date[:i]
	}
	return date
}

// ParseDayKey parses a day key into midnight UTC of that calendar day.
func ParseDayKey(s string) (time.Time, error) {
	d, err := time.Parse(DayKeyLayout, Normalize(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w [%s]: %s", ErrInvalidDayKey, s, err)
	}
	return d, nil
}

// IsDayKey reports whether s is exactly a YYYY-MM-DD day key.
func IsDayKey(s string) bool {
	if len(s) != len(DayKeyLayout) {
		return false
	}
	_, err := time.Parse(DayKeyLayout, s)
	return err == nil
}

// civil drops the clock and location of t, keeping its calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

// DayKeysBetween is DaysBetween for two day keys.
func DayKeysBetween(a, b string) (int, error) {
	at, err := ParseDayKey(a)
	if err != nil {
		return 0, err
	}
	bt, err := ParseDayKey(b)
	if err != nil {
		return 0, err
	}
	return DaysBetween(at, bt), nil
}

// AddDays shifts a day key by n calendar days.
func AddDays(day string, n int) (string, error) {
	d, err := ParseDayKey(day)
	if err != nil {
		return "", err
	}
	return DayKey(d.AddDate(0, 0, n)), nil
}

// WeekStart returns Monday 00:00 of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7 // monday = 0
	return midnight.AddDate(0, 0, -offset)
}
