package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayKeyLayout is the canonical yyyy-mm-dd key used to group by calendar day.
const DayKeyLayout = "2006-01-02"

var dayMonthYear = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// Fallback layouts tried after the strict dd/mm/yyyy form, ISO first.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	DayKeyLayout,
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// Parse resolves s to a calendar date. It tries dd/mm/yyyy first and then
// the ISO 8601 family and a few long-form layouts. The boolean is false
// for empty or unrecognized input; Parse never fails loudly.
//
// Dates with an explicit offset keep that offset, so the calendar day a
// caller sees is the day written in the input.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		if t, ok := civil(m[3], m[2], m[1]); ok {
			return t, true
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// civil builds a date and rejects rollovers such as 31/02.
func civil(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// DayKey formats the calendar date of t as yyyy-mm-dd in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// NormalizeDayKey parses s and returns its day key.
func NormalizeDayKey(s string) (string, bool) {
	t, ok := Parse(s)
	if !ok {
		return "", false
	}
	return DayKey(t), true
}

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Wall reinterprets the wall-clock fields of t in UTC so values written
// with different offsets compare by the date and time they display.
func Wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
