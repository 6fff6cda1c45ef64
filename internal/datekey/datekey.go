package datekey

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical YYYY-MM-DD form used as the join key across all
// time-series records. Every DateKey in the system is in this single fixed
// calendar; no timezone conversion happens across records.
const Layout = "2006-01-02"

// ErrInvalidDate reports a date key that cannot be parsed as a valid
// Gregorian date (e.g. day 32, month 13).
var ErrInvalidDate = errors.New("invalid date key")

// DateKey is a calendar date canonicalized to YYYY-MM-DD.
type DateKey string

// Parse validates s as a YYYY-MM-DD Gregorian date.
func Parse(s string) (DateKey, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	// time.Parse is lenient about zero-padding (e.g. "2024-1-2" fails, but
	// guard the round trip anyway so only the canonical form is accepted).
	if t.Format(Layout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateKey(s), nil
}

// FromTime canonicalizes t's calendar date.
func FromTime(t time.Time) DateKey {
	return DateKey(t.Format(Layout))
}

// New builds a DateKey from components. The components are normalized by
// time.Date, so callers must pass a real date (New does not validate).
func New(year int, month time.Month, day int) DateKey {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (d DateKey) String() string { return string(d) }

// Time returns the date at midnight UTC. Invalid keys return the zero time;
// validated keys (from Parse/FromTime/New) never do.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the key n days after d (n may be negative).
func (d DateKey) AddDays(n int) DateKey {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of week, time.Sunday == 0.
func (d DateKey) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Day returns the day-of-month component.
func (d DateKey) Day() int {
	return d.Time().Day()
}

// Before reports whether d is strictly earlier than other. Lexicographic
// order on the canonical form is calendar order.
func (d DateKey) Before(other DateKey) bool {
	return string(d) < string(other)
}

// After reports whether d is strictly later than other.
func (d DateKey) After(other DateKey) bool {
	return string(d) > string(other)
}

// PrefixOf reports whether timestamp belongs to this day, by exact prefix
// match. Records whose timestamp carries no date-key prefix simply never
// match; that is exclusion, not an error.
func (d DateKey) PrefixOf(timestamp string) bool {
	return strings.HasPrefix(timestamp, string(d))
}

// IsLeapYear implements the Gregorian rule: divisible by 4 and
// (not divisible by 100 or divisible by 400).
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.January, time.March, time.May, time.July, time.August, time.October, time.December:
		return 31
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}
