package models

import (
	"fmt"
	"time"
)

// DateLayout is the canonical rendering of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time or zone.
// The zero value is not a valid date; use NullDate for optional dates.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day.
// Out-of-range values are normalized the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseISODate parses a canonical YYYY-MM-DD date.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}

	return Date{t: t}, nil
}

// Year returns the year of d.
func (d Date) Year() int { return d.t.Year() }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of month of d.
func (d Date) Day() int { return d.t.Day() }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// DaysSince returns the number of days from o to d (negative if d is earlier).
// Spans beyond the range of time.Duration are counted exactly.
func (d Date) DaysSince(o Date) int {
	return int((d.t.Unix() - o.t.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// String renders d as YYYY-MM-DD.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseISODate(string(b))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// YearsBetween returns the number of whole years elapsed from birth to at.
// A year only counts once its anniversary has been reached.
func YearsBetween(birth, at Date) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}

	return years
}

// NullDate is a Date that may be absent.
type NullDate struct {
	Date  Date
	Valid bool
}

// SomeDate wraps d as a present NullDate.
func SomeDate(d Date) NullDate {
	return NullDate{Date: d, Valid: true}
}

// String renders the date, or an empty string when absent.
func (n NullDate) String() string {
	if !n.Valid {
		return ""
	}

	return n.Date.String()
}

// NullInt is an int that may be absent.
type NullInt struct {
	Int   int
	Valid bool
}

// SomeInt wraps v as a present NullInt.
func SomeInt(v int) NullInt {
	return NullInt{Int: v, Valid: true}
}
