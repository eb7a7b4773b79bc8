// Package rota implements the calendar-date arithmetic behind duty rotation:
// a plain YYYY-MM-DD date type and the positional index calculation.
package rota

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone component. Internally
// it is pinned to midnight UTC so day differences are exact multiples of 24h
// regardless of daylight-saving shifts in the household zone.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Today returns the current calendar date in the given zone.
func Today(loc *time.Location) Date {
	now := time.Now().In(loc)
	return Date{t: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysSince returns the number of whole calendar days from start to d,
// negative when d precedes start.
func (d Date) DaysSince(start Date) int {
	return int(d.t.Sub(start.t) / (24 * time.Hour))
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}
