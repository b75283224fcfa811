// Package dateutil holds the calendar-date helpers shared by the ledgers.
// Every date stored or compared by the engine is a UTC midnight.
package dateutil

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

const Layout = "2006-01-02"

// Normalize drops the clock part of t, keeping its calendar date as UTC midnight.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizePtr is Normalize for nullable dates.
func NormalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := Normalize(*t)
	return &n
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(now.In(loc))
}

// DaysInclusive counts calendar days from start to end, both endpoints included.
func DaysInclusive(start, end time.Time) int {
	s, e := Normalize(start), Normalize(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// OverlapsInclusive reports whether [aStart,aEnd] and [bStart,bEnd] share a day.
func OverlapsInclusive(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// ContainsInclusive reports whether day falls within [start,end].
func ContainsInclusive(start, end, day time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

// ActiveHalfOpen reports whether day falls in [start,end), a nil end meaning still open.
func ActiveHalfOpen(start time.Time, end *time.Time, day time.Time) bool {
	if day.Before(start) {
		return false
	}
	return end == nil || day.Before(*end)
}

// EachDay calls fn for every day in [from,to], stopping at the first error.
func EachDay(from, to time.Time, fn func(day time.Time) error) error {
	from, to = Normalize(from), Normalize(to)
	if to.Before(from) {
		return nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: from,
		Until:   to,
	})
	if err != nil {
		return fmt.Errorf("daily recurrence: %w", err)
	}

	next := rule.Iterator()
	for day, ok := next(); ok; day, ok = next() {
		if err := fn(day); err != nil {
			return err
		}
	}
	return nil
}
