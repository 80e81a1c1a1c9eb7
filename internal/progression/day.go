package progression

import (
	"fmt"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar-day key in YYYY-MM-DD form.
type Day string

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// ParseDay validates s as a calendar-day key.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

func (d Day) String() string { return string(d) }

func (d Day) time() (time.Time, bool) {
	t, err := time.Parse(dayLayout, string(d))
	return t, err == nil
}

// AddDays shifts d by n calendar days. An invalid day is returned unchanged.
func (d Day) AddDays(n int) Day {
	t, ok := d.time()
	if !ok {
		return d
	}
	return DayOf(t.AddDate(0, 0, n))
}

// IsDayBefore reports whether d is exactly one calendar day before other.
func (d Day) IsDayBefore(other Day) bool {
	a, ok := d.time()
	if !ok {
		return false
	}
	b, ok := other.time()
	if !ok {
		return false
	}
	return a.AddDate(0, 0, 1).Equal(b)
}

// Calendar provides the current calendar day.
type Calendar interface {
	Today() Day
}

// LocationCalendar derives today from the wall clock in a fixed location.
type LocationCalendar struct {
	loc *time.Location
	now func() time.Time
}

func NewLocationCalendar(loc *time.Location) *LocationCalendar {
	if loc == nil {
		loc = time.Local
	}
	return &LocationCalendar{loc: loc, now: time.Now}
}

func (c *LocationCalendar) Today() Day {
	return DayOf(c.now().In(c.loc))
}

func (c *LocationCalendar) Location() *time.Location {
	return c.loc
}

// FixedCalendar returns a settable day. It is safe for concurrent use.
type FixedCalendar struct {
	mu  sync.Mutex
	day Day
}

func NewFixedCalendar(day Day) *FixedCalendar {
	return &FixedCalendar{day: day}
}

func (c *FixedCalendar) Today() Day {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

func (c *FixedCalendar) Set(day Day) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = day
}

// Advance moves the calendar forward n days.
func (c *FixedCalendar) Advance(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = c.day.AddDays(n)
}
