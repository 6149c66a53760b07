package service

import "time"

const dateLayout = "2006-01-02"

// Clock supplies the current time and the calendar day in a fixed zone.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock creates a clock. A nil now uses time.Now; a nil loc uses time.Local.
func NewClock(now func() time.Time, loc *time.Location) *Clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Clock{now: now, loc: loc}
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(dateLayout)
}
