package clock

import "time"

// Clock is the time source for sessions, move history and room expiry
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Reached reports whether deadline is set and c has reached it
func Reached(c Clock, deadline *time.Time) bool {
	return deadline != nil && !c.Now().Before(*deadline)
}

// Elapsed is the time c has moved on since t
func Elapsed(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
