// Package clock provides the wall clock and the calendar-day arithmetic used by
// the reminder scheduler and subscription renewal logic.
package clock

import "time"

// Clock returns the current instant. Production code uses System; tests pin time
// with Fixed.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns a Clock backed by time.Now in UTC.
func System() Clock {
	return systemClock{}
}

// Now returns the current UTC time.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
