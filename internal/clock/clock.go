// Package clock provides the time source used by request handlers.
package clock

import (
	"errors"
	"fmt"
	"time"
)

// Epoch is the earliest instant a synchronized host clock can report.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// ErrUnsynchronized is returned by Check when the clock reads before Epoch.
var ErrUnsynchronized = errors.New("clock not synchronized")

// Clock provides the current instant to request handlers.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed time.Time

// Now returns the fixed instant in UTC.
func (f Fixed) Now() time.Time { return time.Time(f).UTC() }

// Check reports whether c reads a plausible wall time. A host that booted
// without NTP often reports the zero time or the Unix epoch.
func Check(c Clock) error {
	now := c.Now()
	if now.Before(Epoch) {
		return fmt.Errorf("%w: read %s", ErrUnsynchronized, now.Format(time.RFC3339))
	}
	return nil
}
