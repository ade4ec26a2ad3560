// Package offset parses and validates fixed UTC offsets of the form "±HH:MM".
//
// The hour token is the first three characters (sign plus two digits) and the
// minute token is everything after the colon at index 3, so a minute field
// longer than two digits is accepted as long as its value stays in range.
package offset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// MaxHours is the largest accepted hour magnitude.
	MaxHours = 14
	// MaxMinutes is the largest accepted minute magnitude.
	MaxMinutes = 59

	minLength = 6
)

var (
	// ErrInvalidFormat reports input that does not have the "±HH:MM" shape.
	ErrInvalidFormat = errors.New("offset: invalid format")
	// ErrOutOfRange reports a well-formed offset whose hours or minutes are too large.
	ErrOutOfRange = errors.New("offset: out of range")
)

// Offset is a signed hours/minutes pair. The sign applies to both fields.
type Offset struct {
	Negative bool
	Hours    int
	Minutes  int
	// Raw is the exact string the offset was parsed from.
	Raw string
}

// Parse validates s and returns the offset it describes.
func Parse(s string) (Offset, error) {
	if len(s) < minLength {
		return Offset{}, fmt.Errorf("%w: %q is too short", ErrInvalidFormat, s)
	}

	sign := s[0]
	if sign != '+' && sign != '-' {
		return Offset{}, fmt.Errorf("%w: %q has no leading sign", ErrInvalidFormat, s)
	}
	if s[3] != ':' {
		return Offset{}, fmt.Errorf("%w: %q has no separator at index 3", ErrInvalidFormat, s)
	}

	hours, err := parseField(s[1:3])
	if err != nil {
		return Offset{}, fmt.Errorf("%w: hour token %q", ErrInvalidFormat, s[:3])
	}
	minutes, err := parseField(s[4:])
	if err != nil {
		return Offset{}, fmt.Errorf("%w: minute token %q", ErrInvalidFormat, s[4:])
	}

	if hours > MaxHours {
		return Offset{}, fmt.Errorf("%w: hours %d exceed %d", ErrOutOfRange, hours, MaxHours)
	}
	if minutes > MaxMinutes {
		return Offset{}, fmt.Errorf("%w: minutes %d exceed %d", ErrOutOfRange, minutes, MaxMinutes)
	}

	return Offset{
		Negative: sign == '-',
		Hours:    hours,
		Minutes:  minutes,
		Raw:      s,
	}, nil
}

// IsValid reports whether s is a well-formed, in-range offset.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Calculate returns the signed duration described by s. Callers are expected
// to validate s first; invalid input returns an error rather than a zero value.
func Calculate(s string) (time.Duration, error) {
	o, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return o.Duration(), nil
}

// Duration combines hours and minutes, applying the sign to both.
func (o Offset) Duration() time.Duration {
	d := time.Duration(o.Hours)*time.Hour + time.Duration(o.Minutes)*time.Minute
	if o.Negative {
		return -d
	}
	return d
}

// String returns the offset exactly as the client supplied it.
func (o Offset) String() string {
	return o.Raw
}

// parseField accepts ASCII digits only, so embedded signs or spaces fail.
func parseField(token string) (int, error) {
	if len(token) < 2 {
		return 0, ErrInvalidFormat
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, ErrInvalidFormat
		}
	}
	return strconv.Atoi(token)
}
