package schedule

import (
	"errors"
	"fmt"
)

// MinutesPerDay is the number of distinct Clock values.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned when a time-of-day string is not a valid HH:MM value.
var ErrInvalidClock = errors.New("time must be HH:MM between 00:00 and 23:59")

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// NewClock builds a Clock from an hour and a minute.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidClock
	}
	return Clock(hour*60 + minute), nil
}

// MustClock is NewClock for literals known to be valid. It panics otherwise.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClock parses a zero-padded "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	h, ok := twoDigits(s[0], s[1])
	if !ok {
		return 0, ErrInvalidClock
	}
	m, ok := twoDigits(s[3], s[4])
	if !ok {
		return 0, ErrInvalidClock
	}
	return NewClock(h, m)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// Valid reports whether c lies within a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// Add shifts c by delta minutes, wrapping around midnight in either direction.
func (c Clock) Add(delta int) Clock {
	v := (int(c) + delta) % MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return Clock(v)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrInvalidClock
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	v, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
