// Package clock resolves the current calendar date in a fixed IANA
// timezone. Date strings are ISO 8601 (YYYY-MM-DD) and compare
// lexicographically in chronological order.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Clock reports the current instant and its calendar date.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Today returns the calendar date of Now in the configured timezone.
	Today() string
}

// WallClock is a Clock backed by the system time and a fixed location.
type WallClock struct {
	loc *time.Location
}

// NewWallClock resolves the given IANA timezone name. An unknown zone is
// a configuration error and should abort startup.
func NewWallClock(timezone string) (*WallClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &WallClock{loc: loc}, nil
}

func (c *WallClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *WallClock) Today() string {
	return time.Now().In(c.loc).Format(DateLayout)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }

func (f Fixed) Today() string { return f.Instant.Format(DateLayout) }
