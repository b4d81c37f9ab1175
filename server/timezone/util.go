// Package timezone resolves IANA timezone identifiers. Weekday names in
// partner responses ("thursday at 6pm") are anchored to the instance
// timezone, so a misconfigured zone shifts every counter-proposal by a day
// near midnight.
package timezone

import (
	"fmt"
	"time"
)

// ParseTimezone parses an IANA timezone identifier (e.g. "Europe/Berlin").
// Empty input and invalid identifiers resolve to UTC; invalid ones also
// report an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// IsValidTimezone reports whether tz is a resolvable identifier.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// NowIn returns a clock function pinned to the given location.
func NowIn(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}
