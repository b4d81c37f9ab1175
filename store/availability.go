package store

import (
	"context"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
)

// DefaultUnitsPerDay is the number of time units in one day. Units are
// one-hour indices: unit 9 is 09:00-10:00.
const DefaultUnitsPerDay int32 = 24

// Weekday is a 0-indexed day of week, Monday=0 .. Sunday=6.
type Weekday int32

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "Invalid"
	}
	return weekdayNames[w]
}

// IsValid reports whether w is within Monday..Sunday.
func (w Weekday) IsValid() bool {
	return w >= Monday && w <= Sunday
}

// AvailabilitySlot is a user-declared interval of availability on a weekday.
// Slots for one user on one day may be non-contiguous and need not be merged.
type AvailabilitySlot struct {
	ID        int32
	UserID    int32
	Weekday   Weekday
	StartUnit int32
	EndUnit   int32
}

// Validate checks the slot bounds invariant 0 <= start < end <= unitsPerDay.
func (s *AvailabilitySlot) Validate(unitsPerDay int32) error {
	if !s.Weekday.IsValid() {
		return apperrors.Invalidf("invalid weekday %d", s.Weekday)
	}
	if s.StartUnit < 0 || s.StartUnit >= s.EndUnit || s.EndUnit > unitsPerDay {
		return apperrors.Invalidf("invalid slot bounds [%d, %d) on %s", s.StartUnit, s.EndUnit, s.Weekday)
	}
	return nil
}

// FindAvailabilitySlot is the find condition for availability slots.
type FindAvailabilitySlot struct {
	UserID  *int32
	Weekday *Weekday
}

// ListAvailabilitySlots lists a user's availability slots.
func (s *Store) ListAvailabilitySlots(ctx context.Context, find *FindAvailabilitySlot) ([]*AvailabilitySlot, error) {
	return s.driver.ListAvailabilitySlots(ctx, find)
}

// ReplaceAvailabilitySlots atomically replaces all of a user's slots with the
// given set. Partial states are never observable: the delete and inserts run
// in one transaction.
func (s *Store) ReplaceAvailabilitySlots(ctx context.Context, userID int32, slots []*AvailabilitySlot) error {
	return s.driver.ReplaceAvailabilitySlots(ctx, userID, slots)
}
