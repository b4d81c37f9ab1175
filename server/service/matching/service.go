package matching

import (
	"context"
	"sort"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/internal/retry"
	"github.com/hrygo/spotmatch/store"
)

// Store is the interface for store operations needed by the matching
// service.
type Store interface {
	ListAvailabilitySlots(ctx context.Context, find *store.FindAvailabilitySlot) ([]*store.AvailabilitySlot, error)
	ReplaceAvailabilitySlots(ctx context.Context, userID int32, slots []*store.AvailabilitySlot) error
}

// Service exposes availability management and plan generation.
type Service interface {
	// GetAvailability returns a user's weekly availability, ordered by
	// weekday then start unit.
	GetAvailability(ctx context.Context, userID int32) ([]*store.AvailabilitySlot, error)

	// SetAvailability validates and replaces a user's weekly availability
	// wholesale.
	SetAvailability(ctx context.Context, userID int32, slots []*store.AvailabilitySlot) ([]*store.AvailabilitySlot, error)

	// Plans matches two users' availability and returns up to MaxPlans
	// ranked twice-weekly plans.
	Plans(ctx context.Context, userID, partnerID int32) ([]WeeklyPlan, error)

	// CommonSlots returns the raw overlap runs for two users.
	CommonSlots(ctx context.Context, userID, partnerID int32) ([]CommonRun, error)
}

type service struct {
	store       Store
	retry       retry.Policy
	unitsPerDay int32
	minUnits    int32
}

// NewService creates the matching service.
func NewService(st Store) Service {
	return &service{
		store:       st,
		retry:       retry.DefaultPolicy(),
		unitsPerDay: store.DefaultUnitsPerDay,
		minUnits:    DefaultMinSessionUnits,
	}
}

func (s *service) GetAvailability(ctx context.Context, userID int32) ([]*store.AvailabilitySlot, error) {
	slots, err := s.store.ListAvailabilitySlots(ctx, &store.FindAvailabilitySlot{UserID: &userID})
	if err != nil {
		return nil, err
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Weekday != slots[j].Weekday {
			return slots[i].Weekday < slots[j].Weekday
		}
		return slots[i].StartUnit < slots[j].StartUnit
	})
	return slots, nil
}

func (s *service) SetAvailability(ctx context.Context, userID int32, slots []*store.AvailabilitySlot) ([]*store.AvailabilitySlot, error) {
	for i, slot := range slots {
		slot.UserID = userID
		if err := slot.Validate(s.unitsPerDay); err != nil {
			return nil, apperrors.Invalidf("slot %d: %s", i, err)
		}
	}

	err := s.retry.Do(ctx, "replace availability", func(ctx context.Context) error {
		return s.store.ReplaceAvailabilitySlots(ctx, userID, slots)
	})
	if err != nil {
		return nil, err
	}
	return s.GetAvailability(ctx, userID)
}

func (s *service) Plans(ctx context.Context, userID, partnerID int32) ([]WeeklyPlan, error) {
	runs, err := s.CommonSlots(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	candidates := Candidates(runs, [2]int32{userID, partnerID}, s.minUnits)
	return WeeklyPlans(candidates), nil
}

func (s *service) CommonSlots(ctx context.Context, userID, partnerID int32) ([]CommonRun, error) {
	if userID == partnerID {
		return nil, apperrors.InvalidArgument("cannot match a user with themselves")
	}

	mine, err := s.store.ListAvailabilitySlots(ctx, &store.FindAvailabilitySlot{UserID: &userID})
	if err != nil {
		return nil, err
	}
	theirs, err := s.store.ListAvailabilitySlots(ctx, &store.FindAvailabilitySlot{UserID: &partnerID})
	if err != nil {
		return nil, err
	}
	if len(mine) == 0 || len(theirs) == 0 {
		return nil, nil
	}
	return Overlap(mine, theirs), nil
}
