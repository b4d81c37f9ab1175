package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/store"
)

type fakeAvailabilityStore struct {
	slots map[int32][]*store.AvailabilitySlot
}

func (f *fakeAvailabilityStore) ListAvailabilitySlots(_ context.Context, find *store.FindAvailabilitySlot) ([]*store.AvailabilitySlot, error) {
	if find.UserID == nil {
		return nil, nil
	}
	return f.slots[*find.UserID], nil
}

func (f *fakeAvailabilityStore) ReplaceAvailabilitySlots(_ context.Context, userID int32, slots []*store.AvailabilitySlot) error {
	if f.slots == nil {
		f.slots = map[int32][]*store.AvailabilitySlot{}
	}
	f.slots[userID] = slots
	return nil
}

func TestSetAvailabilityValidates(t *testing.T) {
	svc := NewService(&fakeAvailabilityStore{})

	_, err := svc.SetAvailability(context.Background(), 1, []*store.AvailabilitySlot{
		{Weekday: store.Monday, StartUnit: 9, EndUnit: 7},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidArgument, apperrors.GetCodeFromError(err, ""))
}

func TestSetAvailabilityReplacesWholesale(t *testing.T) {
	st := &fakeAvailabilityStore{}
	svc := NewService(st)

	_, err := svc.SetAvailability(context.Background(), 1, []*store.AvailabilitySlot{
		{Weekday: store.Monday, StartUnit: 6, EndUnit: 9},
	})
	require.NoError(t, err)

	slots, err := svc.SetAvailability(context.Background(), 1, []*store.AvailabilitySlot{
		{Weekday: store.Friday, StartUnit: 18, EndUnit: 21},
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, store.Friday, slots[0].Weekday)
	assert.Equal(t, int32(1), slots[0].UserID)
}

func TestPlansAcrossUsers(t *testing.T) {
	st := &fakeAvailabilityStore{slots: map[int32][]*store.AvailabilitySlot{
		1: {
			{UserID: 1, Weekday: store.Monday, StartUnit: 6, EndUnit: 10},
			{UserID: 1, Weekday: store.Thursday, StartUnit: 18, EndUnit: 22},
		},
		2: {
			{UserID: 2, Weekday: store.Monday, StartUnit: 7, EndUnit: 11},
			{UserID: 2, Weekday: store.Thursday, StartUnit: 17, EndUnit: 21},
		},
	}}
	svc := NewService(st)

	plans, err := svc.Plans(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	best := plans[0]
	assert.Equal(t, int32(3), best.DayGap)
	assert.Equal(t, store.Monday, best.First.Weekday)
	assert.Equal(t, store.Thursday, best.Second.Weekday)
}

func TestPlansNoOverlap(t *testing.T) {
	st := &fakeAvailabilityStore{slots: map[int32][]*store.AvailabilitySlot{
		1: {{UserID: 1, Weekday: store.Monday, StartUnit: 6, EndUnit: 8}},
		2: {{UserID: 2, Weekday: store.Tuesday, StartUnit: 6, EndUnit: 8}},
	}}
	svc := NewService(st)

	plans, err := svc.Plans(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestCommonSlotsSelfMatch(t *testing.T) {
	svc := NewService(&fakeAvailabilityStore{})

	_, err := svc.CommonSlots(context.Background(), 5, 5)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidArgument, apperrors.GetCodeFromError(err, ""))
}
