package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/spotmatch/store"
)

func candidate(day store.Weekday, start int32) SessionCandidate {
	return SessionCandidate{
		Weekday:        day,
		StartUnit:      start,
		DurationUnits:  DefaultMinSessionUnits,
		ParticipantIDs: participants,
	}
}

func TestWeeklyPlansIdealGap(t *testing.T) {
	// Monday + Thursday is the ideal three-day gap.
	plans := WeeklyPlans([]SessionCandidate{
		candidate(store.Monday, 9),
		candidate(store.Thursday, 18),
	})

	require.Len(t, plans, 1)
	assert.Equal(t, int32(3), plans[0].DayGap)
	assert.Equal(t, int32(0), plans[0].Score)
}

func TestWeeklyPlansRejectsAdjacentDays(t *testing.T) {
	plans := WeeklyPlans([]SessionCandidate{
		candidate(store.Monday, 9),
		candidate(store.Tuesday, 9),
	})
	assert.Empty(t, plans)
}

func TestWeeklyPlansRejectsSameDay(t *testing.T) {
	plans := WeeklyPlans([]SessionCandidate{
		candidate(store.Wednesday, 9),
		candidate(store.Wednesday, 14),
	})
	assert.Empty(t, plans)
}

func TestWeeklyPlansRejectsFullWeekGap(t *testing.T) {
	// Monday(0) and Sunday(6) have index distance 6 and are rejected, even
	// though they are calendar-adjacent across the week boundary.
	plans := WeeklyPlans([]SessionCandidate{
		candidate(store.Monday, 9),
		candidate(store.Sunday, 9),
	})
	assert.Empty(t, plans)
}

func TestWeeklyPlansGapValidityProperty(t *testing.T) {
	candidates := []SessionCandidate{
		candidate(store.Monday, 9),
		candidate(store.Tuesday, 9),
		candidate(store.Wednesday, 9),
		candidate(store.Thursday, 9),
		candidate(store.Friday, 9),
		candidate(store.Saturday, 9),
		candidate(store.Sunday, 9),
	}

	for _, plan := range WeeklyPlans(candidates) {
		assert.Greater(t, plan.DayGap, int32(1))
		assert.Less(t, plan.DayGap, int32(6))
	}
}

func TestWeeklyPlansRankedByIdealGap(t *testing.T) {
	candidates := []SessionCandidate{
		candidate(store.Monday, 9),
		candidate(store.Wednesday, 9), // gap 2, score 1
		candidate(store.Thursday, 9),  // gap 3 with Monday, score 0
		candidate(store.Saturday, 9),  // gap 5 with Monday, score 2
	}

	plans := WeeklyPlans(candidates)
	require.NotEmpty(t, plans)
	for i := 1; i < len(plans); i++ {
		assert.LessOrEqual(t, plans[i-1].Score, plans[i].Score)
	}
	assert.Equal(t, int32(0), plans[0].Score)
}

func TestWeeklyPlansTopFive(t *testing.T) {
	var candidates []SessionCandidate
	for day := store.Monday; day <= store.Sunday; day++ {
		candidates = append(candidates, candidate(day, 9), candidate(day, 14))
	}

	plans := WeeklyPlans(candidates)
	assert.Len(t, plans, MaxPlans)
}

func TestWeeklyPlansDeterministic(t *testing.T) {
	candidates := []SessionCandidate{
		candidate(store.Monday, 9),
		candidate(store.Wednesday, 9),
		candidate(store.Thursday, 9),
		candidate(store.Friday, 9),
		candidate(store.Sunday, 9),
	}

	first := WeeklyPlans(candidates)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, WeeklyPlans(candidates))
	}
}
