package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/spotmatch/store"
)

var participants = [2]int32{1, 2}

func TestCandidatesMinimumRun(t *testing.T) {
	// Both users share Monday units {9,10}: one run [9,11), one candidate.
	runs := []CommonRun{{Weekday: store.Monday, StartUnit: 9, EndUnit: 11}}

	candidates := Candidates(runs, participants, DefaultMinSessionUnits)
	require.Len(t, candidates, 1)
	assert.Equal(t, store.Monday, candidates[0].Weekday)
	assert.Equal(t, int32(9), candidates[0].StartUnit)
	assert.Equal(t, int32(2), candidates[0].DurationUnits)
}

func TestCandidatesOverlappingWindows(t *testing.T) {
	// A 3-unit run yields two overlapping candidates, one at each of the
	// first two units.
	runs := []CommonRun{{Weekday: store.Monday, StartUnit: 9, EndUnit: 12}}

	candidates := Candidates(runs, participants, DefaultMinSessionUnits)
	require.Len(t, candidates, 2)
	assert.Equal(t, int32(9), candidates[0].StartUnit)
	assert.Equal(t, int32(10), candidates[1].StartUnit)
}

func TestCandidatesShortRunYieldsNothing(t *testing.T) {
	runs := []CommonRun{{Weekday: store.Tuesday, StartUnit: 9, EndUnit: 10}}

	assert.Empty(t, Candidates(runs, participants, DefaultMinSessionUnits))
}

func TestCandidatesMinimumDurationProperty(t *testing.T) {
	runs := []CommonRun{
		{Weekday: store.Monday, StartUnit: 6, EndUnit: 12},
		{Weekday: store.Thursday, StartUnit: 18, EndUnit: 21},
	}

	for _, c := range Candidates(runs, participants, DefaultMinSessionUnits) {
		assert.GreaterOrEqual(t, c.DurationUnits, DefaultMinSessionUnits)
	}
}

func TestCandidatesContainedInRuns(t *testing.T) {
	runs := []CommonRun{
		{Weekday: store.Monday, StartUnit: 6, EndUnit: 12},
		{Weekday: store.Friday, StartUnit: 17, EndUnit: 20},
	}

	for _, c := range Candidates(runs, participants, DefaultMinSessionUnits) {
		contained := false
		for _, run := range runs {
			if run.Weekday == c.Weekday && run.Contains(c.StartUnit, c.EndUnit()) {
				contained = true
				break
			}
		}
		assert.True(t, contained, "candidate %+v not contained in any run", c)
	}
}

func TestCandidatesCarryParticipants(t *testing.T) {
	runs := []CommonRun{{Weekday: store.Monday, StartUnit: 9, EndUnit: 11}}

	candidates := Candidates(runs, [2]int32{7, 12}, DefaultMinSessionUnits)
	require.Len(t, candidates, 1)
	assert.Equal(t, [2]int32{7, 12}, candidates[0].ParticipantIDs)
}
