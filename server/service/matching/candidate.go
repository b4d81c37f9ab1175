package matching

import (
	"github.com/hrygo/spotmatch/store"
)

// SessionCandidate is a fixed-minimum-duration session window generated from
// a common run. Candidates are generated, never user-edited.
type SessionCandidate struct {
	Weekday        store.Weekday
	StartUnit      int32
	DurationUnits  int32
	ParticipantIDs [2]int32
}

// EndUnit returns the exclusive end unit of the candidate.
func (c SessionCandidate) EndUnit() int32 {
	return c.StartUnit + c.DurationUnits
}

// Candidates emits a candidate at every start unit that still fits
// minUnits inside its run. Runs longer than the minimum intentionally yield
// overlapping candidates (a 3-unit run gives two 2-unit candidates); callers
// choose among them. Runs shorter than minUnits yield nothing.
func Candidates(runs []CommonRun, participants [2]int32, minUnits int32) []SessionCandidate {
	if minUnits <= 0 {
		minUnits = DefaultMinSessionUnits
	}

	var candidates []SessionCandidate
	for _, run := range runs {
		for start := run.StartUnit; start+minUnits <= run.EndUnit; start++ {
			candidates = append(candidates, SessionCandidate{
				Weekday:        run.Weekday,
				StartUnit:      start,
				DurationUnits:  minUnits,
				ParticipantIDs: participants,
			})
		}
	}
	return candidates
}
