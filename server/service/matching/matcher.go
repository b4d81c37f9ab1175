// Package matching computes the common availability of two workout partners
// and turns it into ranked weekly session plans. All functions here are pure
// and synchronous; store I/O happens in the callers.
package matching

import (
	"sort"

	"github.com/hrygo/spotmatch/store"
)

// CommonRun is a maximal contiguous interval on one weekday where both
// partners' availability overlaps. Derived, never persisted.
type CommonRun struct {
	Weekday   store.Weekday
	StartUnit int32
	EndUnit   int32
}

// Contains reports whether the [start, end) unit range lies inside the run.
func (r CommonRun) Contains(start, end int32) bool {
	return r.StartUnit <= start && end <= r.EndUnit
}

// Overlap intersects two users' slot collections into per-day common runs,
// ordered by (weekday, start unit). Slots need not be disjoint or sorted;
// each day is treated as the union of covered units. The result is
// symmetric: Overlap(a, b) == Overlap(b, a). An empty result is valid.
func Overlap(a, b []*store.AvailabilitySlot) []CommonRun {
	unitsA := coveredUnits(a)
	unitsB := coveredUnits(b)

	var runs []CommonRun
	for day := store.Monday; day <= store.Sunday; day++ {
		common := intersect(unitsA[day], unitsB[day])
		runs = append(runs, mergeRuns(day, common)...)
	}
	return runs
}

// coveredUnits builds, per weekday, the set of units covered by any slot.
func coveredUnits(slots []*store.AvailabilitySlot) map[store.Weekday]map[int32]bool {
	covered := make(map[store.Weekday]map[int32]bool)
	for _, slot := range slots {
		day := covered[slot.Weekday]
		if day == nil {
			day = make(map[int32]bool)
			covered[slot.Weekday] = day
		}
		for u := slot.StartUnit; u < slot.EndUnit; u++ {
			day[u] = true
		}
	}
	return covered
}

func intersect(a, b map[int32]bool) []int32 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	var units []int32
	for u := range a {
		if b[u] {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })
	return units
}

// mergeRuns merges sorted units into maximal contiguous runs.
func mergeRuns(day store.Weekday, units []int32) []CommonRun {
	if len(units) == 0 {
		return nil
	}

	var runs []CommonRun
	start := units[0]
	prev := units[0]
	for _, u := range units[1:] {
		if u == prev+1 {
			prev = u
			continue
		}
		runs = append(runs, CommonRun{Weekday: day, StartUnit: start, EndUnit: prev + 1})
		start, prev = u, u
	}
	runs = append(runs, CommonRun{Weekday: day, StartUnit: start, EndUnit: prev + 1})
	return runs
}
