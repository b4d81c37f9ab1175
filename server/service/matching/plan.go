package matching

import (
	"sort"
)

// WeeklyPlan is a ranked pair of candidates on distinct, non-adjacent days
// proposed as a week's schedule.
type WeeklyPlan struct {
	First  SessionCandidate
	Second SessionCandidate
	// DayGap is |dayIndex(First) - dayIndex(Second)|.
	DayGap int32
	// Score is |DayGap - IdealDayGap|; lower ranks higher.
	Score int32
}

// validDayGap applies the spacing rule: not same day, not adjacent days, and
// not six days apart. Gaps are index distances in the Monday-first week, so
// Monday and Sunday count as 6 apart even though they touch across the week
// boundary; both readings reject the pair.
func validDayGap(gap int32) bool {
	return gap > 1 && gap < 6
}

// WeeklyPlans enumerates every unordered candidate pair on different days,
// keeps the pairs satisfying the spacing rule, ranks them by closeness to
// the ideal gap and returns the top MaxPlans. Ties keep the original
// enumeration order, so output is stable for a fixed input.
func WeeklyPlans(candidates []SessionCandidate) []WeeklyPlan {
	var plans []WeeklyPlan
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			gap := int32(candidates[i].Weekday) - int32(candidates[j].Weekday)
			if gap < 0 {
				gap = -gap
			}
			if !validDayGap(gap) {
				continue
			}
			score := gap - IdealDayGap
			if score < 0 {
				score = -score
			}
			plans = append(plans, WeeklyPlan{
				First:  candidates[i],
				Second: candidates[j],
				DayGap: gap,
				Score:  score,
			})
		}
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Score < plans[j].Score
	})

	if len(plans) > MaxPlans {
		plans = plans[:MaxPlans]
	}
	return plans
}
