package matching

const (
	// DefaultMinSessionUnits is the minimum session duration in time units
	// (2 one-hour units = 2 hours).
	DefaultMinSessionUnits int32 = 2

	// IdealDayGap is the preferred spacing in days between the two sessions
	// of a weekly plan.
	IdealDayGap int32 = 3

	// MaxPlans is how many ranked weekly plans are surfaced.
	MaxPlans = 5
)
