package intent

import (
	"regexp"
	"strconv"
	"time"

	"github.com/hrygo/spotmatch/store"
)

var (
	dayNamePattern = regexp.MustCompile(
		`\b(monday|mon|tuesday|tues|tue|wednesday|weds|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)\b`)

	// "6pm to 8pm", "6-8pm", "6:30pm until 8pm"
	clockRangePattern = regexp.MustCompile(
		`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|–|to|until|till)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

	// "6pm", "6:30 pm"
	clockPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
)

var dayNameToWeekday = map[string]store.Weekday{
	"monday": store.Monday, "mon": store.Monday,
	"tuesday": store.Tuesday, "tues": store.Tuesday, "tue": store.Tuesday,
	"wednesday": store.Wednesday, "weds": store.Wednesday, "wed": store.Wednesday,
	"thursday": store.Thursday, "thurs": store.Thursday, "thur": store.Thursday, "thu": store.Thursday,
	"friday": store.Friday, "fri": store.Friday,
	"saturday": store.Saturday, "sat": store.Saturday,
	"sunday": store.Sunday, "sun": store.Sunday,
}

// hasTimeReference reports whether the text names a weekday or a clock time.
func hasTimeReference(normalized string) bool {
	return dayNamePattern.MatchString(normalized) || clockPattern.MatchString(normalized)
}

// parseSlot extracts a concrete {date, start, end} from a counter-proposal.
// The weekday name resolves to the nearest future calendar date; a named
// start without an explicit end gets the default duration. Returns nil when
// no weekday is named, since a clock time alone does not identify a date.
func (c *Classifier) parseSlot(normalized string) *ParsedSlot {
	dayMatch := counterDay(normalized)
	if dayMatch == "" {
		return nil
	}
	weekday := dayNameToWeekday[dayMatch]
	date := nextOccurrence(c.config.Now(), weekday)

	start, end, ok := c.parseClockRange(normalized)
	if !ok {
		start, ok = parseClock(normalized)
		if !ok {
			return nil
		}
		end = start + c.config.DefaultDurationUnits
	}
	if end > c.config.UnitsPerDay {
		end = c.config.UnitsPerDay
	}
	if start < 0 || start >= end {
		return nil
	}

	return &ParsedSlot{
		Date:      date.Format("2006-01-02"),
		StartUnit: start,
		EndUnit:   end,
	}
}

// parseClockRange handles explicit start-end ranges like "6-8pm". A missing
// meridiem on the start inherits the end's.
func (c *Classifier) parseClockRange(normalized string) (int32, int32, bool) {
	m := clockRangePattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, 0, false
	}

	startMeridiem := m[3]
	endMeridiem := m[6]
	if startMeridiem == "" {
		startMeridiem = endMeridiem
	}

	start := to24Hour(atoi(m[1]), startMeridiem)
	end := to24Hour(atoi(m[4]), endMeridiem)
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// counterDay picks the weekday being proposed. Mixed responses often name
// the declined day first ("can't Monday, how about Thursday 6pm?"), so the
// day nearest the clock time wins, and without a clock time the last day
// mentioned does.
func counterDay(normalized string) string {
	dayIdx := dayNamePattern.FindAllStringIndex(normalized, -1)
	if len(dayIdx) == 0 {
		return ""
	}

	clockIdx := clockPattern.FindStringIndex(normalized)
	best := dayIdx[len(dayIdx)-1]
	if clockIdx != nil {
		bestDist := -1
		for _, idx := range dayIdx {
			dist := clockIdx[0] - idx[1]
			if dist < 0 {
				dist = -dist
			}
			if bestDist < 0 || dist < bestDist {
				bestDist = dist
				best = idx
			}
		}
	}
	return normalized[best[0]:best[1]]
}

func parseClock(normalized string) (int32, bool) {
	m := clockPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, false
	}
	return to24Hour(atoi(m[1]), m[3]), true
}

func to24Hour(hour int32, meridiem string) int32 {
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func atoi(s string) int32 {
	n, _ := strconv.Atoi(s)
	return int32(n)
}

// nextOccurrence resolves a weekday to the nearest future calendar date.
// When today already is that weekday, the date rolls forward a full week.
func nextOccurrence(now time.Time, weekday store.Weekday) time.Time {
	// time.Weekday counts Sunday=0; ours counts Monday=0.
	today := store.Weekday((int32(now.Weekday()) + 6) % 7)
	delta := (int(weekday) - int(today) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, delta)
}
