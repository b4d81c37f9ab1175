package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/spotmatch/store"
)

func TestNextOccurrenceRollsForward(t *testing.T) {
	// fixedNow is Wednesday 2025-01-15.
	tests := []struct {
		weekday store.Weekday
		want    string
	}{
		{store.Thursday, "2025-01-16"},
		{store.Sunday, "2025-01-19"},
		{store.Monday, "2025-01-20"},
		// Same weekday rolls a full week forward.
		{store.Wednesday, "2025-01-22"},
	}

	for _, tt := range tests {
		got := nextOccurrence(fixedNow, tt.weekday)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "weekday %s", tt.weekday)
	}
}

func TestParseSlotDefaultDuration(t *testing.T) {
	c := newTestClassifier()

	slot := c.parseSlot("how about friday 6pm")
	require.NotNil(t, slot)
	assert.Equal(t, "2025-01-17", slot.Date)
	assert.Equal(t, int32(18), slot.StartUnit)
	assert.Equal(t, int32(20), slot.EndUnit)
}

func TestParseSlotExplicitRange(t *testing.T) {
	c := newTestClassifier()

	for _, text := range []string{
		"saturday 6pm to 9pm",
		"saturday 6-9pm",
		"saturday 6 until 9pm",
	} {
		slot := c.parseSlot(text)
		require.NotNil(t, slot, "text: %q", text)
		assert.Equal(t, int32(18), slot.StartUnit, "text: %q", text)
		assert.Equal(t, int32(21), slot.EndUnit, "text: %q", text)
	}
}

func TestParseSlotMorning(t *testing.T) {
	c := newTestClassifier()

	slot := c.parseSlot("monday 9am")
	require.NotNil(t, slot)
	assert.Equal(t, int32(9), slot.StartUnit)
	assert.Equal(t, int32(11), slot.EndUnit)
}

func TestParseSlotNoonAndMidnight(t *testing.T) {
	c := newTestClassifier()

	slot := c.parseSlot("tuesday 12pm")
	require.NotNil(t, slot)
	assert.Equal(t, int32(12), slot.StartUnit)

	slot = c.parseSlot("tuesday 12am")
	require.NotNil(t, slot)
	assert.Equal(t, int32(0), slot.StartUnit)
}

func TestParseSlotClampsToDayEnd(t *testing.T) {
	c := newTestClassifier()

	slot := c.parseSlot("friday 11pm")
	require.NotNil(t, slot)
	assert.Equal(t, int32(23), slot.StartUnit)
	assert.Equal(t, int32(24), slot.EndUnit)
}

func TestParseSlotNoDayName(t *testing.T) {
	c := newTestClassifier()

	// A clock time alone does not identify a date.
	assert.Nil(t, c.parseSlot("6pm then"))
}

func TestParseSlotDayWithoutTime(t *testing.T) {
	c := newTestClassifier()

	assert.Nil(t, c.parseSlot("maybe thursday instead"))
}

func TestCounterDayPrefersDayNearClock(t *testing.T) {
	assert.Equal(t, "thursday", counterDay("can't monday, how about thursday 6pm"))
	assert.Equal(t, "saturday", counterDay("no monday for me, saturday then"))
}
