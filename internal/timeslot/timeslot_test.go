package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots(t *testing.T) {
	// Mon 09:00-10:00, 30 minute slots.
	slots := Slots(9*60, 10*60, 30)
	require.Len(t, slots, 2)
	assert.Equal(t, []int{540, 570}, slots)
	assert.Equal(t, "09:00 AM", FormatClock(slots[0]))
	assert.Equal(t, "09:30 AM", FormatClock(slots[1]))
}

func TestSlotsLengthAndOrdering(t *testing.T) {
	cases := []struct {
		name             string
		start, end, step int
		want             int
	}{
		{"exact fit", 540, 660, 30, 4},
		{"partial tail slot still starts", 540, 650, 30, 4},
		{"single slot", 540, 570, 30, 1},
		{"duration longer than window", 540, 560, 30, 1},
		{"empty window", 540, 540, 30, 0},
		{"inverted window", 600, 540, 30, 0},
		{"zero step", 540, 660, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots := Slots(tc.start, tc.end, tc.step)
			assert.Len(t, slots, tc.want)
			for i := 1; i < len(slots); i++ {
				assert.Greater(t, slots[i], slots[i-1])
			}
			if tc.step > 0 && tc.end > tc.start {
				assert.Equal(t, (tc.end-tc.start+tc.step-1)/tc.step, len(slots))
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name               string
		s1, e1, s2, e2     int
		want               bool
	}{
		{"identical", 540, 600, 540, 600, true},
		{"contained", 540, 600, 550, 560, true},
		{"partial", 540, 600, 570, 660, true},
		{"boundary touch does not overlap", 540, 600, 600, 660, false},
		{"disjoint", 540, 600, 700, 760, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.e1, tc.s2, tc.e2))
			// The test is symmetric in its two intervals.
			assert.Equal(t, tc.want, Overlaps(tc.s2, tc.e2, tc.s1, tc.e1))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "12:00 AM", FormatClock(0))
	assert.Equal(t, "09:00 AM", FormatClock(540))
	assert.Equal(t, "12:00 PM", FormatClock(720))
	assert.Equal(t, "02:30 PM", FormatClock(870))
	assert.Equal(t, "11:45 PM", FormatClock(1425))
}

func TestParseClock(t *testing.T) {
	for _, label := range []string{"02:30 PM", "14:30"} {
		min, err := ParseClock(label)
		require.NoError(t, err)
		assert.Equal(t, 870, min)
	}

	min, err := ParseClock("09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, 540, min)

	_, err = ParseClock("not a time")
	assert.Error(t, err)
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, minute := range []int{0, 540, 570, 720, 870, 1425} {
		parsed, err := ParseClock(FormatClock(minute))
		require.NoError(t, err)
		assert.Equal(t, minute, parsed)
	}
}
