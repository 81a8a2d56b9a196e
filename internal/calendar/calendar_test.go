package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeekSunday(t *testing.T) {
	// Wednesday 2025-06-11 15:30 local.
	ref := time.Date(2025, 6, 11, 15, 30, 0, 0, time.Local)
	got := StartOfWeek(ref, time.Sunday)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.Local), got)
	assert.Equal(t, time.Sunday, got.Weekday())
}

func TestStartOfWeekOnBoundaryIsSameDay(t *testing.T) {
	ref := time.Date(2025, 6, 8, 0, 0, 0, 0, time.Local)
	assert.Equal(t, ref, StartOfWeek(ref, time.Sunday))

	late := time.Date(2025, 6, 8, 23, 59, 59, 0, time.Local)
	assert.Equal(t, ref, StartOfWeek(late, time.Sunday))
}

func TestStartOfWeekMonday(t *testing.T) {
	sunday := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local), StartOfWeek(sunday, time.Monday))
}

func TestStartOfWeekAcrossMonth(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local) // Saturday
	assert.Equal(t, time.Date(2025, 2, 23, 0, 0, 0, 0, time.Local), StartOfWeek(ref, time.Sunday))
}

func TestDaysInWeek(t *testing.T) {
	start := time.Date(2025, 6, 8, 0, 0, 0, 0, time.Local)
	days := DaysInWeek(start)
	for i, d := range days {
		assert.Equal(t, start.AddDate(0, 0, i), d)
		assert.Equal(t, dayLabels[i], DayLabel(d))
	}
}

func TestDaysNonPositive(t *testing.T) {
	assert.Nil(t, Days(time.Now(), 0))
	assert.Nil(t, Days(time.Now(), -3))
}

func TestAnchorKeepsDate(t *testing.T) {
	utc := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	got := Anchor(utc)
	assert.Equal(t, "2025-06-08", DayKey(got))
	assert.Equal(t, time.Local, got.Location())
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-06-11")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.Local), d)

	_, err = ParseDay("11/06/2025")
	assert.Error(t, err)
}

func TestIsAfterDay(t *testing.T) {
	morning := time.Date(2025, 6, 11, 1, 0, 0, 0, time.Local)
	evening := time.Date(2025, 6, 11, 23, 0, 0, 0, time.Local)
	next := time.Date(2025, 6, 12, 0, 0, 0, 0, time.Local)

	assert.False(t, IsAfterDay(evening, morning))
	assert.True(t, IsAfterDay(next, evening))
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"sunday": time.Sunday,
		"Mon":    time.Monday,
		" SAT ":  time.Saturday,
	} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseWeekday("funday")
	assert.Error(t, err)
}
