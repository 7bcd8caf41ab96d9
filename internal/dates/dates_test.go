package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// 23:30 UTC on Jan 1st is already Jan 2nd in Paris
	instant := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-01", DayKey(instant))
	assert.Equal(t, "2026-01-02", Today(instant, paris))
	assert.Equal(t, "2026-01-01", Today(instant, nil))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "2026-01-02", Normalize("2026-01-02"))
	assert.Equal(t, "2026-01-02", Normalize("2026-01-02T10:11:12.000Z"))
	assert.Equal(t, "", Normalize(""))
}

func TestParseDayKey(t *testing.T) {
	d, err := ParseDayKey("2026-03-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDayKey("2026-03-29T22:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2026-13-01", "29/03/2026", "yesterday"} {
		_, err := ParseDayKey(bad)
		assert.ErrorIs(t, err, ErrInvalidDayKey, bad)
	}
}

func TestIsDayKey(t *testing.T) {
	assert.True(t, IsDayKey("2026-01-01"))
	assert.False(t, IsDayKey("2026-1-1"))
	assert.False(t, IsDayKey("2026-01-01T00:00:00Z"))
	assert.False(t, IsDayKey("2026-02-30"))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// the night of 2026-03-29 is only 23 hours long in Paris
	before := time.Date(2026, 3, 29, 0, 0, 0, 0, paris)
	after := time.Date(2026, 3, 30, 0, 0, 0, 0, paris)
	assert.Equal(t, 23*time.Hour, after.Sub(before))
	assert.Equal(t, 1, DaysBetween(before, after))
	assert.Equal(t, -1, DaysBetween(after, before))

	// and 2026-10-25 is 25 hours long
	before = time.Date(2026, 10, 25, 0, 0, 0, 0, paris)
	after = time.Date(2026, 10, 26, 0, 0, 0, 0, paris)
	assert.Equal(t, 1, DaysBetween(before, after))
}

func TestDayKeysBetween(t *testing.T) {
	n, err := DayKeysBetween("2025-12-31", "2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = DayKeysBetween("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // leap year

	_, err = DayKeysBetween("2024-02-28", "nope")
	assert.ErrorIs(t, err, ErrInvalidDayKey)
}

func TestAddDays(t *testing.T) {
	d, err := AddDays("2026-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", d)

	d, err = AddDays("2026-01-01", -84)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-09", d)

	_, err = AddDays("x", 1)
	assert.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		day  time.Time
		want time.Time
	}{
		// thursday
		{day: time.Date(2026, 1, 1, 15, 4, 5, 0, time.UTC), want: time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)},
		// monday
		{day: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), want: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		// sunday belongs to the week that started the previous monday
		{day: time.Date(2026, 1, 11, 23, 59, 0, 0, time.UTC), want: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WeekStart(tc.day), tc.day.String())
	}
}
