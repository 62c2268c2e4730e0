package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, c.Minutes)
	assert.Equal(t, "08:30", c.String())

	c, err = ParseClock("14:05:59")
	require.NoError(t, err)
	assert.Equal(t, "14:05", c.String())

	_, err = ParseClock("8h30")
	assert.Error(t, err)
	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	a1, a2 := MustClock("08:00"), MustClock("09:00")

	assert.True(t, Overlaps(a1, a2, MustClock("08:30"), MustClock("09:30")))
	assert.True(t, Overlaps(a1, a2, MustClock("07:00"), MustClock("10:00")))
	assert.True(t, Overlaps(a1, a2, a1, a2))
	assert.False(t, Overlaps(a1, a2, MustClock("09:00"), MustClock("10:00")))
	assert.False(t, Overlaps(a1, a2, MustClock("06:00"), MustClock("08:00")))
}

func TestClockJSONAndScan(t *testing.T) {
	b, err := MustClock("07:45").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"07:45"`, string(b))

	var c Clock
	require.NoError(t, c.UnmarshalJSON([]byte(`"10:15"`)))
	assert.Equal(t, 615, c.Minutes)

	require.NoError(t, c.Scan(time.Date(0, 1, 1, 13, 20, 0, 0, time.UTC)))
	assert.Equal(t, "13:20", c.String())
	require.NoError(t, c.Scan([]byte("09:00:00")))
	assert.Equal(t, 540, c.Minutes)

	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", v)
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2024-09-02")
	require.NoError(t, err)
	assert.Equal(t, 1, ISOWeekday(d))
	assert.Equal(t, 7, ISOWeekday(d.AddDate(0, 0, 6)))

	assert.Equal(t, 10, DaysBetween(d, d.AddDate(0, 0, 10).Add(5*time.Hour)))

	s, e := MonthRange(2024, time.February)
	assert.Equal(t, 29, DaysBetween(s, e))
}
