package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := map[string]TimeOfDay{
		"08:00":    {8, 0},
		"8:05":     {8, 5},
		"17:30":    {17, 30},
		"17:30:59": {17, 30},
		" 00:00 ":  {0, 0},
		"23:59":    {23, 59},
	}
	for in, want := range cases {
		got, err := ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, in := range []string{"", "8", "24:00", "12:60", "ab:cd", "12:00:61", "-1:00", "123:00", "12:00:00:00"} {
		_, err := ParseTimeOfDay(in)
		assert.ErrorIs(t, err, ErrInvalidTimeOfDay, in)
	}
}

func TestTimeOfDay_OnKeepsDateAndLocation(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	ref := time.Date(2025, 3, 10, 22, 45, 13, 0, loc)

	got := MustTimeOfDay(8, 0).On(ref)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, loc), got)
}

func TestTimeOfDay_Formatting(t *testing.T) {
	assert.Equal(t, "08:05", MustTimeOfDay(8, 5).String())
	assert.Equal(t, "5:30 PM", MustTimeOfDay(17, 30).Clock())
	assert.Equal(t, "12:00 PM", MustTimeOfDay(12, 0).Clock())
	assert.True(t, MustTimeOfDay(8, 0).Before(MustTimeOfDay(8, 1)))
	assert.Equal(t, 1050, MustTimeOfDay(17, 30).MinutesSinceMidnight())
}

func TestParseWorkScheduleConfig(t *testing.T) {
	ms, bad := "07:30", "nope"
	cfg := ParseWorkScheduleConfig(&ms, &bad, nil, nil)

	require.NotNil(t, cfg.MorningStart)
	assert.Equal(t, MustTimeOfDay(7, 30), *cfg.MorningStart)
	assert.Nil(t, cfg.MorningEnd)
	assert.False(t, cfg.IsEmpty())
	assert.True(t, cfg.HasMorning())
	assert.False(t, cfg.MorningComplete())
	assert.False(t, cfg.HasAfternoon())

	assert.True(t, ParseWorkScheduleConfig(nil, &bad, nil, nil).IsEmpty())
}
