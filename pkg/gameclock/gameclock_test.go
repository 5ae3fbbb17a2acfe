package gameclock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prisonDay() []Period {
	return []Period{
		{ID: "breakfast", Start: ClockTime{6, 0}, End: ClockTime{8, 0}},
		{ID: "work", Start: ClockTime{8, 0}, End: ClockTime{12, 0}},
		{ID: "yard", Start: ClockTime{12, 0}, End: ClockTime{22, 0}},
		{ID: "lockdown", Start: ClockTime{22, 0}, End: ClockTime{6, 0}},
	}
}

func TestPeriod_Contains(t *testing.T) {
	lockdown := Period{ID: "lockdown", Start: ClockTime{22, 0}, End: ClockTime{6, 0}}
	work := Period{ID: "work", Start: ClockTime{8, 0}, End: ClockTime{12, 0}}

	tests := []struct {
		name   string
		period Period
		hour   int
		minute int
		want   bool
	}{
		{"wrap start boundary", lockdown, 22, 0, true},
		{"wrap before midnight", lockdown, 23, 59, true},
		{"wrap after midnight", lockdown, 0, 30, true},
		{"wrap last minute", lockdown, 5, 59, true},
		{"wrap end is exclusive", lockdown, 6, 0, false},
		{"wrap midday", lockdown, 12, 0, false},
		{"plain inside", work, 9, 15, true},
		{"plain end exclusive", work, 12, 0, false},
		{"plain before", work, 7, 59, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Contains(tt.hour, tt.minute))
		})
	}
}

func TestAdvance_WrapAroundMidnightKeepsPeriod(t *testing.T) {
	start := At(1, 23, 30)
	res := Advance(prisonDay(), start, 60_000, 1)

	assert.Equal(t, 2, res.Time.Day)
	assert.Equal(t, 0, res.Time.Hour)
	assert.Equal(t, 30, res.Time.Minute)
	assert.Equal(t, "lockdown", res.Period)
	assert.False(t, res.PeriodChanged)
}

func TestAdvance_PeriodChange(t *testing.T) {
	start := At(3, 7, 59)
	res := Advance(prisonDay(), start, 1_000, 1)

	assert.Equal(t, 8, res.Time.Hour)
	assert.Equal(t, 0, res.Time.Minute)
	assert.True(t, res.PeriodChanged)
	assert.Equal(t, "work", res.Period)
}

func TestAdvance_FractionalMinutesAccumulate(t *testing.T) {
	periods := prisonDay()
	now := At(1, 9, 0)
	for i := 0; i < 10; i++ {
		now = Advance(periods, now, 50, 1).Time
	}

	assert.Equal(t, 0, now.Minute, "half a second of real time is half a game minute")
	assert.InDelta(t, 9*60+0.5, now.TotalMinutes, 1e-9)

	now = Advance(periods, now, 750, 1).Time
	assert.Equal(t, 1, now.Minute)
}

func TestAdvance_DegenerateInput(t *testing.T) {
	start := At(1, 10, 0)

	res := Advance(prisonDay(), start, -500, 1)
	assert.Equal(t, start, res.Time)
	assert.False(t, res.PeriodChanged)

	res = Advance(prisonDay(), start, 500, 0)
	assert.Equal(t, start, res.Time)
}

func TestAdvance_NoMatchingPeriod(t *testing.T) {
	periods := []Period{{ID: "work", Start: ClockTime{8, 0}, End: ClockTime{12, 0}}}
	res := Advance(periods, At(1, 11, 59), 60_000, 1)

	assert.True(t, res.PeriodChanged)
	assert.Equal(t, "", res.Period)
}

func TestNextOccurrence(t *testing.T) {
	now := At(2, 10, 0)

	later := NextOccurrence(now, ClockTime{12, 0})
	assert.Equal(t, now.TotalMinutes+120, later)

	tomorrow := NextOccurrence(now, ClockTime{6, 0})
	assert.Equal(t, At(3, 6, 0).TotalMinutes, tomorrow)

	same := NextOccurrence(now, ClockTime{10, 0})
	assert.Equal(t, At(3, 10, 0).TotalMinutes, same)

	assert.False(t, Reached(now, later))
	assert.True(t, Reached(At(2, 12, 0), later))
}

func TestClock_TickRespectsMode(t *testing.T) {
	c := NewClock(At(1, 7, 59), 1, prisonDay())
	require.Equal(t, "breakfast", c.Period())

	_, ran := c.Tick(60_000, ModeDialogue)
	assert.False(t, ran)
	assert.Equal(t, 7, c.Now().Hour)

	_, ran = c.Tick(60_000, ModeInventory)
	assert.False(t, ran)
	_, ran = c.Tick(60_000, ModeTransition)
	assert.False(t, ran)

	res, ran := c.Tick(60_000, ModeMessage)
	assert.True(t, ran)
	assert.True(t, res.PeriodChanged)
	assert.Equal(t, "work", c.Period())
}

func TestClock_SkipToPeriod(t *testing.T) {
	c := NewClock(At(1, 13, 0), 1, prisonDay())

	res, ok := c.SkipToPeriod("breakfast")
	require.True(t, ok)
	assert.True(t, res.PeriodChanged)
	assert.Equal(t, "breakfast", c.Period())
	assert.Equal(t, 2, c.Now().Day)
	assert.Equal(t, 6, c.Now().Hour)

	_, ok = c.SkipToPeriod("nap")
	assert.False(t, ok)
}

func TestClock_NextPeriod(t *testing.T) {
	c := NewClock(At(1, 23, 0), 1, prisonDay())
	next, ok := c.NextPeriod()
	require.True(t, ok)
	assert.Equal(t, "breakfast", next)

	empty := NewClock(At(1, 0, 0), 1, nil)
	_, ok = empty.NextPeriod()
	assert.False(t, ok)
}

func TestPeriod_UnmarshalJSON(t *testing.T) {
	var periods []Period
	err := json.Unmarshal([]byte(`[
		{"id": "breakfast", "start": "06:00", "end": "07:30"},
		{"id": "lockdown", "start": {"hour": 22}, "end": {"hour": 6}}
	]`), &periods)
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 7, Minute: 30}, periods[0].End)
	assert.Equal(t, ClockTime{Hour: 22}, periods[1].Start)
	assert.True(t, periods[1].Wraps())

	for _, bad := range []string{`"7"`, `"24:00"`, `"06:60"`, `"noon"`} {
		var c ClockTime
		assert.Error(t, json.Unmarshal([]byte(bad), &c), bad)
	}
}
