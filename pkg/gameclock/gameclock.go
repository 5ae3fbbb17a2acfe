package gameclock

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	MinutesPerDay  = MinutesPerHour * HoursPerDay
)

// GameTime is a point on the in-game calendar.
// TotalMinutes is continuous and counts from day 1, 00:00; Day, Hour and Minute
// are derived from it by flooring.
type GameTime struct {
	Day          int     `json:"day"`
	Hour         int     `json:"hour"`
	Minute       int     `json:"minute"`
	TotalMinutes float64 `json:"total_minutes"`
}

// At builds a GameTime for the given day and time of day.
func At(day, hour, minute int) GameTime {
	if day < 1 {
		day = 1
	}
	total := float64((day-1)*MinutesPerDay + hour*MinutesPerHour + minute)
	return fromTotal(total)
}

func fromTotal(total float64) GameTime {
	if total < 0 {
		total = 0
	}
	whole := int(math.Floor(total))
	return GameTime{
		Day:          whole/MinutesPerDay + 1,
		Hour:         (whole % MinutesPerDay) / MinutesPerHour,
		Minute:       whole % MinutesPerHour,
		TotalMinutes: total,
	}
}

// ClockTime returns the time of day portion of t.
func (t GameTime) ClockTime() ClockTime {
	return ClockTime{Hour: t.Hour, Minute: t.Minute}
}

func (t GameTime) String() string {
	return fmt.Sprintf("Day %d, %02d:%02d", t.Day, t.Hour, t.Minute)
}

// ClockTime is a time of day with minute resolution.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (c ClockTime) minutes() int {
	return c.Hour*MinutesPerHour + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour >= HoursPerDay || c.Minute < 0 || c.Minute >= MinutesPerHour {
		return ClockTime{}, fmt.Errorf("invalid time of day %q", s)
	}
	return c, nil
}

// UnmarshalJSON accepts either "HH:MM" or {"hour": h, "minute": m}.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := ParseClockTime(str)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type Alias ClockTime
	aux := &struct{ *Alias }{Alias: (*Alias)(c)}
	return json.Unmarshal(data, aux)
}

// Period is a named window of the day that drives actor schedules.
// A period whose End is not after its Start wraps past midnight.
type Period struct {
	ID    string    `json:"id"`
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Wraps reports whether the window spans midnight.
func (p Period) Wraps() bool {
	return p.End.minutes() <= p.Start.minutes()
}

// Contains reports whether hour:minute falls inside [Start, End).
func (p Period) Contains(hour, minute int) bool {
	start := p.Start.minutes()
	end := p.End.minutes()
	t := hour*MinutesPerHour + minute
	if p.Wraps() {
		end += MinutesPerDay
		if t < start {
			t += MinutesPerDay
		}
	}
	return t >= start && t < end
}

// PeriodAt returns the first configured period containing hour:minute.
func PeriodAt(periods []Period, hour, minute int) (Period, bool) {
	for _, p := range periods {
		if p.Contains(hour, minute) {
			return p, true
		}
	}
	return Period{}, false
}

func periodID(periods []Period, t GameTime) string {
	if p, ok := PeriodAt(periods, t.Hour, t.Minute); ok {
		return p.ID
	}
	return ""
}

// Result is the outcome of advancing the clock.
type Result struct {
	Time          GameTime `json:"time"`
	PeriodChanged bool     `json:"period_changed"`
	Period        string   `json:"period"`
}

// Advance converts realDeltaMs of wall time into game minutes at scale
// game-minutes per real second and reports the resulting period.
// PeriodChanged compares against the period current was in.
func Advance(periods []Period, current GameTime, realDeltaMs float64, scale float64) Result {
	before := periodID(periods, current)
	if realDeltaMs <= 0 || scale <= 0 {
		return Result{Time: current, Period: before}
	}

	gameMinutes := realDeltaMs / 1000 * scale
	next := fromTotal(current.TotalMinutes + gameMinutes)
	after := periodID(periods, next)
	return Result{
		Time:          next,
		PeriodChanged: after != before,
		Period:        after,
	}
}

// NextOccurrence returns the TotalMinutes value at which the time of day `at`
// next occurs strictly after t.
func NextOccurrence(t GameTime, at ClockTime) float64 {
	dayStart := float64((t.Day - 1) * MinutesPerDay)
	target := dayStart + float64(at.minutes())
	if target <= t.TotalMinutes {
		target += MinutesPerDay
	}
	return target
}

// Reached reports whether t has caught up with a TotalMinutes target.
func Reached(t GameTime, target float64) bool {
	return t.TotalMinutes >= target
}
