package gameclock

// UIMode is the host's current interaction mode.
type UIMode uint8

const (
	ModeExplore UIMode = iota
	ModeMessage
	ModeDialogue
	ModeInventory
	ModeMenu
	ModeTransition
)

func (m UIMode) String() string {
	switch m {
	case ModeExplore:
		return "explore"
	case ModeMessage:
		return "message"
	case ModeDialogue:
		return "dialogue"
	case ModeInventory:
		return "inventory"
	case ModeMenu:
		return "menu"
	case ModeTransition:
		return "transition"
	}
	return "unknown"
}

// ShouldAdvance reports whether game time runs in the given mode.
// Time keeps running under a plain text message, but stops for modal screens
// and room transitions.
func ShouldAdvance(mode UIMode) bool {
	switch mode {
	case ModeExplore, ModeMessage:
		return true
	case ModeDialogue, ModeInventory, ModeMenu, ModeTransition:
		return false
	}
	return false
}

// Clock owns the running game time. It is not safe for concurrent use.
type Clock struct {
	now     GameTime
	scale   float64
	periods []Period
	period  string
}

// NewClock starts a clock at start. scale is game-minutes per real second.
func NewClock(start GameTime, scale float64, periods []Period) *Clock {
	c := &Clock{
		now:     start,
		scale:   scale,
		periods: periods,
	}
	c.period = periodID(periods, start)
	return c
}

func (c *Clock) Now() GameTime     { return c.now }
func (c *Clock) Period() string    { return c.period }
func (c *Clock) Scale() float64    { return c.scale }
func (c *Clock) Periods() []Period { return c.periods }

// Tick advances the clock by realDeltaMs unless mode freezes time.
// The boolean is false when the clock did not run.
func (c *Clock) Tick(realDeltaMs float64, mode UIMode) (Result, bool) {
	if !ShouldAdvance(mode) {
		return Result{Time: c.now, Period: c.period}, false
	}
	res := Advance(c.periods, c.now, realDeltaMs, c.scale)
	c.apply(res)
	return res, true
}

// SkipToPeriod jumps forward to the next start of the named period.
func (c *Clock) SkipToPeriod(id string) (Result, bool) {
	for _, p := range c.periods {
		if p.ID != id {
			continue
		}
		target := NextOccurrence(c.now, p.Start)
		before := c.period
		next := fromTotal(target)
		res := Result{Time: next, Period: periodID(c.periods, next)}
		res.PeriodChanged = res.Period != before
		c.apply(res)
		return res, true
	}
	return Result{Time: c.now, Period: c.period}, false
}

// NextPeriod returns the id of the period that follows the current one in
// configured order, wrapping around.
func (c *Clock) NextPeriod() (string, bool) {
	if len(c.periods) == 0 {
		return "", false
	}
	for i, p := range c.periods {
		if p.ID == c.period {
			return c.periods[(i+1)%len(c.periods)].ID, true
		}
	}
	return c.periods[0].ID, true
}

func (c *Clock) apply(res Result) {
	c.now = res.Time
	c.period = res.Period
}
