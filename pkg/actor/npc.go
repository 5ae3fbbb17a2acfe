package actor

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/jwebster45206/d20"
)

const (
	MinAlertness    = 0
	MaxAlertness    = 100
	MinRelationship = -100
	MaxRelationship = 100

	// AlertnessDecayPerSecond is how fast suspicion fades when nothing is seen.
	AlertnessDecayPerSecond = 5.0

	DefaultSpeed       = 2.0 // tiles per second
	DefaultVisionRange = 5.0
	DefaultVisionAngle = 90.0
)

// Waypoint is one stop on a cyclic patrol route.
type Waypoint struct {
	Location    string  `json:"location,omitempty"`
	Col         int     `json:"col"`
	Row         int     `json:"row"`
	WaitSeconds float64 `json:"wait_seconds,omitempty"`
	Facing      *Facing `json:"facing,omitempty"` // Facing to adopt on arrival, if any
}

func (w Waypoint) Cell() Cell { return Cell{Col: w.Col, Row: w.Row} }

// Directive is what an NPC should be doing during a period.
type Directive struct {
	Behavior Behavior `json:"behavior"`
	Location string   `json:"location,omitempty"` // Empty keeps the current location
}

// Motion is the movement state of an NPC. Target is set only while Moving.
type Motion struct {
	Cell        Cell    `json:"cell"`
	Position    Vec2    `json:"position"`
	Facing      Facing  `json:"facing"`
	PatrolIndex int     `json:"patrol_index,omitempty"`
	Moving      bool    `json:"moving,omitempty"`
	Target      *Vec2   `json:"target,omitempty"`
	WaitTimer   float64 `json:"wait_timer,omitempty"`
}

// Rest stops any movement in place.
func (m *Motion) Rest() {
	m.Moving = false
	m.Target = nil
	m.WaitTimer = 0
}

// NPC is a non-player actor. NPCs are built once from content and mutated in
// place for the rest of the session.
type NPC struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Location string `json:"location"`

	Motion
	Route    []Waypoint           `json:"route,omitempty"`
	Speed    float64              `json:"speed,omitempty"` // tiles per second
	Schedule map[string]Directive `json:"schedule,omitempty"`

	Behavior    Behavior `json:"behavior"`
	Alertness   float64  `json:"alertness,omitempty"`
	VisionRange float64  `json:"vision_range"`
	VisionAngle float64  `json:"vision_angle"` // full cone width in degrees

	DialogueTreeID string          `json:"dialogue_tree,omitempty"`
	Relationship   int             `json:"relationship,omitempty"`
	TalkedTo       bool            `json:"talked_to,omitempty"`
	Flags          map[string]bool `json:"flags,omitempty"`

	Conscious bool `json:"conscious"`
	Alive     bool `json:"alive"`

	HP         int            `json:"hp,omitempty"`
	AC         int            `json:"ac,omitempty"`
	Attributes map[string]int `json:"attributes,omitempty"`
	Vitals     *d20.Actor     `json:"-"` // Built at load time from HP, AC and Attributes
}

// UnmarshalJSON fills defaults that the zero value cannot express: NPCs are
// conscious and alive unless the content says otherwise, and have a usable
// vision cone and walking speed.
func (n *NPC) UnmarshalJSON(data []byte) error {
	type alias NPC
	aux := alias{
		Conscious:   true,
		Alive:       true,
		Speed:       DefaultSpeed,
		VisionRange: DefaultVisionRange,
		VisionAngle: DefaultVisionAngle,
	}
	aux.Facing = FacingDown
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = NPC(aux)
	n.normalize()
	return nil
}

func (n *NPC) normalize() {
	if n.Position == (Vec2{}) && n.Cell != (Cell{}) {
		n.Position = n.Cell.Vec()
	}
	n.Cell = CellAt(n.Position)
	if !n.Facing.Valid() {
		n.Facing = FacingDown
	}
	if len(n.Route) > 0 {
		n.PatrolIndex = wrapIndex(n.PatrolIndex, len(n.Route))
	} else {
		n.PatrolIndex = 0
	}
	if n.Flags == nil {
		n.Flags = make(map[string]bool)
	}
	n.Alertness = clampFloat(n.Alertness, MinAlertness, MaxAlertness)
	n.Relationship = clampInt(n.Relationship, MinRelationship, MaxRelationship)
}

// Clone returns a deep copy that shares no mutable state with n.
// The d20 vitals pointer is shared; it is owned by the world registry.
func (n NPC) Clone() NPC {
	c := n
	c.Flags = maps.Clone(n.Flags)
	if c.Flags == nil {
		c.Flags = make(map[string]bool)
	}
	c.Route = slices.Clone(n.Route)
	c.Schedule = maps.Clone(n.Schedule)
	c.Attributes = maps.Clone(n.Attributes)
	if n.Target != nil {
		t := *n.Target
		c.Target = &t
	}
	return c
}

// CurrentWaypoint returns the stop the NPC is resting at or heading to.
func (n *NPC) CurrentWaypoint() (Waypoint, bool) {
	if len(n.Route) == 0 {
		return Waypoint{}, false
	}
	return n.Route[wrapIndex(n.PatrolIndex, len(n.Route))], true
}

// IncreaseAlertness raises suspicion, capped at MaxAlertness.
func (n *NPC) IncreaseAlertness(amount float64) {
	if amount <= 0 {
		return
	}
	n.Alertness = clampFloat(n.Alertness+amount, MinAlertness, MaxAlertness)
}

// DecreaseAlertness lets suspicion fade over dt seconds.
func (n *NPC) DecreaseAlertness(dt float64) {
	if dt <= 0 {
		return
	}
	n.Alertness = clampFloat(n.Alertness-AlertnessDecayPerSecond*dt, MinAlertness, MaxAlertness)
}

// AdjustRelationship applies a signed delta, clamped to [-100, 100].
func (n *NPC) AdjustRelationship(delta int) {
	n.Relationship = clampInt(n.Relationship+delta, MinRelationship, MaxRelationship)
}

// SetFlag records a named interaction outcome.
func (n *NPC) SetFlag(name string) {
	if n.Flags == nil {
		n.Flags = make(map[string]bool)
	}
	n.Flags[name] = true
}

// Flag reports a named interaction outcome.
func (n *NPC) Flag(name string) bool {
	return n.Flags[name]
}

// Responsive reports whether the NPC can be talked to at all.
func (n *NPC) Responsive() bool {
	return n.Conscious && n.Alive
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
