// Package behavior holds the NPC behavior state machine: schedule directives,
// alertness bookkeeping and the decision to confront the player.
package behavior

import (
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/perception"
)

// DefaultAlertnessGainPerSecond is how fast alertness rises at full detection.
const DefaultAlertnessGainPerSecond = 20.0

// Outcome is the result of one observation.
type Outcome struct {
	Confront bool // the NPC wants to open a conversation with the player
}

// Machine evaluates behavior transitions for one tick.
type Machine struct {
	Tuning                 perception.Tuning
	AlertnessGainPerSecond float64
}

// NewMachine returns a Machine with default tuning.
func NewMachine() Machine {
	return Machine{
		Tuning:                 perception.DefaultTuning(),
		AlertnessGainPerSecond: DefaultAlertnessGainPerSecond,
	}
}

// Observe records what npc saw of the player this tick and decides whether
// it reacts. Alertness is bookkeeping only; it never changes behavior.
func (m Machine) Observe(npc *actor.NPC, level, dt float64) Outcome {
	if level > 0 {
		npc.IncreaseAlertness(level * m.AlertnessGainPerSecond * dt)
	} else {
		npc.DecreaseAlertness(dt)
	}

	if !npc.Responsive() || !m.Tuning.ShouldReact(npc.Kind, level) {
		return Outcome{}
	}
	return Outcome{Confront: CanConfront(npc.Behavior)}
}

// CanConfront reports whether an NPC in behavior b may start a conversation
// on its own.
func CanConfront(b actor.Behavior) bool {
	switch b {
	case actor.BehaviorIdle, actor.BehaviorPatrol:
		return true
	case actor.BehaviorAlert, actor.BehaviorChase, actor.BehaviorConversation:
		return false
	}
	return false
}

// Patrols reports whether behavior b runs the patrol controller.
func Patrols(b actor.Behavior) bool {
	switch b {
	case actor.BehaviorPatrol:
		return true
	case actor.BehaviorIdle, actor.BehaviorAlert, actor.BehaviorChase, actor.BehaviorConversation:
		return false
	}
	return false
}

// ApplyDirective switches npc to the directive's behavior. It reports whether
// anything changed. Location is handled by the schedule applier.
func ApplyDirective(npc *actor.NPC, d actor.Directive) bool {
	if npc.Behavior == d.Behavior {
		return false
	}
	npc.Behavior = d.Behavior
	if !Patrols(d.Behavior) {
		halt(npc)
	}
	return true
}

// halt stops npc where it stands. An NPC caught between waypoints is left
// resting at the stop it came from with its wait already served, so a later
// patrol heads for the same waypoint again instead of the one after it.
func halt(npc *actor.NPC) {
	moving := npc.Moving
	npc.Rest()
	if !moving || len(npc.Route) == 0 {
		return
	}
	n := len(npc.Route)
	npc.PatrolIndex = (npc.PatrolIndex - 1 + n) % n
	npc.WaitTimer = npc.Route[npc.PatrolIndex].WaitSeconds
}
