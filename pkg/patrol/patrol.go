// Package patrol moves NPCs around their cyclic waypoint routes.
//
// An NPC is either Waiting at a waypoint (Moving == false), accumulating
// WaitTimer toward the stop's WaitSeconds, or Moving toward Target in
// continuous space. PatrolIndex always names the waypoint the NPC is resting
// at or walking to.
package patrol

import "github.com/jwebster45206/stealth-engine/pkg/actor"

// Step reports what happened to an NPC during one Advance call.
type Step struct {
	Departed  bool
	Arrived   bool
	Relocated bool
}

// Advance runs one tick of dt seconds for npc.
// NPCs with no route or no speed never move.
func Advance(npc *actor.NPC, dt float64) Step {
	if len(npc.Route) == 0 || dt <= 0 {
		return Step{}
	}
	if npc.Moving {
		return move(npc, dt)
	}
	return wait(npc, dt)
}

func wait(npc *actor.NPC, dt float64) Step {
	here, _ := npc.CurrentWaypoint()
	if npc.WaitTimer < here.WaitSeconds {
		npc.WaitTimer += dt
		return Step{}
	}
	if npc.Speed <= 0 {
		return Step{}
	}

	npc.PatrolIndex = (npc.PatrolIndex + 1) % len(npc.Route)
	next := npc.Route[npc.PatrolIndex]
	npc.WaitTimer = 0

	if next.Location != "" && next.Location != npc.Location {
		// There is no continuous path between rooms; the NPC appears at the
		// next stop directly.
		npc.Location = next.Location
		arrive(npc, next)
		return Step{Departed: true, Arrived: true, Relocated: true}
	}

	target := next.Cell().Vec()
	delta := target.Sub(npc.Position)
	npc.Facing = actor.FacingToward(delta.X, delta.Y, npc.Facing)
	npc.Target = &target
	npc.Moving = true
	return Step{Departed: true}
}

func move(npc *actor.NPC, dt float64) Step {
	if npc.Target == nil {
		npc.Rest()
		return Step{}
	}
	if npc.Speed <= 0 {
		return Step{}
	}

	remaining := npc.Target.Sub(npc.Position)
	distance := remaining.Len()
	stride := npc.Speed * dt
	if distance <= stride {
		wp, _ := npc.CurrentWaypoint()
		arrive(npc, wp)
		return Step{Arrived: true}
	}

	npc.Position = npc.Position.Add(remaining.Scale(stride / distance))
	npc.Cell = actor.CellAt(npc.Position)
	return Step{}
}

func arrive(npc *actor.NPC, wp actor.Waypoint) {
	npc.Position = wp.Cell().Vec()
	npc.Cell = wp.Cell()
	npc.Moving = false
	npc.Target = nil
	npc.WaitTimer = 0
	if wp.Facing != nil && wp.Facing.Valid() {
		npc.Facing = *wp.Facing
	}
}
