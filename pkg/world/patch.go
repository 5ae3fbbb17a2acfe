package world

import "github.com/jwebster45206/stealth-engine/pkg/actor"

// PatchKind names what a staged change touches.
type PatchKind string

const (
	PatchMotion    PatchKind = "motion"
	PatchAlertness PatchKind = "alertness"
	PatchBehavior  PatchKind = "behavior"
	PatchLocation  PatchKind = "location"
)

// Patch records one committed change.
type Patch struct {
	ActorID string    `json:"actor_id"`
	Kind    PatchKind `json:"kind"`
}

type staged struct {
	patch Patch
	apply func(*actor.NPC)
}

// Stage queues fn to run against the actor at the next Commit.
func (w *World) Stage(id string, kind PatchKind, fn func(*actor.NPC)) {
	w.staged = append(w.staged, staged{patch: Patch{ActorID: id, Kind: kind}, apply: fn})
}

// Diff stages one patch per aspect that differs between before and after,
// in location, motion, alertness, behavior order. after is copied.
func (w *World) Diff(before, after actor.NPC) {
	id := after.ID
	if after.Location != before.Location {
		location := after.Location
		w.Stage(id, PatchLocation, func(n *actor.NPC) { n.Location = location })
	}
	if !sameMotion(before.Motion, after.Motion) {
		motion := after.Motion
		if motion.Target != nil {
			target := *motion.Target
			motion.Target = &target
		}
		w.Stage(id, PatchMotion, func(n *actor.NPC) { n.Motion = motion })
	}
	if after.Alertness != before.Alertness {
		alertness := after.Alertness
		w.Stage(id, PatchAlertness, func(n *actor.NPC) { n.Alertness = alertness })
	}
	if after.Behavior != before.Behavior {
		b := after.Behavior
		w.Stage(id, PatchBehavior, func(n *actor.NPC) { n.Behavior = b })
	}
}

func sameMotion(a, b actor.Motion) bool {
	if (a.Target == nil) != (b.Target == nil) {
		return false
	}
	if a.Target != nil && *a.Target != *b.Target {
		return false
	}
	a.Target, b.Target = nil, nil
	return a == b
}

// Commit applies staged changes in the order they were staged and returns
// the ones that reached an actor. Changes for unknown actors are dropped.
func (w *World) Commit() []Patch {
	var applied []Patch
	for _, s := range w.staged {
		if w.Mutate(s.patch.ActorID, s.apply) {
			applied = append(applied, s.patch)
		}
	}
	w.staged = nil
	return applied
}

// Snapshot is the render-facing view of one actor.
type Snapshot struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      actor.Kind     `json:"kind"`
	Location  string         `json:"location"`
	Cell      actor.Cell     `json:"cell"`
	Position  actor.Vec2     `json:"position"`
	Facing    actor.Facing   `json:"facing"`
	Behavior  actor.Behavior `json:"behavior"`
	Alertness float64        `json:"alertness"`
	Conscious bool           `json:"conscious"`
}

// Snapshots returns one snapshot per actor in location, ordered by id.
func (w *World) Snapshots(location string) []Snapshot {
	npcs := w.ActorsIn(location)
	out := make([]Snapshot, 0, len(npcs))
	for _, n := range npcs {
		out = append(out, Snapshot{
			ID:        n.ID,
			Name:      n.Name,
			Kind:      n.Kind,
			Location:  n.Location,
			Cell:      n.Cell,
			Position:  n.Position,
			Facing:    n.Facing,
			Behavior:  n.Behavior,
			Alertness: n.Alertness,
			Conscious: n.Conscious,
		})
	}
	return out
}
