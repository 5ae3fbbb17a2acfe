// Package schedule applies per-period directives to NPCs when the game clock
// crosses into a new period.
package schedule

import (
	"log/slog"
	"slices"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/behavior"
	"github.com/jwebster45206/stealth-engine/pkg/world"
)

// SpawnLocator knows the canonical arrival cell of each location.
type SpawnLocator interface {
	Spawn(location string) (actor.Cell, bool)
}

// Change describes what happened to one actor.
type Change struct {
	ActorID   string `json:"actor_id"`
	Period    string `json:"period"`
	Behavior  bool   `json:"behavior,omitempty"`
	Relocated bool   `json:"relocated,omitempty"`
	Deferred  bool   `json:"deferred,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

type pending struct {
	period string
	to     string
}

// Applier applies schedule directives. Relocations the player could witness
// are held back and retried by RetryDeferred.
type Applier struct {
	spawns  SpawnLocator
	logger  *slog.Logger
	pending map[string]pending
}

// NewApplier creates an Applier. Both arguments may be nil.
func NewApplier(spawns SpawnLocator, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Applier{
		spawns:  spawns,
		logger:  logger,
		pending: make(map[string]pending),
	}
}

// OnPeriodChange applies each actor's directive for period, in actor id order.
func (a *Applier) OnPeriodChange(w *world.World, period string) []Change {
	var changes []Change
	for _, id := range w.ActorIDs() {
		delete(a.pending, id)

		n, _ := w.Actor(id)
		d, ok := n.Schedule[period]
		if !ok {
			continue
		}

		c := Change{ActorID: id, Period: period}
		if n.Behavior != d.Behavior {
			w.Mutate(id, func(n *actor.NPC) {
				c.Behavior = behavior.ApplyDirective(n, d)
			})
		}

		if d.Location != "" && d.Location != n.Location {
			switch a.relocate(w, id, d.Location) {
			case moved:
				c.From, c.To = n.Location, d.Location
				c.Relocated = true
			case watched:
				c.From, c.To = n.Location, d.Location
				c.Deferred = true
				a.pending[id] = pending{period: period, to: d.Location}
				a.logger.Debug("Deferred relocation, player could see it",
					"actor_id", id,
					"from", c.From,
					"to", c.To,
					"period", period)
			case unreachable:
				a.logger.Warn("No spawn cell for location, relocation skipped",
					"actor_id", id,
					"location", d.Location,
					"period", period)
			}
		}

		if c.Behavior || c.Relocated || c.Deferred {
			changes = append(changes, c)
		}
	}
	return changes
}

// RetryDeferred attempts every held-back relocation again.
func (a *Applier) RetryDeferred(w *world.World) []Change {
	if len(a.pending) == 0 {
		return nil
	}

	var changes []Change
	for _, id := range a.Deferred() {
		p := a.pending[id]
		n, ok := w.Actor(id)
		if !ok || n.Location == p.to {
			delete(a.pending, id)
			continue
		}
		from := n.Location
		switch a.relocate(w, id, p.to) {
		case watched:
			continue
		case unreachable:
			delete(a.pending, id)
			continue
		}
		delete(a.pending, id)
		changes = append(changes, Change{ActorID: id, Period: p.period, Relocated: true, From: from, To: p.to})
	}
	return changes
}

// Deferred returns the ids of actors with a relocation still pending.
func (a *Applier) Deferred() []string {
	ids := make([]string, 0, len(a.pending))
	for id := range a.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// outcome is the result of one relocation attempt.
type outcome int

const (
	moved       outcome = iota
	watched             // the player could see it; try again later
	unreachable         // no cell to arrive at; retrying cannot help
)

// relocate teleports the actor to location unless the player is in the
// actor's current location or the destination.
func (a *Applier) relocate(w *world.World, id, location string) outcome {
	n, ok := w.Actor(id)
	if !ok {
		return unreachable
	}
	playerAt, _ := w.PlayerLocation()
	if playerAt == n.Location || playerAt == location {
		return watched
	}

	cell, index, ok := a.arrival(n, location)
	if !ok {
		return unreachable
	}

	w.Mutate(id, func(n *actor.NPC) {
		n.Location = location
		n.Cell = cell
		n.Position = cell.Vec()
		n.Rest()
		if index >= 0 {
			n.PatrolIndex = index
		}
	})
	return moved
}

// arrival picks the cell an actor appears at and, when the route visits
// location, the index of the first waypoint there (-1 otherwise). Waypoints
// without a location belong to wherever the actor is.
func (a *Applier) arrival(n actor.NPC, location string) (actor.Cell, int, bool) {
	index := -1
	for i, wp := range n.Route {
		if wp.Location == location || wp.Location == "" {
			index = i
			break
		}
	}

	if a.spawns != nil {
		if cell, ok := a.spawns.Spawn(location); ok {
			return cell, index, true
		}
	}
	if index >= 0 {
		return n.Route[index].Cell(), index, true
	}
	return actor.Cell{}, index, false
}
