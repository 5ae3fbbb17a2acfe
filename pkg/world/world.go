// Package world owns the live actor registry and the player's state.
//
// Reads return copies. Writes go through Mutate (immediate, used for player
// input) or Stage/Commit (a per-tick batch applied at tick end), so no caller
// ever holds a reference into the registry.
package world

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
)

// Player is the player-controlled character as the simulation sees it.
type Player struct {
	Location string       `json:"location"`
	Cell     actor.Cell   `json:"cell"`
	Facing   actor.Facing `json:"facing"`
	Sneaking bool         `json:"sneaking"`
}

// Knowledge is the append-only set of tokens the player has learned.
type Knowledge struct {
	tokens []string
	seen   map[string]bool
}

// Learn records token. Learning a token twice is a no-op.
func (k *Knowledge) Learn(token string) bool {
	if token == "" || k.seen[token] {
		return false
	}
	if k.seen == nil {
		k.seen = make(map[string]bool)
	}
	k.seen[token] = true
	k.tokens = append(k.tokens, token)
	return true
}

// Knows reports whether token has been learned.
func (k *Knowledge) Knows(token string) bool {
	return k.seen[token]
}

// Tokens returns the learned tokens in the order they were learned.
func (k *Knowledge) Tokens() []string {
	return slices.Clone(k.tokens)
}

// World is one running session.
type World struct {
	ID uuid.UUID

	actors    map[string]*actor.NPC
	player    Player
	knowledge Knowledge
	staged    []staged
}

// New creates a world holding copies of npcs.
func New(player Player, npcs ...actor.NPC) *World {
	w := &World{
		ID:     uuid.New(),
		actors: make(map[string]*actor.NPC, len(npcs)),
		player: player,
	}
	for _, n := range npcs {
		c := n.Clone()
		w.actors[n.ID] = &c
	}
	return w
}

// Actor returns a copy of the actor with the given id.
func (w *World) Actor(id string) (actor.NPC, bool) {
	n, ok := w.actors[id]
	if !ok {
		return actor.NPC{}, false
	}
	return n.Clone(), true
}

// ActorIDs returns every actor id in ascending order.
func (w *World) ActorIDs() []string {
	ids := make([]string, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ActorsIn returns copies of the actors in location, ordered by id.
func (w *World) ActorsIn(location string) []actor.NPC {
	var out []actor.NPC
	for _, id := range w.ActorIDs() {
		if n := w.actors[id]; n.Location == location {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Mutate applies fn to the actor immediately. It reports whether the actor exists.
func (w *World) Mutate(id string, fn func(*actor.NPC)) bool {
	n, ok := w.actors[id]
	if !ok {
		return false
	}
	fn(n)
	return true
}

// Player returns the player's state.
func (w *World) Player() Player {
	return w.player
}

// PlayerLocation returns where the player stands.
func (w *World) PlayerLocation() (string, actor.Cell) {
	return w.player.Location, w.player.Cell
}

// SetPlayer replaces the player's state.
func (w *World) SetPlayer(p Player) {
	w.player = p
}

// Learn adds a token to the player's knowledge.
func (w *World) Learn(token string) bool {
	return w.knowledge.Learn(token)
}

// Knows reports whether the player has learned token.
func (w *World) Knows(token string) bool {
	return w.knowledge.Knows(token)
}

// Knowledge returns the learned tokens in order.
func (w *World) Knowledge() []string {
	return w.knowledge.Tokens()
}

// Flag reports a named flag on an actor. Unknown actors have no flags.
func (w *World) Flag(actorID, name string) bool {
	n, ok := w.actors[actorID]
	return ok && n.Flag(name)
}

// Relationship returns an actor's disposition toward the player.
func (w *World) Relationship(actorID string) int {
	if n, ok := w.actors[actorID]; ok {
		return n.Relationship
	}
	return 0
}
