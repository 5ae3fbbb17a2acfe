package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/jwebster45206/stealth-engine/pkg/world"
)

var (
	// ErrBlocked is returned when the player walks into a wall or an actor.
	ErrBlocked = errors.New("the way is blocked")
	// ErrInConversation is returned for actions a conversation locks out.
	ErrInConversation = errors.New("finish the conversation first")
)

// MovePlayer steps the player one cell in dir. The player turns to face dir
// even when the step is blocked.
func (s *Simulation) MovePlayer(dir actor.Facing) error {
	if s.dialogue.Active() {
		return ErrInConversation
	}
	if !dir.Valid() {
		return fmt.Errorf("invalid direction %q", dir)
	}

	p := s.world.Player()
	p.Facing = dir
	s.world.SetPlayer(p)

	next := step(p.Cell, dir)
	r, ok := s.rooms.Room(p.Location)
	if !ok || !r.Walkable(next.Col, next.Row) {
		return ErrBlocked
	}
	for _, n := range s.world.ActorsIn(p.Location) {
		if n.Cell == next {
			return ErrBlocked
		}
	}

	p.Cell = next
	s.world.SetPlayer(p)
	return nil
}

// PlacePlayer puts the player at a cell of another location, as a room
// transition would.
func (s *Simulation) PlacePlayer(location string, cell actor.Cell) error {
	if s.dialogue.Active() {
		return ErrInConversation
	}
	r, ok := s.rooms.Room(location)
	if !ok {
		return fmt.Errorf("unknown location %q", location)
	}
	if !r.Walkable(cell.Col, cell.Row) {
		return ErrBlocked
	}
	p := s.world.Player()
	p.Location = location
	p.Cell = cell
	s.world.SetPlayer(p)
	return nil
}

// SetSneaking switches the player's sneak stance.
func (s *Simulation) SetSneaking(on bool) {
	p := s.world.Player()
	p.Sneaking = on
	s.world.SetPlayer(p)
}

// Talk starts a conversation with the first adjacent actor, by id, that is
// willing. The error from the first refusal is returned when none is.
func (s *Simulation) Talk(ctx context.Context) (string, error) {
	if s.dialogue.Active() {
		return "", dialogue.ErrSessionActive
	}
	var firstErr error
	for _, n := range s.Adjacent() {
		err := s.dialogue.Start(n.ID)
		if err == nil {
			s.publishOpened(ctx)
			return n.ID, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = dialogue.ErrTooFarAway
	}
	return "", firstErr
}

// Subdue knocks an adjacent actor down by damage hit points.
func (s *Simulation) Subdue(actorID string, damage int) error {
	if s.dialogue.Active() {
		return ErrInConversation
	}
	for _, n := range s.Adjacent() {
		if n.ID != actorID {
			continue
		}
		var err error
		s.world.Mutate(actorID, func(n *actor.NPC) { err = n.Subdue(damage) })
		if err != nil {
			return fmt.Errorf("failed to subdue %s: %w", actorID, err)
		}
		return nil
	}
	return dialogue.ErrTooFarAway
}

// Choose selects a response in the open conversation.
func (s *Simulation) Choose(ctx context.Context, index int) error {
	defer s.flushClosed(ctx)
	return s.dialogue.Select(ctx, index)
}

// Confirm selects the highlighted response.
func (s *Simulation) Confirm(ctx context.Context) error {
	defer s.flushClosed(ctx)
	return s.dialogue.Confirm(ctx)
}

// Cancel closes the open conversation.
func (s *Simulation) Cancel(ctx context.Context) {
	s.dialogue.Cancel()
	s.flushClosed(ctx)
}

// Adjacent returns the actors within one tile of the player, ordered by id.
func (s *Simulation) Adjacent() []world.Snapshot {
	p := s.world.Player()
	var out []world.Snapshot
	for _, snap := range s.world.Snapshots(p.Location) {
		if snap.Cell.Manhattan(p.Cell) <= 1 {
			out = append(out, snap)
		}
	}
	return out
}

func step(c actor.Cell, dir actor.Facing) actor.Cell {
	switch dir {
	case actor.FacingUp:
		c.Row--
	case actor.FacingDown:
		c.Row++
	case actor.FacingLeft:
		c.Col--
	case actor.FacingRight:
		c.Col++
	}
	return c
}
