// Package game assembles a simulation from configuration and loaded content.
package game

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/stealth-engine/internal/config"
	"github.com/jwebster45206/stealth-engine/internal/storage"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/sim"
	"github.com/jwebster45206/stealth-engine/pkg/world"
)

// New builds a simulation with the player at the content's start. The
// caller still attaches a publisher and sink and calls Start.
func New(cfg *config.Config, content *storage.Content, log *slog.Logger) (*sim.Simulation, error) {
	start := content.Start
	r, ok := content.Rooms.Room(start.Location)
	if !ok {
		return nil, fmt.Errorf("start location %q has no room", start.Location)
	}
	if !r.Walkable(start.Cell.Col, start.Cell.Row) {
		return nil, fmt.Errorf("start cell %d,%d in %s is not walkable", start.Cell.Col, start.Cell.Row, start.Location)
	}
	if len(content.Periods) == 0 {
		return nil, fmt.Errorf("no periods configured")
	}

	w := world.New(world.Player{
		Location: start.Location,
		Cell:     start.Cell,
		Facing:   actor.FacingDown,
	}, content.Actors...)
	clock := gameclock.NewClock(start.GameTime(), cfg.TimeScale, content.Periods)

	return sim.New(w, clock, content.Rooms, content.Trees, log).WithMachine(cfg.Machine()), nil
}
