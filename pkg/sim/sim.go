// Package sim wires the clock, schedules, patrols, perception, behavior and
// dialogue into one tick-driven simulation. It is single threaded: the host
// calls Tick once per frame and the intent methods between frames.
package sim

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	stlog "github.com/jwebster45206/stealth-engine/internal/logger"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/behavior"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/patrol"
	"github.com/jwebster45206/stealth-engine/pkg/room"
	"github.com/jwebster45206/stealth-engine/pkg/schedule"
	"github.com/jwebster45206/stealth-engine/pkg/world"
)

// Rooms resolves location ids to geometry.
type Rooms interface {
	Room(location string) (*room.Room, bool)
	Spawn(location string) (actor.Cell, bool)
}

// Publisher receives what the simulation produces. Implementations must not
// block for long; errors are logged and otherwise ignored.
type Publisher interface {
	PublishTick(ctx context.Context, worldID uuid.UUID, t gameclock.GameTime, location string, snaps []world.Snapshot) error
	PublishPeriodChanged(ctx context.Context, worldID uuid.UUID, period string, t gameclock.GameTime) error
	PublishDialogueOpened(ctx context.Context, worldID uuid.UUID, frame dialogue.Frame) error
	PublishDialogueClosed(ctx context.Context, worldID uuid.UUID, sessionID uuid.UUID, actorID string) error
}

// Sighting is one NPC's view of the player during a tick.
type Sighting struct {
	ActorID string  `json:"actor_id"`
	Level   float64 `json:"level"`
}

// Report describes one tick.
type Report struct {
	Time            gameclock.GameTime `json:"time"`
	Period          string             `json:"period"`
	PeriodChanged   bool               `json:"period_changed,omitempty"`
	Advanced        bool               `json:"advanced"` // false while the world is frozen
	Schedule        []schedule.Change  `json:"schedule,omitempty"`
	Patches         []world.Patch      `json:"patches,omitempty"`
	Sightings       []Sighting         `json:"sightings,omitempty"`
	DialogueStarted string             `json:"dialogue_started,omitempty"`
}

// waitStepMs is the real time simulated per step while waiting.
const waitStepMs = 100.0

// Simulation is one running game.
type Simulation struct {
	world     *world.World
	clock     *gameclock.Clock
	rooms     Rooms
	dialogue  *dialogue.Engine
	schedule  *schedule.Applier
	machine   behavior.Machine
	publisher Publisher
	logger    *slog.Logger
	closed    []dialogue.Session
}

// New creates a simulation. logger may be nil.
func New(w *world.World, clock *gameclock.Clock, rooms Rooms, trees map[string]*dialogue.Tree, logger *slog.Logger) *Simulation {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Simulation{
		world:    w,
		clock:    clock,
		rooms:    rooms,
		dialogue: dialogue.NewEngine(w, trees, logger),
		schedule: schedule.NewApplier(rooms, logger),
		machine:  behavior.NewMachine(),
		logger:   stlog.WithWorldID(logger, w.ID.String()),
	}
	s.dialogue.OnClose(func(sess dialogue.Session) {
		s.closed = append(s.closed, sess)
	})
	return s
}

// WithMachine replaces the behavior tuning.
func (s *Simulation) WithMachine(m behavior.Machine) *Simulation {
	s.machine = m
	return s
}

// WithPublisher sets where ticks and dialogue events are published.
func (s *Simulation) WithPublisher(p Publisher) *Simulation {
	s.publisher = p
	return s
}

// WithSink sets where item and event dialogue effects go.
func (s *Simulation) WithSink(sink dialogue.EffectSink) *Simulation {
	s.dialogue.WithSink(sink)
	return s
}

func (s *Simulation) World() *world.World        { return s.world }
func (s *Simulation) Clock() *gameclock.Clock    { return s.clock }
func (s *Simulation) Dialogue() *dialogue.Engine { return s.dialogue }

// Start applies the current period's schedule once, as if the clock had
// just entered it.
func (s *Simulation) Start(ctx context.Context) []schedule.Change {
	changes := s.schedule.OnPeriodChange(s.world, s.clock.Period())
	s.publishPeriod(ctx, s.clock.Period())
	return changes
}

// Tick advances the simulation by elapsedMs of real time. mode is the host's
// UI mode; an open conversation always counts as dialogue mode.
func (s *Simulation) Tick(ctx context.Context, elapsedMs float64, mode gameclock.UIMode) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if s.dialogue.Active() {
		mode = gameclock.ModeDialogue
	}

	res, _ := s.clock.Tick(elapsedMs, mode)
	report := Report{Time: s.clock.Now(), Period: s.clock.Period(), PeriodChanged: res.PeriodChanged}
	if res.PeriodChanged {
		s.logger.Info("Period changed", "period", res.Period, "time", res.Time.String())
		report.Schedule = s.schedule.OnPeriodChange(s.world, res.Period)
		s.publishPeriod(ctx, res.Period)
	}

	if mode != gameclock.ModeExplore || elapsedMs <= 0 {
		return report, nil
	}
	report.Advanced = true
	report.Schedule = append(report.Schedule, s.schedule.RetryDeferred(s.world)...)

	dt := elapsedMs / 1000
	player := s.world.Player()
	geometry, hasRoom := s.rooms.Room(player.Location)
	if !hasRoom {
		s.logger.Warn("No room for player location", "location", player.Location)
	}

	var confronting []string
	for _, npc := range s.world.ActorsIn(player.Location) {
		if !npc.Responsive() {
			continue
		}
		before := npc.Clone()
		if behavior.Patrols(npc.Behavior) {
			patrol.Advance(&npc, dt)
		}

		level := 0.0
		if hasRoom && npc.Location == player.Location {
			level = s.machine.Tuning.DetectionLevel(npc, player.Cell, player.Sneaking, geometry)
		}
		if level > 0 {
			report.Sightings = append(report.Sightings, Sighting{ActorID: npc.ID, Level: level})
		}
		if s.machine.Observe(&npc, level, dt).Confront {
			confronting = append(confronting, npc.ID)
		}
		s.world.Diff(before, npc)
	}
	report.Patches = s.world.Commit()

	for _, id := range confronting {
		if err := s.dialogue.Start(id); err != nil {
			s.logger.Debug("Guard could not confront player", "actor_id", id, "reason", err.Error())
			continue
		}
		report.DialogueStarted = id
		s.publishOpened(ctx)
		break
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTick(ctx, s.world.ID, report.Time, player.Location, s.world.Snapshots(player.Location)); err != nil {
			stlog.WithError(s.logger, err).Warn("Failed to publish tick")
		}
	}
	return report, nil
}

// Snapshots returns the actors in the player's location.
func (s *Simulation) Snapshots() []world.Snapshot {
	return s.world.Snapshots(s.world.Player().Location)
}

// WaitForNextPeriod passes game time until the next period starts. While
// anyone awake shares the player's location the world runs in waitStepMs
// steps, so the wait ends early if a guard confronts the player. Otherwise
// the clock jumps straight to the period start.
func (s *Simulation) WaitForNextPeriod(ctx context.Context) (Report, bool) {
	if s.dialogue.Active() {
		return Report{}, false
	}
	next, ok := s.clock.NextPeriod()
	if !ok {
		return Report{}, false
	}

	var report Report
	if start, ok := s.periodStart(next); ok && s.clock.Scale() > 0 && s.watched() {
		target := gameclock.NextOccurrence(s.clock.Now(), start)
		step := waitStepMs / 1000 * s.clock.Scale()
		for !gameclock.Reached(s.clock.Now(), target-step) {
			tick, err := s.Tick(ctx, waitStepMs, gameclock.ModeExplore)
			if err != nil {
				return report, false
			}
			report.Schedule = append(report.Schedule, tick.Schedule...)
			if tick.DialogueStarted != "" {
				report.Time, report.Period = tick.Time, tick.Period
				report.PeriodChanged = report.PeriodChanged || tick.PeriodChanged
				report.DialogueStarted = tick.DialogueStarted
				return report, true
			}
		}
	}

	res, ok := s.clock.SkipToPeriod(next)
	if !ok {
		return Report{}, false
	}
	report.Time, report.Period = res.Time, res.Period
	report.PeriodChanged = res.PeriodChanged
	if res.PeriodChanged {
		report.Schedule = append(report.Schedule, s.schedule.OnPeriodChange(s.world, res.Period)...)
		s.publishPeriod(ctx, res.Period)
	}
	return report, true
}

func (s *Simulation) periodStart(id string) (gameclock.ClockTime, bool) {
	for _, p := range s.clock.Periods() {
		if p.ID == id {
			return p.Start, true
		}
	}
	return gameclock.ClockTime{}, false
}

// watched reports whether anyone awake shares the player's location.
func (s *Simulation) watched() bool {
	for _, n := range s.world.ActorsIn(s.world.Player().Location) {
		if n.Responsive() {
			return true
		}
	}
	return false
}

func (s *Simulation) publishPeriod(ctx context.Context, period string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPeriodChanged(ctx, s.world.ID, period, s.clock.Now()); err != nil {
		stlog.WithError(s.logger, err).Warn("Failed to publish period change")
	}
}

func (s *Simulation) publishOpened(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	frame, ok := s.dialogue.Current()
	if !ok {
		return
	}
	if err := s.publisher.PublishDialogueOpened(ctx, s.world.ID, frame); err != nil {
		stlog.WithError(s.logger, err).Warn("Failed to publish dialogue opened")
	}
}

func (s *Simulation) flushClosed(ctx context.Context) {
	closed := s.closed
	s.closed = nil
	if s.publisher == nil {
		return
	}
	for _, sess := range closed {
		if err := s.publisher.PublishDialogueClosed(ctx, s.world.ID, sess.ID, sess.ActorID); err != nil {
			stlog.WithError(s.logger, err).Warn("Failed to publish dialogue closed")
		}
	}
}
