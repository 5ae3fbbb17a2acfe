package game

import (
	"context"
	"testing"

	"github.com/jwebster45206/stealth-engine/internal/config"
	"github.com/jwebster45206/stealth-engine/internal/storage"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/behavior"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/patrol"
	"github.com/jwebster45206/stealth-engine/pkg/room"
	"github.com/jwebster45206/stealth-engine/pkg/schedule"
	"github.com/jwebster45206/stealth-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{TimeScale: 60, TickMs: 100, ReactionThreshold: 0.5, SneakMultiplier: 0.6, AlertnessGain: 20}
}

func TestNew(t *testing.T) {
	yard, err := room.New("yard", []string{"#####", "#...#", "#####"}, actor.Cell{Col: 1, Row: 1})
	require.NoError(t, err)
	content := &storage.Content{
		Rooms:   room.Set{"yard": yard},
		Periods: []gameclock.Period{{ID: "day", Start: gameclock.ClockTime{Hour: 6}, End: gameclock.ClockTime{Hour: 22}}},
		Start:   storage.Start{Location: "yard", Cell: actor.Cell{Col: 2, Row: 1}, Day: 1, Time: gameclock.ClockTime{Hour: 7}},
	}

	s, err := New(testConfig(), content, nil)
	require.NoError(t, err)
	assert.Equal(t, "day", s.Clock().Period())
	assert.Equal(t, 60.0, s.Clock().Scale())
	assert.Equal(t, actor.Cell{Col: 2, Row: 1}, s.World().Player().Cell)
	assert.Equal(t, gameclock.At(1, 7, 0), s.Clock().Now())

	t.Run("unknown start room", func(t *testing.T) {
		bad := *content
		bad.Start.Location = "roof"
		_, err := New(testConfig(), &bad, nil)
		assert.Error(t, err)
	})

	t.Run("start in wall", func(t *testing.T) {
		bad := *content
		bad.Start.Cell = actor.Cell{}
		_, err := New(testConfig(), &bad, nil)
		assert.Error(t, err)
	})

	t.Run("no periods", func(t *testing.T) {
		bad := *content
		bad.Periods = nil
		_, err := New(testConfig(), &bad, nil)
		assert.Error(t, err)
	})
}

func TestNew_ShippedContent(t *testing.T) {
	ctx := context.Background()
	content, err := storage.New("../../data", nil).LoadContent(ctx)
	require.NoError(t, err)

	s, err := New(testConfig(), content, nil)
	require.NoError(t, err)
	assert.Equal(t, "lights_out", s.Clock().Period())

	s.Start(ctx)
	ortiz, ok := s.World().Actor("guard_ortiz")
	require.True(t, ok)
	assert.Equal(t, "kitchen", ortiz.Location, "night schedule applied at start")

	_, err = s.Tick(ctx, 100, gameclock.ModeExplore)
	require.NoError(t, err)
}

func TestShippedContent_PatrolsStayOffWalls(t *testing.T) {
	content, err := storage.New("../../data", nil).LoadContent(context.Background())
	require.NoError(t, err)

	// The player is nowhere, so every relocation goes through. Two laps of
	// the day cover arriving back in a room as well as starting in it.
	w := world.New(world.Player{Location: "offstage"}, content.Actors...)
	applier := schedule.NewApplier(content.Rooms, nil)
	for lap := 0; lap < 2; lap++ {
		for _, period := range content.Periods {
			applier.OnPeriodChange(w, period.ID)

			for _, id := range w.ActorIDs() {
				w.Mutate(id, func(n *actor.NPC) {
					if !behavior.Patrols(n.Behavior) {
						return
					}
					for i := 0; i < 600; i++ {
						patrol.Advance(n, 0.1)
						r, ok := content.Rooms.Room(n.Location)
						require.True(t, ok, "%s patrols unknown location %s", id, n.Location)
						require.True(t, r.Walkable(n.Cell.Col, n.Cell.Row),
							"%s stands on a wall in %s at %d,%d during %s", id, n.Location, n.Cell.Col, n.Cell.Row, period.ID)
					}
				})
			}
		}
	}
}
