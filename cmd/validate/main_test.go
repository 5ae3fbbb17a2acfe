package main

import (
	"context"
	"strings"
	"testing"

	"github.com/jwebster45206/stealth-engine/internal/storage"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContent(t *testing.T) *storage.Content {
	t.Helper()
	yard, err := room.New("yard", []string{"#####", "#...#", "#...#", "#####"}, actor.Cell{Col: 1, Row: 1})
	require.NoError(t, err)
	block, err := room.New("cellblock", []string{"####", "#..#", "####"}, actor.Cell{Col: 1, Row: 1})
	require.NoError(t, err)

	return &storage.Content{
		Actors: []actor.NPC{{
			ID:             "pike",
			Location:       "yard",
			Motion:         actor.Motion{Cell: actor.Cell{Col: 1, Row: 1}},
			Route:          []actor.Waypoint{{Col: 1, Row: 1}, {Col: 3, Row: 2}},
			Schedule:       map[string]actor.Directive{"lockdown": {Behavior: actor.BehaviorIdle, Location: "cellblock"}},
			DialogueTreeID: "guard_talk",
		}},
		Trees: map[string]*dialogue.Tree{
			"guard_talk": {ID: "guard_talk", Start: "hello", Nodes: dialogue.NodeMap{
				"hello": {ID: "hello", Text: "Move along."},
			}},
		},
		Rooms: room.Set{"yard": yard, "cellblock": block},
		Periods: []gameclock.Period{
			{ID: "work", Start: gameclock.ClockTime{Hour: 8}, End: gameclock.ClockTime{Hour: 20}},
			{ID: "lockdown", Start: gameclock.ClockTime{Hour: 20}, End: gameclock.ClockTime{Hour: 8}},
		},
		Start: storage.Start{Location: "yard", Cell: actor.Cell{Col: 2, Row: 1}, Day: 1, Time: gameclock.ClockTime{Hour: 7, Minute: 50}},
	}
}

func TestValidate_Clean(t *testing.T) {
	v := &ContentValidator{}
	assert.Empty(t, v.Validate(validContent(t)))
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *storage.Content)
		want   string
	}{
		{
			name:   "unknown dialogue tree",
			mutate: func(c *storage.Content) { c.Actors[0].DialogueTreeID = "missing" },
			want:   "unknown dialogue tree 'missing'",
		},
		{
			name:   "unconfigured period",
			mutate: func(c *storage.Content) { c.Actors[0].Schedule["night"] = actor.Directive{} },
			want:   "period 'night' which is not configured",
		},
		{
			name:   "waypoint on a wall",
			mutate: func(c *storage.Content) { c.Actors[0].Route[1] = actor.Waypoint{Col: 4, Row: 0} },
			want:   "waypoint 1 at 4,0 is not walkable",
		},
		{
			name:   "waypoint in unknown location",
			mutate: func(c *storage.Content) { c.Actors[0].Route[0].Location = "roof" },
			want:   "waypoint 0 is in unknown location 'roof'",
		},
		{
			name: "schedule to unknown location",
			mutate: func(c *storage.Content) {
				c.Actors[0].Schedule["work"] = actor.Directive{Behavior: actor.BehaviorPatrol, Location: "roof"}
			},
			want: "names unknown location 'roof'",
		},
		{
			name: "two wrapping periods",
			mutate: func(c *storage.Content) {
				c.Periods = append(c.Periods, gameclock.Period{ID: "night", Start: gameclock.ClockTime{Hour: 23}, End: gameclock.ClockTime{Hour: 1}})
			},
			want: "2 periods wrap past midnight",
		},
		{
			name:   "dangling response",
			mutate: func(c *storage.Content) { c.Trees["guard_talk"].Nodes["hello"] = dialogue.Node{ID: "hello", Responses: []dialogue.Response{{Text: "?", Next: "gone"}}} },
			want:   "dialogue guard_talk:",
		},
		{
			name:   "bad id",
			mutate: func(c *storage.Content) { c.Actors[0].ID = "Officer-Pike" },
			want:   "actor ID 'Officer-Pike' should be lowercase snake_case",
		},
		{
			name:   "start on wall",
			mutate: func(c *storage.Content) { c.Start.Cell = actor.Cell{} },
			want:   "start cell 0,0 is not walkable",
		},
		{
			name: "waypoint on a wall where a schedule sends the patrol",
			mutate: func(c *storage.Content) {
				c.Actors[0].Schedule["lockdown"] = actor.Directive{Behavior: actor.BehaviorPatrol, Location: "cellblock"}
			},
			want: "waypoint 1 at 3,2 is not walkable in cellblock",
		},
		{
			name: "route leg through a wall",
			mutate: func(c *storage.Content) {
				yard, err := room.New("yard", []string{"#####", "#.#.#", "#...#", "#####"}, actor.Cell{Col: 1, Row: 1})
				require.NoError(t, err)
				c.Rooms["yard"] = yard
				c.Actors[0].Route = []actor.Waypoint{{Col: 1, Row: 1}, {Col: 3, Row: 1}}
			},
			want: "actor pike route leg 0->1 crosses a wall in yard",
		},
		{
			name: "first leg after arriving at a spawn crosses a wall",
			mutate: func(c *storage.Content) {
				block, err := room.New("cellblock", []string{"#####", "#.#.#", "#...#", "#####"}, actor.Cell{Col: 1, Row: 1})
				require.NoError(t, err)
				c.Rooms["cellblock"] = block
				c.Actors[0].Route = []actor.Waypoint{
					{Location: "yard", Col: 1, Row: 1},
					{Location: "cellblock", Col: 1, Row: 2},
					{Location: "cellblock", Col: 3, Row: 1},
				}
				c.Actors[0].Schedule["lockdown"] = actor.Directive{Behavior: actor.BehaviorPatrol, Location: "cellblock"}
			},
			want: "actor pike walks through a wall from the cellblock spawn to waypoint 2",
		},
		{
			name: "terminal node leads on",
			mutate: func(c *storage.Content) {
				c.Trees["guard_talk"].Nodes["hello"] = dialogue.Node{ID: "hello", Terminal: true, Responses: []dialogue.Response{{Text: "?", Next: "hello"}}}
			},
			want: "terminal node hello",
		},
		{
			name:   "actor in unknown room",
			mutate: func(c *storage.Content) { c.Actors[0].Location = "roof" },
			want:   "starts in unknown location 'roof'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContent(t)
			tt.mutate(c)

			errs := (&ContentValidator{}).Validate(c)
			require.NotEmpty(t, errs)
			assert.True(t, strings.Contains(strings.Join(errs, "\n"), tt.want), "errors: %v", errs)
		})
	}
}

func TestIsValidID(t *testing.T) {
	assert.True(t, isValidID("guard_pike"))
	assert.True(t, isValidID("a"))
	assert.False(t, isValidID("Guard"))
	assert.False(t, isValidID("guard_"))
	assert.False(t, isValidID("guard-pike"))
}

func TestValidate_ShippedContent(t *testing.T) {
	content, err := storage.New("../../data", nil).LoadContent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, (&ContentValidator{}).Validate(content))
}
