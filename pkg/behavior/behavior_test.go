package behavior

import (
	"testing"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/patrol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guard(b actor.Behavior) *actor.NPC {
	return &actor.NPC{
		ID:        "guard_1",
		Kind:      actor.KindGuard,
		Behavior:  b,
		Conscious: true,
		Alive:     true,
	}
}

func TestObserve_Confront(t *testing.T) {
	m := NewMachine()

	tests := []struct {
		name  string
		npc   *actor.NPC
		level float64
		want  bool
	}{
		{name: "patrolling guard sees player", npc: guard(actor.BehaviorPatrol), level: 0.8, want: true},
		{name: "idle guard sees player", npc: guard(actor.BehaviorIdle), level: 0.8, want: true},
		{name: "sneaking player below threshold", npc: guard(actor.BehaviorPatrol), level: 0.24, want: false},
		{name: "exactly at threshold", npc: guard(actor.BehaviorPatrol), level: 0.5, want: false},
		{name: "already talking", npc: guard(actor.BehaviorConversation), level: 1, want: false},
		{name: "chasing", npc: guard(actor.BehaviorChase), level: 1, want: false},
		{name: "inmate never reacts", npc: &actor.NPC{Kind: actor.KindInmate, Conscious: true, Alive: true}, level: 1, want: false},
		{name: "unconscious guard", npc: &actor.NPC{Kind: actor.KindGuard, Alive: true}, level: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := m.Observe(tt.npc, tt.level, 0.1)
			assert.Equal(t, tt.want, out.Confront)
		})
	}
}

func TestObserve_Alertness(t *testing.T) {
	m := NewMachine()
	n := guard(actor.BehaviorPatrol)

	m.Observe(n, 0.5, 1)
	assert.InDelta(t, 10.0, n.Alertness, 1e-9)

	for i := 0; i < 20; i++ {
		m.Observe(n, 1, 1)
	}
	assert.Equal(t, float64(actor.MaxAlertness), n.Alertness)
	assert.Equal(t, actor.BehaviorPatrol, n.Behavior, "alertness never changes behavior")

	m.Observe(n, 0, 2)
	assert.InDelta(t, 90.0, n.Alertness, 1e-9)

	m.Observe(n, 0, 100)
	assert.Zero(t, n.Alertness)
}

func TestPatrols(t *testing.T) {
	assert.True(t, Patrols(actor.BehaviorPatrol))
	for _, b := range []actor.Behavior{actor.BehaviorIdle, actor.BehaviorAlert, actor.BehaviorChase, actor.BehaviorConversation} {
		assert.False(t, Patrols(b), b.String())
	}
}

func TestApplyDirective(t *testing.T) {
	n := guard(actor.BehaviorPatrol)
	target := actor.Vec2{X: 3, Y: 1}
	n.Moving = true
	n.Target = &target

	assert.False(t, ApplyDirective(n, actor.Directive{Behavior: actor.BehaviorPatrol}))
	assert.True(t, n.Moving)

	assert.True(t, ApplyDirective(n, actor.Directive{Behavior: actor.BehaviorIdle}))
	assert.Equal(t, actor.BehaviorIdle, n.Behavior)
	assert.False(t, n.Moving)
	assert.Nil(t, n.Target)

	assert.True(t, ApplyDirective(n, actor.Directive{Behavior: actor.BehaviorPatrol, Location: "yard"}))
	assert.Equal(t, actor.BehaviorPatrol, n.Behavior)
	assert.Empty(t, n.Location, "location is left to the schedule applier")
}

func TestApplyDirective_HaltMidLegKeepsWaypoint(t *testing.T) {
	n := guard(actor.BehaviorPatrol)
	n.Speed = 1
	n.Route = []actor.Waypoint{
		{Col: 1, Row: 1, WaitSeconds: 2},
		{Col: 5, Row: 1},
		{Col: 5, Row: 4},
	}
	n.Cell = actor.Cell{Col: 1, Row: 1}
	n.Position = n.Cell.Vec()
	n.WaitTimer = 2

	require.True(t, patrol.Advance(n, 0.1).Departed)
	patrol.Advance(n, 1)
	require.True(t, n.Moving)
	require.Equal(t, 1, n.PatrolIndex)

	assert.True(t, ApplyDirective(n, actor.Directive{Behavior: actor.BehaviorIdle}))
	assert.False(t, n.Moving)
	assert.Equal(t, 0, n.PatrolIndex)

	assert.True(t, ApplyDirective(n, actor.Directive{Behavior: actor.BehaviorPatrol}))
	step := patrol.Advance(n, 0.1)
	require.True(t, step.Departed, "wait at the previous stop is already served")
	assert.Equal(t, 1, n.PatrolIndex)
	require.NotNil(t, n.Target)
	assert.Equal(t, actor.Vec2{X: 5, Y: 1}, *n.Target)
}
