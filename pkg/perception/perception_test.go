package perception

import (
	"testing"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/stretchr/testify/assert"
)

// gridRoom is a width x height room with walls at the listed cells.
type gridRoom struct {
	w, h  int
	walls map[actor.Cell]bool
}

func openRoom(w, h int, walls ...actor.Cell) gridRoom {
	r := gridRoom{w: w, h: h, walls: map[actor.Cell]bool{}}
	for _, c := range walls {
		r.walls[c] = true
	}
	return r
}

func (r gridRoom) Width() int  { return r.w }
func (r gridRoom) Height() int { return r.h }
func (r gridRoom) IsWall(col, row int) bool {
	return r.walls[actor.Cell{Col: col, Row: row}]
}

func watcher(at actor.Cell, facing actor.Facing) actor.NPC {
	n := actor.NPC{
		ID:          "guard",
		Kind:        actor.KindGuard,
		VisionRange: 5,
		VisionAngle: 90,
	}
	n.Cell = at
	n.Facing = facing
	return n
}

func TestIsInVisionCone_EastWest(t *testing.T) {
	npc := watcher(actor.Cell{Col: 10, Row: 10}, actor.FacingRight)

	for d := 1; d <= 5; d++ {
		assert.True(t, IsInVisionCone(npc, actor.Cell{Col: 10 + d, Row: 10}), "east at %d", d)
	}
	for d := 1; d <= 9; d++ {
		assert.False(t, IsInVisionCone(npc, actor.Cell{Col: 10 - d, Row: 10}), "west at %d", d)
	}
}

func TestIsInVisionCone(t *testing.T) {
	origin := actor.Cell{Col: 5, Row: 5}

	tests := []struct {
		name   string
		facing actor.Facing
		target actor.Cell
		mutate func(*actor.NPC)
		want   bool
	}{
		{name: "same cell", facing: actor.FacingUp, target: origin, want: true},
		{name: "beyond range", facing: actor.FacingRight, target: actor.Cell{Col: 11, Row: 5}, want: false},
		{name: "zero range", facing: actor.FacingRight, target: actor.Cell{Col: 6, Row: 5},
			mutate: func(n *actor.NPC) { n.VisionRange = 0 }, want: false},
		{name: "zero range same cell", facing: actor.FacingRight, target: origin,
			mutate: func(n *actor.NPC) { n.VisionRange = 0 }, want: false},
		{name: "inside cone off axis", facing: actor.FacingRight, target: actor.Cell{Col: 8, Row: 7}, want: true},
		{name: "just outside cone", facing: actor.FacingRight, target: actor.Cell{Col: 7, Row: 8}, want: false},
		{name: "down faces south", facing: actor.FacingDown, target: actor.Cell{Col: 5, Row: 8}, want: true},
		{name: "down ignores north", facing: actor.FacingDown, target: actor.Cell{Col: 5, Row: 2}, want: false},
		{name: "up faces north", facing: actor.FacingUp, target: actor.Cell{Col: 5, Row: 2}, want: true},
		{name: "left wraps past 180", facing: actor.FacingLeft, target: actor.Cell{Col: 2, Row: 4}, want: true},
		{name: "up across 0/360 seam", facing: actor.FacingUp, target: actor.Cell{Col: 6, Row: 2}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			npc := watcher(origin, tt.facing)
			if tt.mutate != nil {
				tt.mutate(&npc)
			}
			assert.Equal(t, tt.want, IsInVisionCone(npc, tt.target))
		})
	}
}

func TestHasLineOfSight(t *testing.T) {
	room := openRoom(10, 10, actor.Cell{Col: 4, Row: 2})

	assert.True(t, HasLineOfSight(actor.Cell{Col: 1, Row: 1}, actor.Cell{Col: 8, Row: 1}, room))
	assert.False(t, HasLineOfSight(actor.Cell{Col: 1, Row: 2}, actor.Cell{Col: 8, Row: 2}, room), "wall in the row")
	assert.False(t, HasLineOfSight(actor.Cell{Col: 4, Row: 0}, actor.Cell{Col: 4, Row: 5}, room), "wall in the column")
	assert.True(t, HasLineOfSight(actor.Cell{Col: 3, Row: 3}, actor.Cell{Col: 3, Row: 3}, room), "same cell")
	assert.True(t, HasLineOfSight(actor.Cell{Col: 4, Row: 2}, actor.Cell{Col: 4, Row: 2}, room), "same cell on a wall")
	assert.False(t, HasLineOfSight(actor.Cell{Col: 8, Row: 8}, actor.Cell{Col: 12, Row: 8}, room), "leaves the room")
	assert.False(t, HasLineOfSight(actor.Cell{Col: 2, Row: 0}, actor.Cell{Col: 6, Row: 4}, room), "diagonal through the wall")
}

func TestDetectionLevel_Scenarios(t *testing.T) {
	room := openRoom(20, 20)
	npc := watcher(actor.Cell{Col: 5, Row: 5}, actor.FacingDown)

	sneaking := DetectionLevel(npc, actor.Cell{Col: 5, Row: 8}, true, room)
	assert.InDelta(t, 0.24, sneaking, 1e-9)
	assert.False(t, ShouldReact(actor.KindGuard, sneaking))

	walking := DetectionLevel(npc, actor.Cell{Col: 5, Row: 6}, false, room)
	assert.InDelta(t, 0.8, walking, 1e-9)
	assert.True(t, ShouldReact(actor.KindGuard, walking))
}

func TestDetectionLevel_MonotonicInDistance(t *testing.T) {
	room := openRoom(30, 30)
	npc := watcher(actor.Cell{Col: 2, Row: 10}, actor.FacingRight)

	for _, sneaking := range []bool{false, true} {
		prev := 1.1
		for d := 0; d <= 8; d++ {
			level := DetectionLevel(npc, actor.Cell{Col: 2 + d, Row: 10}, sneaking, room)
			assert.LessOrEqual(t, level, prev, "distance %d sneaking=%v", d, sneaking)
			assert.GreaterOrEqual(t, level, 0.0)
			assert.LessOrEqual(t, level, 1.0)
			prev = level
		}
	}
}

func TestDetectionLevel_SneakRatio(t *testing.T) {
	room := openRoom(30, 30)
	npc := watcher(actor.Cell{Col: 2, Row: 10}, actor.FacingRight)

	for d := 0; d < 5; d++ {
		target := actor.Cell{Col: 2 + d, Row: 10}
		walk := DetectionLevel(npc, target, false, room)
		sneak := DetectionLevel(npc, target, true, room)
		assert.Less(t, sneak, walk)
		assert.InDelta(t, 0.6, sneak/walk, 1e-9)
	}
}

func TestDetectionLevel_BlockedOrOutside(t *testing.T) {
	npc := watcher(actor.Cell{Col: 5, Row: 5}, actor.FacingDown)

	walled := openRoom(20, 20, actor.Cell{Col: 5, Row: 6})
	assert.Zero(t, DetectionLevel(npc, actor.Cell{Col: 5, Row: 7}, false, walled))

	open := openRoom(20, 20)
	assert.Zero(t, DetectionLevel(npc, actor.Cell{Col: 5, Row: 2}, false, open), "behind the guard")
	assert.Zero(t, DetectionLevel(npc, actor.Cell{Col: 5, Row: 10}, false, open), "at the range limit")
}

func TestShouldReact(t *testing.T) {
	assert.True(t, ShouldReact(actor.KindGuard, 0.51))
	assert.False(t, ShouldReact(actor.KindGuard, 0.5))
	assert.False(t, ShouldReact(actor.KindInmate, 1))
	assert.False(t, ShouldReact(actor.KindStaff, 1))

	strict := Tuning{ReactionThreshold: 0.9, SneakMultiplier: DefaultSneakMultiplier}
	assert.False(t, strict.ShouldReact(actor.KindGuard, 0.8))
}
