// Package perception answers whether, and how clearly, an NPC can see the
// player. Everything here is a pure function of its inputs.
package perception

import (
	"math"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
)

const (
	// DefaultReactionThreshold is the detection level a guard must exceed to react.
	DefaultReactionThreshold = 0.5
	// DefaultSneakMultiplier scales detection while the player sneaks.
	DefaultSneakMultiplier = 0.6
)

// Room is the static geometry perception needs: bounds and walls.
type Room interface {
	Width() int
	Height() int
	IsWall(col, row int) bool
}

// Tuning holds the thresholds that shape detection.
type Tuning struct {
	ReactionThreshold float64 `json:"reaction_threshold"`
	SneakMultiplier   float64 `json:"sneak_multiplier"`
}

// DefaultTuning returns the stock thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		ReactionThreshold: DefaultReactionThreshold,
		SneakMultiplier:   DefaultSneakMultiplier,
	}
}

// IsInVisionCone reports whether target lies inside the NPC's vision cone.
func IsInVisionCone(npc actor.NPC, target actor.Cell) bool {
	if npc.VisionRange <= 0 {
		return false
	}
	dist := npc.Cell.Distance(target)
	if dist > npc.VisionRange {
		return false
	}
	if dist == 0 {
		return true
	}

	dx := float64(target.Col - npc.Cell.Col)
	dy := float64(target.Row - npc.Cell.Row)
	bearing := math.Atan2(dy, dx) * 180 / math.Pi
	return angleBetween(bearing, npc.Facing.Angle()) <= npc.VisionAngle/2
}

// angleBetween is the smallest circular difference between two headings.
func angleBetween(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// HasLineOfSight walks a straight line from one cell to another and fails on
// the first sampled cell that is out of bounds or a wall.
func HasLineOfSight(from, to actor.Cell, room Room) bool {
	dx := to.Col - from.Col
	dy := to.Row - from.Row
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		return true
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := int(math.Round(float64(from.Col) + float64(dx)*t))
		row := int(math.Round(float64(from.Row) + float64(dy)*t))
		if col < 0 || row < 0 || col >= room.Width() || row >= room.Height() {
			return false
		}
		if room.IsWall(col, row) {
			return false
		}
	}
	return true
}

// DetectionLevel is how visible the player is to npc, in [0, 1].
func (t Tuning) DetectionLevel(npc actor.NPC, player actor.Cell, sneaking bool, room Room) float64 {
	if !IsInVisionCone(npc, player) || !HasLineOfSight(npc.Cell, player, room) {
		return 0
	}

	level := 1.0
	if sneaking {
		level *= t.SneakMultiplier
	}
	falloff := 1 - npc.Cell.Distance(player)/npc.VisionRange
	if falloff < 0 {
		falloff = 0
	}
	level *= falloff
	return math.Min(1, math.Max(0, level))
}

// ShouldReact reports whether an NPC of the given kind acts on a sighting.
func (t Tuning) ShouldReact(kind actor.Kind, level float64) bool {
	switch kind {
	case actor.KindGuard:
		return level > t.ReactionThreshold
	case actor.KindInmate, actor.KindStaff:
		return false
	}
	return false
}

// DetectionLevel uses DefaultTuning.
func DetectionLevel(npc actor.NPC, player actor.Cell, sneaking bool, room Room) float64 {
	return DefaultTuning().DetectionLevel(npc, player, sneaking, room)
}

// ShouldReact uses DefaultTuning.
func ShouldReact(kind actor.Kind, level float64) bool {
	return DefaultTuning().ShouldReact(kind, level)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
