package actor

import "fmt"

// Kind is the role of an NPC in the facility.
type Kind uint8

const (
	KindGuard Kind = iota
	KindInmate
	KindStaff
)

var kindNames = map[Kind]string{
	KindGuard:  "guard",
	KindInmate: "inmate",
	KindStaff:  "staff",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown kind %d", uint8(k))
	}
	return []byte(name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", string(text))
}

// Behavior is the closed set of NPC behavior modes.
type Behavior uint8

const (
	BehaviorIdle Behavior = iota
	BehaviorPatrol
	BehaviorAlert
	BehaviorChase
	BehaviorConversation
)

var behaviorNames = map[Behavior]string{
	BehaviorIdle:         "idle",
	BehaviorPatrol:       "patrol",
	BehaviorAlert:        "alert",
	BehaviorChase:        "chase",
	BehaviorConversation: "conversation",
}

func (b Behavior) String() string {
	if name, ok := behaviorNames[b]; ok {
		return name
	}
	return fmt.Sprintf("behavior(%d)", uint8(b))
}

func (b Behavior) MarshalText() ([]byte, error) {
	name, ok := behaviorNames[b]
	if !ok {
		return nil, fmt.Errorf("unknown behavior %d", uint8(b))
	}
	return []byte(name), nil
}

func (b *Behavior) UnmarshalText(text []byte) error {
	for behavior, name := range behaviorNames {
		if name == string(text) {
			*b = behavior
			return nil
		}
	}
	return fmt.Errorf("unknown behavior %q", string(text))
}

// Facing is one of the four cardinal directions an actor can look in.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// Angle maps a facing to screen-space degrees (y grows downward).
func (f Facing) Angle() float64 {
	switch f {
	case FacingRight:
		return 0
	case FacingDown:
		return 90
	case FacingLeft:
		return 180
	case FacingUp:
		return 270
	}
	return 0
}

// Valid reports whether f is one of the four directions.
func (f Facing) Valid() bool {
	switch f {
	case FacingUp, FacingDown, FacingLeft, FacingRight:
		return true
	}
	return false
}

// FacingToward picks the facing for a step of (dx, dy). Horizontal movement
// wins only when it strictly dominates; ties look up or down. A zero vector
// keeps the fallback.
func FacingToward(dx, dy float64, fallback Facing) Facing {
	const epsilon = 1e-9

	absX, absY := dx, dy
	if absX < 0 {
		absX = -absX
	}
	if absY < 0 {
		absY = -absY
	}
	if absX < epsilon && absY < epsilon {
		return fallback
	}
	if absX > absY {
		if dx > 0 {
			return FacingRight
		}
		return FacingLeft
	}
	if dy > 0 {
		return FacingDown
	}
	return FacingUp
}
