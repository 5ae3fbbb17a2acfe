package actor

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// BuildVitals constructs the NPC's d20 actor from HP, AC and Attributes.
// NPCs without hit points have no vitals and can only be knocked out or
// killed through the explicit flags.
func (n *NPC) BuildVitals() error {
	if n.HP <= 0 {
		n.Vitals = nil
		return nil
	}

	vitals, err := d20.NewActor(n.ID).
		WithHP(n.HP).
		WithAC(n.AC).
		WithAttributes(n.Attributes).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build vitals for %s: %w", n.ID, err)
	}
	n.Vitals = vitals
	return nil
}

// Subdue deals non-lethal damage. An NPC reduced to zero hit points, or one
// with no vitals at all, is knocked unconscious.
func (n *NPC) Subdue(damage int) error {
	if damage <= 0 || !n.Alive {
		return nil
	}
	if n.Vitals == nil {
		n.Conscious = false
		return nil
	}

	remaining := n.Vitals.HP() - damage
	if remaining <= 0 {
		n.Conscious = false
		return nil
	}
	if err := n.Vitals.SetHP(remaining); err != nil {
		return fmt.Errorf("failed to set HP for %s: %w", n.ID, err)
	}
	return nil
}
