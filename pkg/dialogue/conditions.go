package dialogue

import (
	"encoding/json"
	"fmt"
)

// StateView is the read-only world state conditions are evaluated against.
type StateView interface {
	Flag(actorID, name string) bool
	Knows(token string) bool
	Relationship(actorID string) int
}

// Conditions gate nodes and responses. Every populated field must hold.
type Conditions struct {
	Flags           map[string]bool `json:"flags,omitempty"`   // Actor flags that must match
	Knows           []string        `json:"knows,omitempty"`   // Tokens the player must know
	Missing         []string        `json:"missing,omitempty"` // Tokens the player must not know
	MinRelationship *int            `json:"min_relationship,omitempty"`
	MaxRelationship *int            `json:"max_relationship,omitempty"`
}

// Met reports whether the conditions hold for the given actor. Nil
// conditions always hold.
func (c *Conditions) Met(view StateView, actorID string) bool {
	if c == nil {
		return true
	}

	for name, want := range c.Flags {
		if view.Flag(actorID, name) != want {
			return false
		}
	}
	for _, token := range c.Knows {
		if !view.Knows(token) {
			return false
		}
	}
	for _, token := range c.Missing {
		if view.Knows(token) {
			return false
		}
	}

	rel := view.Relationship(actorID)
	if c.MinRelationship != nil && rel < *c.MinRelationship {
		return false
	}
	if c.MaxRelationship != nil && rel > *c.MaxRelationship {
		return false
	}
	return true
}

// EffectType is the kind of change an Effect makes.
type EffectType string

const (
	EffectKnowledge    EffectType = "knowledge"    // Player learns Value
	EffectRelationship EffectType = "relationship" // Actor relationship += Delta
	EffectFlag         EffectType = "flag"         // Actor flag Value set true
	EffectItem         EffectType = "item"         // Item Value handed to the inventory system
	EffectEvent        EffectType = "event"        // Named story event Value raised
)

// Effect is one permanent change caused by a node or response.
type Effect struct {
	Type  EffectType `json:"type"`
	Value string     `json:"value,omitempty"`
	Delta int        `json:"delta,omitempty"`
}

// Valid reports whether the effect is well formed.
func (e Effect) Valid() error {
	switch e.Type {
	case EffectKnowledge, EffectFlag, EffectItem, EffectEvent:
		if e.Value == "" {
			return fmt.Errorf("%s effect needs a value", e.Type)
		}
		return nil
	case EffectRelationship:
		return nil
	}
	return fmt.Errorf("unknown effect type %q", e.Type)
}

// UnmarshalJSON rejects unknown or incomplete effects at load time.
func (e *Effect) UnmarshalJSON(data []byte) error {
	type Alias Effect
	aux := &struct{ *Alias }{Alias: (*Alias)(e)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	return e.Valid()
}

// External reports whether the effect is handled outside the core.
func (e Effect) External() bool {
	return e.Type == EffectItem || e.Type == EffectEvent
}
