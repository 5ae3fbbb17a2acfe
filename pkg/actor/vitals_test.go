package actor

import "testing"

func TestNPC_BuildVitals(t *testing.T) {
	t.Run("no hit points means no vitals", func(t *testing.T) {
		n := &NPC{ID: "inmate_1"}
		if err := n.BuildVitals(); err != nil {
			t.Fatalf("BuildVitals() error = %v", err)
		}
		if n.Vitals != nil {
			t.Error("expected nil vitals")
		}
	})

	t.Run("builds d20 actor", func(t *testing.T) {
		n := &NPC{ID: "guard_1", HP: 12, AC: 14, Attributes: map[string]int{"perception": 3}}
		if err := n.BuildVitals(); err != nil {
			t.Fatalf("BuildVitals() error = %v", err)
		}
		if n.Vitals == nil {
			t.Fatal("expected vitals")
		}
		if n.Vitals.MaxHP() != 12 {
			t.Errorf("MaxHP() = %d, want 12", n.Vitals.MaxHP())
		}
		if n.Vitals.AC() != 14 {
			t.Errorf("AC() = %d, want 14", n.Vitals.AC())
		}
		if p, ok := n.Vitals.Attribute("perception"); !ok || p != 3 {
			t.Errorf("Attribute(perception) = %d, %v", p, ok)
		}
	})
}

func TestNPC_Subdue(t *testing.T) {
	t.Run("partial damage keeps consciousness", func(t *testing.T) {
		n := &NPC{ID: "guard_1", HP: 10, Conscious: true, Alive: true}
		if err := n.BuildVitals(); err != nil {
			t.Fatalf("BuildVitals() error = %v", err)
		}
		if err := n.Subdue(4); err != nil {
			t.Fatalf("Subdue() error = %v", err)
		}
		if !n.Conscious {
			t.Error("expected still conscious")
		}
		if n.Vitals.HP() != 6 {
			t.Errorf("HP() = %d, want 6", n.Vitals.HP())
		}
	})

	t.Run("lethal amount knocks out", func(t *testing.T) {
		n := &NPC{ID: "guard_1", HP: 5, Conscious: true, Alive: true}
		if err := n.BuildVitals(); err != nil {
			t.Fatalf("BuildVitals() error = %v", err)
		}
		if err := n.Subdue(9); err != nil {
			t.Fatalf("Subdue() error = %v", err)
		}
		if n.Conscious {
			t.Error("expected unconscious")
		}
		if !n.Alive {
			t.Error("subdue must not kill")
		}
	})

	t.Run("no vitals knocks out immediately", func(t *testing.T) {
		n := &NPC{ID: "inmate_1", Conscious: true, Alive: true}
		if err := n.Subdue(1); err != nil {
			t.Fatalf("Subdue() error = %v", err)
		}
		if n.Conscious {
			t.Error("expected unconscious")
		}
	})
}
