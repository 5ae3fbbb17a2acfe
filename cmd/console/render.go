package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/room"
	"github.com/jwebster45206/stealth-engine/pkg/world"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// alertThreshold is where a guard's glyph turns from calm to alarmed.
const alertThreshold = 50.0

var titleCaser = cases.Title(language.English)

// titleCase turns ids like "lights_out" into "Lights Out".
func titleCase(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// glyph returns the map character for an actor.
func glyph(s world.Snapshot) rune {
	if !s.Conscious {
		return 'x'
	}
	switch s.Kind {
	case actor.KindGuard:
		return 'G'
	case actor.KindInmate:
		return 'i'
	case actor.KindStaff:
		return 's'
	}
	return '?'
}

// renderRoom draws the room with the player and actors on it. A nil room
// renders as a one-line notice.
func renderRoom(r *room.Room, player world.Player, snaps []world.Snapshot) string {
	if r == nil {
		return wallStyle.Render(fmt.Sprintf("(no map for %s)", player.Location))
	}

	occupants := make(map[actor.Cell]world.Snapshot, len(snaps))
	for _, s := range snaps {
		occupants[s.Cell] = s
	}

	var b strings.Builder
	for row := 0; row < r.Height(); row++ {
		for col := 0; col < r.Width(); col++ {
			cell := actor.Cell{Col: col, Row: row}
			if cell == player.Cell {
				b.WriteString(playerStyle(player).Render("@"))
				continue
			}
			if s, ok := occupants[cell]; ok {
				b.WriteString(actorStyle(s).Render(string(glyph(s))))
				continue
			}
			tile := r.Tile(col, row)
			if tile == room.Wall {
				b.WriteString(wallStyle.Render(string(tile)))
			} else {
				b.WriteString(floorStyle.Render(string(tile)))
			}
		}
		if row < r.Height()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func playerStyle(p world.Player) lipgloss.Style {
	if p.Sneaking {
		return sneakStyle
	}
	return heroStyle
}

func actorStyle(s world.Snapshot) lipgloss.Style {
	switch {
	case !s.Conscious:
		return downStyle
	case s.Alertness >= alertThreshold:
		return alarmStyle
	case s.Kind == actor.KindGuard:
		return guardStyle
	}
	return npcStyle
}

// alertnessBar renders alertness (0-100) as a fixed-width gauge.
func alertnessBar(alertness float64, width int) string {
	filled := int(alertness / 100 * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
