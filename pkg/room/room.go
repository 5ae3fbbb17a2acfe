// Package room is the static tile geometry of each location.
package room

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
)

// Wall is the tile that blocks movement and sight.
const Wall = '#'

// Room is one location's grid. Tiles are rows of runes; anything other than
// Wall is walkable.
type Room struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Tiles  []string   `json:"tiles"`
	Spawn  actor.Cell `json:"spawn"`
	width  int
	height int
	grid   [][]rune
}

// New builds a room from tile rows.
func New(id string, tiles []string, spawn actor.Cell) (*Room, error) {
	r := &Room{ID: id, Tiles: tiles, Spawn: spawn}
	if err := r.build(); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalJSON builds the grid after decoding.
func (r *Room) UnmarshalJSON(data []byte) error {
	type Alias Room
	aux := &struct{ *Alias }{Alias: (*Alias)(r)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	return r.build()
}

func (r *Room) build() error {
	if len(r.Tiles) == 0 {
		return fmt.Errorf("room %s: no tiles", r.ID)
	}
	r.grid = make([][]rune, len(r.Tiles))
	r.width = 0
	for i, row := range r.Tiles {
		r.grid[i] = []rune(row)
		r.width = max(r.width, len(r.grid[i]))
	}
	r.height = len(r.grid)
	if !r.Walkable(r.Spawn.Col, r.Spawn.Row) {
		return fmt.Errorf("room %s: spawn %d,%d is not walkable", r.ID, r.Spawn.Col, r.Spawn.Row)
	}
	return nil
}

func (r *Room) Width() int  { return r.width }
func (r *Room) Height() int { return r.height }

// InBounds reports whether the cell lies on the grid.
func (r *Room) InBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < r.width && row < r.height
}

// IsWall reports whether a cell blocks. Short rows are padded with wall.
func (r *Room) IsWall(col, row int) bool {
	if !r.InBounds(col, row) {
		return true
	}
	line := r.grid[row]
	return col >= len(line) || line[col] == Wall
}

// Walkable reports whether an actor can stand on the cell.
func (r *Room) Walkable(col, row int) bool {
	return r.InBounds(col, row) && !r.IsWall(col, row)
}

// Tile returns the rune at a cell, or Wall outside the grid.
func (r *Room) Tile(col, row int) rune {
	if r.IsWall(col, row) {
		return Wall
	}
	return r.grid[row][col]
}

// Set is every room in the game, keyed by location id.
type Set map[string]*Room

// Room looks up a room.
func (s Set) Room(location string) (*Room, bool) {
	r, ok := s[location]
	return r, ok
}

// Spawn returns the canonical arrival cell of a location.
func (s Set) Spawn(location string) (actor.Cell, bool) {
	r, ok := s[location]
	if !ok {
		return actor.Cell{}, false
	}
	return r.Spawn, true
}
