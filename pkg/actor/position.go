package actor

import "math"

// Vec2 is a continuous position in tile units. The integer lattice is the
// top-left corner of each tile.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

// Cell is a discrete grid position.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Vec returns the continuous position of the cell's corner.
func (c Cell) Vec() Vec2 {
	return Vec2{X: float64(c.Col), Y: float64(c.Row)}
}

// Distance is the Euclidean distance between two cells.
func (c Cell) Distance(o Cell) float64 {
	return math.Hypot(float64(o.Col-c.Col), float64(o.Row-c.Row))
}

// Manhattan is the orthogonal step count between two cells.
func (c Cell) Manhattan(o Cell) int {
	dc := o.Col - c.Col
	dr := o.Row - c.Row
	if dc < 0 {
		dc = -dc
	}
	if dr < 0 {
		dr = -dr
	}
	return dc + dr
}

// CellAt returns the cell under the center of a one-tile footprint whose
// corner sits at pos.
func CellAt(pos Vec2) Cell {
	return Cell{
		Col: int(math.Floor(pos.X + 0.5)),
		Row: int(math.Floor(pos.Y + 0.5)),
	}
}
