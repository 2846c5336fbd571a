package well

import "tetrawell/internal/piece"

// DrawCell is one cell to render.
type DrawCell struct {
	X, Y    int
	Color   piece.Color
	Falling bool
}

// Cells returns everything drawable inside the well: the visible cells of the
// falling piece first, then every shard in row-major order. The slice is
// built on each call.
func (w *Well) Cells() []DrawCell {
	out := make([]DrawCell, 0, 4+Width*Height/2)
	if p := w.falling; p != nil {
		for _, c := range p.Cells() {
			if inside(c.X, c.Y) {
				out = append(out, DrawCell{X: c.X, Y: c.Y, Color: p.Color, Falling: true})
			}
		}
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if c := w.grid[y][x]; c.Filled {
				out = append(out, DrawCell{X: x, Y: y, Color: c.Color})
			}
		}
	}
	return out
}

// GhostY returns the row the falling piece would lock at if dropped straight
// down, or false when nothing is falling.
func (w *Well) GhostY() (int, bool) {
	p := w.falling
	if p == nil {
		return 0, false
	}
	y := p.Y
	for {
		blocked := false
		for _, c := range p.Shape.CellCoords(p.Rot, p.X, y+1) {
			if c.Y >= Height || (c.Y >= 0 && w.grid[c.Y][c.X].Filled) {
				blocked = true
				break
			}
		}
		if blocked {
			return y, true
		}
		y++
	}
}
