package well

// lockPiece freezes the visible cells of the falling piece into the grid and
// clears the falling slot. Cells still above row 0 are dropped. It returns
// the piece's point value.
func (w *Well) lockPiece() int {
	if w.falling == nil {
		return 0
	}
	p := w.falling
	for _, c := range p.Cells() {
		if inside(c.X, c.Y) {
			w.grid[c.Y][c.X] = Cell{Color: p.Color, Filled: true}
		}
	}
	w.falling = nil
	w.pieces++

	if w.opts.WeightedValues {
		return p.Shape.Value()
	}
	return 1
}

// collapseFullRows removes every full row, letting the shards above settle,
// and returns how many rows were removed. The same row index is examined
// again after a removal because shards have moved into it.
func (w *Well) collapseFullRows() int {
	removed := 0
	for y := Height - 1; y >= 0; {
		if !w.rowFull(y) {
			y--
			continue
		}
		w.clearRow(y)
		w.dropAbove(y)
		removed++
	}
	return removed
}

func (w *Well) rowFull(y int) bool {
	for x := 0; x < Width; x++ {
		if !w.grid[y][x].Filled {
			return false
		}
	}
	return true
}

func (w *Well) clearRow(y int) {
	w.grid[y] = [Width]Cell{}
}

// dropAbove moves shards above row down into free cells below them, repeating
// passes until nothing moves. Nothing ever moves below row.
func (w *Well) dropAbove(row int) {
	for {
		moved := false
		for y := row - 1; y >= 0; y-- {
			for x := 0; x < Width; x++ {
				if w.grid[y][x].Filled && !w.grid[y+1][x].Filled {
					w.grid[y+1][x] = w.grid[y][x]
					w.grid[y][x] = Cell{}
					moved = true
				}
			}
		}
		if !moved {
			return
		}
	}
}
