package well

import (
	"errors"
	"fmt"

	"tetrawell/internal/piece"
)

// ErrInvalidSnapshot is wrapped by every Restore validation failure.
var ErrInvalidSnapshot = errors.New("invalid well snapshot")

// ShardRecord is one locked cell in a Snapshot.
type ShardRecord struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color piece.Color `json:"color"`
}

// PieceRecord describes a falling or next piece in a Snapshot.
type PieceRecord struct {
	Shape string      `json:"shape"`
	X     int         `json:"x,omitempty"`
	Y     int         `json:"y,omitempty"`
	Rot   int         `json:"rot,omitempty"`
	Color piece.Color `json:"color"`
}

// Snapshot is the serializable state of a well.
type Snapshot struct {
	Shards   []ShardRecord `json:"shards"`
	Falling  *PieceRecord  `json:"falling,omitempty"`
	Next     PieceRecord   `json:"next"`
	Score    int           `json:"score"`
	Rows     int           `json:"rows"`
	Level    int           `json:"level"`
	Pieces   int           `json:"pieces"`
	GameOver bool          `json:"game_over"`
}

// Snapshot captures the current state.
func (w *Well) Snapshot() Snapshot {
	s := Snapshot{
		Next:     PieceRecord{Shape: w.next.Shape.String(), Color: w.next.Color},
		Score:    w.score,
		Rows:     w.rows,
		Level:    w.level,
		Pieces:   w.pieces,
		GameOver: w.over,
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if c := w.grid[y][x]; c.Filled {
				s.Shards = append(s.Shards, ShardRecord{X: x, Y: y, Color: c.Color})
			}
		}
	}
	if p := w.falling; p != nil {
		s.Falling = &PieceRecord{Shape: p.Shape.String(), X: p.X, Y: p.Y, Rot: p.Rot, Color: p.Color}
	}
	return s
}

// Restore replaces the state with s. The well is left untouched when s fails
// validation.
func (w *Well) Restore(s Snapshot) error {
	var grid [Height][Width]Cell
	for _, r := range s.Shards {
		if !inside(r.X, r.Y) {
			return fmt.Errorf("%w: shard (%d, %d) outside the well", ErrInvalidSnapshot, r.X, r.Y)
		}
		if grid[r.Y][r.X].Filled {
			return fmt.Errorf("%w: duplicate shard at (%d, %d)", ErrInvalidSnapshot, r.X, r.Y)
		}
		grid[r.Y][r.X] = Cell{Color: r.Color, Filled: true}
	}

	nextShape, err := piece.ParseShape(s.Next.Shape)
	if err != nil {
		return fmt.Errorf("%w: next piece: %v", ErrInvalidSnapshot, err)
	}
	if s.Level < 1 {
		return fmt.Errorf("%w: level %d", ErrInvalidSnapshot, s.Level)
	}
	if s.Score < 0 || s.Rows < 0 || s.Pieces < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidSnapshot)
	}

	var falling *FallingPiece
	if s.Falling != nil {
		if s.GameOver {
			return fmt.Errorf("%w: falling piece after game over", ErrInvalidSnapshot)
		}
		shape, err := piece.ParseShape(s.Falling.Shape)
		if err != nil {
			return fmt.Errorf("%w: falling piece: %v", ErrInvalidSnapshot, err)
		}
		falling = &FallingPiece{
			Shape: shape,
			X:     s.Falling.X,
			Y:     s.Falling.Y,
			Rot:   wrapRot(s.Falling.Rot),
			Color: s.Falling.Color,
		}
		for _, c := range falling.Cells() {
			if c.X < 0 || c.X >= Width || c.Y >= Height {
				return fmt.Errorf("%w: falling piece outside the well at (%d, %d)", ErrInvalidSnapshot, c.X, c.Y)
			}
			if c.Y >= 0 && grid[c.Y][c.X].Filled {
				return fmt.Errorf("%w: falling piece overlaps shard at (%d, %d)", ErrInvalidSnapshot, c.X, c.Y)
			}
		}
	}

	w.grid = grid
	w.falling = falling
	w.next = NextPiece{Shape: nextShape, Color: s.Next.Color}
	w.score = s.Score
	w.rows = s.Rows
	w.level = s.Level
	w.pieces = s.Pieces
	w.over = s.GameOver
	return nil
}
