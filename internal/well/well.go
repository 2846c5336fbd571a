// Package well implements the playing field of a falling-block game: the grid
// of locked cells, the falling piece, collision classification, locking, row
// collapse and scoring. It has no notion of time; the caller decides when a
// tick is a fall step and when it is a lateral or rotation step.
package well

import (
	"fmt"
	"math/rand"

	"tetrawell/internal/piece"
)

const (
	Width  = 10
	Height = 20

	// RowsPerLevel is the number of cleared rows between level increments.
	RowsPerLevel = 10
)

// Hit classifies the outcome of a hypothetical or attempted move.
type Hit uint8

const (
	HitNone Hit = iota
	HitLeftSide
	HitRightSide
	HitBottom
	HitShards
	GameOver
)

func (h Hit) String() string {
	switch h {
	case HitNone:
		return "None"
	case HitLeftSide:
		return "HitLeftSide"
	case HitRightSide:
		return "HitRightSide"
	case HitBottom:
		return "HitBottom"
	case HitShards:
		return "HitShards"
	case GameOver:
		return "GameOver"
	}
	return fmt.Sprintf("Hit(%d)", uint8(h))
}

// Side reports whether h is a left or right wall hit.
func (h Hit) Side() bool { return h == HitLeftSide || h == HitRightSide }

// Landed reports whether h is a floor or stack hit.
func (h Hit) Landed() bool { return h == HitBottom || h == HitShards }

// State is the coarse state of the well.
type State uint8

const (
	StateEmpty State = iota // no falling piece; the next Advance spawns one
	StateFalling
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateFalling:
		return "Falling"
	case StateGameOver:
		return "GameOver"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Cell is one grid slot. Filled is false for empty cells.
type Cell struct {
	Color  piece.Color
	Filled bool
}

// FallingPiece is the piece in play. X, Y is the top-left of its bounding box.
type FallingPiece struct {
	Shape piece.Shape
	X, Y  int
	Rot   int
	Color piece.Color
}

// Cells returns the grid coordinates the piece occupies.
func (p FallingPiece) Cells() []piece.Point {
	return p.Shape.CellCoords(p.Rot, p.X, p.Y)
}

// NextPiece is the pre-generated piece shown in the preview panel.
type NextPiece struct {
	Shape piece.Shape
	Color piece.Color
}

// Result is reported by Advance. Rows is the number of rows cleared on a
// locking tick and zero otherwise.
type Result struct {
	Hit  Hit
	Rows int
}

// Options tune scoring and the starting level.
type Options struct {
	// WeightedValues scores each locked piece by its shape value instead of 1.
	WeightedValues bool
	// StartLevel is the level after New and Reset. Values below 1 mean 1.
	StartLevel int
}

// Well is the playing field. It is not safe for concurrent use.
type Well struct {
	grid    [Height][Width]Cell
	falling *FallingPiece
	next    NextPiece
	over    bool

	score  int
	rows   int
	level  int
	pieces int

	opts Options
	rng  *rand.Rand
}

// New returns an empty well with a next piece already drawn from rng.
func New(rng *rand.Rand, opts Options) *Well {
	w := &Well{rng: rng, opts: opts}
	w.Reset()
	return w
}

// Reset reinitializes every field: empty grid, zeroed counters, the start
// level and a fresh next piece.
func (w *Well) Reset() {
	w.grid = [Height][Width]Cell{}
	w.falling = nil
	w.over = false
	w.score = 0
	w.rows = 0
	w.pieces = 0
	w.level = max(1, w.opts.StartLevel)
	w.next = w.drawNext()
}

func (w *Well) drawNext() NextPiece {
	return NextPiece{Shape: piece.Random(w.rng), Color: piece.RandomColor(w.rng)}
}

func (w *Well) Score() int  { return w.score }
func (w *Well) Rows() int   { return w.rows }
func (w *Well) Level() int  { return w.level }
func (w *Well) Pieces() int { return w.pieces }

// SetLevel overrides the level. It is the only way to lower it.
func (w *Well) SetLevel(level int) {
	w.level = max(1, level)
}

// State reports whether a piece is falling, the well waits for a spawn, or
// the game is over.
func (w *Well) State() State {
	switch {
	case w.over:
		return StateGameOver
	case w.falling != nil:
		return StateFalling
	}
	return StateEmpty
}

// Falling returns a copy of the falling piece.
func (w *Well) Falling() (FallingPiece, bool) {
	if w.falling == nil {
		return FallingPiece{}, false
	}
	return *w.falling, true
}

// Next returns the piece that the next spawn will promote.
func (w *Well) Next() NextPiece { return w.next }

// Shard returns the locked cell at (x, y). Out-of-range coordinates report an
// empty cell.
func (w *Well) Shard(x, y int) (piece.Color, bool) {
	if !inside(x, y) {
		return piece.Color{}, false
	}
	c := w.grid[y][x]
	return c.Color, c.Filled
}

func inside(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// CheckCollision classifies the move of the falling piece by (dx, dy) cells
// and drot quarter turns without changing anything. Each delta must be in
// [-1, 1]; larger steps are a caller bug and panic. With no falling piece the
// result is HitNone.
func (w *Well) CheckCollision(dx, dy, drot int) Hit {
	if abs(dx) > 1 || abs(dy) > 1 || abs(drot) > 1 {
		panic(fmt.Sprintf("well: CheckCollision deltas must be in [-1, 1], got (%d, %d, %d)", dx, dy, drot))
	}
	if w.falling == nil {
		return HitNone
	}
	p := w.falling
	cells := p.Shape.CellCoords(p.Rot+drot, p.X+dx, p.Y+dy)

	for _, c := range cells {
		switch {
		case c.X < 0:
			return HitLeftSide
		case c.X >= Width:
			return HitRightSide
		case c.Y >= Height:
			return HitBottom
		}
	}
	for _, c := range cells {
		if c.Y >= 0 && w.grid[c.Y][c.X].Filled {
			return HitShards
		}
	}
	return HitNone
}

// Advance is the per-tick driver. With no falling piece it spawns the next
// one and reports HitNone, or GameOver if the spawn position is already
// blocked. Otherwise it tries to move the piece: legal moves are committed,
// side hits are rejected, and a floor or stack hit locks the piece only when
// dy is non-zero. A lateral or rotation move that would land is rejected like
// a side hit. Once the game is over every call reports GameOver.
func (w *Well) Advance(dx, dy, drot int) Result {
	if w.over {
		return Result{Hit: GameOver}
	}
	if w.falling == nil {
		return Result{Hit: w.spawn()}
	}

	hit := w.CheckCollision(dx, dy, drot)
	switch hit {
	case HitNone:
		w.falling.X += dx
		w.falling.Y += dy
		w.falling.Rot = wrapRot(w.falling.Rot + drot)
		return Result{Hit: HitNone}
	case HitLeftSide, HitRightSide:
		return Result{Hit: hit}
	case HitBottom, HitShards:
		if dy == 0 {
			return Result{Hit: hit}
		}
		value := w.lockPiece()
		rows := w.collapseFullRows()
		w.award(value, rows)
		return Result{Hit: hit, Rows: rows}
	}
	panic(fmt.Sprintf("well: unexpected collision result %v", hit))
}

// spawn promotes the next piece to the falling slot at its spawn position.
func (w *Well) spawn() Hit {
	size := w.next.Shape.BBoxSize()
	w.falling = &FallingPiece{
		Shape: w.next.Shape,
		Color: w.next.Color,
		X:     Width/2 - size/2,
		Y:     -size + 1,
	}
	w.next = w.drawNext()

	if w.CheckCollision(0, 0, 0) != HitNone {
		// The blocked piece is discarded so it never overlaps the shards.
		w.falling = nil
		w.over = true
		return GameOver
	}
	return HitNone
}

// award applies the scoring rule for one lock event.
func (w *Well) award(value, rows int) {
	w.score += Points(value, rows, w.level)
	w.rows += rows
	w.level = max(w.level, w.rows/RowsPerLevel+1)
}

// Points is the score for locking a piece worth value that cleared rows rows
// at the given level.
func Points(value, rows, level int) int {
	return value * rows * Width * level
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func wrapRot(r int) int {
	r %= 4
	if r < 0 {
		r += 4
	}
	return r
}
