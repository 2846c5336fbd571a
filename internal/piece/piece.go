// Package piece describes the seven tetromino shapes and their rotation tables.
package piece

import (
	"fmt"
	"math/rand"
)

// Shape identifies one of the seven tetrominoes.
type Shape uint8

const (
	I Shape = iota
	J
	L
	O
	S
	T
	Z
)

// Shapes lists every shape in prototype order.
var Shapes = [...]Shape{I, J, L, O, S, T, Z}

// Point is an integer cell coordinate.
type Point struct {
	X, Y int
}

// CellMap is the occupancy grid of a shape at one rotation, indexed [y][x].
type CellMap [][]bool

// rotation is one slot of a shape table: either its own drawing or an alias
// pointing at another slot of the same shape.
type rotation struct {
	rows  []string
	alias int
}

func drawn(rows ...string) rotation { return rotation{rows: rows} }
func aliasOf(slot int) rotation     { return rotation{alias: slot} }

type shapeDef struct {
	name  string
	value int
	slots [4]rotation
}

var defs = [...]shapeDef{
	I: {"I", 4, [4]rotation{
		drawn(
			"    ",
			"XXXX",
			"    ",
			"    ",
		),
		drawn(
			"  X ",
			"  X ",
			"  X ",
			"  X ",
		),
		aliasOf(0),
		aliasOf(1),
	}},
	J: {"J", 5, [4]rotation{
		drawn(
			"   ",
			"XXX",
			"  X",
		),
		drawn(
			" X ",
			" X ",
			"XX ",
		),
		drawn(
			"X  ",
			"XXX",
			"   ",
		),
		drawn(
			" XX",
			" X ",
			" X ",
		),
	}},
	L: {"L", 5, [4]rotation{
		drawn(
			"   ",
			"XXX",
			"X  ",
		),
		drawn(
			"XX ",
			" X ",
			" X ",
		),
		drawn(
			"  X",
			"XXX",
			"   ",
		),
		drawn(
			" X ",
			" X ",
			" XX",
		),
	}},
	O: {"O", 3, [4]rotation{
		drawn(
			"    ",
			" XX ",
			" XX ",
			"    ",
		),
		aliasOf(0),
		aliasOf(0),
		aliasOf(0),
	}},
	S: {"S", 6, [4]rotation{
		drawn(
			"   ",
			" XX",
			"XX ",
		),
		drawn(
			" X ",
			" XX",
			"  X",
		),
		aliasOf(0),
		aliasOf(1),
	}},
	T: {"T", 4, [4]rotation{
		drawn(
			"   ",
			"XXX",
			" X ",
		),
		drawn(
			" X ",
			"XX ",
			" X ",
		),
		drawn(
			" X ",
			"XXX",
			"   ",
		),
		drawn(
			" X ",
			" XX",
			" X ",
		),
	}},
	Z: {"Z", 6, [4]rotation{
		drawn(
			"   ",
			"XX ",
			" XX",
		),
		drawn(
			"  X",
			" XX",
			" X ",
		),
		aliasOf(0),
		aliasOf(1),
	}},
}

// tables holds the four concrete cell maps of every shape, aliases resolved.
var tables [len(defs)][4]CellMap

func init() {
	for s, def := range defs {
		for r, slot := range def.slots {
			if slot.rows == nil {
				target := def.slots[slot.alias]
				if target.rows == nil {
					panic(fmt.Sprintf("piece: %s rotation %d aliases another alias", def.name, r))
				}
				slot = target
			}
			tables[s][r] = parseRows(slot.rows)
		}
	}
}

func parseRows(rows []string) CellMap {
	m := make(CellMap, len(rows))
	for y, row := range rows {
		if len(row) != len(rows) {
			panic(fmt.Sprintf("piece: cell map row %q is not %d wide", row, len(rows)))
		}
		m[y] = make([]bool, len(row))
		for x, ch := range row {
			m[y][x] = ch != ' '
		}
	}
	return m
}

// String returns the single-letter name of the shape.
func (s Shape) String() string {
	if int(s) < len(defs) {
		return defs[s].name
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Valid reports whether s is one of the seven shapes.
func (s Shape) Valid() bool { return int(s) < len(defs) }

// ParseShape converts a single-letter name back to a Shape.
func ParseShape(name string) (Shape, error) {
	for _, s := range Shapes {
		if defs[s].name == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

// BBoxSize is the side of the square bounding box of every rotation.
func (s Shape) BBoxSize() int { return len(tables[s][0]) }

// Value is the scoring weight of the shape.
func (s Shape) Value() int { return defs[s].value }

// CellMap returns the occupancy grid for rotation rot (taken modulo 4).
// The returned map is shared and must not be modified.
func (s Shape) CellMap(rot int) CellMap {
	return tables[s][wrap(rot)]
}

// CellCoords returns the coordinates of every occupied cell of s at rotation
// rot, translated by (dx, dy).
func (s Shape) CellCoords(rot, dx, dy int) []Point {
	m := s.CellMap(rot)
	out := make([]Point, 0, 4)
	for y, row := range m {
		for x, set := range row {
			if set {
				out = append(out, Point{X: x + dx, Y: y + dy})
			}
		}
	}
	return out
}

// Random picks one of the seven shapes uniformly.
func Random(rng *rand.Rand) Shape {
	return Shapes[rng.Intn(len(Shapes))]
}

func wrap(rot int) int {
	rot %= 4
	if rot < 0 {
		rot += 4
	}
	return rot
}
