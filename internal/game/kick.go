package game

import "tetrawell/internal/well"

// kickOffsets are the lateral shifts tried, in order, when a rotation is
// blocked in place.
var kickOffsets = [...]int{1, -1, 2, -2}

// RotateWithKick rotates the falling piece by drot, nudging it sideways by up
// to two cells when the rotation is blocked where it stands. Every shift is
// built from single-cell moves so the well only ever sees deltas of one. When
// no position works the piece is left where it started and the in-place hit
// is returned.
func RotateWithKick(w *well.Well, drot int) well.Hit {
	if _, ok := w.Falling(); !ok {
		return w.Advance(0, 0, drot).Hit
	}
	hit := w.CheckCollision(0, 0, drot)
	if hit == well.HitNone {
		return w.Advance(0, 0, drot).Hit
	}
	for _, off := range kickOffsets {
		if tryKick(w, off, drot) {
			return well.HitNone
		}
	}
	return hit
}

// tryKick shifts the piece toward off and rotates it on the last step. On
// failure the shift is undone.
func tryKick(w *well.Well, off, drot int) bool {
	step := 1
	if off < 0 {
		step = -1
	}
	moved := 0
	for moved+step != off {
		if w.CheckCollision(step, 0, 0) != well.HitNone {
			break
		}
		w.Advance(step, 0, 0)
		moved += step
	}
	if moved+step == off && w.CheckCollision(step, 0, drot) == well.HitNone {
		w.Advance(step, 0, drot)
		return true
	}
	for ; moved != 0; moved -= step {
		w.Advance(-step, 0, 0)
	}
	return false
}
