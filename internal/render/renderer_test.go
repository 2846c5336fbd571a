package render

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"tetrawell/internal/config"
	"tetrawell/internal/piece"
	"tetrawell/internal/well"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	s.SetSize(80, 30)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Fini)
	return s
}

func newWell(t *testing.T, snap well.Snapshot) *well.Well {
	t.Helper()
	w := well.New(rand.New(rand.NewSource(3)), well.Options{StartLevel: 1})
	if snap.Level == 0 {
		snap.Level = 1
	}
	if snap.Next.Shape == "" {
		snap.Next.Shape = "O"
	}
	if err := w.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return w
}

// screenText returns the runes of row y as a string.
func screenText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func screenContains(s tcell.Screen, text string) bool {
	_, h := s.Size()
	for y := 0; y < h; y++ {
		if strings.Contains(screenText(s, y), text) {
			return true
		}
	}
	return false
}

var red = piece.Color{R: 220, G: 40, B: 40}

// ─── layout ───────────────────────────────────────────────────────────────────

func TestCellToScreen(t *testing.T) {
	r := NewRenderer(newScreen(t), config.Default().Theme, true)

	sx, sy, ok := r.CellToScreen(0, 0)
	if !ok || sx != panelWidth+1 || sy != wellTop {
		t.Errorf("CellToScreen(0, 0) = (%d, %d, %v)", sx, sy, ok)
	}
	sx, sy, ok = r.CellToScreen(3, 5)
	if !ok || sx != panelWidth+1+3*2 || sy != wellTop+5 {
		t.Errorf("CellToScreen(3, 5) = (%d, %d, %v); want two columns per cell", sx, sy, ok)
	}
	for _, c := range [][2]int{{-1, 0}, {well.Width, 0}, {0, -1}, {0, well.Height}} {
		if _, _, ok := r.CellToScreen(c[0], c[1]); ok {
			t.Errorf("CellToScreen(%d, %d) should be off the well", c[0], c[1])
		}
	}
}

func TestSingleWidthGlyphNarrowsWell(t *testing.T) {
	theme := config.Default().Theme
	theme.CellGlyph = "#"
	r := NewRenderer(newScreen(t), theme, false)
	if sx, _, _ := r.CellToScreen(1, 0); sx != panelWidth+2 {
		t.Errorf("cell 1 at column %d, want %d", sx, panelWidth+2)
	}
}

// ─── drawing ──────────────────────────────────────────────────────────────────

func TestDrawShardsAndStats(t *testing.T) {
	s := newScreen(t)
	r := NewRenderer(s, config.Default().Theme, false)
	w := newWell(t, well.Snapshot{
		Shards: []well.ShardRecord{{X: 2, Y: well.Height - 1, Color: red}},
		Score:  1234,
		Rows:   7,
		Level:  3,
	})
	r.Draw(Frame{Well: w, Player: "ada"})

	sx, sy, _ := r.CellToScreen(2, well.Height-1)
	ch, _, style, _ := s.GetContent(sx, sy)
	if ch != '█' {
		t.Errorf("shard rune = %q, want '█'", ch)
	}
	if fg, _, _ := style.Decompose(); fg != toTcell(red) {
		t.Errorf("shard color = %v, want %v", fg, toTcell(red))
	}
	if ch, _, _, _ := s.GetContent(sx+2, sy); ch != ' ' {
		t.Errorf("empty cell rune = %q, want space", ch)
	}

	for _, want := range []string{"Score:", "1234", "Rows:", "Level:", "Player:", "ada", "Next:"} {
		if !screenContains(s, want) {
			t.Errorf("screen is missing %q", want)
		}
	}
}

func TestDrawBorder(t *testing.T) {
	s := newScreen(t)
	r := NewRenderer(s, config.Default().Theme, false)
	r.Draw(Frame{Well: newWell(t, well.Snapshot{})})

	left := panelWidth
	right := panelWidth + 1 + well.Width*2
	corners := []struct {
		x, y int
		want rune
	}{
		{left, 0, '┌'},
		{right, 0, '┐'},
		{left, wellTop + well.Height, '└'},
		{right, wellTop + well.Height, '┘'},
	}
	for _, c := range corners {
		if ch, _, _, _ := s.GetContent(c.x, c.y); ch != c.want {
			t.Errorf("corner at (%d, %d) = %q, want %q", c.x, c.y, ch, c.want)
		}
	}
}

func TestDrawGhost(t *testing.T) {
	snap := well.Snapshot{Falling: &well.PieceRecord{Shape: "O", X: 4, Y: 2, Color: red}}

	s := newScreen(t)
	r := NewRenderer(s, config.Default().Theme, true)
	r.Draw(Frame{Well: newWell(t, snap)})

	// The O occupies columns 5-6 and lands on the two bottom rows.
	sx, sy, _ := r.CellToScreen(5, well.Height-1)
	if ch, _, _, _ := s.GetContent(sx, sy); ch != '░' {
		t.Errorf("ghost rune = %q, want '░'", ch)
	}
	sx, sy, _ = r.CellToScreen(5, 3)
	if ch, _, _, _ := s.GetContent(sx, sy); ch != '█' {
		t.Errorf("falling rune = %q, want '█'", ch)
	}

	s2 := newScreen(t)
	NewRenderer(s2, config.Default().Theme, false).Draw(Frame{Well: newWell(t, snap)})
	if screenContains(s2, "░") {
		t.Error("ghost drawn while disabled")
	}
}

func TestDrawNextPreview(t *testing.T) {
	s := newScreen(t)
	r := NewRenderer(s, config.Default().Theme, false)
	r.Draw(Frame{Well: newWell(t, well.Snapshot{Next: well.PieceRecord{Shape: "O", Color: red}})})

	// O's cell map fills columns 1-2 of rows 1-2.
	x0 := r.nextLeft()
	ch, _, style, _ := s.GetContent(x0+2, wellTop+3)
	if ch != '█' {
		t.Fatalf("preview rune = %q, want '█'", ch)
	}
	if fg, _, _ := style.Decompose(); fg != toTcell(red) {
		t.Errorf("preview color = %v, want %v", fg, toTcell(red))
	}
	if ch, _, _, _ := s.GetContent(x0, wellTop+2); ch == '█' {
		t.Error("preview drew an empty cell")
	}
}

func TestDrawBanners(t *testing.T) {
	s := newScreen(t)
	r := NewRenderer(s, config.Default().Theme, false)

	r.Draw(Frame{Well: newWell(t, well.Snapshot{}), Paused: true})
	if !screenContains(s, "PAUSED") {
		t.Error("paused banner missing")
	}

	over := newWell(t, well.Snapshot{GameOver: true})
	r.Draw(Frame{Well: over, HighScores: []ScoreLine{{Player: "ada", Score: 900}, {Score: 50}}})
	if screenContains(s, "PAUSED") {
		t.Error("stale paused banner")
	}
	for _, want := range []string{"GAME OVER", "High scores", "ada", "900"} {
		if !screenContains(s, want) {
			t.Errorf("game over screen is missing %q", want)
		}
	}
}
