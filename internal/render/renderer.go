package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"tetrawell/internal/config"
	"tetrawell/internal/well"
)

// Screen layout, in terminal columns and rows.
const (
	panelWidth = 14 // left stats panel
	wellTop    = 1  // first interior row of the well
)

// ScoreLine is one row of the high score table.
type ScoreLine struct {
	Player string
	Score  int
	Rows   int
}

// Frame is everything drawn in one refresh.
type Frame struct {
	Well       *well.Well
	Paused     bool
	Player     string
	HighScores []ScoreLine
}

// Renderer draws a well and its side panels onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	theme  config.Theme
	style  styles
	ghost  bool
	cellW  int // columns per well cell
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen, theme config.Theme, ghost bool) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  theme,
		style:  newStyles(theme.WellColor, theme.Border, theme.PanelColor, theme.TextColor, theme.ValueColor),
		ghost:  ghost,
		cellW:  max(1, runewidth.StringWidth(theme.CellGlyph)),
	}
}

// wellLeft is the first interior column of the well.
func (r *Renderer) wellLeft() int { return panelWidth + 1 }

// wellRight is the border column to the right of the well.
func (r *Renderer) wellRight() int { return r.wellLeft() + well.Width*r.cellW }

// CellToScreen converts well coordinates to the screen position of the
// cell's first column. visible is false for coordinates outside the well.
func (r *Renderer) CellToScreen(x, y int) (sx, sy int, visible bool) {
	if x < 0 || x >= well.Width || y < 0 || y >= well.Height {
		return 0, 0, false
	}
	return r.wellLeft() + x*r.cellW, wellTop + y, true
}

// Draw renders a complete frame and shows it.
func (r *Renderer) Draw(f Frame) {
	r.screen.Clear()
	r.drawBorder()
	r.drawWell(f.Well)
	r.drawStats(f)
	r.drawNext(f.Well.Next())
	switch {
	case f.Well.State() == well.StateGameOver:
		r.drawBanner("GAME OVER", "r restart  q quit")
		r.drawHighScores(f.HighScores)
	case f.Paused:
		r.drawBanner("PAUSED", "p resume")
	}
	r.drawHelp()
	r.screen.Show()
}

func (r *Renderer) drawBorder() {
	left, right := r.wellLeft()-1, r.wellRight()
	bottom := wellTop + well.Height
	st := r.style.border
	for y := wellTop; y < bottom; y++ {
		r.screen.SetContent(left, y, '│', nil, st)
		r.screen.SetContent(right, y, '│', nil, st)
	}
	for x := left + 1; x < right; x++ {
		r.screen.SetContent(x, wellTop-1, '─', nil, st)
		r.screen.SetContent(x, bottom, '─', nil, st)
	}
	r.screen.SetContent(left, wellTop-1, '┌', nil, st)
	r.screen.SetContent(right, wellTop-1, '┐', nil, st)
	r.screen.SetContent(left, bottom, '└', nil, st)
	r.screen.SetContent(right, bottom, '┘', nil, st)
}

// drawWell fills the interior, then the ghost, then the falling piece and
// the shards.
func (r *Renderer) drawWell(w *well.Well) {
	for y := 0; y < well.Height; y++ {
		for x := r.wellLeft(); x < r.wellRight(); x++ {
			r.screen.SetContent(x, wellTop+y, ' ', nil, r.style.well)
		}
	}

	if r.ghost {
		if p, ok := w.Falling(); ok {
			if gy, ok := w.GhostY(); ok && gy != p.Y {
				for _, c := range p.Shape.CellCoords(p.Rot, p.X, gy) {
					if sx, sy, ok := r.CellToScreen(c.X, c.Y); ok {
						r.drawText(sx, sy, r.theme.GhostGlyph, r.style.pieceStyle(p.Color))
					}
				}
			}
		}
	}

	for _, c := range w.Cells() {
		sx, sy, _ := r.CellToScreen(c.X, c.Y)
		r.drawText(sx, sy, r.theme.CellGlyph, r.style.pieceStyle(c.Color))
	}
}
