package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"tetrawell/internal/well"
)

type statLine struct {
	label string
	value string
}

// drawStats renders the left panel: score, rows, level and player name.
func (r *Renderer) drawStats(f Frame) {
	r.fillPanel(0, panelWidth-1)
	w := f.Well
	lines := []statLine{
		{"Score:", fmt.Sprint(w.Score())},
		{"Rows:", fmt.Sprint(w.Rows())},
		{"Level:", fmt.Sprint(w.Level())},
		{"Pieces:", fmt.Sprint(w.Pieces())},
	}
	if f.Player != "" {
		lines = append(lines, statLine{"Player:", f.Player})
	}
	y := wellTop
	for _, l := range lines {
		r.drawText(1, y, l.label, r.style.text)
		r.drawText(2, y+1, runewidth.Truncate(l.value, panelWidth-3, "…"), r.style.value)
		y += 3
	}
}

// nextLeft is the first column of the right panel.
func (r *Renderer) nextLeft() int { return r.wellRight() + 2 }

// drawNext renders the preview of the piece that spawns next.
func (r *Renderer) drawNext(n well.NextPiece) {
	x0 := r.nextLeft()
	r.drawText(x0, wellTop, "Next:", r.style.text)
	for y, row := range n.Shape.CellMap(0) {
		for x, filled := range row {
			if filled {
				r.drawText(x0+x*r.cellW, wellTop+2+y, r.theme.CellGlyph,
					tcell.StyleDefault.Foreground(toTcell(n.Color)))
			}
		}
	}
}

// drawBanner centers title and hint over the middle of the well.
func (r *Renderer) drawBanner(title, hint string) {
	mid := wellTop + well.Height/2 - 1
	r.drawCentered(mid, " "+title+" ", r.style.banner)
	r.drawCentered(mid+1, " "+hint+" ", r.style.banner)
}

func (r *Renderer) drawCentered(y int, text string, style tcell.Style) {
	span := r.wellRight() - r.wellLeft()
	x := r.wellLeft() + (span-runewidth.StringWidth(text))/2
	r.drawText(max(r.wellLeft(), x), y, text, style)
}

// drawHighScores lists the best runs in the right panel, below the preview.
func (r *Renderer) drawHighScores(scores []ScoreLine) {
	if len(scores) == 0 {
		return
	}
	x0 := r.nextLeft()
	y := wellTop + 8
	r.drawText(x0, y, "High scores", r.style.text)
	for i, s := range scores {
		name := s.Player
		if name == "" {
			name = "-"
		}
		line := fmt.Sprintf("%d. %-10s %7d", i+1, runewidth.Truncate(name, 10, "…"), s.Score)
		r.drawText(x0, y+2+i, line, tcell.StyleDefault)
	}
}

func (r *Renderer) drawHelp() {
	r.drawText(0, wellTop+well.Height+1,
		"←→ move  ↑↓ rotate  s drop  space fall  p pause  q quit", tcell.StyleDefault)
}

// fillPanel paints the panel background across columns [x0, x1].
func (r *Renderer) fillPanel(x0, x1 int) {
	for y := wellTop - 1; y <= wellTop+well.Height; y++ {
		for x := x0; x <= x1; x++ {
			r.screen.SetContent(x, y, ' ', nil, r.style.panel)
		}
	}
}

// drawText draws text starting at (x, y), advancing by the display width of
// each rune.
func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += max(1, runewidth.RuneWidth(ch))
	}
}
