package render

import (
	"github.com/gdamore/tcell/v2"

	"tetrawell/internal/piece"
)

// toTcell converts a piece color to a true-color tcell color. Terminals
// without RGB support get the nearest palette entry from tcell.
func toTcell(c piece.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// styles are the resolved tcell styles for a theme.
type styles struct {
	well   tcell.Style // empty well interior
	border tcell.Style
	panel  tcell.Style
	text   tcell.Style
	value  tcell.Style
	banner tcell.Style
}

func newStyles(bg, border, panel, text, value piece.Color) styles {
	panelBG := tcell.StyleDefault.Background(toTcell(panel))
	return styles{
		well:   tcell.StyleDefault.Background(toTcell(bg)),
		border: tcell.StyleDefault.Foreground(toTcell(border)).Background(toTcell(panel)),
		panel:  panelBG,
		text:   panelBG.Foreground(toTcell(text)),
		value:  panelBG.Foreground(toTcell(value)).Bold(true),
		banner: tcell.StyleDefault.Foreground(toTcell(bg)).Background(toTcell(text)).Bold(true),
	}
}

// pieceStyle draws a cell of color c on the well background.
func (s styles) pieceStyle(c piece.Color) tcell.Style {
	return s.well.Foreground(toTcell(c))
}
