package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rpsim/internal/rps"
)

// halfBlock draws the upper cell in the foreground and the lower cell in
// the background, so one terminal row shows two lattice rows.
const halfBlock = "▀"

// sample maps a screen coordinate onto the lattice by nearest neighbor.
func sample(pos, screen, lattice int) int {
	if screen >= lattice {
		return pos
	}
	return pos * lattice / screen
}

// RenderGrid draws g into at most cols×rows terminal cells using theme
// colors. Lattices larger than the area are downsampled; smaller ones are
// drawn one cell per character column.
func RenderGrid(g *rps.Grid, cols, rows int, theme Theme) string {
	w, h := g.Width(), g.Height()
	if cols > w {
		cols = w
	}
	pixRows := 2 * rows
	if pixRows > h {
		pixRows = h
	}
	if cols <= 0 || pixRows <= 0 {
		return ""
	}

	var b strings.Builder
	for py := 0; py < pixRows; py += 2 {
		top := sample(py, pixRows, h)
		bottom := -1
		if py+1 < pixRows {
			bottom = sample(py+1, pixRows, h)
		}

		// consecutive characters with the same colors share one style
		var run strings.Builder
		var runFg, runBg rps.Species
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(theme.Color(runFg))
			if bottom >= 0 {
				style = style.Background(theme.Color(runBg))
			}
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}

		for x := 0; x < cols; x++ {
			gx := sample(x, cols, w)
			fg := g.At(gx, top)
			bg := rps.Empty
			if bottom >= 0 {
				bg = g.At(gx, bottom)
			}
			if run.Len() > 0 && (fg != runFg || bg != runBg) {
				flush()
			}
			runFg, runBg = fg, bg
			run.WriteString(halfBlock)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

// FocusCanvas plots the cells of a single species as Braille dots.
func FocusCanvas(g *rps.Grid, s rps.Species, cols, rows int) *Canvas {
	c := NewCanvas(cols, rows)
	c.Plot(g, s)
	return c
}
