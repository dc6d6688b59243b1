package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
)

// GridToSVG renders g with one square of side scale per cell. Horizontal
// runs of one species are merged into a single rect.
func GridToSVG(g *rps.Grid, scale float64) string {
	if g == nil || scale <= 0 {
		return ""
	}

	width := float64(g.Width()) * scale
	height := float64(g.Height()) * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, Hex(rps.Empty)))

	for _, s := range rps.Occupants {
		sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", Hex(s)))
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); {
				if g.At(x, y) != s {
					x++
					continue
				}
				run := 1
				for x+run < g.Width() && g.At(x+run, y) == s {
					run++
				}
				sb.WriteString(fmt.Sprintf(`<rect x="%g" y="%g" width="%g" height="%g"/>
`, float64(x)*scale, float64(y)*scale, float64(run)*scale, scale))
				x += run
			}
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// HistoryToSVG draws the population of each species against the step
// number as three lines sharing one axis.
func HistoryToSVG(history []sim.Record, width, height int) string {
	if len(history) < 2 {
		return ""
	}

	minX, maxX := float64(history[0].Step), float64(history[len(history)-1].Step)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range rps.Occupants {
		for _, v := range sim.Series(history, s) {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range rps.Occupants {
		series := sim.Series(history, s)
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" data-species="%s" d="M`, Hex(s), s))
		for i, v := range series {
			x := (float64(history[i].Step) - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
