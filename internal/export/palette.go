package export

import (
	"fmt"
	"image/color"

	"github.com/san-kum/rpsim/internal/rps"
)

// Palette maps each cell state to its display color: empty black, rock
// red, paper green, scissors blue. Indexes match rps.Species values.
var Palette = color.Palette{
	rps.Empty:    color.RGBA{0, 0, 0, 255},
	rps.Rock:     color.RGBA{255, 0, 0, 255},
	rps.Paper:    color.RGBA{0, 255, 0, 255},
	rps.Scissors: color.RGBA{0, 0, 255, 255},
}

// Hex returns the palette color of s as #rrggbb.
func Hex(s rps.Species) string {
	c := Palette[s].(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
