package export

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"os"

	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/storage"
)

var ErrNoFrames = errors.New("export: no frames to encode")

// GridImage rasterizes g with scale×scale pixels per cell.
func GridImage(g *rps.Grid, scale int) *image.Paletted {
	if scale < 1 {
		scale = 1
	}
	img := image.NewPaletted(image.Rect(0, 0, g.Width()*scale, g.Height()*scale), Palette)
	cells := g.Cells()
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			idx := uint8(cells[g.Index(x, y)])
			if idx == 0 {
				continue
			}
			for py := 0; py < scale; py++ {
				off := img.PixOffset(x*scale, y*scale+py)
				for px := 0; px < scale; px++ {
					img.Pix[off+px] = idx
				}
			}
		}
	}
	return img
}

// GridsToGIF encodes the grids as an endlessly looping animation. Delay is
// in hundredths of a second per frame.
func GridsToGIF(w io.Writer, grids []*rps.Grid, scale, delay int) error {
	if len(grids) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, g := range grids {
		anim.Image = append(anim.Image, GridImage(g, scale))
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

func SnapshotsToGIF(w io.Writer, snaps []storage.Snapshot, scale, delay int) error {
	grids := make([]*rps.Grid, len(snaps))
	for i, s := range snaps {
		grids[i] = s.Grid
	}
	return GridsToGIF(w, grids, scale, delay)
}

func WriteGIF(path string, snaps []storage.Snapshot, scale, delay int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := SnapshotsToGIF(f, snaps, scale, delay); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func WritePNG(path string, g *rps.Grid, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, GridImage(g, scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
