package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/rpsim/internal/rps"
)

const (
	snapshotMagic   = "RPSG"
	snapshotVersion = 1

	// MaxSnapshotCells bounds width*height read from a snapshot header.
	MaxSnapshotCells = 1 << 28
)

var (
	ErrBadSnapshot       = errors.New("storage: malformed snapshot file")
	ErrSnapshotDimension = errors.New("storage: snapshot dimensions do not match")
)

// Snapshot is one saved lattice.
type Snapshot struct {
	Step int
	Grid *rps.Grid
}

type snapshotHeader struct {
	Magic   [4]byte
	Version uint32
	Width   uint32
	Height  uint32
}

// SnapshotEncoder writes the binary snapshot stream: a header carrying the
// magic, version and dimensions, then one record per snapshot made of a
// little-endian uint32 step followed by width*height state bytes.
type SnapshotEncoder struct {
	w      io.Writer
	width  int
	height int
	buf    []byte
}

func NewSnapshotEncoder(w io.Writer, width, height int) (*SnapshotEncoder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, rps.ErrInvalidDimensions)
	}
	h := snapshotHeader{Version: snapshotVersion, Width: uint32(width), Height: uint32(height)}
	copy(h.Magic[:], snapshotMagic)
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("write snapshot header: %w", err)
	}
	return &SnapshotEncoder{
		w:      w,
		width:  width,
		height: height,
		buf:    make([]byte, 4+width*height),
	}, nil
}

func (e *SnapshotEncoder) Encode(step int, g *rps.Grid) error {
	if g.Width() != e.width || g.Height() != e.height {
		return fmt.Errorf("grid %dx%d in %dx%d stream: %w", g.Width(), g.Height(), e.width, e.height, ErrSnapshotDimension)
	}
	if step < 0 {
		return fmt.Errorf("negative snapshot step %d", step)
	}
	binary.LittleEndian.PutUint32(e.buf[:4], uint32(step))
	for i, s := range g.Cells() {
		e.buf[4+i] = byte(s)
	}
	_, err := e.w.Write(e.buf)
	return err
}

type SnapshotDecoder struct {
	r      io.Reader
	width  int
	height int
	buf    []byte
}

func NewSnapshotDecoder(r io.Reader) (*SnapshotDecoder, error) {
	var h snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w: %v", ErrBadSnapshot, err)
	}
	if string(h.Magic[:]) != snapshotMagic {
		return nil, fmt.Errorf("magic %q: %w", h.Magic[:], ErrBadSnapshot)
	}
	if h.Version != snapshotVersion {
		return nil, fmt.Errorf("version %d: %w", h.Version, ErrBadSnapshot)
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("%dx%d: %w", h.Width, h.Height, ErrBadSnapshot)
	}
	if uint64(h.Width)*uint64(h.Height) > MaxSnapshotCells {
		return nil, fmt.Errorf("%dx%d exceeds %d cells: %w", h.Width, h.Height, MaxSnapshotCells, ErrBadSnapshot)
	}
	w, ht := int(h.Width), int(h.Height)
	return &SnapshotDecoder{r: r, width: w, height: ht, buf: make([]byte, 4+w*ht)}, nil
}

func (d *SnapshotDecoder) Width() int  { return d.width }
func (d *SnapshotDecoder) Height() int { return d.height }

// Next returns the next snapshot, or io.EOF after the last complete one.
func (d *SnapshotDecoder) Next() (Snapshot, error) {
	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		if errors.Is(err, io.EOF) {
			return Snapshot{}, io.EOF
		}
		return Snapshot{}, fmt.Errorf("truncated snapshot record: %w", ErrBadSnapshot)
	}
	g, err := rps.GridFromBytes(d.width, d.height, d.buf[4:])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	return Snapshot{Step: int(binary.LittleEndian.Uint32(d.buf[:4])), Grid: g}, nil
}

// ReadSnapshots decodes every snapshot in r.
func ReadSnapshots(r io.Reader) ([]Snapshot, error) {
	dec, err := NewSnapshotDecoder(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	var out []Snapshot
	for {
		s, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}
