// Package life implements a bit-packed toroidal Game of Life and
// rasterizes generations into 32 bpp pixel memory at an integer
// magnification. The engine knows nothing about displays; it draws into
// plain byte slices and is driven entirely by the caller.
package life

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/thierryreding/kmslife/internal/errors"
)

// Grid holds two equally sized cell planes, one bit per cell. The
// current plane is authoritative; Tick writes the successor generation
// into the scratch plane and Swap exchanges the two.
type Grid struct {
	width   int // cells per row
	height  int // rows
	pitch   int // bytes per plane row
	scale   int // pixels per cell edge
	current []byte
	next    []byte
}

// New sizes a grid for a widthPx x heightPx pixel area at the given
// magnification. Cell dimensions truncate, so leftover pixels on the
// right and bottom edges stay unused.
func New(widthPx, heightPx, scale int) (*Grid, error) {
	if scale < 1 {
		return nil, errors.Join(ErrScale, fmt.Errorf(`scale %d`, scale))
	}
	width, height := widthPx/scale, heightPx/scale
	if width < 1 || height < 1 {
		return nil, errors.Join(ErrScale,
			fmt.Errorf(`%dx%d px at scale %d leaves no cells`, widthPx, heightPx, scale))
	}
	pitch := (width + 7) / 8
	return &Grid{
		width:   width,
		height:  height,
		pitch:   pitch,
		scale:   scale,
		current: make([]byte, pitch*height),
		next:    make([]byte, pitch*height),
	}, nil
}

func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return g.height
}

func (g *Grid) Scale() int {
	if g == nil {
		return 0
	}
	return g.scale
}

// wrap maps v onto [0, max) with proper handling of negative values.
func wrap(v, max int) int {
	v %= max
	if v < 0 {
		v += max
	}
	return v
}

// SetCell marks (x, y) live in the current plane. Coordinates wrap on
// the torus, so seeding beyond an edge spills in from the opposite side.
func (g *Grid) SetCell(x, y int) {
	if g == nil {
		return
	}
	x, y = wrap(x, g.width), wrap(y, g.height)
	g.current[y*g.pitch+(x>>3)] |= 1 << (uint(x) & 7)
}

// Cell reports whether (x, y) is live, wrapping coordinates on the
// torus.
func (g *Grid) Cell(x, y int) bool {
	if g == nil {
		return false
	}
	x, y = wrap(x, g.width), wrap(y, g.height)
	return g.current[y*g.pitch+(x>>3)]&(1<<(uint(x)&7)) != 0
}

func (g *Grid) setNext(x, y int) {
	g.next[y*g.pitch+(x>>3)] |= 1 << (uint(x) & 7)
}

// Tick computes the next generation into the scratch plane with the
// standard B3/S23 rule: birth on exactly three live neighbors, survival
// on two or three. The current plane is left untouched; call Swap to
// promote the result.
func (g *Grid) Tick() {
	if g == nil {
		return
	}
	clear(g.next)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			n := g.liveNeighbors(x, y)
			if n == 3 || (n == 2 && g.Cell(x, y)) {
				g.setNext(x, y)
			}
		}
	}
}

func (g *Grid) liveNeighbors(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.Cell(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// Swap exchanges the current and scratch planes without copying.
func (g *Grid) Swap() {
	if g == nil {
		return
	}
	g.current, g.next = g.next, g.current
}

// Population counts the live cells of the current generation.
func (g *Grid) Population() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, b := range g.current {
		n += bits.OnesCount8(b)
	}
	return n
}

// Randomize seeds the current plane from a deterministic PRNG; each
// cell comes up live with probability one half.
func (g *Grid) Randomize(seed int64) {
	if g == nil {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if rng.Intn(2) == 1 {
				g.SetCell(x, y)
			}
		}
	}
}

// Rasterize draws the current plane into 32 bpp pixel memory, one
// scale x scale block per cell, white for live and black for dead.
// stride is the destination row length in bytes; it comes from the
// surface allocator and may exceed width*scale*4.
func (g *Grid) Rasterize(dst []byte, stride int) error {
	if g == nil {
		return errors.NilReceiver()
	}
	if dst == nil {
		return errors.NilParam()
	}
	rowBytes := g.width * g.scale * 4
	if stride < rowBytes {
		return errors.Errorf(`stride %d shorter than row of %d bytes`, stride, rowBytes)
	}
	if need := (g.height*g.scale-1)*stride + rowBytes; len(dst) < need {
		return errors.Errorf(`destination holds %d bytes, need %d`, len(dst), need)
	}
	for y := 0; y < g.height; y++ {
		base := y * g.scale * stride
		first := dst[base : base+rowBytes]
		for x := 0; x < g.width; x++ {
			var v byte
			if g.Cell(x, y) {
				v = 0xff
			}
			block := first[x*g.scale*4 : (x+1)*g.scale*4]
			for i := range block {
				block[i] = v
			}
		}
		for dy := 1; dy < g.scale; dy++ {
			off := base + dy*stride
			copy(dst[off:off+rowBytes], first)
		}
	}
	return nil
}
