package life

import (
	"github.com/kovidgoyal/imaging"

	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/logx"
)

// DefaultThreshold is the luminance cutoff used by SeedImage when the
// caller has no opinion.
const DefaultThreshold = 0x80

// SeedImage loads an image file, scales it down to the cell grid and
// marks a cell live when the corresponding pixel's luminance is at or
// above the threshold.
func SeedImage(g *Grid, path string, threshold uint8, logProv logx.LoggerProvider) error {
	if g == nil {
		return errors.NilParam()
	}
	img, err := imaging.Open(path)
	if err != nil {
		return errors.Join(ErrFile, err)
	}
	gray := imaging.Grayscale(imaging.Resize(img, g.width, g.height, imaging.Lanczos))
	live := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if gray.NRGBAAt(x, y).R >= threshold {
				g.SetCell(x, y)
				live++
			}
		}
	}
	logx.Info(`image seeded`, logProv, `path`, path, `cells`, live)
	return nil
}
