package life

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeSplitPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{A: 0xff}
			if x < w/2 {
				c = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			}
			img.SetRGBA(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), `split.png`)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeedImage(t *testing.T) {
	path := writeSplitPNG(t, 16, 16)

	g := mustNew(t, 16, 16, 1)
	if err := SeedImage(g, path, DefaultThreshold, nil); err != nil {
		t.Fatal(err)
	}

	// Stay a few columns away from the black/white boundary so the
	// resampling filter cannot flip the expectation.
	for y := 0; y < 16; y++ {
		for x := 0; x < 5; x++ {
			if !g.Cell(x, y) {
				t.Fatalf(`bright cell (%d,%d) dead`, x, y)
			}
		}
		for x := 11; x < 16; x++ {
			if g.Cell(x, y) {
				t.Fatalf(`dark cell (%d,%d) alive`, x, y)
			}
		}
	}
}

func TestSeedImageThreshold(t *testing.T) {
	path := writeSplitPNG(t, 16, 16)
	g := mustNew(t, 16, 16, 1)

	// A zero threshold seeds every cell, even the black half.
	if err := SeedImage(g, path, 0, nil); err != nil {
		t.Fatal(err)
	}
	if g.Population() != 16*16 {
		t.Fatalf(`population %d, want %d`, g.Population(), 16*16)
	}
}

func TestSeedImageScalesToGrid(t *testing.T) {
	path := writeSplitPNG(t, 64, 64)

	g := mustNew(t, 16, 16, 2)
	if err := SeedImage(g, path, DefaultThreshold, nil); err != nil {
		t.Fatal(err)
	}
	if !g.Cell(0, 0) {
		t.Fatal(`bright cell (0,0) dead after downscale`)
	}
	if g.Cell(7, 7) {
		t.Fatal(`dark cell (7,7) alive after downscale`)
	}
}

func TestSeedImageMissingFile(t *testing.T) {
	g := mustNew(t, 8, 8, 1)
	err := SeedImage(g, filepath.Join(t.TempDir(), `nope.png`), DefaultThreshold, nil)
	if !errors.Is(err, ErrFile) {
		t.Fatalf(`got %v, want ErrFile`, err)
	}
}
