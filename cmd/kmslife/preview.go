package main

import (
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/logx"
	"github.com/thierryreding/kmslife/life"
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewPattern, `pattern`, ``, `built-in pattern to seed`)
	previewCmd.Flags().StringVarP(&previewFile, `file`, `F`, ``, `RLE pattern file to seed`)
	previewCmd.Flags().Int64VarP(&previewSeed, `seed`, `s`, 0, `random seed`)
	previewCmd.Flags().IntVar(&previewWidth, `width`, 96, `grid width in cells`)
	previewCmd.Flags().IntVar(&previewHeight, `height`, 64, `grid height in cells`)
	previewCmd.Flags().IntVarP(&previewGens, `generations`, `n`, 100, `generations to advance`)
	previewCmd.Flags().IntVar(&previewCell, `cell-size`, 8, `pixels per cell`)
	previewCmd.Flags().StringVarP(&previewOut, `output`, `o`, `kmslife.png`, `output file`)
}

var previewCmd = &cobra.Command{
	Use:   `preview`,
	Short: `advance a grid off-screen and write it to a PNG`,
	Long: `preview runs the simulation without any display hardware and writes the
resulting generation to a PNG, which makes it usable on machines
without DRM access.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(previewFunc(cmd, args))
	},
}

var (
	previewPattern string
	previewFile    string
	previewSeed    int64
	previewWidth   int
	previewHeight  int
	previewGens    int
	previewCell    int
	previewOut     string
)

// previewCaption is the pixel height reserved under the grid for the
// label line.
const previewCaption = 20

func previewFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		if previewCell < 1 {
			return errors.Errorf(`invalid cell size %d`, previewCell)
		}
		if previewGens < 0 {
			return errors.Errorf(`invalid generation count %d`, previewGens)
		}
		logger, logClose, err := newLogger()
		if err != nil {
			return err
		}
		if logClose != nil {
			defer func() { _ = logClose() }()
		}
		logProv := logx.Prov(logger)

		g, err := life.New(previewWidth, previewHeight, 1)
		if err != nil {
			return err
		}

		source := previewSource()
		x, y := g.Width()/2, g.Height()/2
		switch {
		case previewFile != ``:
			if err := life.LoadRLE(g, previewFile, x, y, logProv); err != nil {
				return err
			}
		case previewPattern != ``:
			p, err := life.Lookup(previewPattern)
			if err != nil {
				return err
			}
			p.Apply(g, x, y)
		default:
			seed := previewSeed
			if !cmd.Flags().Changed(`seed`) {
				seed = time.Now().UnixNano()
			}
			logx.Debug(`random fill`, logProv, `seed`, seed)
			g.Randomize(seed)
		}

		for i := 0; i < previewGens; i++ {
			g.Tick()
			g.Swap()
		}

		label := fmt.Sprintf(`%s, generation %d, population %d`,
			source, previewGens, g.Population())
		img, err := renderPreview(g, previewCell, label)
		if err != nil {
			return err
		}
		if err := gg.SavePNG(previewOut, img); err != nil {
			return errors.New(err)
		}
		fmt.Println(previewOut)
		return nil
	}
}

func previewSource() string {
	switch {
	case previewFile != ``:
		return previewFile
	case previewPattern != ``:
		return previewPattern
	default:
		return `random`
	}
}

// renderPreview paints the grid onto a canvas, one filled square per
// live cell, with a caption line underneath.
func renderPreview(g *life.Grid, cell int, label string) (image.Image, error) {
	c := gg.NewContext(g.Width()*cell, g.Height()*cell+previewCaption)
	c.SetRGB(0, 0, 0)
	c.Clear()

	c.SetRGB(1, 1, 1)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Cell(x, y) {
				c.DrawRectangle(float64(x*cell), float64(y*cell), float64(cell), float64(cell))
			}
		}
	}
	c.Fill()

	goFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.New(err)
	}
	goFontFace := truetype.NewFace(goFont, &truetype.Options{Size: 13})
	defer goFontFace.Close()
	c.SetFontFace(goFontFace)
	c.SetRGB(0.6, 0.6, 0.6)
	c.DrawString(label, 4, float64(g.Height()*cell+previewCaption-6))

	return c.Image(), nil
}
