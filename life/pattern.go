package life

import (
	"image"
	"sort"

	"github.com/iancoleman/strcase"

	"github.com/thierryreding/kmslife/internal/errors"
)

// Pattern is a list of live-cell offsets applied relative to an anchor.
type Pattern struct {
	Name    string
	Desc    string
	Offsets []image.Point
}

// Apply seeds the pattern with its (0, 0) offset at the anchor. Offsets
// reaching past an edge wrap on the torus.
func (p *Pattern) Apply(g *Grid, x, y int) {
	if p == nil || g == nil {
		return
	}
	for _, off := range p.Offsets {
		g.SetCell(x+off.X, y+off.Y)
	}
}

// Bounds returns the bounding box of the offsets.
func (p *Pattern) Bounds() image.Rectangle {
	if p == nil || len(p.Offsets) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: p.Offsets[0], Max: p.Offsets[0]}
	for _, off := range p.Offsets[1:] {
		if off.X < r.Min.X {
			r.Min.X = off.X
		}
		if off.Y < r.Min.Y {
			r.Min.Y = off.Y
		}
		if off.X > r.Max.X {
			r.Max.X = off.X
		}
		if off.Y > r.Max.Y {
			r.Max.Y = off.Y
		}
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

func points(xy ...int) []image.Point {
	pts := make([]image.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		pts = append(pts, image.Pt(xy[i], xy[i+1]))
	}
	return pts
}

var (
	patternGlider = &Pattern{Name: `glider`, Desc: `the smallest spaceship, moves one cell down and right every four generations`, Offsets: points(
		1, 0,
		2, 1,
		0, 2, 1, 2, 2, 2,
	)}
	patternPentomino = &Pattern{Name: `pentomino`, Desc: `the R-pentomino, five cells that stay active for over a thousand generations`, Offsets: points(
		1, 0, 2, 0,
		0, 1, 1, 1,
		1, 2,
	)}
	patternDiehard = &Pattern{Name: `diehard`, Desc: `seven cells that vanish without a trace after 130 generations`, Offsets: points(
		6, 0,
		0, 1, 1, 1,
		1, 2, 5, 2, 6, 2, 7, 2,
	)}
	patternAcorn = &Pattern{Name: `acorn`, Desc: `a methuselah that takes 5206 generations to settle`, Offsets: points(
		0, 0, 1, 0,
		1, -2,
		3, -1,
		4, 0, 5, 0, 6, 0,
	)}
	patternGun = &Pattern{Name: `gun`, Desc: `the Gosper glider gun, emits a glider every 30 generations`, Offsets: points(
		0, 0, 1, 0, 0, 1, 1, 1,
		10, 0, 10, 1, 10, 2,
		11, -1, 11, 3,
		12, -2, 12, 4,
		13, -2, 13, 4,
		14, 1,
		15, -1, 15, 3,
		16, 0, 16, 1, 16, 2,
		17, 1,
		20, 0, 20, -1, 20, -2,
		21, 0, 21, -1, 21, -2,
		22, -3, 22, 1,
		24, -4, 24, -3, 24, 1, 24, 2,
		34, -2, 34, -1,
		35, -2, 35, -1,
	)}
)

var builtins = []*Pattern{
	patternGlider,
	patternPentomino,
	patternDiehard,
	patternAcorn,
	patternGun,
}

var patternAliases = map[string]*Pattern{
	`glider`:            patternGlider,
	`pentomino`:         patternPentomino,
	`r-pentomino`:       patternPentomino,
	`diehard`:           patternDiehard,
	`die-hard`:          patternDiehard,
	`acorn`:             patternAcorn,
	`gun`:               patternGun,
	`glider-gun`:        patternGun,
	`gosper-glider-gun`: patternGun,
}

// Lookup resolves a built-in pattern by name. Names are case- and
// separator-insensitive, so `R_Pentomino` finds the same pattern as
// `r-pentomino`.
func Lookup(name string) (*Pattern, error) {
	if p, ok := patternAliases[strcase.ToKebab(name)]; ok {
		return p, nil
	}
	return nil, errors.Errorf(`unknown pattern %q`, name)
}

// Patterns returns the built-in patterns sorted by name.
func Patterns() []*Pattern {
	out := make([]*Pattern, len(builtins))
	copy(out, builtins)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
