package life

import (
	"image"
	"sort"
	"testing"
)

func TestLookupNormalizesNames(t *testing.T) {
	for _, tc := range []struct {
		name string
		want *Pattern
	}{
		{`glider`, patternGlider},
		{`Glider`, patternGlider},
		{`r-pentomino`, patternPentomino},
		{`R_Pentomino`, patternPentomino},
		{`Die Hard`, patternDiehard},
		{`GosperGliderGun`, patternGun},
		{`gun`, patternGun},
	} {
		p, err := Lookup(tc.name)
		if err != nil {
			t.Errorf(`Lookup(%q): %v`, tc.name, err)
			continue
		}
		if p != tc.want {
			t.Errorf(`Lookup(%q) = %q, want %q`, tc.name, p.Name, tc.want.Name)
		}
	}

	if _, err := Lookup(`no such pattern`); err == nil {
		t.Fatal(`unknown pattern did not error`)
	}
}

func TestPatternsSorted(t *testing.T) {
	pats := Patterns()
	if len(pats) != len(builtins) {
		t.Fatalf(`got %d patterns, want %d`, len(pats), len(builtins))
	}
	names := make([]string, len(pats))
	for i, p := range pats {
		names[i] = p.Name
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf(`patterns not sorted: %v`, names)
	}
}

func TestApplyAnchorsOffsets(t *testing.T) {
	g := mustNew(t, 32, 32, 1)
	patternAcorn.Apply(g, 8, 8)

	if g.Population() != len(patternAcorn.Offsets) {
		t.Fatalf(`population %d, want %d`, g.Population(), len(patternAcorn.Offsets))
	}
	for _, off := range patternAcorn.Offsets {
		if !g.Cell(8+off.X, 8+off.Y) {
			t.Fatalf(`cell (%d,%d) dead`, 8+off.X, 8+off.Y)
		}
	}
	// The acorn carries a cell two rows above its anchor.
	if !g.Cell(9, 6) {
		t.Fatal(`negative offset not applied above the anchor`)
	}
}

func TestApplyWrapsAtEdges(t *testing.T) {
	g := mustNew(t, 16, 16, 1)
	patternGlider.Apply(g, 15, 15)

	for _, p := range [][2]int{{0, 15}, {1, 0}, {15, 1}, {0, 1}, {1, 1}} {
		if !g.Cell(p[0], p[1]) {
			t.Fatalf(`cell (%d,%d) dead`, p[0], p[1])
		}
	}
	if g.Population() != 5 {
		t.Fatalf(`population %d, want 5`, g.Population())
	}
}

func TestPatternBounds(t *testing.T) {
	for _, tc := range []struct {
		pattern *Pattern
		want    image.Rectangle
	}{
		{patternGlider, image.Rect(0, 0, 3, 3)},
		{patternAcorn, image.Rect(0, -2, 7, 1)},
		{patternGun, image.Rect(0, -4, 36, 5)},
		{&Pattern{}, image.Rectangle{}},
	} {
		if got := tc.pattern.Bounds(); got != tc.want {
			t.Errorf(`%q bounds %v, want %v`, tc.pattern.Name, got, tc.want)
		}
	}
}

func TestApplyNilGrid(t *testing.T) {
	patternGlider.Apply(nil, 0, 0)

	var p *Pattern
	g := mustNew(t, 8, 8, 1)
	p.Apply(g, 0, 0)
	if g.Population() != 0 {
		t.Fatal(`nil pattern changed the grid`)
	}
}
