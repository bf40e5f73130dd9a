package life

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thierryreding/kmslife/internal/consts"
)

const gliderRLE = `#N Glider
#C The smallest spaceship.
x = 3, y = 3, rule = B3/S23
bob$2bo$3o!
`

func TestParseRLEGlider(t *testing.T) {
	g := mustNew(t, 16, 16, 1)
	if err := ParseRLE(g, strings.NewReader(gliderRLE), 2, 3, nil); err != nil {
		t.Fatal(err)
	}

	want := [][2]int{{3, 3}, {4, 4}, {2, 5}, {3, 5}, {4, 5}}
	if g.Population() != len(want) {
		t.Fatalf(`population %d, want %d`, g.Population(), len(want))
	}
	for _, p := range want {
		if !g.Cell(p[0], p[1]) {
			t.Fatalf(`cell (%d,%d) dead`, p[0], p[1])
		}
	}
}

func TestParseRLERunCounts(t *testing.T) {
	g := mustNew(t, 16, 16, 1)
	const src = `x = 12, y = 4, rule = B3/S23
10o2b$2$3bo!
`
	if err := ParseRLE(g, strings.NewReader(src), 0, 0, nil); err != nil {
		t.Fatal(err)
	}

	for x := 0; x < 10; x++ {
		if !g.Cell(x, 0) {
			t.Fatalf(`cell (%d,0) dead`, x)
		}
	}
	if g.Cell(10, 0) || g.Cell(11, 0) {
		t.Fatal(`dead-run cells came up alive`)
	}
	// The counted $ skips a whole blank row.
	if !g.Cell(3, 3) {
		t.Fatal(`cell (3,3) dead after counted row advance`)
	}
	if g.Population() != 11 {
		t.Fatalf(`population %d, want 11`, g.Population())
	}
}

func TestParseRLEStopsAtBang(t *testing.T) {
	g := mustNew(t, 8, 8, 1)
	const src = `x = 2, y = 1, rule = B3/S23
2o!garbage after the terminator
`
	if err := ParseRLE(g, strings.NewReader(src), 0, 0, nil); err != nil {
		t.Fatal(err)
	}
	if g.Population() != 2 {
		t.Fatalf(`population %d, want 2`, g.Population())
	}
}

func TestParseRLEErrors(t *testing.T) {
	for _, tc := range []struct {
		name, src string
	}{
		{`missing header`, "bob$2bo$3o!\n"},
		{`malformed header`, "x = banana\nbob!\n"},
		{`unexpected token`, "x = 2, y = 1, rule = B3/S23\noz!\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := mustNew(t, 8, 8, 1)
			if err := ParseRLE(g, strings.NewReader(tc.src), 0, 0, nil); err == nil {
				t.Fatal(`parse succeeded`)
			}
		})
	}
}

func TestLoadRLEDirectPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), `glider.rle`)
	if err := os.WriteFile(path, []byte(gliderRLE), 0o644); err != nil {
		t.Fatal(err)
	}

	g := mustNew(t, 16, 16, 1)
	if err := LoadRLE(g, path, 0, 0, nil); err != nil {
		t.Fatal(err)
	}
	if g.Population() != 5 {
		t.Fatalf(`population %d, want 5`, g.Population())
	}
}

func TestLoadRLESearchesDataDirs(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, consts.PatternDirName)
	if err := os.MkdirAll(patternDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(patternDir, `glider.rle`), []byte(gliderRLE), 0o644); err != nil {
		t.Fatal(err)
	}

	saved := patternSearchDirs
	patternSearchDirs = []string{``, dir}
	t.Cleanup(func() { patternSearchDirs = saved })

	// A bare name picks up the .rle suffix during the search.
	g := mustNew(t, 16, 16, 1)
	if err := LoadRLE(g, `glider`, 0, 0, nil); err != nil {
		t.Fatal(err)
	}
	if g.Population() != 5 {
		t.Fatalf(`population %d, want 5`, g.Population())
	}
}

func TestLoadRLEMissingFile(t *testing.T) {
	saved := patternSearchDirs
	patternSearchDirs = []string{t.TempDir()}
	t.Cleanup(func() { patternSearchDirs = saved })

	g := mustNew(t, 16, 16, 1)
	if err := LoadRLE(g, `no-such-pattern`, 0, 0, nil); !errors.Is(err, ErrFile) {
		t.Fatalf(`got %v, want ErrFile`, err)
	}

	abs := filepath.Join(t.TempDir(), `missing.rle`)
	if err := LoadRLE(g, abs, 0, 0, nil); !errors.Is(err, ErrFile) {
		t.Fatalf(`got %v, want ErrFile`, err)
	}
}
