package kmslife

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thierryreding/kmslife/life"
)

func TestDefaults(t *testing.T) {
	cfg := newConfig()
	assert.Empty(t, cfg.card)
	assert.Equal(t, 1, cfg.scale)
	assert.Equal(t, 60, cfg.framerate)
	assert.False(t, cfg.flip)
	assert.False(t, cfg.seedSet)
	assert.EqualValues(t, life.DefaultThreshold, cfg.threshold)
}

func TestSetOptions(t *testing.T) {
	cfg := newConfig()
	err := cfg.SetOptions(
		SetCard(`/dev/dri/card1`),
		SetSize(800, 600),
		SetScale(4),
		SetFramerate(25),
		UsePageFlip(true),
		SetSeed(99),
		SetPattern(`R_Pentomino`),
	)
	require.NoError(t, err)

	assert.Equal(t, `/dev/dri/card1`, cfg.card)
	assert.Equal(t, 800, cfg.width)
	assert.Equal(t, 600, cfg.height)
	assert.Equal(t, 4, cfg.scale)
	assert.Equal(t, 25, cfg.framerate)
	assert.True(t, cfg.flip)
	assert.True(t, cfg.seedSet)
	assert.EqualValues(t, 99, cfg.seed)
	require.NotNil(t, cfg.pattern)
	assert.Equal(t, `pentomino`, cfg.pattern.Name)
}

func TestOptionErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		opt  Option
	}{
		{`zero scale`, SetScale(0)},
		{`negative framerate`, SetFramerate(-1)},
		{`negative size`, SetSize(-1, 600)},
		{`unknown pattern`, SetPattern(`no such thing`)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newConfig()
			assert.Error(t, cfg.SetOptions(tc.opt))
		})
	}
}

func TestOptionsCompose(t *testing.T) {
	preset := Options{SetScale(2), UsePageFlip(true)}
	cfg := newConfig()
	require.NoError(t, cfg.SetOptions(preset, SetFramerate(0)))
	assert.Equal(t, 2, cfg.scale)
	assert.True(t, cfg.flip)
	assert.Zero(t, cfg.framerate)
}

func TestSetSLogger(t *testing.T) {
	cfg := newConfig()
	require.NoError(t, cfg.SetOptions(SetSLogger(nil, true)))
	assert.NotNil(t, cfg.Logger())

	require.NoError(t, cfg.SetOptions(SetSLogger(nil, false)))
	assert.Nil(t, cfg.Logger())

	h := slog.NewTextHandler(io.Discard, nil)
	require.NoError(t, cfg.SetOptions(SetSLogger(h, true)))
	assert.NotNil(t, cfg.Logger())
}

func TestSeedPatternCentered(t *testing.T) {
	cfg := newConfig()
	require.NoError(t, cfg.SetOptions(SetPattern(`glider`)))

	g, err := life.New(16, 16, 1)
	require.NoError(t, err)
	require.NoError(t, cfg.seedGrid(g))

	assert.Equal(t, 5, g.Population())
	// Anchor is the grid center, so the glider's (1,0) lands on (9,8).
	assert.True(t, g.Cell(9, 8))
}

func TestSeedFileWinsOverPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), `glider.rle`)
	rle := "x = 3, y = 3, rule = B3/S23\nbob$2bo$3o!\n"
	require.NoError(t, os.WriteFile(path, []byte(rle), 0o644))

	cfg := newConfig()
	require.NoError(t, cfg.SetOptions(SetPattern(`acorn`), SetPatternFile(path)))

	g, err := life.New(32, 32, 1)
	require.NoError(t, err)
	require.NoError(t, cfg.seedGrid(g))

	assert.Equal(t, 5, g.Population(), `file pattern should win over the built-in`)
	assert.True(t, g.Cell(17, 16))
}

func TestSeedRandomDeterministic(t *testing.T) {
	cfg := newConfig()
	require.NoError(t, cfg.SetOptions(SetSeed(7)))

	g1, err := life.New(64, 64, 1)
	require.NoError(t, err)
	require.NoError(t, cfg.seedGrid(g1))

	g2, err := life.New(64, 64, 1)
	require.NoError(t, err)
	g2.Randomize(7)

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if g1.Cell(x, y) != g2.Cell(x, y) {
				t.Fatalf(`cell (%d,%d) differs from direct seeding`, x, y)
			}
		}
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	err := Run(context.Background(), SetScale(0))
	assert.ErrorIs(t, err, life.ErrScale)
}
