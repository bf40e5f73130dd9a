package kmslife

import (
	"context"
	"os"
	"time"

	"github.com/thierryreding/kmslife/internal"
	"github.com/thierryreding/kmslife/internal/consts"
	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/linux"
	"github.com/thierryreding/kmslife/internal/logx"
	"github.com/thierryreding/kmslife/kms"
	"github.com/thierryreding/kmslife/life"
)

// Run drives the simulation until ctx is cancelled or a quit key is
// pressed. Setup failures abort with an error; failures of a single
// frame are logged and the frame skipped.
func Run(ctx context.Context, opts ...Option) error {
	cfg := newConfig()
	if err := cfg.SetOptions(opts...); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return cfg.run(ctx)
}

func (c *Config) run(ctx context.Context) (errRet error) {
	cleanup := internal.NewCloser()
	defer func() {
		if err := cleanup.Close(); err != nil {
			errRet = errors.Join(errRet, err)
		}
	}()

	path := c.card
	if path == `` {
		var err error
		if path, err = kms.FindCard(); err != nil {
			logx.Debug(`card discovery failed`, c, `error`, err)
			path = consts.DefaultCard
		}
	}
	dev, err := kms.Open(path)
	if err != nil {
		return err
	}
	cleanup.OnClose(dev.Close)

	scr, err := kms.NewScreen(dev, c.width, c.height, c)
	if err != nil {
		return err
	}
	cleanup.OnClose(scr.Close)

	width, height := scr.Size()
	grid, err := life.New(width, height, c.scale)
	if err != nil {
		return err
	}
	if err := c.seedGrid(grid); err != nil {
		return err
	}
	logx.Info(`grid seeded`, c,
		`cells`, grid.Width()*grid.Height(), `population`, grid.Population())

	// Keep the cursor and kernel messages off the framebuffer while we
	// own the output.
	if restore, err := enterGraphics(os.Stdin.Fd()); err != nil {
		logx.Warn(`cannot switch console to graphics mode`, c, `error`, err)
	} else if restore != nil {
		cleanup.OnClose(restore)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if stop, err := watchKeys(cancel, c); err != nil {
		logx.Debug(`keyboard watcher unavailable`, c, `error`, err)
	} else {
		cleanup.OnClose(stop)
	}

	return c.loop(ctx, scr, grid)
}

// seedGrid fills the grid once before the loop starts. A pattern file
// wins over a built-in pattern, like in the original tool; without
// either the grid is filled randomly.
func (c *Config) seedGrid(g *life.Grid) error {
	x, y := g.Width()/2, g.Height()/2
	switch {
	case c.patternFile != ``:
		return life.LoadRLE(g, c.patternFile, x, y, c)
	case c.imageFile != ``:
		return life.SeedImage(g, c.imageFile, c.threshold, c)
	case c.pattern != nil:
		logx.Debug(`seeding pattern`, c, `pattern`, c.pattern.Name, `x`, x, `y`, y)
		c.pattern.Apply(g, x, y)
	default:
		seed := c.seed
		if !c.seedSet {
			seed = time.Now().UnixNano()
		}
		logx.Debug(`random fill`, c, `seed`, seed)
		g.Randomize(seed)
	}
	return nil
}

// enterGraphics switches the controlling console into graphics mode and
// returns a func undoing it. Both results are nil when stdin is not a
// console or graphics mode is already active.
func enterGraphics(fd uintptr) (func() error, error) {
	mode, isConsole, err := linux.KDGetMode(fd)
	if err != nil {
		return nil, err
	}
	if !isConsole || mode == linux.KDGraphics {
		return nil, nil
	}
	if err := linux.KDSetMode(fd, linux.KDGraphics); err != nil {
		return nil, err
	}
	return func() error { return linux.KDSetMode(fd, mode) }, nil
}

func (c *Config) loop(ctx context.Context, scr *kms.Screen, grid *life.Grid) error {
	// The first present must be a blocking mode-set so the pipe is
	// bound to one of our framebuffers before any page-flip.
	back := scr.Back()
	if err := grid.Rasterize(back.Data(), back.Pitch()); err != nil {
		return err
	}
	if err := scr.Swap(); err != nil {
		return err
	}

	present := scr.Swap
	if c.flip {
		present = scr.Flip
	}
	interval := 20 * time.Millisecond
	if c.framerate > 0 {
		interval = time.Second / time.Duration(c.framerate)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var generation uint64
	lastReport := time.Now()
	for {
		select {
		case <-ctx.Done():
			logx.Info(`shutting down`, c, `generation`, generation)
			return nil
		case <-ticker.C:
		}

		// Framerate zero keeps redrawing the seeded state without
		// advancing it.
		if c.framerate > 0 {
			grid.Tick()
			grid.Swap()
			generation++
		}

		back := scr.Back()
		if err := grid.Rasterize(back.Data(), back.Pitch()); err != nil {
			logx.Warn(`skipping frame`, c, `generation`, generation, `error`, err)
			continue
		}
		if err := present(); err != nil {
			logx.Warn(`present failed`, c, `generation`, generation, `error`, err)
			continue
		}

		if now := time.Now(); now.Sub(lastReport) >= time.Second {
			logx.Debug(`simulation running`, c,
				`generation`, generation, `population`, grid.Population())
			lastReport = now
		}
	}
}
