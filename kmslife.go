// Package kmslife runs Conway's Game of Life straight on a DRM output,
// with no windowing stack in between. Run takes over the first
// connected connector of a card, animates the automaton into two
// flipped dumb buffers and restores the previous display state on exit.
package kmslife

import (
	"log/slog"

	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/life"
)

// Config collects everything Run needs. The zero value is not usable,
// construction goes through newConfig so the defaults match the
// original tool: preferred mode, one pixel per cell, 60 generations per
// second, random seeding from the clock.
type Config struct {
	card        string
	width       int
	height      int
	scale       int
	framerate   int
	flip        bool
	seed        int64
	seedSet     bool
	pattern     *life.Pattern
	patternFile string
	imageFile   string
	threshold   uint8
	logger      *slog.Logger
}

func newConfig() *Config {
	return &Config{
		scale:     1,
		framerate: 60,
		threshold: life.DefaultThreshold,
	}
}

// Logger implements logx.LoggerProvider.
func (c *Config) Logger() *slog.Logger {
	if c == nil {
		return nil
	}
	return c.logger
}

type Option interface {
	ApplyOption(c *Config) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Config) error

func (o OptFunc) ApplyOption(c *Config) error { return o(c) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(c *Config) error { return c.SetOptions([]Option(o)...) }

func (c *Config) SetOptions(opts ...Option) error {
	if c == nil {
		return errors.NilReceiver()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(c); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetCard selects the DRM card node. An empty path scans /dev/dri for
// the lowest numbered card.
func SetCard(path string) Option {
	return OptFunc(func(c *Config) error { c.card = path; return nil })
}

// SetSize requests a specific display mode instead of the connector's
// preferred one. Zero keeps the preferred mode.
func SetSize(width, height int) Option {
	return OptFunc(func(c *Config) error {
		if width < 0 || height < 0 {
			return errors.Errorf(`invalid size %dx%d`, width, height)
		}
		c.width, c.height = width, height
		return nil
	})
}

// SetScale sets the cell magnification. Every cell covers scale×scale
// pixels, so larger values mean coarser grids.
func SetScale(scale int) Option {
	return OptFunc(func(c *Config) error {
		if scale < 1 {
			return errors.Join(life.ErrScale, errors.Errorf(`scale %d`, scale))
		}
		c.scale = scale
		return nil
	})
}

// SetFramerate sets the simulation rate in generations per second. Zero
// freezes the simulation while the seeded state stays on screen.
func SetFramerate(fps int) Option {
	return OptFunc(func(c *Config) error {
		if fps < 0 {
			return errors.Errorf(`invalid framerate %d`, fps)
		}
		c.framerate = fps
		return nil
	})
}

// UsePageFlip presents frames with asynchronous page-flips instead of
// blocking mode-sets once the pipe is up.
func UsePageFlip(enable bool) Option {
	return OptFunc(func(c *Config) error { c.flip = enable; return nil })
}

// SetSeed fixes the PRNG seed for random fills. Without it the seed is
// taken from the clock.
func SetSeed(seed int64) Option {
	return OptFunc(func(c *Config) error {
		c.seed = seed
		c.seedSet = true
		return nil
	})
}

// SetPattern seeds the grid center with a built-in pattern.
func SetPattern(name string) Option {
	return OptFunc(func(c *Config) error {
		p, err := life.Lookup(name)
		if err != nil {
			return err
		}
		c.pattern = p
		return nil
	})
}

// SetPatternFile seeds the grid center from an RLE pattern file. It
// takes precedence over SetPattern.
func SetPatternFile(path string) Option {
	return OptFunc(func(c *Config) error { c.patternFile = path; return nil })
}

// SetImage seeds the grid from a picture, cells turning live where the
// luminance reaches the threshold.
func SetImage(path string, threshold uint8) Option {
	return OptFunc(func(c *Config) error {
		c.imageFile = path
		c.threshold = threshold
		return nil
	})
}

func SetSLogger(h slog.Handler, enable bool) Option {
	return OptFunc(func(c *Config) error {
		if enable {
			if h == nil {
				c.logger = slog.Default()
			} else {
				c.logger = slog.New(h)
			}
		} else {
			c.logger = nil
		}
		return nil
	})
}
