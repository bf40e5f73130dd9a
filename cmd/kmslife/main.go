package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thierryreding/kmslife"
	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/life"
)

var rootCmd = &cobra.Command{
	Use:   filepath.Base(os.Args[0]) + ` [flags] [DEVICE]`,
	Short: `play Conway's Game of Life on a DRM output`,
	Long: `kmslife plays Conway's Game of Life straight on a DRM output, without
any windowing system. It takes over the first connected connector of
the card (the lowest numbered one under /dev/dri unless DEVICE is
given), switches the console to graphics mode and animates until q,
Esc, Ctrl-C or SIGTERM.`,
	SilenceUsage:     true,
	TraverseChildren: true,
	Args:             cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(rootFunc(cmd, args))
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	// pattern selection, mirroring the original tool
	rootCmd.Flags().BoolVarP(&acornFlag, `acorn`, `a`, false, `start with acorn element`)
	rootCmd.Flags().BoolVarP(&diehardFlag, `die-hard`, `d`, false, `start with die-hard element`)
	rootCmd.Flags().BoolVarP(&gliderFlag, `glider`, `g`, false, `start with glider element`)
	rootCmd.Flags().BoolVarP(&gunFlag, `gun`, `G`, false, `start with glider gun`)
	rootCmd.Flags().BoolVarP(&pentominoFlag, `pentomino`, `p`, false, `start with r-pentomino element`)
	rootCmd.Flags().StringVarP(&fileFlag, `file`, `F`, ``, `start with element from RLE file`)
	rootCmd.Flags().StringVarP(&imageFlag, `image`, `i`, ``, `start with cells from a picture`)
	rootCmd.Flags().Uint8Var(&thresholdFlag, `threshold`, life.DefaultThreshold, `image luminance threshold`)
	rootCmd.Flags().Int64VarP(&seedFlag, `seed`, `s`, 0, `initial random seed`)
	rootCmd.Flags().IntVarP(&scaleFlag, `scale`, `S`, 1, `pixels per cell`)
	rootCmd.Flags().IntVarP(&framerateFlag, `framerate`, `f`, 60, `generations per second, 0 freezes`)
	rootCmd.Flags().BoolVar(&flipFlag, `flip`, false, `present with page-flips instead of mode-sets`)
	rootCmd.Flags().IntVar(&widthFlag, `width`, 0, `request a mode of this width`)
	rootCmd.Flags().IntVar(&heightFlag, `height`, 0, `request a mode of this height`)

	rootCmd.PersistentFlags().BoolVar(&debugFlag, `debug`, false, `debug errors`)
	rootCmd.PersistentFlags().BoolVar(&silentFlag, `silent`, false, `silence errors`)
	rootCmd.PersistentFlags().StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	acornFlag     bool
	diehardFlag   bool
	gliderFlag    bool
	gunFlag       bool
	pentominoFlag bool
	fileFlag      string
	imageFlag     string
	thresholdFlag uint8
	seedFlag      int64
	scaleFlag     int
	framerateFlag int
	flipFlag      bool
	widthFlag     int
	heightFlag    int

	debugFlag   bool
	silentFlag  bool
	logFileFlag string
)

func run(fn func() error) {
	var err error
	var exitCode int
	defer func() {
		// catch panics so the console mode is not left broken without
		// a diagnostic
		if r := recover(); r != nil {
			exitCode = 1
			if !silentFlag {
				if stackFramer, ok := r.(interface{ ErrorStack() string }); ok {
					fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
				} else {
					debug.PrintStack()
				}
			}
		}
		os.Exit(exitCode)
	}()
	if fn == nil {
		err = errors.NilParam()
	} else {
		err = fn()
	}
	if err != nil {
		exitCode = 1
		if !silentFlag {
			if stackFramer, ok := err.(interface{ ErrorStack() string }); debugFlag && ok {
				fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
			} else {
				fmt.Fprintln(os.Stderr, err.Error())
			}
		}
	}
}

// newLogger builds a logger from --log-file and --debug, or nil when no
// log file is set. The returned closer flushes the file after the
// command is done.
func newLogger() (*slog.Logger, func() error, error) {
	if logFileFlag == `` {
		return nil, nil, nil
	}
	f, err := os.OpenFile(logFileFlag, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.New(err)
	}
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h), f.Close, nil
}

func selectedPattern() (string, error) {
	var pattern string
	for _, sel := range []struct {
		set  bool
		name string
	}{
		{acornFlag, `acorn`},
		{diehardFlag, `diehard`},
		{gliderFlag, `glider`},
		{gunFlag, `gun`},
		{pentominoFlag, `pentomino`},
	} {
		if !sel.set {
			continue
		}
		if pattern != `` {
			return ``, errors.Errorf(`more than one pattern selected (%s and %s)`, pattern, sel.name)
		}
		pattern = sel.name
	}
	return pattern, nil
}

func rootFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		pattern, err := selectedPattern()
		if err != nil {
			return err
		}

		opts := kmslife.Options{
			kmslife.SetScale(scaleFlag),
			kmslife.SetFramerate(framerateFlag),
			kmslife.UsePageFlip(flipFlag),
			kmslife.SetSize(widthFlag, heightFlag),
		}
		if len(args) > 0 {
			opts = append(opts, kmslife.SetCard(args[0]))
		}
		if pattern != `` {
			opts = append(opts, kmslife.SetPattern(pattern))
		}
		if fileFlag != `` {
			opts = append(opts, kmslife.SetPatternFile(fileFlag))
		}
		if imageFlag != `` {
			opts = append(opts, kmslife.SetImage(imageFlag, thresholdFlag))
		}
		if cmd.Flags().Changed(`seed`) {
			opts = append(opts, kmslife.SetSeed(seedFlag))
		}
		logger, logClose, err := newLogger()
		if err != nil {
			return err
		}
		if logClose != nil {
			defer func() { _ = logClose() }()
		}
		if logger != nil {
			opts = append(opts, kmslife.SetSLogger(logger.Handler(), true))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return kmslife.Run(ctx, opts...)
	}
}
