package kmslife

import (
	"context"
	"log/slog"
	"os"

	"github.com/containerd/console"

	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/logx"
)

// watchKeys switches stdin to raw mode and cancels the run when q, Esc
// or Ctrl-C is typed. The returned func stops the watcher and restores
// the console state. Errors mean stdin is not a console and the run
// simply has no keyboard.
func watchKeys(cancel context.CancelFunc, logProv logx.LoggerProvider) (stop func() error, err error) {
	defer func() {
		// console.ConsoleFromFile panics on some platforms instead of
		// returning an error.
		if r := recover(); r != nil {
			stop, err = nil, errors.New(r)
		}
	}()
	con, err := console.ConsoleFromFile(os.Stdin)
	if err != nil {
		return nil, errors.New(err)
	}
	if err := con.SetRaw(); err != nil {
		return nil, errors.New(err)
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := con.Read(buf)
			if logx.IsErr(err, logProv, slog.LevelDebug) {
				return
			}
			if n == 0 {
				continue
			}
			switch buf[0] {
			case 'q', 'Q', 0x1b, 0x03:
				logx.Debug(`quit key pressed`, logProv, `key`, buf[0])
				cancel()
				return
			}
		}
	}()

	return func() error {
		// Closing also unblocks the pending read.
		if err := errors.Join(con.Reset(), con.Close()); err != nil {
			return errors.New(err)
		}
		return nil
	}, nil
}
