package consts

import (
	"errors"
)

var (
	ErrNilReceiver          = errors.New(`nil receiver`)
	ErrNilParam             = errors.New(`nil parameter`)
	ErrPlatformNotSupported = errors.New(`platform not supported`)
)

const (
	LibraryName = `kmslife`

	// DefaultCard is the canonical device node, used when discovery
	// cannot come up with anything better.
	DefaultCard = `/dev/dri/card0`

	// PatternDirName is the per-user pattern directory below the XDG data dirs.
	PatternDirName = LibraryName + `/patterns`
)
