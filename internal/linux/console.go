//go:build linux

package linux

import (
	"golang.org/x/sys/unix"

	"github.com/thierryreding/kmslife/internal/errors"
)

const (
	kdGetModeReq uintptr = 0x4b3b
	kdSetModeReq uintptr = 0x4b3a
)

// KDGetMode reports the mode of the virtual console behind fd.
// isLinuxConsole is false when fd is not a virtual console at all.
func KDGetMode(fd uintptr) (mode KDMode, isLinuxConsole bool, _ error) {
	m, err := unix.IoctlGetInt(int(fd), uint(kdGetModeReq))
	mode = KDMode(m)
	if err == nil {
		return mode, true, nil
	}
	if errors.Is(err, unix.ENOTTY) {
		return -1, false, nil
	}
	return -1, false, errors.New(err)
}

// KDSetMode switches the virtual console behind fd between text and
// graphics mode. In graphics mode the kernel keeps the blinking cursor
// and console output off the scanout.
func KDSetMode(fd uintptr, mode KDMode) error {
	if err := unix.IoctlSetInt(int(fd), uint(kdSetModeReq), int(mode)); err != nil {
		return errors.New(err)
	}
	return nil
}
