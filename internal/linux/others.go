//go:build !linux

package linux

import (
	"github.com/thierryreding/kmslife/internal/consts"
	"github.com/thierryreding/kmslife/internal/errors"
)

func KDGetMode(fd uintptr) (mode KDMode, isLinuxConsole bool, _ error) {
	return -1, false, errors.New(consts.ErrPlatformNotSupported)
}

func KDSetMode(fd uintptr, mode KDMode) error {
	return errors.New(consts.ErrPlatformNotSupported)
}
