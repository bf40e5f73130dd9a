//go:build !linux

package kms

import (
	"github.com/thierryreding/kmslife/internal/consts"
	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/logx"
)

func Open(path string) (*Device, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func FindCard() (string, error) {
	return ``, errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) Close() error { return nil }

func (d *Device) SetMaster() error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) DropMaster() error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) Resources() (*Resources, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) Connector(id uint32) (*Connector, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) Encoder(id uint32) (*Encoder, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) CRTC(id uint32) (*CRTC, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) SetCRTC(crtcID, fbID uint32, x, y uint32, connectors []uint32, mode *Mode) error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) PageFlip(crtcID, fbID uint32, flags uint32, userData uint64) error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) AddFB(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	return 0, errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) RmFB(fb uint32) error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (d *Device) CreateDumb(width, height, bpp uint32) (*Buffer, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (b *Buffer) Map() ([]byte, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (b *Buffer) Unmap() error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (b *Buffer) Destroy() error { return nil }

func NewSurface(dev *Device, width, height uint32) (*Surface, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (s *Surface) Destroy() error { return nil }

func NewScreen(dev *Device, width, height int, logProv logx.LoggerProvider) (*Screen, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (s *Screen) Swap() error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (s *Screen) Flip() error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (s *Screen) Restore() error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func (s *Screen) Close() error { return nil }
