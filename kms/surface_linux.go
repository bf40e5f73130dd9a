//go:build linux

package kms

import (
	"github.com/thierryreding/kmslife/internal/errors"
)

// Surfaces are XRGB8888.
const (
	surfaceBPP   = 32
	surfaceDepth = 24
)

// NewSurface allocates a dumb buffer, registers it as a framebuffer and
// maps it for CPU drawing. On failure everything created so far is torn
// down again.
func NewSurface(dev *Device, width, height uint32) (*Surface, error) {
	if dev == nil {
		return nil, errors.NilParam()
	}
	buf, err := dev.CreateDumb(width, height, surfaceBPP)
	if err != nil {
		return nil, err
	}
	fb, err := dev.AddFB(width, height, surfaceDepth, surfaceBPP, buf.pitch, buf.handle)
	if err != nil {
		return nil, errors.Join(err, buf.Destroy())
	}
	if _, err := buf.Map(); err != nil {
		return nil, errors.Join(err, dev.RmFB(fb), buf.Destroy())
	}
	return &Surface{dev: dev, buf: buf, fb: fb}, nil
}

// Destroy unregisters the framebuffer and frees the backing buffer.
func (s *Surface) Destroy() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.fb != 0 {
		if err := s.dev.RmFB(s.fb); err != nil {
			errs = append(errs, err)
		}
		s.fb = 0
	}
	if err := s.buf.Destroy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
