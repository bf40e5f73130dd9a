//go:build linux

package kms

import (
	"unsafe"

	"github.com/thierryreding/kmslife/internal/errors"
)

// CreateDumb allocates a zero-filled dumb buffer of width x height
// pixels at bpp bits per pixel. The kernel picks the pitch, which may be
// wider than width*bpp/8.
func (d *Device) CreateDumb(width, height, bpp uint32) (*Buffer, error) {
	if d == nil {
		return nil, errors.NilReceiver()
	}
	req := modeCreateDumb{width: width, height: height, bpp: bpp}
	if err := drmIoctl(d.fd, drmIoctlModeCreateDumb, unsafe.Pointer(&req)); err != nil {
		return nil, errors.Join(ErrAlloc, err)
	}
	return &Buffer{
		dev:    d,
		handle: req.handle,
		width:  width,
		height: height,
		bpp:    bpp,
		pitch:  req.pitch,
		size:   req.size,
	}, nil
}

// Map maps the buffer into the process and returns the pixel memory.
// Nested calls share one mapping; each Map is balanced by one Unmap.
func (b *Buffer) Map() ([]byte, error) {
	if b == nil {
		return nil, errors.NilReceiver()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapCount > 0 {
		b.mapCount++
		return b.data, nil
	}
	req := modeMapDumb{handle: b.handle}
	if err := drmIoctl(b.dev.fd, drmIoctlModeMapDumb, unsafe.Pointer(&req)); err != nil {
		return nil, errors.Join(ErrMap, err)
	}
	data, err := mmapFn(b.dev.fd, int64(req.offset), int(b.size))
	if err != nil {
		return nil, errors.Join(ErrMap, err)
	}
	b.data = data
	b.mapCount = 1
	return b.data, nil
}

// Unmap releases one Map. The memory is unmapped when the last user is
// gone; unmapping an unmapped buffer does nothing.
func (b *Buffer) Unmap() error {
	if b == nil {
		return errors.NilReceiver()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapCount > 1 {
		b.mapCount--
		return nil
	}
	return b.unmapLocked()
}

func (b *Buffer) unmapLocked() error {
	data := b.data
	b.data = nil
	b.mapCount = 0
	if data == nil {
		return nil
	}
	if err := munmapFn(data); err != nil {
		return errors.Join(ErrMap, err)
	}
	return nil
}

// Destroy unmaps the buffer regardless of its map count and frees it in
// the kernel. Destroying twice is harmless.
func (b *Buffer) Destroy() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	errUnmap := b.unmapLocked()
	if b.handle == 0 {
		return errUnmap
	}
	req := modeDestroyDumb{handle: b.handle}
	err := drmIoctl(b.dev.fd, drmIoctlModeDestroyDumb, unsafe.Pointer(&req))
	b.handle = 0
	if err != nil {
		return errors.Join(ErrAlloc, errUnmap, err)
	}
	return errUnmap
}
