//go:build linux

package kms

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/thierryreding/kmslife/internal/errors"
)

// Open opens the DRM device node at path, e.g. /dev/dri/card0.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Join(ErrDevice, &os.PathError{Op: `open`, Path: path, Err: err})
	}
	return &Device{path: path, fd: fd}, nil
}

// FindCard returns the lowest numbered card node under /dev/dri that
// reports a connected connector, falling back to the lowest numbered
// node when none does.
func FindCard() (string, error) {
	cards, err := findCardsIn(`/dev/dri`)
	if err != nil {
		return ``, err
	}
	for _, path := range cards {
		if cardHasOutput(path) {
			return path, nil
		}
	}
	return cards[0], nil
}

func cardHasOutput(path string) bool {
	dev, err := Open(path)
	if err != nil {
		return false
	}
	defer dev.Close()
	res, err := dev.Resources()
	if err != nil {
		return false
	}
	for _, id := range res.Connectors {
		conn, err := dev.Connector(id)
		if err != nil {
			continue
		}
		if conn.Status == StatusConnected {
			return true
		}
	}
	return false
}

func (d *Device) Close() error {
	if d == nil || d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	if err != nil {
		return errors.New(err)
	}
	return nil
}

// SetMaster acquires DRM master on the device. Mode-sets and page flips
// are rejected without it, typically because another process such as a
// display server holds it.
func (d *Device) SetMaster() error {
	if d == nil {
		return errors.NilReceiver()
	}
	if err := drmIoctl(d.fd, drmIoctlSetMaster, nil); err != nil {
		return errors.Join(ErrMaster, err)
	}
	return nil
}

// DropMaster releases DRM master so another process can take over.
func (d *Device) DropMaster() error {
	if d == nil {
		return errors.NilReceiver()
	}
	if err := drmIoctl(d.fd, drmIoctlDropMaster, nil); err != nil {
		return errors.Join(ErrMaster, err)
	}
	return nil
}

// Resources fetches the mode-setting object ids of the device. The
// kernel is asked twice, once for the counts and once for the arrays;
// if a hotplug grows a count in between, the sequence is retried.
func (d *Device) Resources() (*Resources, error) {
	if d == nil {
		return nil, errors.NilReceiver()
	}
	for {
		var req modeCardRes
		if err := drmIoctl(d.fd, drmIoctlModeGetResources, unsafe.Pointer(&req)); err != nil {
			return nil, errors.Join(ErrDevice, err)
		}
		counts := req
		res := &Resources{
			MinWidth:  req.minWidth,
			MaxWidth:  req.maxWidth,
			MinHeight: req.minHeight,
			MaxHeight: req.maxHeight,
		}
		if n := req.countFBs; n > 0 {
			res.FBs = make([]uint32, n)
			req.fbIDPtr = uint64(uintptr(unsafe.Pointer(&res.FBs[0])))
		}
		if n := req.countCRTCs; n > 0 {
			res.CRTCs = make([]uint32, n)
			req.crtcIDPtr = uint64(uintptr(unsafe.Pointer(&res.CRTCs[0])))
		}
		if n := req.countConnectors; n > 0 {
			res.Connectors = make([]uint32, n)
			req.connectorIDPtr = uint64(uintptr(unsafe.Pointer(&res.Connectors[0])))
		}
		if n := req.countEncoders; n > 0 {
			res.Encoders = make([]uint32, n)
			req.encoderIDPtr = uint64(uintptr(unsafe.Pointer(&res.Encoders[0])))
		}
		err := drmIoctl(d.fd, drmIoctlModeGetResources, unsafe.Pointer(&req))
		runtime.KeepAlive(res)
		if err != nil {
			return nil, errors.Join(ErrDevice, err)
		}
		if req.countFBs > counts.countFBs || req.countCRTCs > counts.countCRTCs ||
			req.countConnectors > counts.countConnectors ||
			req.countEncoders > counts.countEncoders {
			continue
		}
		res.FBs = res.FBs[:req.countFBs]
		res.CRTCs = res.CRTCs[:req.countCRTCs]
		res.Connectors = res.Connectors[:req.countConnectors]
		res.Encoders = res.Encoders[:req.countEncoders]
		return res, nil
	}
}

// Connector fetches one connector with its probed modes, properties and
// encoders, using the same two-call protocol as Resources.
func (d *Device) Connector(id uint32) (*Connector, error) {
	if d == nil {
		return nil, errors.NilReceiver()
	}
	for {
		req := modeGetConnector{connectorID: id}
		if err := drmIoctl(d.fd, drmIoctlModeGetConnector, unsafe.Pointer(&req)); err != nil {
			return nil, errors.Join(ErrDevice, err)
		}
		counts := req
		conn := &Connector{ID: id}
		var modes []modeInfo
		if n := req.countModes; n > 0 {
			modes = make([]modeInfo, n)
			req.modesPtr = uint64(uintptr(unsafe.Pointer(&modes[0])))
		}
		if n := req.countEncoders; n > 0 {
			conn.Encoders = make([]uint32, n)
			req.encodersPtr = uint64(uintptr(unsafe.Pointer(&conn.Encoders[0])))
		}
		if n := req.countProps; n > 0 {
			conn.Props = make([]uint32, n)
			conn.PropValues = make([]uint64, n)
			req.propsPtr = uint64(uintptr(unsafe.Pointer(&conn.Props[0])))
			req.propValuesPtr = uint64(uintptr(unsafe.Pointer(&conn.PropValues[0])))
		}
		err := drmIoctl(d.fd, drmIoctlModeGetConnector, unsafe.Pointer(&req))
		runtime.KeepAlive(conn)
		runtime.KeepAlive(modes)
		if err != nil {
			return nil, errors.Join(ErrDevice, err)
		}
		if req.countModes > counts.countModes || req.countProps > counts.countProps ||
			req.countEncoders > counts.countEncoders {
			continue
		}
		conn.Type = req.connectorType
		conn.TypeID = req.connectorTypeID
		conn.Status = ConnectorStatus(req.connection)
		conn.MMWidth = req.mmWidth
		conn.MMHeight = req.mmHeight
		conn.Subpixel = req.subpixel
		conn.EncoderID = req.encoderID
		conn.Encoders = conn.Encoders[:req.countEncoders]
		conn.Props = conn.Props[:req.countProps]
		conn.PropValues = conn.PropValues[:req.countProps]
		conn.Modes = make([]Mode, req.countModes)
		for i := range conn.Modes {
			conn.Modes[i] = modes[i].mode()
		}
		return conn, nil
	}
}

// Encoder fetches one encoder.
func (d *Device) Encoder(id uint32) (*Encoder, error) {
	if d == nil {
		return nil, errors.NilReceiver()
	}
	req := modeGetEncoder{encoderID: id}
	if err := drmIoctl(d.fd, drmIoctlModeGetEncoder, unsafe.Pointer(&req)); err != nil {
		return nil, errors.Join(ErrDevice, err)
	}
	return &Encoder{
		ID:             req.encoderID,
		Type:           req.encoderType,
		CRTCID:         req.crtcID,
		PossibleCRTCs:  req.possibleCrtcs,
		PossibleClones: req.possibleClones,
	}, nil
}

// CRTC reads the current scanout state of one pipe, so it can be put
// back on teardown.
func (d *Device) CRTC(id uint32) (*CRTC, error) {
	if d == nil {
		return nil, errors.NilReceiver()
	}
	req := modeCrtc{crtcID: id}
	if err := drmIoctl(d.fd, drmIoctlModeGetCrtc, unsafe.Pointer(&req)); err != nil {
		return nil, errors.Join(ErrDevice, err)
	}
	crtc := &CRTC{
		ID:        req.crtcID,
		FB:        req.fbID,
		X:         req.x,
		Y:         req.y,
		GammaSize: req.gammaSize,
		ModeValid: req.modeValid != 0,
	}
	if crtc.ModeValid {
		crtc.Mode = req.mode.mode()
	}
	return crtc, nil
}

// SetCRTC programs a pipe to scan out fb with the given mode on the
// listed connectors. It blocks until the mode-set took effect. A nil
// mode disables the pipe.
func (d *Device) SetCRTC(crtcID, fbID uint32, x, y uint32, connectors []uint32, mode *Mode) error {
	if d == nil {
		return errors.NilReceiver()
	}
	req := modeCrtc{crtcID: crtcID, fbID: fbID, x: x, y: y}
	if len(connectors) > 0 {
		req.setConnectorsPtr = uint64(uintptr(unsafe.Pointer(&connectors[0])))
		req.countConnectors = uint32(len(connectors))
	}
	if mode != nil {
		req.mode = wireMode(mode)
		req.modeValid = 1
	}
	err := drmIoctl(d.fd, drmIoctlModeSetCrtc, unsafe.Pointer(&req))
	runtime.KeepAlive(connectors)
	if err != nil {
		return errors.Join(ErrDisplay, err)
	}
	return nil
}

// PageFlip schedules fb to replace the scanout of crtc at the next
// vertical blank and returns without waiting for it. The kernel answers
// EBUSY while a previous flip is still pending and EINVAL if fb does not
// match the current mode.
func (d *Device) PageFlip(crtcID, fbID uint32, flags uint32, userData uint64) error {
	if d == nil {
		return errors.NilReceiver()
	}
	req := modeCrtcPageFlip{crtcID: crtcID, fbID: fbID, flags: flags, userData: userData}
	if err := drmIoctl(d.fd, drmIoctlModePageFlip, unsafe.Pointer(&req)); err != nil {
		return errors.Join(ErrDisplay, err)
	}
	return nil
}

// AddFB registers a buffer as a framebuffer and returns its id.
func (d *Device) AddFB(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	if d == nil {
		return 0, errors.NilReceiver()
	}
	req := modeFBCmd{
		width:  width,
		height: height,
		pitch:  pitch,
		bpp:    uint32(bpp),
		depth:  uint32(depth),
		handle: handle,
	}
	if err := drmIoctl(d.fd, drmIoctlModeAddFB, unsafe.Pointer(&req)); err != nil {
		return 0, errors.Join(ErrDisplay, fmt.Errorf(`add fb %dx%d: %w`, width, height, err))
	}
	return req.fbID, nil
}

// RmFB drops a framebuffer registration.
func (d *Device) RmFB(fb uint32) error {
	if d == nil {
		return errors.NilReceiver()
	}
	if err := drmIoctl(d.fd, drmIoctlModeRmFB, unsafe.Pointer(&fb)); err != nil {
		return errors.Join(ErrDisplay, err)
	}
	return nil
}
