//go:build linux

package kms

import (
	"bytes"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request encoding from <asm-generic/ioctl.h>.
const (
	iocWrite = 0x1
	iocRead  = 0x2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

// DRM ioctls use the 'd' type.
const drmIoctlBase = 'd'

// drmIO builds a _IO('d', nr) request.
func drmIO(nr uintptr) uintptr {
	return drmIoctlBase<<iocTypeShift | nr<<iocNrShift
}

// drmIOWR builds a _IOWR('d', nr, size) request.
func drmIOWR(nr, size uintptr) uintptr {
	return (iocRead|iocWrite)<<iocDirShift | size<<iocSizeShift |
		drmIoctlBase<<iocTypeShift | nr<<iocNrShift
}

var (
	drmIoctlSetMaster        = drmIO(0x1e)
	drmIoctlDropMaster       = drmIO(0x1f)
	drmIoctlModeGetResources = drmIOWR(0xa0, unsafe.Sizeof(modeCardRes{}))
	drmIoctlModeGetCrtc      = drmIOWR(0xa1, unsafe.Sizeof(modeCrtc{}))
	drmIoctlModeSetCrtc      = drmIOWR(0xa2, unsafe.Sizeof(modeCrtc{}))
	drmIoctlModeGetEncoder   = drmIOWR(0xa6, unsafe.Sizeof(modeGetEncoder{}))
	drmIoctlModeGetConnector = drmIOWR(0xa7, unsafe.Sizeof(modeGetConnector{}))
	drmIoctlModeAddFB        = drmIOWR(0xae, unsafe.Sizeof(modeFBCmd{}))
	drmIoctlModeRmFB         = drmIOWR(0xaf, unsafe.Sizeof(uint32(0)))
	drmIoctlModePageFlip     = drmIOWR(0xb0, unsafe.Sizeof(modeCrtcPageFlip{}))
	drmIoctlModeCreateDumb   = drmIOWR(0xb2, unsafe.Sizeof(modeCreateDumb{}))
	drmIoctlModeMapDumb      = drmIOWR(0xb3, unsafe.Sizeof(modeMapDumb{}))
	drmIoctlModeDestroyDumb  = drmIOWR(0xb4, unsafe.Sizeof(modeDestroyDumb{}))
)

// struct drm_mode_card_res
type modeCardRes struct {
	fbIDPtr         uint64
	crtcIDPtr       uint64
	connectorIDPtr  uint64
	encoderIDPtr    uint64
	countFBs        uint32
	countCRTCs      uint32
	countConnectors uint32
	countEncoders   uint32
	minWidth        uint32
	maxWidth        uint32
	minHeight       uint32
	maxHeight       uint32
}

// struct drm_mode_modeinfo
type modeInfo struct {
	clock      uint32
	hdisplay   uint16
	hsyncStart uint16
	hsyncEnd   uint16
	htotal     uint16
	hskew      uint16
	vdisplay   uint16
	vsyncStart uint16
	vsyncEnd   uint16
	vtotal     uint16
	vscan      uint16
	vrefresh   uint32
	flags      uint32
	typ        uint32
	name       [32]byte
}

func (m *modeInfo) mode() Mode {
	name := m.name[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return Mode{
		Clock:      m.clock,
		HDisplay:   m.hdisplay,
		HSyncStart: m.hsyncStart,
		HSyncEnd:   m.hsyncEnd,
		HTotal:     m.htotal,
		HSkew:      m.hskew,
		VDisplay:   m.vdisplay,
		VSyncStart: m.vsyncStart,
		VSyncEnd:   m.vsyncEnd,
		VTotal:     m.vtotal,
		VScan:      m.vscan,
		VRefresh:   m.vrefresh,
		Flags:      m.flags,
		Type:       m.typ,
		Name:       string(name),
	}
}

func wireMode(m *Mode) modeInfo {
	w := modeInfo{
		clock:      m.Clock,
		hdisplay:   m.HDisplay,
		hsyncStart: m.HSyncStart,
		hsyncEnd:   m.HSyncEnd,
		htotal:     m.HTotal,
		hskew:      m.HSkew,
		vdisplay:   m.VDisplay,
		vsyncStart: m.VSyncStart,
		vsyncEnd:   m.VSyncEnd,
		vtotal:     m.VTotal,
		vscan:      m.VScan,
		vrefresh:   m.VRefresh,
		flags:      m.Flags,
		typ:        m.Type,
	}
	copy(w.name[:], m.Name)
	return w
}

// struct drm_mode_crtc
type modeCrtc struct {
	setConnectorsPtr uint64
	countConnectors  uint32
	crtcID           uint32
	fbID             uint32
	x                uint32
	y                uint32
	gammaSize        uint32
	modeValid        uint32
	mode             modeInfo
}

// struct drm_mode_get_encoder
type modeGetEncoder struct {
	encoderID      uint32
	encoderType    uint32
	crtcID         uint32
	possibleCrtcs  uint32
	possibleClones uint32
}

// struct drm_mode_get_connector
type modeGetConnector struct {
	encodersPtr     uint64
	modesPtr        uint64
	propsPtr        uint64
	propValuesPtr   uint64
	countModes      uint32
	countProps      uint32
	countEncoders   uint32
	encoderID       uint32
	connectorID     uint32
	connectorType   uint32
	connectorTypeID uint32
	connection      uint32
	mmWidth         uint32
	mmHeight        uint32
	subpixel        uint32
	pad             uint32
}

// struct drm_mode_fb_cmd
type modeFBCmd struct {
	fbID   uint32
	width  uint32
	height uint32
	pitch  uint32
	bpp    uint32
	depth  uint32
	handle uint32
}

// struct drm_mode_crtc_page_flip
type modeCrtcPageFlip struct {
	crtcID   uint32
	fbID     uint32
	flags    uint32
	reserved uint32
	userData uint64
}

// struct drm_mode_create_dumb
type modeCreateDumb struct {
	height uint32
	width  uint32
	bpp    uint32
	flags  uint32
	handle uint32
	pitch  uint32
	size   uint64
}

// struct drm_mode_map_dumb
type modeMapDumb struct {
	handle uint32
	pad    uint32
	offset uint64
}

// struct drm_mode_destroy_dumb
type modeDestroyDumb struct {
	handle uint32
}

// Syscall indirection, replaced by the tests.
var (
	drmIoctl = realIoctl
	mmapFn   = realMmap
	munmapFn = unix.Munmap
)

// realIoctl retries on EINTR and EAGAIN the way libdrm's drmIoctl does.
func realIoctl(fd int, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		switch errno {
		case 0:
			return nil
		case unix.EINTR, unix.EAGAIN:
			continue
		default:
			return errno
		}
	}
}

func realMmap(fd int, offset int64, length int) ([]byte, error) {
	return unix.Mmap(fd, offset, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}
