//go:build linux

package kms

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fakeCard emulates the mode-setting ioctls of a card with two
// connectors, of which only the HDMI one is connected, and a console
// framebuffer on CRTC 41 that teardown is expected to restore.
type fakeCard struct {
	t *testing.T

	master bool

	resFBs        []uint32
	resCRTCs      []uint32
	resConnectors []uint32
	resEncoders   []uint32
	// when set, each GETRESOURCES call consumes the next connector
	// list, emulating a hotplug between the two calls
	connectorSeq [][]uint32
	resCalls     int

	connectors map[uint32]*fakeConnector
	encoders   map[uint32]modeGetEncoder
	crtcs      map[uint32]modeCrtc

	dumbs      map[uint32]modeCreateDumb
	nextHandle uint32
	destroyed  []uint32

	fbs    map[uint32]modeFBCmd
	nextFB uint32
	rmfbs  []uint32

	setCrtcs  []modeCrtc
	pageFlips []modeCrtcPageFlip

	mmaps   int
	munmaps int

	// forced errors per request code
	errs map[uintptr]error
}

type fakeConnector struct {
	wire     modeGetConnector
	modes    []modeInfo
	encoders []uint32
	props    []uint32
	propVals []uint64
}

func testModeInfo(name string, w, h uint16) modeInfo {
	m := modeInfo{clock: 65000, hdisplay: w, vdisplay: h, vrefresh: 60}
	copy(m.name[:], name)
	return m
}

func newFakeCard(t *testing.T) *fakeCard {
	mode := testModeInfo(`1024x768`, 1024, 768)
	f := &fakeCard{
		t:             t,
		resCRTCs:      []uint32{40, 41},
		resConnectors: []uint32{30, 31},
		resEncoders:   []uint32{20, 21},
		connectors: map[uint32]*fakeConnector{
			30: {
				wire: modeGetConnector{
					connectorID:     30,
					connectorType:   10, // DP
					connectorTypeID: 1,
					connection:      uint32(StatusDisconnected),
				},
			},
			31: {
				wire: modeGetConnector{
					connectorID:     31,
					connectorType:   11, // HDMI-A
					connectorTypeID: 1,
					connection:      uint32(StatusConnected),
					encoderID:       21,
					mmWidth:         520,
					mmHeight:        320,
				},
				modes:    []modeInfo{mode},
				encoders: []uint32{21},
				props:    []uint32{1, 2},
				propVals: []uint64{77, 88},
			},
		},
		encoders: map[uint32]modeGetEncoder{
			20: {encoderID: 20},
			21: {encoderID: 21, encoderType: 2, crtcID: 41, possibleCrtcs: 0x3},
		},
		crtcs: map[uint32]modeCrtc{
			40: {crtcID: 40},
			41: {crtcID: 41, fbID: 7, gammaSize: 256, modeValid: 1, mode: mode},
		},
		dumbs: map[uint32]modeCreateDumb{},
		fbs: map[uint32]modeFBCmd{
			7: {fbID: 7}, // console framebuffer
		},
		nextFB: 7,
		errs:   map[uintptr]error{},
	}
	return f
}

// install reroutes the syscall hooks to the fake for the duration of the
// test.
func (f *fakeCard) install() *Device {
	f.t.Helper()
	origIoctl, origMmap, origMunmap := drmIoctl, mmapFn, munmapFn
	drmIoctl = f.ioctl
	mmapFn = f.mmap
	munmapFn = f.munmap
	f.t.Cleanup(func() {
		drmIoctl, mmapFn, munmapFn = origIoctl, origMmap, origMunmap
	})
	return &Device{path: `/dev/dri/card0`, fd: 1001}
}

func (f *fakeCard) mmap(fd int, offset int64, length int) ([]byte, error) {
	f.mmaps++
	return make([]byte, length), nil
}

func (f *fakeCard) munmap(data []byte) error {
	f.munmaps++
	return nil
}

// putU32s copies ids into the userspace array like the kernel does:
// at most as many entries as the caller asked for.
func putU32s(ptr uint64, have uint32, ids []uint32) {
	if ptr == 0 || have == 0 {
		return
	}
	n := int(have)
	if n > len(ids) {
		n = len(ids)
	}
	copy(unsafe.Slice((*uint32)(unsafe.Pointer(uintptr(ptr))), n), ids[:n])
}

func putU64s(ptr uint64, have uint32, vals []uint64) {
	if ptr == 0 || have == 0 {
		return
	}
	n := int(have)
	if n > len(vals) {
		n = len(vals)
	}
	copy(unsafe.Slice((*uint64)(unsafe.Pointer(uintptr(ptr))), n), vals[:n])
}

func putModes(ptr uint64, have uint32, modes []modeInfo) {
	if ptr == 0 || have == 0 {
		return
	}
	n := int(have)
	if n > len(modes) {
		n = len(modes)
	}
	copy(unsafe.Slice((*modeInfo)(unsafe.Pointer(uintptr(ptr))), n), modes[:n])
}

func (f *fakeCard) ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	if err := f.errs[req]; err != nil {
		return err
	}
	switch req {
	case drmIoctlSetMaster:
		f.master = true
	case drmIoctlDropMaster:
		f.master = false
	case drmIoctlModeGetResources:
		r := (*modeCardRes)(arg)
		connectors := f.resConnectors
		if len(f.connectorSeq) > 0 {
			i := f.resCalls
			if i >= len(f.connectorSeq) {
				i = len(f.connectorSeq) - 1
			}
			connectors = f.connectorSeq[i]
		}
		f.resCalls++
		putU32s(r.fbIDPtr, r.countFBs, f.resFBs)
		putU32s(r.crtcIDPtr, r.countCRTCs, f.resCRTCs)
		putU32s(r.connectorIDPtr, r.countConnectors, connectors)
		putU32s(r.encoderIDPtr, r.countEncoders, f.resEncoders)
		r.countFBs = uint32(len(f.resFBs))
		r.countCRTCs = uint32(len(f.resCRTCs))
		r.countConnectors = uint32(len(connectors))
		r.countEncoders = uint32(len(f.resEncoders))
		r.minWidth, r.maxWidth = 8, 4096
		r.minHeight, r.maxHeight = 8, 4096
	case drmIoctlModeGetConnector:
		c := (*modeGetConnector)(arg)
		fc, ok := f.connectors[c.connectorID]
		if !ok {
			return unix.ENOENT
		}
		putModes(c.modesPtr, c.countModes, fc.modes)
		putU32s(c.encodersPtr, c.countEncoders, fc.encoders)
		putU32s(c.propsPtr, c.countProps, fc.props)
		putU64s(c.propValuesPtr, c.countProps, fc.propVals)
		id := c.connectorID
		*c = fc.wire
		c.connectorID = id
		c.countModes = uint32(len(fc.modes))
		c.countEncoders = uint32(len(fc.encoders))
		c.countProps = uint32(len(fc.props))
	case drmIoctlModeGetEncoder:
		e := (*modeGetEncoder)(arg)
		fe, ok := f.encoders[e.encoderID]
		if !ok {
			return unix.ENOENT
		}
		*e = fe
	case drmIoctlModeGetCrtc:
		c := (*modeCrtc)(arg)
		fc, ok := f.crtcs[c.crtcID]
		if !ok {
			return unix.ENOENT
		}
		id := c.crtcID
		*c = fc
		c.crtcID = id
	case drmIoctlModeSetCrtc:
		c := (*modeCrtc)(arg)
		if !f.master {
			return unix.EACCES
		}
		if c.fbID != 0 {
			if _, ok := f.fbs[c.fbID]; !ok {
				return unix.EINVAL
			}
		}
		f.crtcs[c.crtcID] = *c
		f.setCrtcs = append(f.setCrtcs, *c)
	case drmIoctlModePageFlip:
		p := (*modeCrtcPageFlip)(arg)
		if !f.master {
			return unix.EACCES
		}
		if _, ok := f.fbs[p.fbID]; !ok {
			return unix.EINVAL
		}
		cur := f.crtcs[p.crtcID]
		cur.fbID = p.fbID
		f.crtcs[p.crtcID] = cur
		f.pageFlips = append(f.pageFlips, *p)
	case drmIoctlModeCreateDumb:
		c := (*modeCreateDumb)(arg)
		f.nextHandle++
		c.handle = f.nextHandle
		c.pitch = c.width * c.bpp / 8
		c.size = uint64(c.pitch) * uint64(c.height)
		f.dumbs[c.handle] = *c
	case drmIoctlModeMapDumb:
		m := (*modeMapDumb)(arg)
		if _, ok := f.dumbs[m.handle]; !ok {
			return unix.EINVAL
		}
		m.offset = uint64(m.handle) << 12
	case drmIoctlModeDestroyDumb:
		d := (*modeDestroyDumb)(arg)
		if _, ok := f.dumbs[d.handle]; !ok {
			return unix.EINVAL
		}
		delete(f.dumbs, d.handle)
		f.destroyed = append(f.destroyed, d.handle)
	case drmIoctlModeAddFB:
		c := (*modeFBCmd)(arg)
		if _, ok := f.dumbs[c.handle]; !ok {
			return unix.EINVAL
		}
		f.nextFB++
		c.fbID = f.nextFB
		f.fbs[c.fbID] = *c
	case drmIoctlModeRmFB:
		id := (*uint32)(arg)
		if _, ok := f.fbs[*id]; !ok {
			return unix.EINVAL
		}
		delete(f.fbs, *id)
		f.rmfbs = append(f.rmfbs, *id)
	default:
		f.t.Fatalf(`unexpected ioctl %#x`, req)
	}
	return nil
}
