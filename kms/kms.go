// Package kms drives a display through the kernel mode-setting interface
// of a DRM device node. It allocates dumb buffers, registers them as
// framebuffers and presents them on a connected output, with no windowing
// system in between. Only Linux has a working implementation; on other
// platforms every operation fails with consts.ErrPlatformNotSupported.
package kms

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/thierryreding/kmslife/internal"
	"github.com/thierryreding/kmslife/internal/errors"
)

// Device is an open DRM device node.
type Device struct {
	path string
	fd   int
}

func (d *Device) Path() string {
	if d == nil {
		return ``
	}
	return d.path
}

// Mode describes one display timing, mirroring struct drm_mode_modeinfo.
type Mode struct {
	Clock      uint32
	HDisplay   uint16
	HSyncStart uint16
	HSyncEnd   uint16
	HTotal     uint16
	HSkew      uint16
	VDisplay   uint16
	VSyncStart uint16
	VSyncEnd   uint16
	VTotal     uint16
	VScan      uint16
	VRefresh   uint32
	Flags      uint32
	Type       uint32
	Name       string
}

func (m Mode) String() string {
	name := m.Name
	if name == `` {
		name = fmt.Sprintf(`%dx%d`, m.HDisplay, m.VDisplay)
	}
	return fmt.Sprintf(`%s@%dHz`, name, m.VRefresh)
}

// ConnectorStatus is the link state the kernel reports for a connector.
type ConnectorStatus uint32

const (
	StatusConnected    ConnectorStatus = 1
	StatusDisconnected ConnectorStatus = 2
	StatusUnknown      ConnectorStatus = 3
)

func (s ConnectorStatus) String() string {
	switch s {
	case StatusConnected:
		return `connected`
	case StatusDisconnected:
		return `disconnected`
	default:
		return `unknown`
	}
}

// Connector describes one physical output and the modes it advertises.
type Connector struct {
	ID         uint32
	Type       uint32
	TypeID     uint32
	Status     ConnectorStatus
	MMWidth    uint32
	MMHeight   uint32
	Subpixel   uint32
	EncoderID  uint32
	Modes      []Mode
	Encoders   []uint32
	Props      []uint32
	PropValues []uint64
}

var connectorTypeNames = []string{
	`Unknown`, `VGA`, `DVI-I`, `DVI-D`, `DVI-A`, `Composite`, `SVIDEO`,
	`LVDS`, `Component`, `DIN`, `DP`, `HDMI-A`, `HDMI-B`, `TV`, `eDP`,
	`Virtual`, `DSI`, `DPI`, `Writeback`, `SPI`, `USB`,
}

// TypeName returns the connector type as printed by the usual DRM tools,
// e.g. `HDMI-A` or `eDP`.
func (c *Connector) TypeName() string {
	if c == nil || c.Type >= uint32(len(connectorTypeNames)) {
		return connectorTypeNames[0]
	}
	return connectorTypeNames[c.Type]
}

// Name returns the canonical connector name, e.g. `HDMI-A-1`.
func (c *Connector) Name() string {
	if c == nil {
		return ``
	}
	return fmt.Sprintf(`%s-%d`, c.TypeName(), c.TypeID)
}

// Encoder routes one CRTC to one or more connectors.
type Encoder struct {
	ID             uint32
	Type           uint32
	CRTCID         uint32
	PossibleCRTCs  uint32
	PossibleClones uint32
}

// CRTC is the scanout state of one display pipe as reported by the
// kernel. A copy saved before the first mode-set is replayed on teardown
// so the console comes back.
type CRTC struct {
	ID        uint32
	FB        uint32
	X         uint32
	Y         uint32
	GammaSize uint32
	ModeValid bool
	Mode      Mode
}

// Resources enumerates the mode-setting objects of a device.
type Resources struct {
	FBs        []uint32
	CRTCs      []uint32
	Connectors []uint32
	Encoders   []uint32
	MinWidth   uint32
	MaxWidth   uint32
	MinHeight  uint32
	MaxHeight  uint32
}

// Buffer is a kernel-allocated dumb buffer. Map and Unmap are counted,
// so nested users share one mapping; the pixel memory stays mapped until
// the last Unmap or until Destroy.
type Buffer struct {
	dev    *Device
	handle uint32
	width  uint32
	height uint32
	bpp    uint32
	pitch  uint32
	size   uint64

	mu       sync.Mutex
	data     []byte
	mapCount int
}

func (b *Buffer) Handle() uint32 {
	if b == nil {
		return 0
	}
	return b.handle
}

func (b *Buffer) Width() int {
	if b == nil {
		return 0
	}
	return int(b.width)
}

func (b *Buffer) Height() int {
	if b == nil {
		return 0
	}
	return int(b.height)
}

// Pitch is the byte length of one scanline, including any padding the
// kernel chose.
func (b *Buffer) Pitch() int {
	if b == nil {
		return 0
	}
	return int(b.pitch)
}

func (b *Buffer) Size() uint64 {
	if b == nil {
		return 0
	}
	return b.size
}

// Data returns the mapped pixel memory, or nil while the buffer is not
// mapped.
func (b *Buffer) Data() []byte {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Surface is a dumb buffer registered as a framebuffer and mapped for
// CPU drawing.
type Surface struct {
	dev *Device
	buf *Buffer
	fb  uint32
}

// FB returns the framebuffer id used for mode-sets and page flips.
func (s *Surface) FB() uint32 {
	if s == nil {
		return 0
	}
	return s.fb
}

func (s *Surface) Width() int  { return s.Buffer().Width() }
func (s *Surface) Height() int { return s.Buffer().Height() }
func (s *Surface) Pitch() int  { return s.Buffer().Pitch() }

func (s *Surface) Buffer() *Buffer {
	if s == nil {
		return nil
	}
	return s.buf
}

// Data returns the mapped pixel memory of the backing buffer.
func (s *Surface) Data() []byte { return s.Buffer().Data() }

// Screen owns one display pipe and two surfaces for double buffering.
// Drawing goes into Back; Swap or Flip present it and exchange the roles
// of the two surfaces.
type Screen struct {
	dev     *Device
	conn    *Connector
	crtcID  uint32
	pipe    int
	mode    Mode
	saved   *CRTC
	surfs   [2]*Surface
	current int
	cleanup internal.Closer
}

// Size returns the displayed resolution in pixels.
func (s *Screen) Size() (width, height int) {
	if s == nil {
		return 0, 0
	}
	return int(s.mode.HDisplay), int(s.mode.VDisplay)
}

func (s *Screen) Pitch() int {
	if s == nil {
		return 0
	}
	return s.surfs[0].Pitch()
}

func (s *Screen) Mode() Mode {
	if s == nil {
		return Mode{}
	}
	return s.mode
}

// Back returns the surface that will be presented by the next Swap or
// Flip. Render into it, then present.
func (s *Screen) Back() *Surface {
	if s == nil {
		return nil
	}
	return s.surfs[s.current]
}

func (s *Screen) Connector() *Connector {
	if s == nil {
		return nil
	}
	return s.conn
}

func (s *Screen) CRTCID() uint32 {
	if s == nil {
		return 0
	}
	return s.crtcID
}

// Pipe is the index of the CRTC within the device resources.
func (s *Screen) Pipe() int {
	if s == nil {
		return 0
	}
	return s.pipe
}

// findCardsIn lists the card nodes in dir, lowest number first.
func findCardsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Join(ErrDevice, err)
	}
	var nums []int
	for _, entry := range entries {
		rest, ok := strings.CutPrefix(entry.Name(), `card`)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return nil, errors.Join(ErrDevice, fmt.Errorf(`no card node in %s`, dir))
	}
	sort.Ints(nums)
	cards := make([]string, len(nums))
	for i, n := range nums {
		cards[i] = filepath.Join(dir, `card`+strconv.Itoa(n))
	}
	return cards, nil
}
