//go:build linux

package kms

import (
	"fmt"

	"github.com/thierryreding/kmslife/internal"
	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/logx"
)

// NewScreen acquires DRM master, picks the first connected connector
// with a usable encoder, saves the CRTC state for later restoration and
// sets up two surfaces sized to the selected mode. A positive width and
// height select the first matching advertised mode, zero picks the
// connector's preferred one.
func NewScreen(dev *Device, width, height int, logProv logx.LoggerProvider) (*Screen, error) {
	if dev == nil {
		return nil, errors.NilParam()
	}
	cleanup := internal.NewCloser()
	abort := func(err error) (*Screen, error) {
		return nil, errors.Join(err, cleanup.Close())
	}

	if err := dev.SetMaster(); err != nil {
		return abort(err)
	}
	cleanup.OnClose(dev.DropMaster)

	res, err := dev.Resources()
	if err != nil {
		return abort(err)
	}
	conn, enc, err := pickOutput(dev, res, logProv)
	if err != nil {
		return abort(err)
	}
	mode, err := pickMode(conn, width, height)
	if err != nil {
		return abort(err)
	}
	crtcID := enc.CRTCID
	pipe := -1
	for i, id := range res.CRTCs {
		if id == crtcID {
			pipe = i
			break
		}
	}
	if pipe < 0 {
		return abort(errors.Join(ErrNoOutput, fmt.Errorf(`crtc %d not in resources`, crtcID)))
	}
	saved, err := dev.CRTC(crtcID)
	if err != nil {
		return abort(err)
	}

	scr := &Screen{
		dev:     dev,
		conn:    conn,
		crtcID:  crtcID,
		pipe:    pipe,
		mode:    mode,
		saved:   saved,
		cleanup: cleanup,
	}
	for i := range scr.surfs {
		surf, err := NewSurface(dev, uint32(mode.HDisplay), uint32(mode.VDisplay))
		if err != nil {
			return abort(err)
		}
		scr.surfs[i] = surf
		cleanup.OnClose(surf.Destroy)
	}
	// Registered last so it runs first: the pipe must stop scanning out
	// our framebuffers before they are destroyed.
	cleanup.OnClose(scr.restore)

	logx.Info(`display initialized`, logProv,
		`connector`, conn.Name(), `mode`, mode.String(),
		`crtc`, crtcID, `pipe`, pipe)
	return scr, nil
}

// pickMode selects the display mode for the requested size. Connected
// connectors list their preferred mode first.
func pickMode(conn *Connector, width, height int) (Mode, error) {
	if width <= 0 && height <= 0 {
		return conn.Modes[0], nil
	}
	for _, m := range conn.Modes {
		if int(m.HDisplay) == width && int(m.VDisplay) == height {
			return m, nil
		}
	}
	return Mode{}, errors.Join(ErrNoOutput,
		fmt.Errorf(`connector %s has no %dx%d mode`, conn.Name(), width, height))
}

// pickOutput returns the first connected connector that advertises at
// least one mode and is routed to a live CRTC.
func pickOutput(dev *Device, res *Resources, logProv logx.LoggerProvider) (*Connector, *Encoder, error) {
	for _, id := range res.Connectors {
		conn, err := dev.Connector(id)
		if err != nil {
			return nil, nil, err
		}
		if conn.Status != StatusConnected || len(conn.Modes) == 0 {
			logx.Debug(`skipping connector`, logProv,
				`connector`, conn.Name(), `status`, conn.Status.String(),
				`modes`, len(conn.Modes))
			continue
		}
		if conn.EncoderID == 0 {
			logx.Debug(`connector has no encoder`, logProv, `connector`, conn.Name())
			continue
		}
		enc, err := dev.Encoder(conn.EncoderID)
		if err != nil {
			return nil, nil, err
		}
		if enc.CRTCID == 0 {
			logx.Debug(`encoder has no crtc`, logProv,
				`connector`, conn.Name(), `encoder`, enc.ID)
			continue
		}
		return conn, enc, nil
	}
	return nil, nil, errors.New(ErrNoOutput)
}

// Swap presents the back surface with a blocking mode-set and makes the
// other surface the new back. The first present of a screen must be a
// Swap so the pipe is bound to one of its framebuffers.
func (s *Screen) Swap() error {
	if s == nil {
		return errors.NilReceiver()
	}
	mode := s.mode
	if err := s.dev.SetCRTC(s.crtcID, s.surfs[s.current].fb, 0, 0, []uint32{s.conn.ID}, &mode); err != nil {
		return err
	}
	s.current ^= 1
	return nil
}

// Flip schedules the back surface for the next vertical blank and makes
// the other surface the new back. When the kernel rejects the flip, for
// example with EBUSY while the previous one is pending, the surfaces
// keep their roles so the frame can be retried.
func (s *Screen) Flip() error {
	if s == nil {
		return errors.NilReceiver()
	}
	if err := s.dev.PageFlip(s.crtcID, s.surfs[s.current].fb, 0, 0); err != nil {
		return err
	}
	s.current ^= 1
	return nil
}

// Restore programs the pipe back to the state captured at setup, without
// tearing the screen down.
func (s *Screen) Restore() error {
	if s == nil {
		return errors.NilReceiver()
	}
	return s.restore()
}

func (s *Screen) restore() error {
	if s.saved == nil {
		return nil
	}
	var mode *Mode
	if s.saved.ModeValid {
		m := s.saved.Mode
		mode = &m
	}
	return s.dev.SetCRTC(s.saved.ID, s.saved.FB, s.saved.X, s.saved.Y, []uint32{s.conn.ID}, mode)
}

// Close restores the saved display state, destroys both surfaces and
// drops DRM master. The device itself stays open.
func (s *Screen) Close() error {
	if s == nil || s.cleanup == nil {
		return nil
	}
	return s.cleanup.Close()
}
