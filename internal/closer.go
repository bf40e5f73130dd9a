package internal

import (
	"errors"
	"runtime"
	"sync"

	errorsGo "github.com/go-errors/errors"
)

// Closer collects cleanup steps and runs them in reverse order of
// registration, like stacked defers that outlive a single function call.
type Closer interface {
	Close() error
	OnClose(onClose func() error)
	AddClosers(closers ...interface{ Close() error })
}

var _ Closer = (*lifoCloser)(nil)

type lifoCloser struct {
	mu           sync.Mutex
	onCloseFuncs []func() error
	closed       bool
}

func NewCloser() Closer { return newLifoCloser() }

func newLifoCloser() *lifoCloser {
	closer := &lifoCloser{}
	runtime.SetFinalizer(closer, func(cl *lifoCloser) { _ = cl.Close() })
	return closer
}

func (c *lifoCloser) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	funcs := c.onCloseFuncs
	c.onCloseFuncs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i > -1; i-- {
		if onCloseFunc := funcs[i]; onCloseFunc != nil {
			if err := onCloseFunc(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errorsGo.New(errors.Join(errs...))
}

func (c *lifoCloser) OnClose(onClose func() error) {
	if c == nil || onClose == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.onCloseFuncs = append(c.onCloseFuncs, onClose)
}

func (c *lifoCloser) AddClosers(closers ...interface{ Close() error }) {
	if c == nil {
		return
	}
	for _, cl := range closers {
		cl := cl
		if cl == nil {
			continue
		}
		c.OnClose(func() error {
			if err := cl.Close(); err != nil {
				return errorsGo.New(err)
			}
			return nil
		})
	}
}
