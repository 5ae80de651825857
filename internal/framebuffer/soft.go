// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package framebuffer

import (
	"errors"
	"sync"

	"github.com/ManuGH/hwcomposer/internal/layer"
)

// ErrClosed is returned by a Soft device after Close.
var ErrClosed = errors.New("framebuffer closed")

// Soft is an in-memory framebuffer. Each Post runs the hook, records the
// handle and notifies PanDone.
type Soft struct {
	info Info
	pan  *Signal
	hook func(*layer.Handle)

	mu       sync.Mutex
	posted   []uint64
	complete int
	power    PowerMode
	vsync    bool
	closed   bool

	// Fault injection for tests.
	PostErr  error
	VsyncErr error
	BlankErr error
}

var _ Device = (*Soft)(nil)

// NewSoft returns a powered-on device with the given panel info.
func NewSoft(info Info) *Soft {
	return &Soft{info: info, pan: NewSignal()}
}

// OnPost installs a hook run on every successful post, before PanDone fires.
func (s *Soft) OnPost(fn func(*layer.Handle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

func (s *Soft) Post(h *layer.Handle) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.PostErr != nil {
		err := s.PostErr
		s.mu.Unlock()
		return err
	}
	var id uint64
	if h != nil {
		id = h.ID
	}
	s.posted = append(s.posted, id)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook(h)
	}
	s.pan.Notify()
	return nil
}

func (s *Soft) CompositionComplete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete++
	return nil
}

func (s *Soft) Blank(mode PowerMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BlankErr != nil {
		return s.BlankErr
	}
	s.power = mode
	return nil
}

func (s *Soft) SetVsync(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.VsyncErr != nil {
		return s.VsyncErr
	}
	s.vsync = enabled
	return nil
}

func (s *Soft) Info() Info { return s.info }

func (s *Soft) PanDone() *Signal { return s.pan }

func (s *Soft) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Posted returns the IDs of every posted handle (0 for nil handles).
func (s *Soft) Posted() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.posted...)
}

// Power returns the current power mode.
func (s *Soft) Power() PowerMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.power
}

// VsyncEnabled reports the vsync control state.
func (s *Soft) VsyncEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vsync
}

// Completions returns the number of CompositionComplete calls.
func (s *Soft) Completions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Closed reports whether Close was called.
func (s *Soft) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
