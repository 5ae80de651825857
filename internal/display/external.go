// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package display

import "sync"

// Output is the external-display posting service.
type Output interface {
	// Post pushes the mirrored or external-only content of this frame.
	Post() error
	SetVsync(enabled bool) error
	Close() error
}

// SoftExternal is an in-memory external display.
type SoftExternal struct {
	mu     sync.Mutex
	posts  int
	vsync  bool
	closed bool

	PostErr error
}

var _ Output = (*SoftExternal)(nil)

// NewSoftExternal returns an idle external display.
func NewSoftExternal() *SoftExternal {
	return &SoftExternal{}
}

func (e *SoftExternal) Post() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.PostErr != nil {
		return e.PostErr
	}
	e.posts++
	return nil
}

func (e *SoftExternal) SetVsync(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vsync = enabled
	return nil
}

func (e *SoftExternal) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Posts returns the number of successful posts.
func (e *SoftExternal) Posts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.posts
}

// Closed reports whether Close was called.
func (e *SoftExternal) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
