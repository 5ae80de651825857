// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package overlay

import (
	"sync"

	"github.com/ManuGH/hwcomposer/internal/layer"
)

// BufferStore keeps queued buffers referenced while the hardware may still
// scan them: buffers queued in frame N are released when frame N+1 retires.
type BufferStore struct {
	mu       sync.Mutex
	current  []*layer.Handle
	previous []*layer.Handle
}

// NewBufferStore returns an empty store.
func NewBufferStore() *BufferStore {
	return &BufferStore{}
}

// Hold references h for the current frame.
func (s *BufferStore) Hold(h *layer.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = append(s.current, h)
}

// Retire releases the previous frame's buffers and rotates the current ones.
func (s *BufferStore) Retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.previous)
	s.previous = append(s.previous[:0], s.current...)
	clear(s.current)
	s.current = s.current[:0]
}

// ReleaseAll drops every reference.
func (s *BufferStore) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.previous = nil
}

// Len returns the number of referenced buffers.
func (s *BufferStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current) + len(s.previous)
}
