// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package overlay

import (
	"sync"

	"github.com/ManuGH/hwcomposer/internal/layer"
)

// Queued records one buffer handed to a pipe.
type Queued struct {
	Pipe   int
	Handle uint64
}

// Soft is an in-memory overlay driver that records every call.
type Soft struct {
	mu sync.Mutex

	States  []State
	Configs []PipeConfig
	Queued  []Queued
	Closed  bool

	// Reject, when set, fails the transition into the listed states.
	Reject   map[State]error
	QueueErr error
}

var _ Hardware = (*Soft)(nil)

// NewSoft returns an empty recorder.
func NewSoft() *Soft {
	return &Soft{}
}

func (s *Soft) SetState(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Reject[st]; err != nil {
		return err
	}
	s.States = append(s.States, st)
	return nil
}

func (s *Soft) Configure(cfg PipeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Configs = append(s.Configs, cfg)
	return nil
}

func (s *Soft) Queue(pipe int, h *layer.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueueErr != nil {
		return s.QueueErr
	}
	s.Queued = append(s.Queued, Queued{Pipe: pipe, Handle: h.ID})
	return nil
}

func (s *Soft) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// StateHistory returns a copy of the recorded transitions.
func (s *Soft) StateHistory() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.States...)
}

// QueueHistory returns a copy of the recorded queue calls.
func (s *Soft) QueueHistory() []Queued {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Queued(nil), s.Queued...)
}

// Reset clears the recorded history.
func (s *Soft) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.States = nil
	s.Configs = nil
	s.Queued = nil
}
