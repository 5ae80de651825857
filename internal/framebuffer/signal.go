// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package framebuffer

import (
	"context"
	"sync"
)

// Signal is a one-shot completion flag released once per post by the
// framebuffer device and consumed by the next waiter.
type Signal struct {
	mu   sync.Mutex
	cond *sync.Cond
	done bool
}

// NewSignal returns an unsignalled Signal.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Notify sets the flag and wakes every waiter.
func (s *Signal) Notify() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Wait blocks until the flag is set or ctx is done, then consumes the flag.
func (s *Signal) Wait(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check after every wake-up: broadcasts may be spurious.
	for !s.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	s.done = false
	return nil
}

// Pending reports whether a notification is waiting to be consumed.
func (s *Signal) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
