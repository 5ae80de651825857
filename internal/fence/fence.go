// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fence models sync-fence file descriptors as owned handles.
//
// A Fence owns exactly one descriptor. Close releases it once; any later Close
// reports ErrClosed instead of closing a descriptor number that may already
// have been reused. Take moves the descriptor out for callers that hand it to
// hardware which assumes ownership.
package fence

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when a fence is closed or duplicated after its
// descriptor was already released or taken.
var ErrClosed = errors.New("fence already closed")

// Ops performs the descriptor level operations behind a Fence.
type Ops interface {
	Dup(fd int) (int, error)
	Close(fd int) error
}

// Fence is an owned sync-fence descriptor. A nil *Fence means "no fence"
// (the -1 descriptor of the HWC ABI) and is safe to call methods on.
type Fence struct {
	mu       sync.Mutex
	fd       int
	ops      Ops
	consumed bool
}

// New takes ownership of fd using the system descriptor operations.
// Negative descriptors yield nil.
func New(fd int) *Fence {
	return NewWithOps(fd, SystemOps())
}

// NewWithOps takes ownership of fd using ops.
func NewWithOps(fd int, ops Ops) *Fence {
	if fd < 0 {
		return nil
	}
	if ops == nil {
		ops = SystemOps()
	}
	return &Fence{fd: fd, ops: ops}
}

// Fd returns the descriptor, or -1 when the fence is nil, closed or taken.
func (f *Fence) Fd() int {
	if f == nil {
		return -1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumed {
		return -1
	}
	return f.fd
}

// Valid reports whether the fence still owns a descriptor.
func (f *Fence) Valid() bool {
	return f.Fd() >= 0
}

// Dup returns an independently owned duplicate of the fence.
func (f *Fence) Dup() (*Fence, error) {
	if f == nil {
		return nil, ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumed {
		return nil, ErrClosed
	}
	fd, err := f.ops.Dup(f.fd)
	if err != nil {
		return nil, fmt.Errorf("dup fence %d: %w", f.fd, err)
	}
	return &Fence{fd: fd, ops: f.ops}, nil
}

// Close releases the descriptor. Closing a nil fence is a no-op; closing
// twice returns ErrClosed without touching the descriptor again.
func (f *Fence) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumed {
		return ErrClosed
	}
	f.consumed = true
	if err := f.ops.Close(f.fd); err != nil {
		return fmt.Errorf("close fence %d: %w", f.fd, err)
	}
	return nil
}

// Take transfers ownership of the descriptor to the caller and marks the
// fence consumed. It returns -1 when nothing is left to take.
func (f *Fence) Take() int {
	if f == nil {
		return -1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumed {
		return -1
	}
	f.consumed = true
	return f.fd
}

// String implements fmt.Stringer for log output.
func (f *Fence) String() string {
	return fmt.Sprintf("fence(%d)", f.Fd())
}
