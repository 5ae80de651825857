// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build !linux

package fence

import (
	"context"
	"errors"
)

// PollWaiter is only available on linux, where sync fences are pollable
// descriptors. Elsewhere every wait fails with errors.ErrUnsupported.
type PollWaiter struct{}

// NewPollWaiter returns the unsupported placeholder.
func NewPollWaiter() *PollWaiter { return &PollWaiter{} }

// WaitAndRelease implements Waiter.
func (*PollWaiter) WaitAndRelease(context.Context, []int) (int, error) {
	return -1, errors.ErrUnsupported
}

// Retire is a no-op.
func (*PollWaiter) Retire() error { return nil }

// Pending always reports zero.
func (*PollWaiter) Pending() int { return 0 }

// NewSignalled is unsupported off linux.
func NewSignalled() (*Fence, error) { return nil, errors.ErrUnsupported }

// Close is a no-op.
func (*PollWaiter) Close() error { return nil }
