// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build linux

package fence

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"golang.org/x/sys/unix"
)

// pollSlice bounds a single poll(2) call so cancellation is noticed.
const pollSlice = 100 * time.Millisecond

// PollWaiter is a software rendition of the batched buffer-sync call: it
// polls every acquire descriptor for readability (the signalled state of a
// sync fence or eventfd) and hands out an eventfd as the release fence.
// Release fences signal when Retire is called, which the host wires to the
// framebuffer post of the following frame.
type PollWaiter struct {
	mu      sync.Mutex
	pending []int
}

// NewPollWaiter returns a waiter with no outstanding release fences.
func NewPollWaiter() *PollWaiter {
	return &PollWaiter{}
}

// WaitAndRelease implements Waiter.
func (w *PollWaiter) WaitAndRelease(ctx context.Context, acquire []int) (int, error) {
	if err := waitReadable(ctx, acquire); err != nil {
		return -1, err
	}

	release, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return -1, fmt.Errorf("eventfd: %w", err)
	}
	keep, err := unix.Dup(release)
	if err != nil {
		_ = unix.Close(release)
		return -1, fmt.Errorf("dup release fence: %w", err)
	}

	w.mu.Lock()
	w.pending = append(w.pending, keep)
	w.mu.Unlock()
	return release, nil
}

// Retire signals every release fence handed out so far.
func (w *PollWaiter) Retire() error {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	var errs []error
	for _, fd := range pending {
		if err := Signal(fd); err != nil {
			errs = append(errs, err)
		}
		if err := unix.Close(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending returns the number of release fences not yet retired.
func (w *PollWaiter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close retires everything still outstanding.
func (w *PollWaiter) Close() error {
	return w.Retire()
}

// Signal marks an eventfd-backed fence as signalled.
func Signal(fd int) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(fd, buf[:]); err != nil {
		return fmt.Errorf("signal fence %d: %w", fd, err)
	}
	return nil
}

// NewSignalled returns an eventfd-backed fence that is already signalled.
func NewSignalled() (*Fence, error) {
	fd, err := unix.Eventfd(1, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	return New(fd), nil
}

// Signalled reports whether fd is readable right now.
func Signalled(fd int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		return false, err
	}
	return n == 1 && fds[0].Revents&unix.POLLIN != 0, nil
}

func waitReadable(ctx context.Context, acquire []int) error {
	remaining := make([]unix.PollFd, 0, len(acquire))
	for _, fd := range acquire {
		if fd < 0 {
			continue
		}
		remaining = append(remaining, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return hwerr.ErrTimeout
			}
			return err
		}

		slice := pollSlice
		if deadline, ok := ctx.Deadline(); ok {
			if left := time.Until(deadline); left < slice {
				slice = max(left, 0)
			}
		}

		n, err := unix.Poll(remaining, int(slice.Milliseconds()))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll acquire fences: %w", err)
		}
		if n == 0 {
			continue
		}

		next := remaining[:0]
		for _, p := range remaining {
			switch {
			case p.Revents&(unix.POLLERR|unix.POLLNVAL) != 0:
				return fmt.Errorf("acquire fence %d: %w", p.Fd, unix.EBADF)
			case p.Revents&unix.POLLIN != 0:
			default:
				p.Revents = 0
				next = append(next, p)
			}
		}
		remaining = next
	}
	return nil
}
