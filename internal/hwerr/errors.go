// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package hwerr defines the composer error taxonomy and its mapping to the
// integer status codes returned across the device boundary.
package hwerr

import (
	"context"
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInvalidArgument classifies unrecognised display indices, attribute IDs,
	// event types, query params and device names. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable reports a display that exists but cannot be configured yet.
	ErrUnavailable = errors.New("display unavailable")

	// ErrTimeout is returned when a bounded fence wait expires.
	ErrTimeout = errors.New("fence wait timed out")

	// ErrClosed is returned by operations on a closed composer.
	ErrClosed = errors.New("device closed")
)

// IOError wraps a failed hardware call (ioctl, fence wait, post).
// The frame continues in a degraded state; the error is surfaced to the host.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IO wraps err as a hardware I/O failure for op. A nil err returns nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}

// Invalid returns an ErrInvalidArgument annotated with detail.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Status maps err to the status code convention of the device API:
// 0 on success, -EINVAL for invalid arguments, -1 for unavailable displays,
// -ETIMEDOUT for expired fence waits, -errno for hardware failures (-EIO when
// the underlying errno is unknown).
func Status(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return -int(syscall.EINVAL)
	case errors.Is(err, ErrUnavailable):
		return -1
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return -int(syscall.ETIMEDOUT)
	case errors.Is(err, ErrClosed):
		return -int(syscall.ENODEV)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return -int(errno)
	}
	return -int(syscall.EIO)
}
