// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build linux

package fence

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newEventFD(t *testing.T) int {
	t.Helper()
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

func TestPollWaiter_SignalledAcquireReturnsRelease(t *testing.T) {
	w := NewPollWaiter()
	t.Cleanup(func() { _ = w.Close() })

	a1, a2 := newEventFD(t), newEventFD(t)
	require.NoError(t, Signal(a1))
	require.NoError(t, Signal(a2))

	release, err := w.WaitAndRelease(context.Background(), []int{a1, a2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(release) })
	assert.Equal(t, 1, w.Pending())

	ok, err := Signalled(release)
	require.NoError(t, err)
	assert.False(t, ok, "release fence must not signal before retire")

	require.NoError(t, w.Retire())
	assert.Zero(t, w.Pending())

	ok, err = Signalled(release)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPollWaiter_LateSignal(t *testing.T) {
	w := NewPollWaiter()
	t.Cleanup(func() { _ = w.Close() })

	a := newEventFD(t)
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = Signal(a)
	}()

	release, err := w.WaitAndRelease(context.Background(), []int{a})
	require.NoError(t, err)
	_ = unix.Close(release)
}

func TestPollWaiter_Timeout(t *testing.T) {
	w := NewPollWaiter()
	a := newEventFD(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	release, err := w.WaitAndRelease(ctx, []int{a})
	assert.ErrorIs(t, err, hwerr.ErrTimeout)
	assert.Equal(t, -1, release)
	assert.Zero(t, w.Pending())
}

func TestPollWaiter_IgnoresNegativeDescriptors(t *testing.T) {
	w := NewPollWaiter()
	t.Cleanup(func() { _ = w.Close() })

	release, err := w.WaitAndRelease(context.Background(), []int{-1})
	require.NoError(t, err)
	_ = unix.Close(release)
}

func TestSystemOps_DupAndClose(t *testing.T) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	require.NoError(t, err)

	f := New(fd)
	d, err := f.Dup()
	require.NoError(t, err)
	assert.NotEqual(t, f.Fd(), d.Fd())

	require.NoError(t, f.Close())
	require.NoError(t, Signal(d.Fd()), "duplicate must stay usable after the original closes")
	require.NoError(t, d.Close())
}

func TestNewSignalled(t *testing.T) {
	f, err := NewSignalled()
	require.NoError(t, err)
	defer f.Close()

	ok, err := Signalled(f.Fd())
	require.NoError(t, err)
	assert.True(t, ok)
}
