// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package overlay

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"github.com/ManuGH/hwcomposer/internal/layer"
)

func newResource(t *testing.T) (*Resource, *Soft) {
	t.Helper()
	hw := NewSoft()
	return NewResource(hw, Options{Enabled: true, Pipes: 3}, zerolog.Nop()), hw
}

func TestResource_ClaimIsExclusivePerFrame(t *testing.T) {
	r, hw := newResource(t)

	require.True(t, r.Claim("video", VideoOnPanel))
	assert.True(t, r.InUse())
	assert.Equal(t, "video", r.Owner())
	assert.Equal(t, VideoOnPanel, r.State())

	assert.False(t, r.Claim("ui_mirror", UIMirror), "second claim in the same frame must decline")
	assert.Equal(t, "video", r.Owner())
	assert.Equal(t, []State{VideoOnPanel}, hw.StateHistory())

	r.ResetFrame()
	assert.False(t, r.InUse())
	assert.Equal(t, VideoOnPanel, r.State(), "reset keeps hardware mode")

	require.True(t, r.Claim("video", VideoOnPanel))
	assert.Equal(t, []State{VideoOnPanel}, hw.StateHistory(), "same state is not reprogrammed")
}

func TestResource_Disabled(t *testing.T) {
	hw := NewSoft()
	r := NewResource(hw, Options{Enabled: false}, zerolog.Nop())

	assert.False(t, r.Enabled())
	assert.False(t, r.Claim("video", VideoOnPanel))
	assert.Empty(t, hw.StateHistory())

	var nilRes *Resource
	assert.False(t, nilRes.Enabled())
	assert.NoError(t, nilRes.Close())
	assert.NoError(t, nilRes.Shutdown())
}

func TestResource_HardwareRejectsState(t *testing.T) {
	r, hw := newResource(t)
	hw.Reject = map[State]error{UIMirror: errors.New("busy")}

	assert.False(t, r.Claim("ui_mirror", UIMirror))
	assert.False(t, r.InUse())
	assert.Equal(t, Closed, r.State())

	assert.True(t, r.Claim("video", VideoOnPanel))
}

func TestResource_ConfigureRequiresClaim(t *testing.T) {
	r, _ := newResource(t)

	err := r.Configure(PipeConfig{Pipe: 0})
	assert.ErrorIs(t, err, ErrNotClaimed)

	require.True(t, r.Claim("bypass", Bypass))
	assert.NoError(t, r.Configure(PipeConfig{Pipe: 2}))

	err = r.Configure(PipeConfig{Pipe: 3})
	assert.ErrorIs(t, err, hwerr.ErrInvalidArgument)
}

func TestResource_QueueHoldsBuffersUntilNextFrame(t *testing.T) {
	r, hw := newResource(t)
	require.True(t, r.Claim("video", VideoOnPanel))

	require.NoError(t, r.Queue(PipePrimary, &layer.Handle{ID: 1}))
	assert.Equal(t, 1, r.Held())
	assert.Equal(t, []Queued{{Pipe: 0, Handle: 1}}, hw.QueueHistory())

	r.EndFrame()
	assert.Equal(t, 1, r.Held(), "buffer stays referenced for one more frame")

	r.EndFrame()
	assert.Equal(t, 0, r.Held())

	assert.ErrorIs(t, r.Queue(0, nil), hwerr.ErrInvalidArgument)
}

func TestResource_QueueFailureIsIOError(t *testing.T) {
	r, hw := newResource(t)
	require.True(t, r.Claim("video", VideoOnPanel))
	hw.QueueErr = errors.New("underrun")

	err := r.Queue(0, &layer.Handle{ID: 1})
	var ioErr *hwerr.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, 0, r.Held())
}

func TestResource_CloseForcesClosedState(t *testing.T) {
	r, hw := newResource(t)
	require.True(t, r.Claim("video", VideoOnPanel))
	require.NoError(t, r.Queue(0, &layer.Handle{ID: 1}))

	require.NoError(t, r.Close())
	assert.Equal(t, Closed, r.State())
	assert.False(t, r.InUse())
	assert.Equal(t, 0, r.Held())
	assert.Equal(t, []State{VideoOnPanel, Closed}, hw.StateHistory())

	// Closing an already closed resource does not touch the hardware.
	require.NoError(t, r.Close())
	assert.Len(t, hw.StateHistory(), 2)

	require.NoError(t, r.Shutdown())
	assert.True(t, hw.Closed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "video_on_panel_tv", VideoOnPanelTV.String())
	assert.Equal(t, "bypass", Bypass.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestResource_ReleaseOnlyByOwner(t *testing.T) {
	r, _ := newResource(t)
	require.True(t, r.Claim("video", VideoOnPanel))

	r.Release("bypass")
	assert.True(t, r.InUse())

	r.Release("video")
	assert.False(t, r.InUse())
	assert.True(t, r.Claim("bypass", Bypass))
}
