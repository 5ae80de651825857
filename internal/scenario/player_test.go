// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package scenario

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hwcomposer/internal/layer"
)

type call struct {
	op    string
	dpy   int
	value bool
	ids   []uint64
}

type fakeComposer struct {
	mu        sync.Mutex
	calls     []call
	commitErr error
}

func ids(displays []*layer.List) []uint64 {
	var out []uint64
	for _, l := range displays[0].Layers {
		if l.Handle != nil {
			out = append(out, l.Handle.ID)
		}
	}
	return out
}

func (f *fakeComposer) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeComposer) Prepare(_ context.Context, displays []*layer.List) error {
	f.record(call{op: "prepare", ids: ids(displays)})
	return nil
}

func (f *fakeComposer) Commit(_ context.Context, displays []*layer.List) error {
	f.record(call{op: "commit", ids: ids(displays)})
	return f.commitErr
}

func (f *fakeComposer) Blank(dpy int, blank bool) error {
	f.record(call{op: "blank", dpy: dpy, value: blank})
	return nil
}

func (f *fakeComposer) HandleHotplug(dpy int, connected bool) error {
	f.record(call{op: "hotplug", dpy: dpy, value: connected})
	return nil
}

func (f *fakeComposer) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op
	}
	return out
}

const eventScenario = `
frames:
  - name: plug
    repeat: 2
    external: true
    layers:
      - buffer: {id: 1}
    target: {id: 9}
  - name: sleep
    blank: true
    target: {id: 9}
`

func TestPlayer_RunsOnceInOrder(t *testing.T) {
	s, err := Parse(strings.NewReader(eventScenario))
	require.NoError(t, err)

	c := &fakeComposer{}
	p := NewPlayer(c, s, WithPeriod(0), WithLogger(zerolog.Nop()))
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{
		"hotplug", "prepare", "commit",
		"prepare", "commit",
		"blank", "prepare", "commit",
	}, c.ops(), "display events run once, before the first repeat")
	assert.Equal(t, uint64(3), p.Played())
	assert.Equal(t, uint64(0), p.Degraded())

	assert.Equal(t, externalDisplay, c.calls[0].dpy)
	assert.True(t, c.calls[0].value)
	assert.Equal(t, []uint64{1, 9}, c.calls[1].ids)
}

func TestPlayer_DegradedFramesContinue(t *testing.T) {
	s, err := Parse(strings.NewReader(eventScenario))
	require.NoError(t, err)

	c := &fakeComposer{commitErr: errors.New("post failed")}
	p := NewPlayer(c, s, WithPeriod(0), WithLogger(zerolog.Nop()))
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, uint64(3), p.Played())
	assert.Equal(t, uint64(3), p.Degraded())
}

func TestPlayer_LoopStopsOnCancel(t *testing.T) {
	s, err := Parse(strings.NewReader(eventScenario))
	require.NoError(t, err)

	c := &fakeComposer{}
	p := NewPlayer(c, s, WithPeriod(time.Millisecond), WithLoop(true), WithLogger(zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.Played() > 6 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is not an error")
	case <-time.After(2 * time.Second):
		t.Fatal("player did not stop")
	}
}

func TestPlayer_DeadlineIsReported(t *testing.T) {
	s, err := Parse(strings.NewReader(eventScenario))
	require.NoError(t, err)

	p := NewPlayer(&fakeComposer{}, s, WithPeriod(time.Hour), WithLogger(zerolog.Nop()))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, uint64(0), p.Played())
}
