// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package vsync

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestProcs_Empty(t *testing.T) {
	assert.True(t, Procs{}.Empty())
	assert.False(t, Procs{Invalidate: func() {}}.Empty())
}

func TestDispatcher_DeliversAfterHook(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := NewDispatcher(4)

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	hotplug := make(chan bool, 1)
	d.SetHook(func(ev Event) { record("hook:" + ev.Kind.String()) })
	d.SetProcs(Procs{
		Hotplug: func(dpy int, connected bool) {
			record("proc:hotplug")
			hotplug <- connected
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.True(t, d.Submit(Event{Kind: KindHotplug, Display: 1, Connected: true}))
	select {
	case connected := <-hotplug:
		assert.True(t, connected)
	case <-time.After(2 * time.Second):
		t.Fatal("hotplug not delivered")
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hook:hotplug", "proc:hotplug"}, order)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1)
	assert.True(t, d.Submit(Event{Kind: KindVsync}))
	assert.False(t, d.Submit(Event{Kind: KindVsync}))
}

func TestTicker_SubmitsOnlyWhenEnabled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := NewDispatcher(64)
	var count atomic.Int32
	var lastDpy atomic.Int32
	d.SetProcs(Procs{Vsync: func(dpy int, ts int64) {
		lastDpy.Store(int32(dpy))
		count.Add(1)
	}})

	tk := NewTicker(2*time.Millisecond, 0, d)
	assert.False(t, tk.Enabled())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); d.Run(ctx) }()
	go func() { defer wg.Done(); tk.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())

	require.NoError(t, tk.SetEnabled(true))
	assert.Eventually(t, func() bool { return count.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), lastDpy.Load())

	cancel()
	wg.Wait()
}
