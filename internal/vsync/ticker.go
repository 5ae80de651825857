// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package vsync

import (
	"context"
	"sync/atomic"
	"time"
)

// Ticker is a software vsync source: while enabled it submits one vsync
// event per period for its display.
type Ticker struct {
	period  time.Duration
	display int
	out     *Dispatcher
	enabled atomic.Bool
}

// NewTicker returns a disabled ticker.
func NewTicker(period time.Duration, display int, out *Dispatcher) *Ticker {
	if period <= 0 {
		period = time.Second / 60
	}
	return &Ticker{period: period, display: display, out: out}
}

// SetEnabled turns vsync delivery on or off.
func (t *Ticker) SetEnabled(v bool) error {
	t.enabled.Store(v)
	return nil
}

// Enabled reports whether vsync delivery is on.
func (t *Ticker) Enabled() bool {
	return t.enabled.Load()
}

// Period returns the tick interval.
func (t *Ticker) Period() time.Duration {
	return t.period
}

// Run ticks until ctx is done.
func (t *Ticker) Run(ctx context.Context) {
	tick := time.NewTicker(t.period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			if t.enabled.Load() {
				t.out.Submit(Event{Kind: KindVsync, Display: t.display, Timestamp: now})
			}
		}
	}
}
