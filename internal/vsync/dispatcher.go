// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package vsync

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/metrics"
)

// DefaultQueueSize is the event buffer used when none is configured.
const DefaultQueueSize = 16

// Dispatcher owns the event goroutine. Producers Submit; the goroutine
// started by Run applies the hook (state updates) and then invokes the procs.
type Dispatcher struct {
	events chan Event
	logger zerolog.Logger

	mu    sync.RWMutex
	procs Procs
	hook  func(Event)
}

// NewDispatcher returns a dispatcher with a queue of size events.
func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		events: make(chan Event, size),
		logger: xglog.WithComponent("vsync"),
	}
}

// SetProcs replaces the callback table.
func (d *Dispatcher) SetProcs(p Procs) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.procs = p
}

// SetHook installs fn to run on the event goroutine before the procs.
func (d *Dispatcher) SetHook(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hook = fn
}

// Submit queues ev without blocking. A full queue drops the event.
func (d *Dispatcher) Submit(ev Event) bool {
	select {
	case d.events <- ev:
		return true
	default:
		metrics.RecordEvent(ev.Kind.String(), "dropped")
		d.logger.Debug().
			Str("event", "vsync.dropped").
			Str("kind", ev.Kind.String()).
			Int("display", ev.Display).
			Msg("event queue full, dropping")
		return false
	}
}

// Run delivers events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.deliver(ev)
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	d.mu.RLock()
	procs, hook := d.procs, d.hook
	d.mu.RUnlock()

	if hook != nil {
		hook(ev)
	}

	delivered := false
	switch ev.Kind {
	case KindVsync:
		if procs.Vsync != nil {
			procs.Vsync(ev.Display, ev.Timestamp.UnixNano())
			delivered = true
		}
	case KindHotplug:
		if procs.Hotplug != nil {
			procs.Hotplug(ev.Display, ev.Connected)
			delivered = true
		}
	case KindInvalidate:
		if procs.Invalidate != nil {
			procs.Invalidate()
			delivered = true
		}
	}
	if delivered {
		metrics.RecordEvent(ev.Kind.String(), "delivered")
	} else {
		metrics.RecordEvent(ev.Kind.String(), "no_callback")
	}
}
