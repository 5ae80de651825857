// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package vsync delivers vsync and hotplug notifications to the host
// callbacks from a dedicated event goroutine.
package vsync

import "time"

// Procs is the callback table registered by the host.
type Procs struct {
	Invalidate func()
	Vsync      func(dpy int, timestamp int64)
	Hotplug    func(dpy int, connected bool)
}

// Empty reports whether no callback is set.
func (p Procs) Empty() bool {
	return p.Invalidate == nil && p.Vsync == nil && p.Hotplug == nil
}

// Kind is the event type.
type Kind int

const (
	KindVsync Kind = iota
	KindHotplug
	KindInvalidate
)

// String returns the metric label of the kind.
func (k Kind) String() string {
	switch k {
	case KindVsync:
		return "vsync"
	case KindHotplug:
		return "hotplug"
	case KindInvalidate:
		return "invalidate"
	default:
		return "unknown"
	}
}

// Event is one notification.
type Event struct {
	Kind      Kind
	Display   int
	Timestamp time.Time
	Connected bool
}
