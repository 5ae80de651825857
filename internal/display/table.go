// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package display holds the per-display state shared between the frame
// pipeline and the event thread.
package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/hwcomposer/internal/hwerr"
)

// ID identifies a physical display slot.
type ID int

const (
	Primary ID = iota
	External
	// NumDisplays is the number of display slots.
	NumDisplays
)

// Display-type bits reported by the display-types query.
const (
	PrimaryBit  = 1 << Primary
	ExternalBit = 1 << External
)

// Valid reports whether id names a known slot.
func (id ID) Valid() bool {
	return id >= Primary && id < NumDisplays
}

// String returns the metric/log label of the display.
func (id ID) String() string {
	switch id {
	case Primary:
		return "primary"
	case External:
		return "external"
	default:
		return fmt.Sprintf("display(%d)", int(id))
	}
}

// Attributes is the mutable record of one display.
type Attributes struct {
	Width       int
	Height      int
	VsyncPeriod time.Duration
	DPIX        float64
	DPIY        float64

	// Active is false while the display is blanked.
	Active bool
	// Connected is maintained by hotplug for the external slot.
	Connected bool
}

// RefreshHz returns the refresh rate derived from the vsync period.
func (a Attributes) RefreshHz() int {
	if a.VsyncPeriod <= 0 {
		return 0
	}
	return int(time.Second / a.VsyncPeriod)
}

// Snapshot is a consistent copy of every display.
type Snapshot [NumDisplays]Attributes

// ExternalActive reports whether the external display is connected and unblanked.
func (s Snapshot) ExternalActive() bool {
	return s[External].Active && s[External].Connected
}

// Table is the guarded per-display state region. Attribute reads and writes
// use the RW lock; Exclusive serialises a whole pipeline step (commit, blank)
// against other pipeline steps.
type Table struct {
	mu    sync.RWMutex
	attrs Snapshot

	pipeline sync.Mutex
}

// NewTable returns a table seeded with the given attributes.
func NewTable(initial Snapshot) *Table {
	return &Table{attrs: initial}
}

// Get returns the attributes of id.
func (t *Table) Get(id ID) (Attributes, error) {
	if !id.Valid() {
		return Attributes{}, hwerr.Invalid("display %d", int(id))
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.attrs[id], nil
}

// Snapshot returns a copy of every display.
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.attrs
}

// Set replaces the attributes of id.
func (t *Table) Set(id ID, a Attributes) error {
	if !id.Valid() {
		return hwerr.Invalid("display %d", int(id))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attrs[id] = a
	return nil
}

// SetActive records the blank state of id and returns the previous one.
func (t *Table) SetActive(id ID, active bool) (bool, error) {
	if !id.Valid() {
		return false, hwerr.Invalid("display %d", int(id))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.attrs[id].Active
	t.attrs[id].Active = active
	return prev, nil
}

// SetConnected records the hotplug state of id.
func (t *Table) SetConnected(id ID, connected bool) error {
	if !id.Valid() {
		return hwerr.Invalid("display %d", int(id))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attrs[id].Connected = connected
	return nil
}

// Exclusive runs fn while holding the pipeline lock. Commit and blank
// transitions go through here so neither observes the other half-done.
func (t *Table) Exclusive(fn func() error) error {
	t.pipeline.Lock()
	defer t.pipeline.Unlock()
	return fn()
}
