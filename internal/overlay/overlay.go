// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package overlay models the scarce hardware overlay pipes. At most one
// strategy holds the resource per frame; the claim is dropped by ResetFrame.
package overlay

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/metrics"
)

// ErrNotClaimed is returned when pipes are driven without a claim this frame.
var ErrNotClaimed = errors.New("overlay not claimed")

// State is the overlay hardware mode.
type State int

const (
	Closed State = iota
	VideoOnPanel
	VideoOnPanelTV
	UIMirror
	ExtOnly
	ExtBlock
	Bypass
)

// String returns the string representation of the overlay state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case VideoOnPanel:
		return "video_on_panel"
	case VideoOnPanelTV:
		return "video_on_panel_tv"
	case UIMirror:
		return "ui_mirror"
	case ExtOnly:
		return "ext_only"
	case ExtBlock:
		return "ext_block"
	case Bypass:
		return "bypass"
	default:
		return "unknown"
	}
}

// Well-known pipes.
const (
	PipePrimary  = 0
	PipeExternal = 1
)

// PipeConfig describes one pipe's source and destination for a frame.
type PipeConfig struct {
	Pipe      int
	Format    layer.Format
	Secure    bool
	Transform layer.Transform
	Crop      layer.Rect
	Frame     layer.Rect
}

// Hardware is the overlay driver collaborator.
type Hardware interface {
	SetState(State) error
	Configure(PipeConfig) error
	Queue(pipe int, h *layer.Handle) error
	Close() error
}

// Options configures a Resource.
type Options struct {
	// Enabled gates every claim. A disabled resource is never claimed.
	Enabled bool
	// Pipes is the number of pipes available to bypass composition.
	Pipes int
}

// Resource arbitrates the overlay hardware between strategies.
type Resource struct {
	mu     sync.Mutex
	hw     Hardware
	opts   Options
	logger zerolog.Logger
	store  *BufferStore

	claimed bool
	owner   string
	state   State
}

// NewResource wraps hw. The hardware starts closed.
func NewResource(hw Hardware, opts Options, logger zerolog.Logger) *Resource {
	if opts.Pipes <= 0 {
		opts.Pipes = 2
	}
	return &Resource{
		hw:     hw,
		opts:   opts,
		logger: logger,
		store:  NewBufferStore(),
		state:  Closed,
	}
}

// Enabled reports whether the resource may be claimed at all.
func (r *Resource) Enabled() bool {
	return r != nil && r.opts.Enabled && r.hw != nil
}

// Pipes returns the number of pipes.
func (r *Resource) Pipes() int {
	return r.opts.Pipes
}

// Claim reserves the resource for owner in the given state. It returns false
// when another strategy already holds it this frame or the hardware refuses
// the state change. Contention is never an error.
func (r *Resource) Claim(owner string, state State) bool {
	if !r.Enabled() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.claimed {
		return false
	}
	if r.state != state {
		if err := r.hw.SetState(state); err != nil {
			r.logger.Warn().Err(err).
				Str("event", "overlay.state_rejected").
				Str("owner", owner).
				Str("old_state", r.state.String()).
				Str("new_state", state.String()).
				Msg("overlay state change rejected")
			return false
		}
		r.logger.Debug().
			Str("event", "overlay.state_changed").
			Str("old_state", r.state.String()).
			Str("new_state", state.String()).
			Msg("overlay state changed")
		r.state = state
	}
	r.claimed = true
	r.owner = owner
	metrics.SetOverlayInUse(true)
	return true
}

// Configure programs one pipe. The caller must hold the claim.
func (r *Resource) Configure(cfg PipeConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.claimed {
		return ErrNotClaimed
	}
	if cfg.Pipe < 0 || cfg.Pipe >= r.opts.Pipes {
		return hwerr.Invalid("pipe %d out of range", cfg.Pipe)
	}
	return hwerr.IO("overlay configure", r.hw.Configure(cfg))
}

// Queue hands a buffer to a configured pipe and keeps it referenced until
// the next frame retires it.
func (r *Resource) Queue(pipe int, h *layer.Handle) error {
	if h == nil {
		return hwerr.Invalid("pipe %d: nil buffer", pipe)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Closed {
		return ErrNotClaimed
	}
	if err := r.hw.Queue(pipe, h); err != nil {
		return hwerr.IO(fmt.Sprintf("overlay queue pipe %d", pipe), err)
	}
	r.store.Hold(h)
	return nil
}

// InUse reports whether a strategy claimed the resource this frame.
func (r *Resource) InUse() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimed
}

// Owner returns the strategy holding the claim, or "".
func (r *Resource) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// State returns the current hardware mode.
func (r *Resource) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ResetFrame drops the per-frame claim. The hardware keeps its mode so an
// unchanged frame does not reprogram it.
func (r *Resource) ResetFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed = false
	r.owner = ""
	metrics.SetOverlayInUse(false)
}

// Release drops the claim if owner holds it. Strategies call it when they
// fail after claiming so a lower-priority strategy may still run.
func (r *Resource) Release(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.claimed || r.owner != owner {
		return
	}
	r.claimed = false
	r.owner = ""
	metrics.SetOverlayInUse(false)
}

// EndFrame retires buffers queued during the previous frame.
func (r *Resource) EndFrame() {
	r.store.Retire()
}

// Held returns the number of buffers still referenced by the pipes.
func (r *Resource) Held() int {
	return r.store.Len()
}

// Close forces the hardware to the closed state and releases every held buffer.
func (r *Resource) Close() error {
	if r == nil || r.hw == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.claimed = false
	r.owner = ""
	metrics.SetOverlayInUse(false)
	r.store.ReleaseAll()
	if r.state == Closed {
		return nil
	}
	if err := r.hw.SetState(Closed); err != nil {
		return hwerr.IO("overlay close", err)
	}
	r.logger.Debug().
		Str("event", "overlay.closed").
		Str("old_state", r.state.String()).
		Msg("overlay closed")
	r.state = Closed
	return nil
}

// Shutdown closes the resource and the underlying hardware.
func (r *Resource) Shutdown() error {
	if r == nil || r.hw == nil {
		return nil
	}
	return errors.Join(r.Close(), hwerr.IO("overlay shutdown", r.hw.Close()))
}
