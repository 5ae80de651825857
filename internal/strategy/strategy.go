// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package strategy implements the composition strategies that compete for
// the overlay resource each frame.
package strategy

import (
	"github.com/rs/zerolog"

	"github.com/ManuGH/hwcomposer/internal/classify"
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/overlay"
)

type Name string

const (
	NameVideo        Name = "video"
	NameExternalOnly Name = "external_only"
	NameUIMirror     Name = "ui_mirror"
	NameMultiLayer   Name = "multi_layer"
	NameNone         Name = "none"
)

type Reason string

const (
	ReasonClaimed          Reason = "claimed"
	ReasonOverlayBusy      Reason = "overlay_busy"
	ReasonOverlayDisabled  Reason = "overlay_disabled"
	ReasonNoVideo          Reason = "no_video"
	ReasonMultipleVideo    Reason = "multiple_video"
	ReasonVideoSkipped     Reason = "video_skipped"
	ReasonVideoPresent     Reason = "video_present"
	ReasonMissingHandle    Reason = "missing_handle"
	ReasonExternalInactive Reason = "external_inactive"
	ReasonExternalActive   Reason = "external_active"
	ReasonNoExternalLayer  Reason = "no_external_layer"
	ReasonSkipPresent      Reason = "skip_present"
	ReasonTooManyLayers    Reason = "too_many_layers"
	ReasonSecurePresent    Reason = "secure_present"
	ReasonHardwareRejected Reason = "hardware_rejected"
	ReasonNoCandidate      Reason = "no_candidate"
)

// Selector is one composition strategy.
//
// Configure inspects the frame and either claims the overlay resource,
// tags the layers it takes as Overlay and returns true, or declines and
// leaves every layer untouched. Draw pushes the claimed layers to the
// hardware at commit time.
type Selector interface {
	Name() Name
	Configure(env *Env, list *layer.List) bool
	Draw(env *Env, list *layer.List) error
}

// Env is the per-display context handed to selectors.
type Env struct {
	Display  display.ID
	Stats    classify.Stats
	Overlay  *overlay.Resource
	Displays display.Snapshot
	Logger   zerolog.Logger

	reason Reason
}

// Decline records why the running selector passed and returns false.
func (e *Env) Decline(r Reason) bool {
	e.reason = r
	return false
}

// LastReason returns the reason recorded by the last Decline.
func (e *Env) LastReason() Reason {
	return e.reason
}

func (e *Env) attrs() display.Attributes {
	if !e.Display.Valid() {
		return display.Attributes{}
	}
	return e.Displays[e.Display]
}

// claim checks the common preconditions and claims the overlay in state.
func (e *Env) claim(owner Name, state overlay.State) bool {
	if !e.Overlay.Enabled() {
		return e.Decline(ReasonOverlayDisabled)
	}
	if e.Overlay.InUse() {
		return e.Decline(ReasonOverlayBusy)
	}
	if !e.Overlay.Claim(string(owner), state) {
		if e.Overlay.InUse() {
			return e.Decline(ReasonOverlayBusy)
		}
		return e.Decline(ReasonHardwareRejected)
	}
	return true
}

// configurePipe programs pipe for l, clipping the frame to the display.
func (e *Env) configurePipe(pipe int, l *layer.Layer, width, height int) error {
	crop, frame := l.SourceCrop, l.DisplayFrame
	if width > 0 && height > 0 {
		crop, frame = layer.ClipToBounds(crop, frame, width, height)
	}
	return e.Overlay.Configure(overlay.PipeConfig{
		Pipe:      pipe,
		Format:    l.Handle.Format,
		Secure:    layer.IsSecure(l.Handle),
		Transform: l.Transform,
		Crop:      crop,
		Frame:     frame,
	})
}

// pipeFailed drops the claim of owner after a pipe could not be programmed.
func (e *Env) pipeFailed(owner Name, pipe int, err error) bool {
	e.Logger.Warn().Err(err).
		Str("event", "strategy.pipe_failed").
		Str("strategy", string(owner)).
		Int("pipe", pipe).
		Msg("overlay pipe configuration failed")
	e.Overlay.Release(string(owner))
	return e.Decline(ReasonHardwareRejected)
}

func appLayer(list *layer.List, i int) *layer.Layer {
	apps := list.AppLayers()
	if i < 0 || i >= len(apps) {
		return nil
	}
	return apps[i]
}

func claimLayer(l *layer.Layer, hints layer.Hint) {
	l.Composition = layer.Overlay
	l.Hints |= hints
}
