// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package framebuffer describes the primary framebuffer device collaborator.
package framebuffer

import (
	"time"

	"github.com/ManuGH/hwcomposer/internal/layer"
)

// PowerMode is the panel power state.
type PowerMode int

const (
	PowerOn PowerMode = iota
	PowerOff
)

// String returns the power mode label.
func (p PowerMode) String() string {
	if p == PowerOff {
		return "off"
	}
	return "on"
}

// Info describes the panel.
type Info struct {
	Width  int
	Height int
	DPIX   float64
	DPIY   float64
	FPS    float64
}

// VsyncPeriod derives the vsync period from FPS, defaulting to 60Hz.
func (i Info) VsyncPeriod() time.Duration {
	fps := i.FPS
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// Device is the framebuffer device: it pans the composed target onto the panel.
type Device interface {
	// Post pans h onto the panel. PanDone is notified once the pan completes.
	Post(h *layer.Handle) error
	// CompositionComplete reports that software composition into the target finished.
	CompositionComplete() error
	Blank(PowerMode) error
	SetVsync(enabled bool) error
	Info() Info
	PanDone() *Signal
	Close() error
}
