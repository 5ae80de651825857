// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package classify derives per-frame layer statistics in one linear pass.
package classify

import (
	"github.com/rs/zerolog"

	"github.com/ManuGH/hwcomposer/internal/layer"
)

// Stats is the per-display statistics snapshot of one frame. It is
// recomputed from scratch every frame and never updated incrementally.
type Stats struct {
	NumLayers int

	YUVCount  int
	YUVIndex  int
	YUVSkip   bool
	YUVSecure bool

	SkipCount int

	CCIndex int

	// ExtCount counts external-only and BLOCK layers, closed captions excluded.
	ExtCount int
	// ExtIndex points at the BLOCK layer when present, else the last external-only layer.
	ExtIndex        int
	ExtBlockPresent bool
}

// Empty returns the snapshot of a frame with no classifiable layers.
func Empty() Stats {
	return Stats{YUVIndex: -1, CCIndex: -1, ExtIndex: -1}
}

// HasVideo reports whether exactly one unskipped video layer is present.
func (s Stats) HasVideo() bool {
	return s.YUVCount == 1 && !s.YUVSkip && s.YUVIndex >= 0
}

// HasExternal reports whether an external-only or BLOCK layer was recorded.
func (s Stats) HasExternal() bool {
	return s.ExtCount > 0 && s.ExtIndex >= 0
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("layers", s.NumLayers).
		Int("yuv_count", s.YUVCount).
		Int("yuv_index", s.YUVIndex).
		Bool("yuv_skip", s.YUVSkip).
		Bool("yuv_secure", s.YUVSecure).
		Int("skip_count", s.SkipCount).
		Int("cc_index", s.CCIndex).
		Int("ext_count", s.ExtCount).
		Int("ext_index", s.ExtIndex).
		Bool("ext_block", s.ExtBlockPresent)
}

// Classify scans the application layers of list (the framebuffer target is
// never classified). Per layer the first matching category wins:
// video, closed caption, external BLOCK, external-only, skip.
func Classify(list *layer.List) Stats {
	s := Empty()
	apps := list.AppLayers()
	s.NumLayers = len(apps)

	for i, l := range apps {
		if l == nil {
			continue
		}
		h := l.Handle
		switch {
		case layer.IsYUV(h):
			s.YUVCount++
			s.YUVIndex = i
			s.YUVSecure = layer.IsSecure(h)
			// Secure video is never dropped from composition.
			if l.IsSkip() && !s.YUVSecure {
				s.YUVSkip = true
				s.SkipCount++
			}
		case layer.IsExtCC(h):
			s.CCIndex = i
		case layer.IsExtBlock(h):
			s.ExtCount++
			s.ExtIndex = i
			s.ExtBlockPresent = true
		case layer.IsExtOnly(h):
			s.ExtCount++
			if !s.ExtBlockPresent {
				s.ExtIndex = i
			}
		case l.IsSkip():
			s.SkipCount++
		}
	}
	return s
}
