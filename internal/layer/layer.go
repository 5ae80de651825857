// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package layer defines the per-frame layer list handed to the composer.
// Layers are owned by the caller for one prepare/commit cycle and are never
// retained past it.
package layer

import (
	"github.com/ManuGH/hwcomposer/internal/fence"
)

// Composition tags how a layer is composed this frame.
type Composition int

const (
	// Framebuffer layers are composed in software into the framebuffer target.
	Framebuffer Composition = iota
	// Overlay layers were claimed by a hardware strategy.
	Overlay
	// FramebufferTarget is the last layer of every list: the composed framebuffer itself.
	FramebufferTarget
)

// String returns the string representation of the composition type.
func (c Composition) String() string {
	switch c {
	case Framebuffer:
		return "framebuffer"
	case Overlay:
		return "overlay"
	case FramebufferTarget:
		return "framebuffer_target"
	default:
		return "unknown"
	}
}

// Flag carries per-layer input flags set by the upstream compositor.
type Flag uint32

const (
	// FlagSkip marks a layer the compositor handles itself this frame.
	FlagSkip Flag = 1 << 0
)

// Hint carries per-layer output hints set by the composer.
type Hint uint32

const (
	// HintClearFB asks the compositor to clear the framebuffer under an overlay layer.
	HintClearFB Hint = 1 << 1
)

// ListFlag carries per-list input flags.
type ListFlag uint32

const (
	// GeometryChanged is set when the layer stack changed since the last frame.
	GeometryChanged ListFlag = 1 << 0
)

// Transform is the layer rotation/flip bitmask.
type Transform uint32

// Transform bits.
const (
	TransformFlipH  Transform = 1 << 0
	TransformFlipV  Transform = 1 << 1
	TransformRot90  Transform = 1 << 2
	TransformRot180           = TransformFlipH | TransformFlipV
	TransformRot270           = TransformRot180 | TransformRot90
)

// Blending is the layer blend mode.
type Blending int32

// Blend modes.
const (
	BlendNone          Blending = 0x0100
	BlendPremultiplied Blending = 0x0105
	BlendCoverage      Blending = 0x0405
)

// Layer is one drawable surface of a frame.
type Layer struct {
	Composition  Composition
	Hints        Hint
	Flags        Flag
	Handle       *Handle
	Transform    Transform
	Blending     Blending
	SourceCrop   Rect
	DisplayFrame Rect

	// AcquireFence is consumed (closed) at most once by the composer.
	AcquireFence *fence.Fence
	// ReleaseFence is produced at most once by the composer and owned by the caller afterwards.
	ReleaseFence *fence.Fence
}

// IsSkip reports whether the compositor flagged the layer as skip.
func (l *Layer) IsSkip() bool {
	return l != nil && l.Flags&FlagSkip != 0
}

// List is the ordered layer stack of one display for one frame.
// The last layer is always the framebuffer target.
type List struct {
	Layers []*Layer
	Flags  ListFlag
}

// Len returns the number of layers including the framebuffer target.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Layers)
}

// Target returns the framebuffer target (last) layer, or nil for an empty list.
func (l *List) Target() *Layer {
	if l.Len() == 0 {
		return nil
	}
	return l.Layers[len(l.Layers)-1]
}

// AppLayers returns every layer except the framebuffer target.
func (l *List) AppLayers() []*Layer {
	if l.Len() == 0 {
		return nil
	}
	return l.Layers[:len(l.Layers)-1]
}

// Ready reports whether the list carries work: at least one layer and a
// framebuffer target backed by a buffer.
func (l *List) Ready() bool {
	t := l.Target()
	return t != nil && t.Handle != nil
}
