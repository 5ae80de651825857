// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package strategy

import (
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/overlay"
)

// UIMirror mirrors the composed framebuffer target onto the external display.
// The target itself stays a framebuffer target; it is still posted to the panel.
type UIMirror struct{}

func (UIMirror) Name() Name { return NameUIMirror }

func (m UIMirror) Configure(env *Env, list *layer.List) bool {
	if !env.Displays.ExternalActive() {
		return env.Decline(ReasonExternalInactive)
	}
	target := list.Target()
	if target == nil || target.Handle == nil {
		return env.Decline(ReasonMissingHandle)
	}
	if !env.claim(m.Name(), overlay.UIMirror) {
		return false
	}

	ext := env.Displays[display.External]
	mirror := *target
	if mirror.SourceCrop.Empty() {
		mirror.SourceCrop = layer.Rect{Right: target.Handle.Width, Bottom: target.Handle.Height}
	}
	// Scale the whole panel onto the external display.
	mirror.DisplayFrame = layer.Rect{Right: ext.Width, Bottom: ext.Height}
	if err := env.configurePipe(overlay.PipeExternal, &mirror, ext.Width, ext.Height); err != nil {
		return env.pipeFailed(m.Name(), overlay.PipeExternal, err)
	}
	return true
}

func (m UIMirror) Draw(env *Env, list *layer.List) error {
	if !env.Displays.ExternalActive() {
		return nil
	}
	target := list.Target()
	if target == nil || target.Handle == nil {
		return nil
	}
	return env.Overlay.Queue(overlay.PipeExternal, target.Handle)
}
