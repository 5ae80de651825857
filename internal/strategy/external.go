// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package strategy

import (
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/overlay"
)

// ExternalOnly routes the external-only layer (the BLOCK layer when one is
// present) to the external pipe so it never shows on the panel.
type ExternalOnly struct{}

func (ExternalOnly) Name() Name { return NameExternalOnly }

func (x ExternalOnly) Configure(env *Env, list *layer.List) bool {
	if !env.Displays.ExternalActive() {
		return env.Decline(ReasonExternalInactive)
	}
	if !env.Stats.HasExternal() {
		return env.Decline(ReasonNoExternalLayer)
	}
	ext := appLayer(list, env.Stats.ExtIndex)
	if ext == nil || ext.Handle == nil {
		return env.Decline(ReasonMissingHandle)
	}

	state := overlay.ExtOnly
	if env.Stats.ExtBlockPresent {
		state = overlay.ExtBlock
	}
	if !env.claim(x.Name(), state) {
		return false
	}
	attrs := env.Displays[display.External]
	if err := env.configurePipe(overlay.PipeExternal, ext, attrs.Width, attrs.Height); err != nil {
		return env.pipeFailed(x.Name(), overlay.PipeExternal, err)
	}
	claimLayer(ext, 0)
	return true
}

func (x ExternalOnly) Draw(env *Env, list *layer.List) error {
	ext := appLayer(list, env.Stats.ExtIndex)
	if ext == nil || ext.Composition != layer.Overlay {
		return nil
	}
	return env.Overlay.Queue(overlay.PipeExternal, ext.Handle)
}
