// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package strategy

import (
	"errors"

	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/overlay"
)

// VideoOverlay puts a single unskipped video layer on the primary pipe. With
// an active external display the overlay runs in TV mode and the closed
// caption layer, if any, goes to the external pipe.
type VideoOverlay struct{}

func (VideoOverlay) Name() Name { return NameVideo }

func (v VideoOverlay) Configure(env *Env, list *layer.List) bool {
	s := env.Stats
	switch {
	case s.YUVCount == 0:
		return env.Decline(ReasonNoVideo)
	case s.YUVCount > 1:
		return env.Decline(ReasonMultipleVideo)
	case s.YUVSkip:
		return env.Decline(ReasonVideoSkipped)
	}
	yuv := appLayer(list, s.YUVIndex)
	if yuv == nil || yuv.Handle == nil {
		return env.Decline(ReasonMissingHandle)
	}

	tv := env.Displays.ExternalActive()
	state := overlay.VideoOnPanel
	if tv {
		state = overlay.VideoOnPanelTV
	}
	if !env.claim(v.Name(), state) {
		return false
	}

	attrs := env.attrs()
	if err := env.configurePipe(overlay.PipePrimary, yuv, attrs.Width, attrs.Height); err != nil {
		return env.pipeFailed(v.Name(), overlay.PipePrimary, err)
	}

	var cc *layer.Layer
	if tv {
		cc = appLayer(list, s.CCIndex)
	}
	if cc != nil && cc.Handle != nil {
		ext := env.Displays[display.External]
		if err := env.configurePipe(overlay.PipeExternal, cc, ext.Width, ext.Height); err != nil {
			return env.pipeFailed(v.Name(), overlay.PipeExternal, err)
		}
		claimLayer(cc, 0)
	}
	claimLayer(yuv, layer.HintClearFB)
	return true
}

func (v VideoOverlay) Draw(env *Env, list *layer.List) error {
	yuv := appLayer(list, env.Stats.YUVIndex)
	if yuv == nil || yuv.Composition != layer.Overlay {
		return nil
	}
	if yuv.Handle == nil {
		return hwerr.Invalid("video layer %d has no buffer", env.Stats.YUVIndex)
	}
	err := env.Overlay.Queue(overlay.PipePrimary, yuv.Handle)

	if cc := appLayer(list, env.Stats.CCIndex); cc != nil && cc.Composition == layer.Overlay && env.Displays.ExternalActive() {
		err = errors.Join(err, env.Overlay.Queue(overlay.PipeExternal, cc.Handle))
	}
	return err
}
