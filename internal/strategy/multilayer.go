// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package strategy

import (
	"errors"

	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/overlay"
)

// MultiLayer bypasses software composition entirely when every application
// layer fits on its own pipe.
type MultiLayer struct{}

func (MultiLayer) Name() Name { return NameMultiLayer }

func (m MultiLayer) Configure(env *Env, list *layer.List) bool {
	s := env.Stats
	apps := list.AppLayers()
	switch {
	case len(apps) == 0:
		return env.Decline(ReasonNoCandidate)
	case s.SkipCount > 0:
		return env.Decline(ReasonSkipPresent)
	case s.YUVCount > 0:
		return env.Decline(ReasonVideoPresent)
	case env.Displays.ExternalActive():
		return env.Decline(ReasonExternalActive)
	case len(apps) > env.Overlay.Pipes():
		return env.Decline(ReasonTooManyLayers)
	}
	for _, l := range apps {
		if l == nil || l.Handle == nil {
			return env.Decline(ReasonMissingHandle)
		}
		if layer.IsSecure(l.Handle) {
			return env.Decline(ReasonSecurePresent)
		}
	}

	if !env.claim(m.Name(), overlay.Bypass) {
		return false
	}
	attrs := env.attrs()
	for pipe, l := range apps {
		if err := env.configurePipe(pipe, l, attrs.Width, attrs.Height); err != nil {
			return env.pipeFailed(m.Name(), pipe, err)
		}
	}
	for _, l := range apps {
		claimLayer(l, 0)
	}
	return true
}

func (m MultiLayer) Draw(env *Env, list *layer.List) error {
	var errs []error
	for pipe, l := range list.AppLayers() {
		if l == nil || l.Composition != layer.Overlay {
			continue
		}
		errs = append(errs, env.Overlay.Queue(pipe, l.Handle))
	}
	return errors.Join(errs...)
}
