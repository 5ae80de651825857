// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package composer

import (
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/framebuffer"
	"github.com/ManuGH/hwcomposer/internal/hwerr"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/metrics"
)

// Event identifies a controllable event source.
type Event int

const (
	EventVsync Event = 0
)

// QueryParam identifies a Query parameter.
type QueryParam int

const (
	QueryBackgroundLayerSupported QueryParam = 0
	QueryVsyncPeriod              QueryParam = 1
	QueryDisplayTypesSupported    QueryParam = 2
)

// EventControl enables or disables an event source on dpy. Only vsync is
// recognised; a failing hardware control propagates its error.
func (c *Composer) EventControl(dpy int, event Event, enabled bool) error {
	if c.closed.Load() {
		return hwerr.ErrClosed
	}
	if event != EventVsync {
		return hwerr.Invalid("event %d", int(event))
	}
	id := display.ID(dpy)
	var err error
	switch id {
	case display.Primary:
		err = c.fb.SetVsync(enabled)
		if err == nil && c.softVsync {
			err = c.ticker.SetEnabled(enabled)
		}
	case display.External:
		if c.ext == nil {
			return hwerr.ErrUnavailable
		}
		err = c.ext.SetVsync(enabled)
	default:
		return hwerr.Invalid("display %d", dpy)
	}
	if err != nil {
		c.logger.Error().Err(err).
			Str(xglog.FieldEvent, "vsync.control_failed").
			Str(xglog.FieldDisplay, id.String()).
			Bool("enabled", enabled).
			Msg("vsync control failed")
		return hwerr.IO("vsync control", err)
	}
	c.logger.Debug().
		Str(xglog.FieldEvent, "vsync.control").
		Str(xglog.FieldDisplay, id.String()).
		Bool("enabled", enabled).
		Msg("vsync control")
	return nil
}

// Blank moves dpy between ACTIVE and BLANKED. Blanking the primary display
// first closes the overlay, then powers the panel down; unblanking only
// powers it up. External blanking only records the flag. Blank waits for
// any in-flight commit.
func (c *Composer) Blank(dpy int, blank bool) error {
	if c.closed.Load() {
		return hwerr.ErrClosed
	}
	id := display.ID(dpy)
	if !id.Valid() {
		return hwerr.Invalid("display %d", dpy)
	}

	return c.table.Exclusive(func() error {
		logger := c.logger.With().Str(xglog.FieldDisplay, id.String()).Bool("blank", blank).Logger()
		logger.Debug().Str(xglog.FieldEvent, "blank.start").Msg("blank transition")

		if id == display.Primary {
			if blank {
				if err := c.overlay.Close(); err != nil {
					logger.Error().Err(err).Str(xglog.FieldEvent, "blank.overlay_failed").Msg("overlay close failed, panel left on")
					return err
				}
				if err := c.fb.Blank(framebuffer.PowerOff); err != nil {
					logger.Error().Err(err).Str(xglog.FieldEvent, "blank.failed").Msg("blank failed")
					return hwerr.IO("blank", err)
				}
			} else if err := c.fb.Blank(framebuffer.PowerOn); err != nil {
				logger.Error().Err(err).Str(xglog.FieldEvent, "blank.failed").Msg("unblank failed")
				return hwerr.IO("unblank", err)
			}
		}

		prev, err := c.table.SetActive(id, !blank)
		if err != nil {
			return err
		}
		state := "active"
		if blank {
			state = "blanked"
		}
		if prev != !blank {
			metrics.RecordBlankTransition(id.String(), state)
		}
		metrics.SetDisplayActive(id.String(), !blank)
		logger.Info().
			Str(xglog.FieldEvent, "blank.done").
			Str(xglog.FieldNewState, state).
			Msg("blank transition done")
		return nil
	})
}

// Query answers a device capability question.
func (c *Composer) Query(param QueryParam) (int, error) {
	switch param {
	case QueryBackgroundLayerSupported:
		return 0, nil
	case QueryVsyncPeriod:
		a, err := c.table.Get(display.Primary)
		if err != nil {
			return 0, err
		}
		return a.RefreshHz(), nil
	case QueryDisplayTypesSupported:
		supported := display.PrimaryBit
		if c.externalSupported {
			supported |= display.ExternalBit
		}
		return supported, nil
	default:
		return 0, hwerr.Invalid("query param %d", int(param))
	}
}

// DisplayConfigs returns the config ids of dpy. The primary display has the
// single config 0; the external display is unavailable until it is both
// supported and connected.
func (c *Composer) DisplayConfigs(dpy int) ([]uint32, error) {
	switch id := display.ID(dpy); id {
	case display.Primary:
		return []uint32{0}, nil
	case display.External:
		a, err := c.table.Get(id)
		if err != nil {
			return nil, err
		}
		if !c.externalSupported || !a.Connected {
			return nil, hwerr.ErrUnavailable
		}
		return []uint32{0}, nil
	default:
		return nil, hwerr.Invalid("display %d", dpy)
	}
}

// DisplayAttributes fills values with the attributes requested in attrs,
// which is read up to the first NoAttribute (or its end). State is never
// mutated. An unknown attribute fails the call; values filled before it
// are kept.
func (c *Composer) DisplayAttributes(dpy int, config uint32, attrs []display.Attribute, values []int32) error {
	id := display.ID(dpy)
	if !id.Valid() {
		return hwerr.Invalid("display %d", dpy)
	}
	if config != 0 {
		return hwerr.Invalid("display %d config %d", dpy, config)
	}
	n := 0
	for n < len(attrs) && attrs[n] != display.NoAttribute {
		n++
	}
	if len(values) < n {
		return hwerr.Invalid("%d attributes requested, room for %d", n, len(values))
	}

	a, err := c.table.Get(id)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		v, err := a.Value(attrs[i])
		if err != nil {
			c.logger.Warn().Err(err).
				Str(xglog.FieldEvent, "display.unknown_attribute").
				Str(xglog.FieldDisplay, id.String()).
				Int32("attribute", int32(attrs[i])).
				Msg("unknown display attribute")
			return err
		}
		values[i] = v
	}
	return nil
}
