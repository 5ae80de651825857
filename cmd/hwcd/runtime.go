// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ManuGH/hwcomposer/internal/composer"
	"github.com/ManuGH/hwcomposer/internal/config"
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/fence"
	"github.com/ManuGH/hwcomposer/internal/framebuffer"
	"github.com/ManuGH/hwcomposer/internal/layer"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/overlay"
	"github.com/ManuGH/hwcomposer/internal/property"
	"github.com/ManuGH/hwcomposer/internal/scenario"
	"github.com/ManuGH/hwcomposer/internal/strategy"
	"github.com/ManuGH/hwcomposer/internal/telemetry"
	"github.com/ManuGH/hwcomposer/internal/vsync"
)

// runtime is the composer together with the soft devices it owns.
type runtime struct {
	composer *composer.Composer
	player   *scenario.Player

	waiter   *fence.PollWaiter
	securing *property.FileFlag
}

// openRuntime wires soft devices into a composer and, if configured, a scenario player.
func openRuntime(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*runtime, error) {
	var sc *scenario.Scenario
	if cfg.Scenario.Path != "" {
		var err error
		if sc, err = scenario.Load(cfg.Scenario.Path); err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
	}

	fb := framebuffer.NewSoft(framebuffer.Info{
		Width:  cfg.Panel.Width,
		Height: cfg.Panel.Height,
		DPIX:   cfg.Panel.DPIX,
		DPIY:   cfg.Panel.DPIY,
		FPS:    cfg.Panel.FPS,
	})

	rt := &runtime{waiter: fence.NewPollWaiter()}
	// Soft panels scan out immediately, so each post retires the oldest release fence.
	fb.OnPost(func(*layer.Handle) { _ = rt.waiter.Retire() })

	var securing property.Flag = property.NewStatic(false)
	if cfg.Securing.PropertyFile != "" {
		rt.securing = property.NewFileFlag(cfg.Securing.PropertyFile)
		if err := rt.securing.Start(ctx); err != nil {
			logger.Warn().
				Err(err).
				Str("event", "securing.watch_failed").
				Str("path", cfg.Securing.PropertyFile).
				Msg("securing property will not follow file changes")
		}
		securing = rt.securing
	}

	c, err := composer.Open(composer.DeviceName, composer.Deps{
		Framebuffer: fb,
		Overlay:     overlay.NewSoft(),
		External:    display.NewSoftExternal(),
		Waiter:      rt.waiter,
		Securing:    securing,
	}, composerOptions(cfg, logger)...)
	if err != nil {
		rt.closeDevices()
		return nil, err
	}
	rt.composer = c

	if err := c.RegisterCallbacks(hostProcs(c, xglog.WithComponent("host"))); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("register callbacks: %w", err)
	}
	if cfg.External.Supported && cfg.External.ConnectAtStart {
		if err := c.HandleHotplug(int(display.External), true); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("connect external display: %w", err)
		}
	}

	if sc != nil {
		rt.player = scenario.NewPlayer(c, sc,
			scenario.WithPeriod(cfg.Panel.RefreshPeriod()),
			scenario.WithLoop(cfg.Scenario.Loop),
			scenario.WithFences(fence.NewSignalled),
			scenario.WithLogger(xglog.WithComponent("scenario")),
		)
	}
	return rt, nil
}

func composerOptions(cfg config.AppConfig, logger zerolog.Logger) []composer.Option {
	names := make([]strategy.Name, 0, len(cfg.Strategies))
	for _, s := range cfg.Strategies {
		names = append(names, strategy.Name(s))
	}

	ext := display.Attributes{
		Width:       cfg.External.Width,
		Height:      cfg.External.Height,
		VsyncPeriod: config.PanelConfig{FPS: cfg.External.FPS}.RefreshPeriod(),
	}

	return []composer.Option{
		composer.WithLogger(logger.With().Str(xglog.FieldComponent, "composer").Logger()),
		composer.WithTracer(telemetry.Tracer(telemetry.InstrumentationName)),
		composer.WithStrategies(names...),
		composer.WithOverlay(overlay.Options{Enabled: cfg.Overlay.Enabled, Pipes: cfg.Overlay.Pipes}),
		composer.WithFenceTimeout(cfg.Fence.Timeout),
		composer.WithExternal(cfg.External.Supported, ext),
		composer.WithSoftVsync(cfg.Vsync.Soft),
		composer.WithEventQueue(cfg.Vsync.EventQueue),
	}
}

// hostProcs stands in for the display server: it logs notifications and
// schedules a redraw on invalidate.
func hostProcs(c *composer.Composer, logger zerolog.Logger) vsync.Procs {
	return vsync.Procs{
		Invalidate: func() {
			logger.Debug().Str(xglog.FieldEvent, "host.invalidate").Msg("redraw requested")
		},
		Vsync: func(dpy int, ts int64) {
			logger.Trace().Int(xglog.FieldDisplay, dpy).Int64("timestamp", ts).Msg("vsync")
		},
		Hotplug: func(dpy int, connected bool) {
			logger.Info().
				Str(xglog.FieldEvent, "host.hotplug").
				Int(xglog.FieldDisplay, dpy).
				Bool("connected", connected).
				Str(xglog.FieldDeviceID, c.ID()).
				Msg("display hotplug")
		},
	}
}

// Close closes the composer, then the devices the composer does not own.
func (rt *runtime) Close() error {
	var errs []error
	if rt.composer != nil {
		if err := rt.composer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close composer: %w", err))
		}
	}
	errs = append(errs, rt.closeDevices())
	return errors.Join(errs...)
}

func (rt *runtime) closeDevices() error {
	var errs []error
	if rt.securing != nil {
		errs = append(errs, rt.securing.Close())
	}
	if rt.waiter != nil {
		errs = append(errs, rt.waiter.Close())
	}
	return errors.Join(errs...)
}
