// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package composer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/hwcomposer/internal/classify"
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"github.com/ManuGH/hwcomposer/internal/layer"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/metrics"
	"github.com/ManuGH/hwcomposer/internal/overlay"
	"github.com/ManuGH/hwcomposer/internal/strategy"
	"github.com/ManuGH/hwcomposer/internal/telemetry"
)

const (
	phasePrepare = "prepare"
	phaseCommit  = "commit"
)

type phaseKey struct{}

func withPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

func phaseFrom(ctx context.Context) string {
	if p, ok := ctx.Value(phaseKey{}).(string); ok {
		return p
	}
	return "unknown"
}

// Prepare classifies each display's layers and lets the strategies claim
// the overlay. Per-frame state is reset first. While hardware securing is
// in progress nothing is classified and every layer stays in software
// composition. A list at an unknown display index yields an invalid-argument
// error; the other displays are still prepared.
func (c *Composer) Prepare(ctx context.Context, displays []*layer.List) error {
	if c.closed.Load() {
		return hwerr.ErrClosed
	}
	ctx = withPhase(ctx, phasePrepare)
	ctx, span := c.tracer.Start(ctx, "hwc.prepare")
	defer span.End()

	var err error
	_ = c.table.Exclusive(func() error {
		c.frame++
		ctx = xglog.ContextWithFrame(ctx, c.frame)
		ctx = xglog.ContextWithDeviceID(ctx, c.id)
		span.SetAttributes(telemetry.FrameAttributes(phasePrepare, c.frame, len(displays))...)
		err = c.prepareLocked(ctx, span, displays)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prepare failed")
	}
	return err
}

func (c *Composer) prepareLocked(ctx context.Context, span trace.Span, displays []*layer.List) error {
	c.overlay.ResetFrame()
	for i := range c.stats {
		c.stats[i] = classify.Empty()
		c.envs[i] = nil
		c.decisions[i] = strategy.Decision{Strategy: strategy.NameNone}
	}

	if c.securing.Enabled() {
		metrics.RecordPrepareSkipped("securing")
		span.AddEvent("securing_in_progress")
		logger := xglog.WithContext(ctx, c.logger)
		logger.Debug().
			Str(xglog.FieldEvent, "prepare.skipped").
			Str(xglog.FieldReason, "securing").
			Msg("hardware securing in progress, skipping overlay composition")
		return nil
	}

	snapshot := c.table.Snapshot()
	var errs []error
	for i, list := range displays {
		if !list.Ready() {
			continue
		}
		id := display.ID(i)
		switch id {
		case display.Primary:
			if !snapshot[id].Active {
				continue
			}
			c.preparePrimary(ctx, span, list, snapshot)
		case display.External:
			// External lists are composed by the host; nothing to classify yet.
		default:
			metrics.RecordFrameError(phasePrepare, "invalid")
			errs = append(errs, hwerr.Invalid("display %d", i))
			continue
		}
		metrics.RecordFrame(phasePrepare, id.String())
	}
	return errors.Join(errs...)
}

func (c *Composer) preparePrimary(ctx context.Context, span trace.Span, list *layer.List, snapshot display.Snapshot) {
	id := display.Primary
	logger := xglog.WithContext(ctx, c.logger).With().Str(xglog.FieldDisplay, id.String()).Logger()

	stats := classify.Classify(list)
	metrics.ObserveLayers(stats.NumLayers)
	c.stats[id] = stats

	env := &strategy.Env{
		Display:  id,
		Stats:    stats,
		Overlay:  c.overlay,
		Displays: snapshot,
		Logger:   logger,
	}
	decision := c.chain.Select(env, list)
	c.envs[id] = env
	c.decisions[id] = decision

	span.SetAttributes(telemetry.DecisionAttributes(id.String(), stats.NumLayers, string(decision.Strategy), string(decision.Reason))...)
	logger.Debug().
		Str(xglog.FieldEvent, "prepare.decided").
		Object("stats", stats).
		Str(xglog.FieldStrategy, string(decision.Strategy)).
		Str(xglog.FieldReason, string(decision.Reason)).
		Msg("composition decided")
	if list.Flags&layer.GeometryChanged != 0 {
		layer.DumpList(logger, list)
	}
}

// Commit synchronises buffers, draws the claimed strategy and posts the
// framebuffer target of each display. Failures of individual steps degrade
// the frame instead of aborting it; the target is always posted. The
// collected errors are returned joined.
func (c *Composer) Commit(ctx context.Context, displays []*layer.List) error {
	if c.closed.Load() {
		return hwerr.ErrClosed
	}
	ctx = withPhase(ctx, phaseCommit)
	ctx, span := c.tracer.Start(ctx, "hwc.commit")
	defer span.End()

	err := c.table.Exclusive(func() error {
		ctx = xglog.ContextWithFrame(ctx, c.frame)
		ctx = xglog.ContextWithDeviceID(ctx, c.id)
		span.SetAttributes(telemetry.FrameAttributes(phaseCommit, c.frame, len(displays))...)
		return c.commitLocked(ctx, displays)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit degraded")
	}
	return err
}

func (c *Composer) commitLocked(ctx context.Context, displays []*layer.List) error {
	var errs []error

	// Nobody claimed the overlay in prepare: release whatever the hardware still holds.
	if !c.overlay.InUse() && c.overlay.State() != overlay.Closed {
		if err := c.overlay.Close(); err != nil {
			c.degraded(ctx, "overlay_close", err)
			errs = append(errs, err)
		} else {
			metrics.RecordOverlayForcedClose()
		}
	}

	for i, list := range displays {
		if list.Len() == 0 {
			continue
		}
		id := display.ID(i)
		switch id {
		case display.Primary:
			errs = append(errs, c.commitPrimary(ctx, list))
		case display.External:
			c.commitExternal(ctx, list)
		default:
			metrics.RecordFrameError(phaseCommit, "invalid")
			errs = append(errs, hwerr.Invalid("display %d", i))
			continue
		}
		metrics.RecordFrame(phaseCommit, id.String())
	}

	c.overlay.EndFrame()
	return errors.Join(errs...)
}

func (c *Composer) commitPrimary(ctx context.Context, list *layer.List) error {
	var errs []error
	fail := func(kind string, err error) {
		if err == nil {
			return
		}
		c.degraded(ctx, kind, err)
		errs = append(errs, err)
	}

	// The previous pan must finish before the target buffer is reused.
	if c.posted {
		fail("pan_wait", c.fb.PanDone().Wait(ctx))
		c.posted = false
	}
	fail("composition_complete", hwerr.IO("composition complete", c.fb.CompositionComplete()))

	syncCtx, span := c.tracer.Start(ctx, "hwc.sync")
	span.SetAttributes(telemetry.FenceAttributes(countOverlay(list), c.syncer.Timeout().Milliseconds())...)
	if err := c.syncer.Sync(syncCtx, list); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "buffer sync failed")
		fail("sync", err)
	}
	span.End()

	snapshot := c.table.Snapshot()
	if env := c.envs[display.Primary]; env != nil {
		env.Displays = snapshot
		fail("draw", c.decisions[display.Primary].Draw(env, list))
	}
	if c.ext != nil && snapshot.ExternalActive() {
		fail("external_post", hwerr.IO("external post", c.ext.Post()))
	}

	// The target is posted whatever the skip flags say: the panel must pan every frame.
	if target := list.Target(); target != nil {
		if err := c.fb.Post(target.Handle); err != nil {
			fail("post", hwerr.IO("framebuffer post", err))
		} else {
			c.posted = true
		}
	}
	return errors.Join(errs...)
}

func (c *Composer) commitExternal(ctx context.Context, list *layer.List) {
	logger := xglog.WithContext(ctx, c.logger)
	logger.Trace().
		Str(xglog.FieldEvent, "commit.external").
		Int(xglog.FieldLayers, list.Len()).
		Msg("external list composed by host")
}

func countOverlay(list *layer.List) int {
	n := 0
	for _, l := range list.AppLayers() {
		if l != nil && l.Composition == layer.Overlay {
			n++
		}
	}
	return n
}
