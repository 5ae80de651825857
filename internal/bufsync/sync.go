// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bufsync waits for overlay-bound buffers before the hardware reads
// them and hands out the release fences their producers wait on.
package bufsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/hwcomposer/internal/fence"
	"github.com/ManuGH/hwcomposer/internal/hwerr"
	"github.com/ManuGH/hwcomposer/internal/layer"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/metrics"
)

// Option configures a Syncer.
type Option func(*Syncer)

// WithTimeout bounds the batch wait. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		s.timeout = d
	}
}

// WithOps sets the descriptor operations used for release fences.
func WithOps(ops fence.Ops) Option {
	return func(s *Syncer) {
		s.ops = ops
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// Syncer issues one batched wait per frame.
type Syncer struct {
	waiter  fence.Waiter
	ops     fence.Ops
	timeout time.Duration
	logger  zerolog.Logger
}

// New returns a Syncer backed by waiter.
func New(waiter fence.Waiter, opts ...Option) *Syncer {
	s := &Syncer{
		waiter: waiter,
		ops:    fence.SystemOps(),
		logger: xglog.WithComponent("bufsync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeout returns the configured wait bound.
func (s *Syncer) Timeout() time.Duration {
	return s.timeout
}

// Sync waits on the acquire fences of every overlay layer of list and
// attaches a duplicate of the resulting release fence to each of them.
//
// Acquire fences are closed exactly once whatever the outcome. On failure
// the layers are left without release fences and the error is returned;
// the frame continues unfenced.
func (s *Syncer) Sync(ctx context.Context, list *layer.List) error {
	if list == nil {
		return nil
	}

	var participants []*layer.Layer
	var acquire []*fence.Fence
	var fds []int
	for _, l := range list.Layers {
		if l == nil || l.Composition != layer.Overlay {
			continue
		}
		participants = append(participants, l)
		if fd := l.AcquireFence.Fd(); fd >= 0 {
			acquire = append(acquire, l.AcquireFence)
			fds = append(fds, fd)
		}
	}
	if len(fds) == 0 {
		metrics.RecordFenceSync("empty")
		return nil
	}

	waitCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	releaseFd, waitErr := s.waiter.WaitAndRelease(waitCtx, fds)
	metrics.ObserveFenceWait(time.Since(start))

	var errs []error
	for _, f := range acquire {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	metrics.RecordFencesConsumed(len(acquire))
	for _, l := range participants {
		l.AcquireFence = nil
	}

	if waitErr != nil {
		if releaseFd >= 0 {
			_ = s.ops.Close(releaseFd)
		}
		outcome := "error"
		if errors.Is(waitErr, context.DeadlineExceeded) && !errors.Is(waitErr, hwerr.ErrTimeout) {
			waitErr = fmt.Errorf("%w: %w", hwerr.ErrTimeout, waitErr)
		}
		if errors.Is(waitErr, hwerr.ErrTimeout) {
			outcome = "timeout"
		}
		metrics.RecordFenceSync(outcome)
		s.logger.Warn().Err(waitErr).
			Str("event", "fence.sync_failed").
			Int(xglog.FieldFences, len(fds)).
			Dur(xglog.FieldTimeout, s.timeout).
			Msg("buffer sync failed, frame continues unfenced")
		return errors.Join(append([]error{hwerr.IO("buffer sync", waitErr)}, errs...)...)
	}

	release := fence.NewWithOps(releaseFd, s.ops)
	for _, l := range participants {
		if release == nil {
			break
		}
		dup, err := release.Dup()
		if err != nil {
			errs = append(errs, hwerr.IO("release fence dup", err))
			continue
		}
		l.ReleaseFence = dup
	}
	if err := release.Close(); err != nil {
		errs = append(errs, err)
	}

	metrics.RecordFenceSync("ok")
	s.logger.Debug().
		Str("event", "fence.synced").
		Int(xglog.FieldFences, len(fds)).
		Int(xglog.FieldLayers, len(participants)).
		Msg("buffers synced")
	return errors.Join(errs...)
}
