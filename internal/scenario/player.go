// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/hwcomposer/internal/layer"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
)

const (
	primaryDisplay  = 0
	externalDisplay = 1
)

// Composer is the part of the composer device the player drives.
type Composer interface {
	Prepare(ctx context.Context, displays []*layer.List) error
	Commit(ctx context.Context, displays []*layer.List) error
	Blank(dpy int, blank bool) error
	HandleHotplug(dpy int, connected bool) error
}

// Player replays a scenario against a composer, one frame per period.
type Player struct {
	composer Composer
	scenario *Scenario
	period   time.Duration
	loop     bool
	fences   FenceSource
	logger   zerolog.Logger

	played   atomic.Uint64
	degraded atomic.Uint64
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPeriod sets the frame period. Zero plays frames back to back.
func WithPeriod(d time.Duration) PlayerOption {
	return func(p *Player) { p.period = d }
}

// WithLoop restarts the scenario after its last frame.
func WithLoop(loop bool) PlayerOption {
	return func(p *Player) { p.loop = loop }
}

// WithFences sets the acquire fence source.
func WithFences(src FenceSource) PlayerOption {
	return func(p *Player) { p.fences = src }
}

// WithLogger sets the player logger.
func WithLogger(l zerolog.Logger) PlayerOption {
	return func(p *Player) { p.logger = l }
}

// NewPlayer returns a player for s.
func NewPlayer(c Composer, s *Scenario, opts ...PlayerOption) *Player {
	p := &Player{
		composer: c,
		scenario: s,
		period:   time.Second / 60,
		logger:   xglog.WithComponent("scenario"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Played returns the number of frames composed so far.
func (p *Player) Played() uint64 {
	return p.played.Load()
}

// Degraded returns the number of frames whose prepare or commit reported an error.
func (p *Player) Degraded() uint64 {
	return p.degraded.Load()
}

// Run plays the scenario until it ends (or forever with WithLoop) or ctx
// is cancelled. Cancellation is not an error.
func (p *Player) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if p.period > 0 {
		t := time.NewTicker(p.period)
		defer t.Stop()
		tick = t.C
	}

	p.logger.Info().
		Str(xglog.FieldEvent, "scenario.start").
		Str("scenario", p.scenario.Name).
		Int("frames", p.scenario.Count()).
		Dur("period", p.period).
		Bool("loop", p.loop).
		Msg("replaying scenario")

	for {
		for i, f := range p.scenario.Frames {
			for r := 0; r < f.Times(); r++ {
				if tick != nil {
					select {
					case <-ctx.Done():
						return p.stop(ctx)
					case <-tick:
					}
				} else if ctx.Err() != nil {
					return p.stop(ctx)
				}
				if err := p.Step(ctx, f, r == 0); err != nil {
					return fmt.Errorf("%s: %w", f.label(i), err)
				}
			}
		}
		if !p.loop {
			p.logger.Info().
				Str(xglog.FieldEvent, "scenario.done").
				Uint64("played", p.Played()).
				Uint64("degraded", p.Degraded()).
				Msg("scenario finished")
			return nil
		}
	}
}

func (p *Player) stop(ctx context.Context) error {
	p.logger.Info().
		Str(xglog.FieldEvent, "scenario.stopped").
		Uint64("played", p.Played()).
		Msg("scenario stopped")
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// Step composes one frame. Display events attached to the frame are applied
// first when first is set. Composer errors degrade the frame and are logged;
// only a frame that cannot be built fails the step.
func (p *Player) Step(ctx context.Context, f Frame, first bool) error {
	if first {
		if f.External != nil {
			if err := p.composer.HandleHotplug(externalDisplay, *f.External); err != nil {
				return fmt.Errorf("hotplug: %w", err)
			}
		}
		if f.Blank != nil {
			if err := p.composer.Blank(primaryDisplay, *f.Blank); err != nil {
				p.logger.Warn().Err(err).
					Str(xglog.FieldEvent, "scenario.blank_failed").
					Bool("blank", *f.Blank).
					Msg("blank failed")
			}
		}
	}

	list, err := f.Build(p.fences)
	if err != nil {
		return err
	}
	defer func() { _ = Release(list) }()

	displays := []*layer.List{list}
	err = errors.Join(p.composer.Prepare(ctx, displays), p.composer.Commit(ctx, displays))
	p.played.Add(1)
	if err != nil {
		p.degraded.Add(1)
		p.logger.Debug().Err(err).
			Str(xglog.FieldEvent, "scenario.frame_degraded").
			Str("frame", f.Name).
			Msg("frame degraded")
	}
	return nil
}
