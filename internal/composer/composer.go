// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package composer is the frame orchestrator and device API of the hardware
// composer. One Composer owns the overlay, the framebuffer device, the
// display state table and the event goroutine; nothing is global.
package composer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/hwcomposer/internal/bufsync"
	"github.com/ManuGH/hwcomposer/internal/classify"
	"github.com/ManuGH/hwcomposer/internal/display"
	"github.com/ManuGH/hwcomposer/internal/fence"
	"github.com/ManuGH/hwcomposer/internal/framebuffer"
	"github.com/ManuGH/hwcomposer/internal/hwerr"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/metrics"
	"github.com/ManuGH/hwcomposer/internal/overlay"
	"github.com/ManuGH/hwcomposer/internal/property"
	"github.com/ManuGH/hwcomposer/internal/strategy"
	"github.com/ManuGH/hwcomposer/internal/telemetry"
	"github.com/ManuGH/hwcomposer/internal/vsync"
)

// DeviceName is the only device name Open accepts.
const DeviceName = "composer"

// Deps are the hardware collaborators of a Composer. Framebuffer is
// required; a nil Overlay disables hardware composition, a nil Waiter
// disables buffer sync, a nil Securing flag reads as false.
type Deps struct {
	Framebuffer framebuffer.Device
	Overlay     overlay.Hardware
	External    display.Output
	Waiter      fence.Waiter
	Securing    property.Flag
}

type options struct {
	logger            zerolog.Logger
	tracer            trace.Tracer
	strategies        []strategy.Name
	overlay           overlay.Options
	fenceTimeout      time.Duration
	fenceOps          fence.Ops
	externalSupported bool
	external          display.Attributes
	softVsync         bool
	eventQueue        int
	warnEvery         time.Duration
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the base logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer sets the tracer used for frame spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithStrategies sets the primary selector order.
func WithStrategies(names ...strategy.Name) Option {
	return func(o *options) { o.strategies = names }
}

// WithOverlay configures the overlay resource.
func WithOverlay(opts overlay.Options) Option {
	return func(o *options) { o.overlay = opts }
}

// WithFenceTimeout bounds the buffer-sync wait. Zero waits forever.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) { o.fenceTimeout = d }
}

// WithFenceOps sets the descriptor operations for release fences.
func WithFenceOps(ops fence.Ops) Option {
	return func(o *options) { o.fenceOps = ops }
}

// WithExternal advertises external display support and seeds its attributes.
func WithExternal(supported bool, attrs display.Attributes) Option {
	return func(o *options) {
		o.externalSupported = supported
		o.external = attrs
	}
}

// WithSoftVsync generates vsync events from a timer instead of hardware.
func WithSoftVsync(enabled bool) Option {
	return func(o *options) { o.softVsync = enabled }
}

// WithEventQueue sets the event buffer size.
func WithEventQueue(n int) Option {
	return func(o *options) { o.eventQueue = n }
}

// WithWarnInterval sets the minimum interval between degraded-frame warnings.
func WithWarnInterval(d time.Duration) Option {
	return func(o *options) { o.warnEvery = d }
}

// Composer is one open composer device.
type Composer struct {
	id     string
	logger zerolog.Logger
	tracer trace.Tracer

	fb       framebuffer.Device
	ext      display.Output
	securing property.Flag

	table    *display.Table
	overlay  *overlay.Resource
	chain    *strategy.Chain
	syncer   *bufsync.Syncer
	events   *vsync.Dispatcher
	ticker   *vsync.Ticker
	warnings *rate.Limiter

	externalSupported bool
	softVsync         bool

	// frame state, owned by the pipeline (guarded by table.Exclusive)
	frame     uint64
	stats     [display.NumDisplays]classify.Stats
	envs      [display.NumDisplays]*strategy.Env
	decisions [display.NumDisplays]strategy.Decision
	posted    bool

	closed      atomic.Bool
	startEvents sync.Once
	stopEvents  context.CancelFunc
	eventsWG    sync.WaitGroup
}

// Open creates a composer. Only DeviceName is recognised.
func Open(name string, deps Deps, opts ...Option) (*Composer, error) {
	if name != DeviceName {
		return nil, hwerr.Invalid("unknown device %q", name)
	}
	if deps.Framebuffer == nil {
		return nil, hwerr.Invalid("framebuffer device required")
	}

	o := options{
		logger:     xglog.WithComponent("composer"),
		tracer:     telemetry.Tracer(telemetry.InstrumentationName),
		strategies: strategy.DefaultOrder,
		overlay:    overlay.Options{Enabled: true, Pipes: 2},
		softVsync:  true,
		warnEvery:  time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	chain, err := strategy.BuildChain(o.strategies)
	if err != nil {
		return nil, hwerr.Invalid("%v", err)
	}

	id := uuid.NewString()
	logger := o.logger.With().Str(xglog.FieldDeviceID, id).Logger()

	info := deps.Framebuffer.Info()
	var initial display.Snapshot
	initial[display.Primary] = display.Attributes{
		Width:       info.Width,
		Height:      info.Height,
		VsyncPeriod: info.VsyncPeriod(),
		DPIX:        info.DPIX,
		DPIY:        info.DPIY,
		Active:      true,
		Connected:   true,
	}
	initial[display.External] = o.external
	initial[display.External].Active = false
	initial[display.External].Connected = false

	securing := deps.Securing
	if securing == nil {
		securing = property.NewStatic(false)
	}

	ovOpts := o.overlay
	if deps.Overlay == nil {
		ovOpts.Enabled = false
	}

	syncOpts := []bufsync.Option{
		bufsync.WithTimeout(o.fenceTimeout),
		bufsync.WithLogger(logger.With().Str(xglog.FieldComponent, "bufsync").Logger()),
	}
	if o.fenceOps != nil {
		syncOpts = append(syncOpts, bufsync.WithOps(o.fenceOps))
	}
	waiter := deps.Waiter
	if waiter == nil {
		waiter = fence.WaiterFunc(func(context.Context, []int) (int, error) { return -1, nil })
	}

	warnEvery := o.warnEvery
	if warnEvery <= 0 {
		warnEvery = time.Second
	}

	events := vsync.NewDispatcher(o.eventQueue)
	c := &Composer{
		id:                id,
		logger:            logger,
		tracer:            o.tracer,
		fb:                deps.Framebuffer,
		ext:               deps.External,
		securing:          securing,
		table:             display.NewTable(initial),
		overlay:           overlay.NewResource(deps.Overlay, ovOpts, logger.With().Str(xglog.FieldComponent, "overlay").Logger()),
		chain:             chain,
		syncer:            bufsync.New(waiter, syncOpts...),
		events:            events,
		ticker:            vsync.NewTicker(info.VsyncPeriod(), int(display.Primary), events),
		warnings:          rate.NewLimiter(rate.Every(warnEvery), 1),
		externalSupported: o.externalSupported,
		softVsync:         o.softVsync,
	}
	c.events.SetHook(c.onEvent)
	for i := range c.stats {
		c.stats[i] = classify.Empty()
		c.decisions[i] = strategy.Decision{Strategy: strategy.NameNone}
	}
	metrics.SetDisplayActive(display.Primary.String(), true)
	metrics.SetDisplayActive(display.External.String(), false)

	c.logger.Info().
		Str(xglog.FieldEvent, "composer.opened").
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Bool("overlay", c.overlay.Enabled()).
		Strs("strategies", namesToStrings(chain.Names())).
		Dur(xglog.FieldTimeout, o.fenceTimeout).
		Msg("composer opened")
	return c, nil
}

// ID returns the instance id used in logs and dumps.
func (c *Composer) ID() string {
	return c.id
}

// Displays returns a snapshot of the display state table.
func (c *Composer) Displays() display.Snapshot {
	return c.table.Snapshot()
}

// RegisterCallbacks installs the host callbacks and starts the event
// goroutine. It must be called before any event can be delivered.
func (c *Composer) RegisterCallbacks(procs vsync.Procs) error {
	if c == nil {
		return hwerr.Invalid("nil composer")
	}
	if procs.Empty() {
		return hwerr.Invalid("empty callback table")
	}
	if c.closed.Load() {
		return hwerr.ErrClosed
	}
	c.events.SetProcs(procs)

	c.startEvents.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopEvents = cancel
		c.eventsWG.Add(1)
		go func() {
			defer c.eventsWG.Done()
			c.events.Run(ctx)
		}()
		if c.softVsync {
			c.eventsWG.Add(1)
			go func() {
				defer c.eventsWG.Done()
				c.ticker.Run(ctx)
			}()
		}
		c.logger.Info().
			Str(xglog.FieldEvent, "composer.events_started").
			Bool("soft_vsync", c.softVsync).
			Msg("event thread started")
	})
	return nil
}

// HandleHotplug records a hotplug of the external display and forwards it
// to the host callbacks.
func (c *Composer) HandleHotplug(dpy int, connected bool) error {
	if c.closed.Load() {
		return hwerr.ErrClosed
	}
	if display.ID(dpy) != display.External {
		return hwerr.Invalid("hotplug on display %d", dpy)
	}
	if err := c.table.SetConnected(display.External, connected); err != nil {
		return err
	}
	if _, err := c.table.SetActive(display.External, connected); err != nil {
		return err
	}
	metrics.SetDisplayActive(display.External.String(), connected)
	c.logger.Info().
		Str(xglog.FieldEvent, "display.hotplug").
		Str(xglog.FieldDisplay, display.External.String()).
		Bool("connected", connected).
		Msg("external display hotplug")

	c.events.Submit(vsync.Event{Kind: vsync.KindHotplug, Display: dpy, Connected: connected, Timestamp: time.Now()})
	return nil
}

// Invalidate asks the host to redraw.
func (c *Composer) Invalidate() {
	c.events.Submit(vsync.Event{Kind: vsync.KindInvalidate, Timestamp: time.Now()})
}

func (c *Composer) onEvent(ev vsync.Event) {
	if ev.Kind == vsync.KindVsync {
		return
	}
	c.logger.Debug().
		Str(xglog.FieldEvent, "composer.event").
		Str("kind", ev.Kind.String()).
		Int(xglog.FieldDisplay, ev.Display).
		Msg("delivering event")
}

// Close releases the overlay, the framebuffer device and the external
// display. It is safe to call on a nil or already closed composer.
func (c *Composer) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.stopEvents != nil {
		c.stopEvents()
	}
	c.eventsWG.Wait()

	var errs []error
	_ = c.table.Exclusive(func() error {
		errs = append(errs, c.overlay.Shutdown())
		errs = append(errs, hwerr.IO("framebuffer close", c.fb.Close()))
		if c.ext != nil {
			errs = append(errs, hwerr.IO("external close", c.ext.Close()))
		}
		return nil
	})

	err := errors.Join(errs...)
	ev := c.logger.Info()
	if err != nil {
		ev = c.logger.Warn().Err(err)
	}
	ev.Str(xglog.FieldEvent, "composer.closed").Msg("composer closed")
	return err
}

// Status maps an error returned by the composer to the integer status code
// of the device API.
func Status(err error) int {
	return hwerr.Status(err)
}

// degraded logs a non-fatal frame failure, at most once per warn interval.
func (c *Composer) degraded(ctx context.Context, kind string, err error) {
	metrics.RecordFrameError(phaseFrom(ctx), kind)
	if !c.warnings.Allow() {
		return
	}
	l := xglog.WithContext(ctx, c.logger)
	l.Warn().Err(err).
		Str(xglog.FieldEvent, "frame.degraded").
		Str("kind", kind).
		Msg("frame continues degraded")
}

func namesToStrings(names []strategy.Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}
