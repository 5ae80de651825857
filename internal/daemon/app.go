// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/hwcomposer/internal/config"
)

// Runner is a background subsystem that stops when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// App owns the long-lived runtime lifecycle (config watcher, reload wiring,
// frame scenario) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.Holder
	player       Runner
	onReload     func(config.AppConfig)
	reloadSignal os.Signal
}

// AppOption configures an App.
type AppOption func(*App)

// WithPlayer runs r alongside the server. Its clean return does not stop the daemon.
func WithPlayer(r Runner) AppOption {
	return func(a *App) { a.player = r }
}

// WithReloadHook is invoked with every configuration accepted by the holder.
func WithReloadHook(fn func(config.AppConfig)) AppOption {
	return func(a *App) { a.onReload = fn }
}

// WithReloadSignal overrides the manual reload signal. Nil disables it.
func WithReloadSignal(sig os.Signal) AppOption {
	return func(a *App) { a.reloadSignal = sig }
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder, opts ...AppOption) *App {
	a := &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.cfgHolder.Stop()
	}

	if a.cfgHolder != nil && a.onReload != nil {
		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.onReload(cfg)
				}
			}
		})
	}

	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.cfgHolder.Reload(ctx); err != nil {
						a.logger.Warn().
							Err(err).
							Str("event", "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	if a.player != nil {
		g.Go(func() error {
			if err := a.player.Run(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error().
					Err(err).
					Str("event", "scenario.failed").
					Msg("scenario player stopped")
				return err
			}
			a.logger.Info().Str("event", "scenario.done").Msg("scenario player finished")
			return nil
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}
