// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// hwcd hosts a software composer: it loads the configuration, opens the
// composer on soft devices, replays a frame scenario and serves metrics,
// health and state dumps over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/hwcomposer/internal/config"
	"github.com/ManuGH/hwcomposer/internal/daemon"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
	"github.com/ManuGH/hwcomposer/internal/telemetry"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "hwcomposer",
		Version: version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(strings.TrimSpace(*configPath), version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", loader.Path()).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if loader.Path() != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", loader.Path()).
		Msg("configuration loaded")

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("event", "telemetry.init_failed").Msg("failed to initialise tracing")
	}

	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		logger.Fatal().Err(err).Str("event", "composer.open_failed").Msg("failed to open composer")
	}

	mgr, err := daemon.NewManager(cfg.Server, daemon.Deps{
		Logger: logger,
		Handler: daemon.NewRouter(rt.composer, daemon.RouterOptions{
			DumpRate: cfg.Server.DumpRate,
		}),
	})
	if err != nil {
		_ = rt.Close()
		_ = provider.Shutdown(context.Background())
		logger.Fatal().Err(err).Str("event", "daemon.init_failed").Msg("failed to create daemon manager")
	}

	// Hooks run LIFO: dump state, close the composer, flush traces.
	mgr.RegisterShutdownHook("telemetry", provider.Shutdown)
	mgr.RegisterShutdownHook("composer", func(context.Context) error { return rt.Close() })
	if cfg.DumpPath != "" {
		mgr.RegisterShutdownHook("state-dump", func(ctx context.Context) error {
			return daemon.WriteDump(ctx, cfg.DumpPath, rt.composer)
		})
	}

	holder := config.NewHolder(cfg, loader)
	opts := []daemon.AppOption{
		daemon.WithReloadHook(func(next config.AppConfig) {
			xglog.Configure(xglog.Config{
				Level:   next.LogLevel,
				Service: next.LogService,
				Version: next.Version,
			})
		}),
	}
	if rt.player != nil {
		opts = append(opts, daemon.WithPlayer(rt.player))
	}

	start := time.Now()
	if err := daemon.NewApp(logger, mgr, holder, opts...).Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon stopped with error")
		os.Exit(1)
	}
	logger.Info().
		Str("event", "daemon.stopped").
		Dur("uptime", time.Since(start)).
		Msg("daemon stopped")
}
