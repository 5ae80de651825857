// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"net"

	"github.com/ManuGH/hwcomposer/internal/validate"
)

// KnownStrategies lists the selector names accepted in Strategies.
var KnownStrategies = []string{"video", "external_only", "ui_mirror", "multi_layer"}

// LogLevels lists the zerolog level names accepted in LogLevel.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks the resolved configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("logLevel", cfg.LogLevel, LogLevels)

	v.Positive("panel.width", cfg.Panel.Width)
	v.Positive("panel.height", cfg.Panel.Height)
	v.FloatRange("panel.fps", cfg.Panel.FPS, 1, 240)
	v.FloatRange("panel.dpiX", cfg.Panel.DPIX, 0, 2000)
	v.FloatRange("panel.dpiY", cfg.Panel.DPIY, 0, 2000)

	if cfg.External.Supported {
		v.Positive("external.width", cfg.External.Width)
		v.Positive("external.height", cfg.External.Height)
		v.FloatRange("external.fps", cfg.External.FPS, 1, 240)
	} else if cfg.External.ConnectAtStart {
		v.AddError("external.connectAtStart", "requires external.supported", cfg.External.ConnectAtStart)
	}

	v.Range("overlay.pipes", cfg.Overlay.Pipes, 1, 8)
	v.NonNegativeDuration("fence.timeout", cfg.Fence.Timeout)
	v.NonNegative("vsync.eventQueue", cfg.Vsync.EventQueue)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
	}
	v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)

	if cfg.Server.ListenAddr != "" {
		v.Custom("server.listenAddr", cfg.Server.ListenAddr, func(val interface{}) error {
			if _, _, err := net.SplitHostPort(val.(string)); err != nil {
				return fmt.Errorf("invalid listen address: %w", err)
			}
			return nil
		})
	}
	v.NonNegativeDuration("server.readTimeout", cfg.Server.ReadTimeout)
	v.NonNegativeDuration("server.shutdownTimeout", cfg.Server.ShutdownTimeout)
	v.NonNegative("server.dumpRate", cfg.Server.DumpRate)

	if len(cfg.Strategies) == 0 {
		v.AddError("strategies", "at least one strategy is required", cfg.Strategies)
	}
	for _, s := range cfg.Strategies {
		v.OneOf("strategies", s, KnownStrategies)
	}
	v.Unique("strategies", cfg.Strategies)

	v.File("scenario.path", cfg.Scenario.Path)
	v.ParentDir("dumpPath", cfg.DumpPath)

	return v.Err()
}
