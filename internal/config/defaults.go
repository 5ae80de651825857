// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "hwcomposer",
		Panel: PanelConfig{
			Width:  1080,
			Height: 1920,
			DPIX:   320,
			DPIY:   320,
			FPS:    60,
		},
		External: ExternalConfig{
			Supported: true,
			Width:     1920,
			Height:    1080,
			FPS:       60,
		},
		Overlay: OverlayConfig{
			Enabled: true,
			Pipes:   2,
		},
		Fence: FenceConfig{
			Timeout: 1000 * time.Millisecond,
		},
		Vsync: VsyncConfig{
			Soft:       true,
			EventQueue: 16,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 0.01,
			Environment:  "device",
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:9464",
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			DumpRate:        30,
		},
		Strategies: []string{"video", "external_only", "ui_mirror", "multi_layer"},
	}
}
