// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hwcomposer/internal/validate"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"defaults", func(*AppConfig) {}, ""},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, "logLevel"},
		{"trace log level", func(c *AppConfig) { c.LogLevel = "trace" }, ""},
		{"empty log level", func(c *AppConfig) { c.LogLevel = "" }, "logLevel"},
		{"zero width", func(c *AppConfig) { c.Panel.Width = 0 }, "panel.width"},
		{"fps out of range", func(c *AppConfig) { c.Panel.FPS = 0 }, "panel.fps"},
		{"external size ignored when unsupported", func(c *AppConfig) {
			c.External.Supported = false
			c.External.Width = 0
		}, ""},
		{"connect without support", func(c *AppConfig) {
			c.External.Supported = false
			c.External.ConnectAtStart = true
		}, "external.connectAtStart"},
		{"too many pipes", func(c *AppConfig) { c.Overlay.Pipes = 9 }, "overlay.pipes"},
		{"negative timeout", func(c *AppConfig) { c.Fence.Timeout = -time.Second }, "fence.timeout"},
		{"unknown exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, "telemetry.exporter"},
		{"sampling rate", func(c *AppConfig) { c.Telemetry.SamplingRate = 2 }, "telemetry.samplingRate"},
		{"listen address", func(c *AppConfig) { c.Server.ListenAddr = "9464" }, "server.listenAddr"},
		{"no strategies", func(c *AppConfig) { c.Strategies = nil }, "strategies"},
		{"duplicate strategy", func(c *AppConfig) { c.Strategies = []string{"video", "video"} }, "strategies"},
		{"missing scenario", func(c *AppConfig) { c.Scenario.Path = "/nonexistent/frames.yaml" }, "scenario.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Errors()))
			for _, e := range verr.Errors() {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_DumpPath(t *testing.T) {
	cfg := Defaults()
	cfg.DumpPath = filepath.Join(t.TempDir(), "state.yaml")
	assert.NoError(t, Validate(cfg))

	cfg.DumpPath = filepath.Join(t.TempDir(), "missing", "state.yaml")
	assert.Error(t, Validate(cfg))
}
