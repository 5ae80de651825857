// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the composer daemon configuration.
//
// Precedence is Defaults < YAML file < HWC_* environment. The file is parsed
// strictly: unknown keys fail the load with ErrUnknownConfigField.
package config

import "time"

// AppConfig is the fully resolved daemon configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	Panel     PanelConfig     `yaml:"panel"`
	External  ExternalConfig  `yaml:"external"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Fence     FenceConfig     `yaml:"fence"`
	Vsync     VsyncConfig     `yaml:"vsync"`
	Securing  SecuringConfig  `yaml:"securing"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Scenario  ScenarioConfig  `yaml:"scenario"`

	// Strategies is the primary selector order.
	Strategies []string `yaml:"strategies"`

	// DumpPath, if set, receives the final state dump on shutdown.
	DumpPath string `yaml:"dumpPath"`
}

// PanelConfig describes the primary panel.
type PanelConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	DPIX   float64 `yaml:"dpiX"`
	DPIY   float64 `yaml:"dpiY"`
	FPS    float64 `yaml:"fps"`
}

// ExternalConfig describes the external (HDMI) display.
type ExternalConfig struct {
	Supported bool    `yaml:"supported"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FPS       float64 `yaml:"fps"`
	// ConnectAtStart raises a hotplug once callbacks are registered.
	ConnectAtStart bool `yaml:"connectAtStart"`
}

type OverlayConfig struct {
	Enabled bool `yaml:"enabled"`
	Pipes   int  `yaml:"pipes"`
}

type FenceConfig struct {
	// Timeout bounds the buffer-sync wait; 0 waits forever.
	Timeout time.Duration `yaml:"timeout"`
}

type VsyncConfig struct {
	Soft       bool `yaml:"soft"`
	EventQueue int  `yaml:"eventQueue"`
}

type SecuringConfig struct {
	// PropertyFile is watched for the securing flag; empty means never securing.
	PropertyFile string `yaml:"propertyFile"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

type ServerConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// DumpRate is the allowed /debug/dump requests per minute per client.
	DumpRate int `yaml:"dumpRate"`
}

type ScenarioConfig struct {
	Path string `yaml:"path"`
	Loop bool   `yaml:"loop"`
}

// RefreshPeriod returns the panel vsync period.
func (p PanelConfig) RefreshPeriod() time.Duration {
	if p.FPS <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / p.FPS)
}
