// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HWC_"

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, empty for env-only configuration.
func (l *Loader) Path() string {
	return l.configPath
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	// 1. Defaults
	cfg := Defaults()

	// 2. File (if provided); keys absent from the file keep their defaults
	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	// 3. Environment (highest priority)
	l.mergeEnvConfig(&cfg)

	cfg.Version = l.version

	// 4. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString(EnvPrefix+"LOG_SERVICE", cfg.LogService)

	cfg.Panel.Width = l.envInt(EnvPrefix+"PANEL_WIDTH", cfg.Panel.Width)
	cfg.Panel.Height = l.envInt(EnvPrefix+"PANEL_HEIGHT", cfg.Panel.Height)
	cfg.Panel.DPIX = l.envFloat(EnvPrefix+"PANEL_DPI_X", cfg.Panel.DPIX)
	cfg.Panel.DPIY = l.envFloat(EnvPrefix+"PANEL_DPI_Y", cfg.Panel.DPIY)
	cfg.Panel.FPS = l.envFloat(EnvPrefix+"PANEL_FPS", cfg.Panel.FPS)

	cfg.External.Supported = l.envBool(EnvPrefix+"EXTERNAL_SUPPORTED", cfg.External.Supported)
	cfg.External.Width = l.envInt(EnvPrefix+"EXTERNAL_WIDTH", cfg.External.Width)
	cfg.External.Height = l.envInt(EnvPrefix+"EXTERNAL_HEIGHT", cfg.External.Height)
	cfg.External.FPS = l.envFloat(EnvPrefix+"EXTERNAL_FPS", cfg.External.FPS)
	cfg.External.ConnectAtStart = l.envBool(EnvPrefix+"EXTERNAL_CONNECT", cfg.External.ConnectAtStart)

	cfg.Overlay.Enabled = l.envBool(EnvPrefix+"OVERLAY_ENABLED", cfg.Overlay.Enabled)
	cfg.Overlay.Pipes = l.envInt(EnvPrefix+"OVERLAY_PIPES", cfg.Overlay.Pipes)

	cfg.Fence.Timeout = l.envDuration(EnvPrefix+"FENCE_TIMEOUT", cfg.Fence.Timeout)

	cfg.Vsync.Soft = l.envBool(EnvPrefix+"VSYNC_SOFT", cfg.Vsync.Soft)
	cfg.Vsync.EventQueue = l.envInt(EnvPrefix+"VSYNC_EVENT_QUEUE", cfg.Vsync.EventQueue)

	cfg.Securing.PropertyFile = l.envString(EnvPrefix+"SECURING_FILE", cfg.Securing.PropertyFile)

	cfg.Telemetry.Enabled = l.envBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvPrefix+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvPrefix+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvPrefix+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvPrefix+"TELEMETRY_ENVIRONMENT", cfg.Telemetry.Environment)

	cfg.Server.ListenAddr = l.envString(EnvPrefix+"LISTEN", cfg.Server.ListenAddr)
	cfg.Server.ShutdownTimeout = l.envDuration(EnvPrefix+"SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.DumpRate = l.envInt(EnvPrefix+"DUMP_RATE", cfg.Server.DumpRate)

	cfg.Scenario.Path = l.envString(EnvPrefix+"SCENARIO", cfg.Scenario.Path)
	cfg.Scenario.Loop = l.envBool(EnvPrefix+"SCENARIO_LOOP", cfg.Scenario.Loop)

	cfg.Strategies = l.envList(EnvPrefix+"STRATEGIES", cfg.Strategies)
	cfg.DumpPath = l.envString(EnvPrefix+"DUMP_PATH", cfg.DumpPath)
}
