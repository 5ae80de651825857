// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_composition_decision_total",
		Help: "Composition strategy decisions per frame by display, strategy and reason",
	}, []string{"display", "strategy", "reason"})

	strategyDeclines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_strategy_declines_total",
		Help: "Strategies that declined the overlay for a frame, by strategy and reason",
	}, []string{"strategy", "reason"})
)

// RecordDecision records the outcome of one selector chain run.
// strategy is "none" when every layer fell back to the framebuffer.
func RecordDecision(display, strategy, reason string) {
	decisionTotal.WithLabelValues(
		normalizeDisplayLabel(display),
		normalizeStrategyLabel(strategy),
		normalizeReasonLabel(reason),
	).Inc()
}

// RecordDecline records a single selector declining the overlay.
func RecordDecline(strategy, reason string) {
	strategyDeclines.WithLabelValues(
		normalizeStrategyLabel(strategy),
		normalizeReasonLabel(reason),
	).Inc()
}

func normalizeDisplayLabel(display string) string {
	switch strings.ToLower(strings.TrimSpace(display)) {
	case "primary", "external":
		return strings.ToLower(strings.TrimSpace(display))
	default:
		return "unknown"
	}
}

func normalizeStrategyLabel(strategy string) string {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "video", "external_only", "ui_mirror", "multi_layer", "none":
		return strings.ToLower(strings.TrimSpace(strategy))
	default:
		return "unknown"
	}
}

func normalizeReasonLabel(reason string) string {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case "claimed", "overlay_busy", "overlay_disabled", "no_video", "multiple_video",
		"video_skipped", "external_inactive", "no_external_layer", "skip_present",
		"too_many_layers", "secure_present", "hardware_rejected", "no_candidate",
		"missing_handle", "video_present", "external_active":
		return strings.ToLower(strings.TrimSpace(reason))
	default:
		return "unknown"
	}
}
