// SPDX-License-Identifier: MIT

// Package telemetry provides OpenTelemetry tracing utilities for the composer.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the composer.
const (
	// Frame attributes
	FrameSeqKey      = "hwc.frame.seq"
	FrameDisplaysKey = "hwc.frame.displays"
	FramePhaseKey    = "hwc.frame.phase"

	// Display attributes
	DisplayKey       = "hwc.display"
	DisplayLayersKey = "hwc.display.layers"

	// Strategy attributes
	StrategyKey       = "hwc.strategy"
	StrategyReasonKey = "hwc.strategy.reason"

	// Fence attributes
	FenceCountKey   = "hwc.fence.count"
	FenceTimeoutKey = "hwc.fence.timeout_ms"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// FrameAttributes creates per-frame span attributes.
func FrameAttributes(phase string, seq uint64, displays int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FramePhaseKey, phase),
		attribute.Int64(FrameSeqKey, int64(seq)),
		attribute.Int(FrameDisplaysKey, displays),
	}
}

// DecisionAttributes creates strategy-selection span attributes.
// Empty strategy or reason values are omitted.
func DecisionAttributes(display string, layers int, strategy, reason string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	attrs = append(attrs,
		attribute.String(DisplayKey, display),
		attribute.Int(DisplayLayersKey, layers),
	)
	if strategy != "" {
		attrs = append(attrs, attribute.String(StrategyKey, strategy))
	}
	if reason != "" {
		attrs = append(attrs, attribute.String(StrategyReasonKey, reason))
	}
	return attrs
}

// FenceAttributes creates buffer-sync span attributes.
func FenceAttributes(count int, timeoutMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(FenceCountKey, count),
		attribute.Int64(FenceTimeoutKey, timeoutMS),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
