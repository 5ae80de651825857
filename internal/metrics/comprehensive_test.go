// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to get metric value from a gauge
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	err := gauge.Write(metric)
	require.NoError(t, err)
	return metric.GetGauge().GetValue()
}

// Helper function to get metric value from a counter
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	err := counter.Write(metric)
	require.NoError(t, err)
	return metric.GetCounter().GetValue()
}

// Helper function to get metric value from a labeled gauge
func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels ...string) float64 {
	t.Helper()
	return getGaugeValue(t, gaugeVec.WithLabelValues(labels...))
}

// Helper function to get metric value from a labeled counter
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	return getCounterValue(t, counterVec.WithLabelValues(labels...))
}

func getHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, h.Write(metric))
	return metric.GetHistogram().GetSampleCount()
}

func TestSetOverlayInUse(t *testing.T) {
	SetOverlayInUse(true)
	assert.Equal(t, 1.0, getGaugeValue(t, overlayInUse))

	SetOverlayInUse(false)
	assert.Equal(t, 0.0, getGaugeValue(t, overlayInUse))
}

func TestRecordFrame(t *testing.T) {
	tests := []struct {
		name    string
		phase   string
		display string
		label   string
	}{
		{"primary prepare", "prepare", "primary", "primary"},
		{"external commit", "commit", "external", "external"},
		{"unknown display", "commit", "tv-3", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := getCounterVecValue(t, framesTotal, tt.phase, tt.label)
			RecordFrame(tt.phase, tt.display)
			assert.Equal(t, before+1, getCounterVecValue(t, framesTotal, tt.phase, tt.label))
		})
	}
}

func TestFenceMetrics(t *testing.T) {
	before := getHistogramCount(t, fenceWaitSeconds)
	ObserveFenceWait(3 * time.Millisecond)
	assert.Equal(t, before+1, getHistogramCount(t, fenceWaitSeconds))

	okBefore := getCounterVecValue(t, fenceSyncTotal, "empty")
	RecordFenceSync("empty")
	assert.Equal(t, okBefore+1, getCounterVecValue(t, fenceSyncTotal, "empty"))

	consumedBefore := getCounterValue(t, fencesConsumed)
	RecordFencesConsumed(3)
	assert.Equal(t, consumedBefore+3, getCounterValue(t, fencesConsumed))
}

func TestDisplayMetrics(t *testing.T) {
	SetDisplayActive("primary", false)
	assert.Equal(t, 0.0, getGaugeVecValue(t, displayActive, "primary"))
	SetDisplayActive("primary", true)
	assert.Equal(t, 1.0, getGaugeVecValue(t, displayActive, "primary"))

	before := getCounterVecValue(t, blankTransitions, "external", "blanked")
	RecordBlankTransition("external", "blanked")
	assert.Equal(t, before+1, getCounterVecValue(t, blankTransitions, "external", "blanked"))

	dropped := getCounterVecValue(t, vsyncEvents, "vsync", "dropped")
	RecordEvent("vsync", "dropped")
	assert.Equal(t, dropped+1, getCounterVecValue(t, vsyncEvents, "vsync", "dropped"))
}

func TestOverlayForcedClose(t *testing.T) {
	before := getCounterValue(t, overlayForcedClose)
	RecordOverlayForcedClose()
	assert.Equal(t, before+1, getCounterValue(t, overlayForcedClose))
}
