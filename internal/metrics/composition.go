// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_frames_total",
		Help: "Frames processed by phase (prepare|commit) and display",
	}, []string{"phase", "display"})

	frameErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_frame_errors_total",
		Help: "Non-fatal frame failures by phase and kind (sync|draw|post|invalid)",
	}, []string{"phase", "kind"})

	preparesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_prepare_skipped_total",
		Help: "Prepare passes that bypassed hardware composition",
	}, []string{"reason"}) // reason: securing

	overlayInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hwc_overlay_in_use",
		Help: "Whether a strategy holds the overlay for the current frame (1) or not (0)",
	})

	overlayForcedClose = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hwc_overlay_forced_close_total",
		Help: "Commits that force-closed an overlay no strategy claimed",
	})

	layersPerFrame = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hwc_frame_layers",
		Help:    "Number of layers per classified frame (excluding the framebuffer target)",
		Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12, 16},
	})
)

// RecordFrame increments the frame counter for phase on display.
func RecordFrame(phase, display string) {
	framesTotal.WithLabelValues(phase, normalizeDisplayLabel(display)).Inc()
}

// RecordFrameError counts a non-fatal failure inside a frame.
func RecordFrameError(phase, kind string) {
	frameErrors.WithLabelValues(phase, kind).Inc()
}

// RecordPrepareSkipped counts a prepare pass that did not touch the overlay.
func RecordPrepareSkipped(reason string) {
	preparesSkipped.WithLabelValues(reason).Inc()
}

// SetOverlayInUse publishes the per-frame overlay claim flag.
func SetOverlayInUse(inUse bool) {
	if inUse {
		overlayInUse.Set(1)
		return
	}
	overlayInUse.Set(0)
}

// RecordOverlayForcedClose counts a defensive overlay release during commit.
func RecordOverlayForcedClose() {
	overlayForcedClose.Inc()
}

// ObserveLayers records the classified layer count of one frame.
func ObserveLayers(n int) {
	layersPerFrame.Observe(float64(n))
}
