// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fenceWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hwc_fence_wait_seconds",
		Help:    "Time spent in the batched acquire-fence wait",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to 256ms
	})

	fenceSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_fence_sync_total",
		Help: "Fence synchronization passes by outcome (ok|empty|error|timeout)",
	}, []string{"outcome"})

	fencesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hwc_fence_acquire_consumed_total",
		Help: "Acquire fences consumed and closed by the sync unit",
	})
)

// ObserveFenceWait records the duration of one hardware fence wait.
func ObserveFenceWait(d time.Duration) {
	fenceWaitSeconds.Observe(d.Seconds())
}

// RecordFenceSync records the outcome of a sync pass.
func RecordFenceSync(outcome string) {
	fenceSyncTotal.WithLabelValues(outcome).Inc()
}

// RecordFencesConsumed adds n closed acquire fences.
func RecordFencesConsumed(n int) {
	fencesConsumed.Add(float64(n))
}
