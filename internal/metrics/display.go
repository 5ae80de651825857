// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	displayActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hwc_display_active",
		Help: "Whether the display is unblanked (1) or blanked (0)",
	}, []string{"display"})

	blankTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_blank_transitions_total",
		Help: "Blank state machine transitions by display and target state",
	}, []string{"display", "state"}) // state: active|blanked

	vsyncEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hwc_events_total",
		Help: "Asynchronous display events by kind and outcome (delivered|dropped|no_callback)",
	}, []string{"kind", "outcome"})
)

// SetDisplayActive publishes the active flag of a display.
func SetDisplayActive(display string, active bool) {
	v := 0.0
	if active {
		v = 1.0
	}
	displayActive.WithLabelValues(normalizeDisplayLabel(display)).Set(v)
}

// RecordBlankTransition counts a blank/unblank transition.
func RecordBlankTransition(display, state string) {
	blankTransitions.WithLabelValues(normalizeDisplayLabel(display), state).Inc()
}

// RecordEvent counts an event delivered to (or dropped before) the host callbacks.
func RecordEvent(kind, outcome string) {
	vsyncEvents.WithLabelValues(kind, outcome).Inc()
}
