// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldDeviceID  = "device_id"
	FieldFrame     = "frame"
	FieldTraceID   = "trace_id"
	FieldRequestID = "request_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPhase     = "phase"

	// Composition fields
	FieldDisplay  = "display"
	FieldStrategy = "strategy"
	FieldReason   = "reason"
	FieldLayer    = "layer"
	FieldLayers   = "layers"
	FieldPipe     = "pipe"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Fence fields
	FieldFences  = "fences"
	FieldTimeout = "timeout"
)
