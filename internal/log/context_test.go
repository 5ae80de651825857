// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func TestContextWithFrame(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		seq  uint64
	}{
		{name: "nil context", ctx: nil, seq: 7},
		{name: "background context", ctx: context.Background(), seq: 42},
		{name: "zero frame", ctx: context.Background(), seq: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithFrame(tt.ctx, tt.seq)
			got, ok := FrameFromContext(ctx)
			if !ok {
				t.Fatal("FrameFromContext() reported no frame")
			}
			if got != tt.seq {
				t.Errorf("FrameFromContext() = %d, want %d", got, tt.seq)
			}
		})
	}
}

func TestFrameFromContext_Missing(t *testing.T) {
	if _, ok := FrameFromContext(context.Background()); ok {
		t.Error("expected no frame in empty context")
	}
	//nolint:staticcheck // nil context is part of the contract
	if _, ok := FrameFromContext(nil); ok {
		t.Error("expected no frame in nil context")
	}
}

func TestWithContext_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	ctx := ContextWithFrame(context.Background(), 12)
	ctx = ContextWithDeviceID(ctx, "dev-1")
	ctx = trace.ContextWithSpanContext(ctx, sc)

	l := WithContext(ctx, base)
	l.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry[FieldFrame] != float64(12) {
		t.Errorf("frame = %v, want 12", entry[FieldFrame])
	}
	if entry[FieldDeviceID] != "dev-1" {
		t.Errorf("device_id = %v, want dev-1", entry[FieldDeviceID])
	}
	if entry[FieldTraceID] != traceID.String() {
		t.Errorf("trace_id = %v, want %s", entry[FieldTraceID], traceID)
	}
}

func TestWithContext_NoFieldsReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithContext(context.Background(), base)
	l.Info().Msg("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if _, ok := entry[FieldFrame]; ok {
		t.Error("unexpected frame field")
	}
}

func TestFromContext_FallsBackToBase(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}

	var buf bytes.Buffer
	attached := zerolog.New(&buf)
	ctx := attached.WithContext(context.Background())
	got := FromContext(ctx)
	got.Info().Msg("attached")
	if buf.Len() == 0 {
		t.Error("expected attached logger to be used")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
