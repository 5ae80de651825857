// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package property exposes system flags consulted by the frame pipeline,
// such as "hardware securing in progress".
package property

import (
	"strings"
	"sync/atomic"
)

// Flag is a boolean system property.
type Flag interface {
	Enabled() bool
}

// Static is a flag set in-process.
type Static struct {
	v atomic.Bool
}

// NewStatic returns a flag with the given initial value.
func NewStatic(v bool) *Static {
	s := &Static{}
	s.v.Store(v)
	return s
}

func (s *Static) Enabled() bool {
	return s != nil && s.v.Load()
}

// Set updates the flag.
func (s *Static) Set(v bool) {
	s.v.Store(v)
}

// ParseBool interprets a property value. "1", "true", "yes" and "on"
// (case-insensitive, surrounding whitespace ignored) are true.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
