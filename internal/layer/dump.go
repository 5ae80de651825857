// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package layer

import (
	"github.com/rs/zerolog"
)

// Dump logs one layer at debug level.
func Dump(logger zerolog.Logger, index int, l *Layer) {
	if l == nil {
		return
	}
	ev := logger.Debug()
	if !ev.Enabled() {
		return
	}
	var handle uint64
	format := "none"
	if l.Handle != nil {
		handle = l.Handle.ID
		format = l.Handle.Format.String()
	}
	ev.Int("layer", index).
		Str("type", l.Composition.String()).
		Uint32("flags", uint32(l.Flags)).
		Uint64("handle", handle).
		Str("format", format).
		Uint32("transform", uint32(l.Transform)).
		Int32("blend", int32(l.Blending)).
		Stringer("crop", l.SourceCrop).
		Stringer("frame", l.DisplayFrame).
		Msg("layer")
}

// DumpList logs every layer of list at debug level.
func DumpList(logger zerolog.Logger, list *List) {
	if list == nil {
		return
	}
	for i, l := range list.Layers {
		Dump(logger, i, l)
	}
}
