// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package display

import (
	"github.com/ManuGH/hwcomposer/internal/hwerr"
)

// Attribute identifies a queryable display attribute.
type Attribute int32

const (
	// NoAttribute terminates an attribute request list.
	NoAttribute Attribute = iota
	AttrVsyncPeriod
	AttrWidth
	AttrHeight
	AttrDPIX
	AttrDPIY
)

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case NoAttribute:
		return "none"
	case AttrVsyncPeriod:
		return "vsync_period"
	case AttrWidth:
		return "width"
	case AttrHeight:
		return "height"
	case AttrDPIX:
		return "dpi_x"
	case AttrDPIY:
		return "dpi_y"
	default:
		return "unknown"
	}
}

// Value maps attr to its stored value. Vsync period is in nanoseconds and
// DPI in dots per thousand inches.
func (a Attributes) Value(attr Attribute) (int32, error) {
	switch attr {
	case AttrVsyncPeriod:
		return int32(a.VsyncPeriod.Nanoseconds()), nil
	case AttrWidth:
		return int32(a.Width), nil
	case AttrHeight:
		return int32(a.Height), nil
	case AttrDPIX:
		return int32(a.DPIX * 1000), nil
	case AttrDPIY:
		return int32(a.DPIY * 1000), nil
	default:
		return 0, hwerr.Invalid("unsupported display attribute %d", int32(attr))
	}
}
