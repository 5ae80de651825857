// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package layer

import "fmt"

// Rect is an integer rectangle with exclusive right/bottom edges.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Width returns the horizontal extent.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

func (r Rect) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", r.Left, r.Top, r.Right, r.Bottom)
}

// ClipToBounds trims a destination frame that overhangs a width x height
// display and shrinks the source crop by the same proportion, so an overlay
// pipe never scans outside either buffer. Inputs are not modified.
func ClipToBounds(crop, frame Rect, width, height int) (Rect, Rect) {
	cropW := float64(crop.Width())
	cropH := float64(crop.Height())
	dstW := float64(frame.Width())
	dstH := float64(frame.Height())

	if frame.Left < 0 && dstW > 0 {
		scale := cropW / dstW
		crop.Left += int(scale * float64(-frame.Left))
		cropW = float64(crop.Right - crop.Left)
		frame.Left = 0
		dstW = float64(frame.Right - frame.Left)
	}
	if frame.Right > width && dstW > 0 {
		scale := cropW / dstW
		crop.Right -= int(scale * float64(frame.Right-width))
		frame.Right = width
	}
	if frame.Top < 0 && dstH > 0 {
		scale := cropH / dstH
		crop.Top += int(scale * float64(-frame.Top))
		cropH = float64(crop.Bottom - crop.Top)
		frame.Top = 0
		dstH = float64(frame.Bottom - frame.Top)
	}
	if frame.Bottom > height && dstH > 0 {
		scale := cropH / dstH
		crop.Bottom -= int(scale * float64(frame.Bottom-height))
		frame.Bottom = height
	}
	return crop, frame
}
