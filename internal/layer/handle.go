// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package layer

// Format is the pixel format of a buffer.
type Format int

// Pixel formats understood by the classifier. Only the YUV/non-YUV split
// drives composition decisions.
const (
	FormatRGBA8888 Format = iota + 1
	FormatRGBX8888
	FormatRGB565
	FormatBGRA8888
	FormatYV12
	FormatNV12
	FormatNV21
	FormatYCbCr420SP
)

// IsYUV reports whether the format carries video (YUV) content.
func (f Format) IsYUV() bool {
	switch f {
	case FormatYV12, FormatNV12, FormatNV21, FormatYCbCr420SP:
		return true
	default:
		return false
	}
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8888:
		return "RGBA_8888"
	case FormatRGBX8888:
		return "RGBX_8888"
	case FormatRGB565:
		return "RGB_565"
	case FormatBGRA8888:
		return "BGRA_8888"
	case FormatYV12:
		return "YV12"
	case FormatNV12:
		return "NV12"
	case FormatNV21:
		return "NV21"
	case FormatYCbCr420SP:
		return "YCbCr_420_SP"
	default:
		return "unknown"
	}
}

// PrivFlag carries allocator private flags on a buffer handle.
type PrivFlag uint32

const (
	// PrivSecure marks content-protected buffers.
	PrivSecure PrivFlag = 1 << iota
	// PrivExternalOnly marks content meant for the external display only.
	PrivExternalOnly
	// PrivExternalBlock marks external-only content that suppresses other external-only layers.
	PrivExternalBlock
	// PrivExternalCC marks closed-caption content for the external display.
	PrivExternalCC
)

// Handle is the opaque buffer handle attached to a layer.
type Handle struct {
	ID     uint64
	Format Format
	Width  int
	Height int
	Flags  PrivFlag
}

// IsYUV reports whether h is a video buffer.
func IsYUV(h *Handle) bool {
	return h != nil && h.Format.IsYUV()
}

// IsSecure reports whether h is a content-protected buffer.
func IsSecure(h *Handle) bool {
	return h != nil && h.Flags&PrivSecure != 0
}

// IsExtOnly reports whether h is external-only content.
func IsExtOnly(h *Handle) bool {
	return h != nil && h.Flags&PrivExternalOnly != 0
}

// IsExtBlock reports whether h is an external BLOCK layer.
func IsExtBlock(h *Handle) bool {
	return h != nil && h.Flags&PrivExternalBlock != 0
}

// IsExtCC reports whether h is a closed-caption layer.
func IsExtCC(h *Handle) bool {
	return h != nil && h.Flags&PrivExternalCC != 0
}
