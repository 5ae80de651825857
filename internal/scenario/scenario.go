// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package scenario describes synthetic frame sequences in YAML and turns
// them into layer lists for the composer daemon.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/hwcomposer/internal/fence"
	"github.com/ManuGH/hwcomposer/internal/layer"
)

// ErrInvalid classifies malformed scenarios.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is an ordered list of frames.
type Scenario struct {
	Name   string  `yaml:"name"`
	Frames []Frame `yaml:"frames"`
}

// Frame is one primary display frame, optionally repeated. External and
// Blank, when set, are applied before the frame is composed.
type Frame struct {
	Name            string      `yaml:"name"`
	Repeat          int         `yaml:"repeat"`
	GeometryChanged bool        `yaml:"geometryChanged"`
	External        *bool       `yaml:"external"`
	Blank           *bool       `yaml:"blank"`
	Layers          []LayerSpec `yaml:"layers"`
	Target          BufferSpec  `yaml:"target"`
}

// LayerSpec describes one application layer.
type LayerSpec struct {
	Buffer    *BufferSpec `yaml:"buffer"`
	Skip      bool        `yaml:"skip"`
	Crop      []int       `yaml:"crop"`
	Frame     []int       `yaml:"frame"`
	Transform uint32      `yaml:"transform"`
	Blending  string      `yaml:"blending"`
	// Fence attaches a signalled acquire fence.
	Fence bool `yaml:"fence"`
}

// BufferSpec describes a buffer handle.
type BufferSpec struct {
	ID     uint64   `yaml:"id"`
	Format string   `yaml:"format"`
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Flags  []string `yaml:"flags"`
}

var formats = map[string]layer.Format{
	"rgba8888":   layer.FormatRGBA8888,
	"rgbx8888":   layer.FormatRGBX8888,
	"rgb565":     layer.FormatRGB565,
	"bgra8888":   layer.FormatBGRA8888,
	"yv12":       layer.FormatYV12,
	"nv12":       layer.FormatNV12,
	"nv21":       layer.FormatNV21,
	"ycbcr420sp": layer.FormatYCbCr420SP,
}

var privFlags = map[string]layer.PrivFlag{
	"secure":         layer.PrivSecure,
	"external_only":  layer.PrivExternalOnly,
	"external_block": layer.PrivExternalBlock,
	"external_cc":    layer.PrivExternalCC,
}

var blendings = map[string]layer.Blending{
	"":              layer.BlendNone,
	"none":          layer.BlendNone,
	"premultiplied": layer.BlendPremultiplied,
	"coverage":      layer.BlendCoverage,
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	// #nosec G304 -- scenario paths are provided by the operator
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a scenario strictly and validates it.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every frame. All problems are reported together.
func (s *Scenario) Validate() error {
	if len(s.Frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalid)
	}
	var errs []error
	for i, f := range s.Frames {
		name := f.label(i)
		if f.Repeat < 0 {
			errs = append(errs, fmt.Errorf("%s: negative repeat", name))
		}
		if err := f.Target.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s target: %w", name, err))
		}
		for j, l := range f.Layers {
			if err := l.validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s layer %d: %w", name, j, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Count returns the number of composed frames, repeats included.
func (s *Scenario) Count() int {
	n := 0
	for _, f := range s.Frames {
		n += f.Times()
	}
	return n
}

// Times returns how many times the frame is composed.
func (f Frame) Times() int {
	if f.Repeat <= 0 {
		return 1
	}
	return f.Repeat
}

func (f Frame) label(i int) string {
	if f.Name != "" {
		return fmt.Sprintf("frame %q", f.Name)
	}
	return fmt.Sprintf("frame %d", i)
}

// FenceSource creates acquire fences for layers that ask for one.
type FenceSource func() (*fence.Fence, error)

// Build turns the frame into a fresh layer list. The target is appended last.
// On error every fence already created is closed.
func (f Frame) Build(fences FenceSource) (*layer.List, error) {
	list := &layer.List{Layers: make([]*layer.Layer, 0, len(f.Layers)+1)}
	if f.GeometryChanged {
		list.Flags |= layer.GeometryChanged
	}

	for i, spec := range f.Layers {
		l, err := spec.build()
		if err == nil && spec.Fence && fences != nil {
			l.AcquireFence, err = fences()
		}
		if err != nil {
			closeFences(list)
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		list.Layers = append(list.Layers, l)
	}

	target, err := f.Target.handle()
	if err != nil {
		closeFences(list)
		return nil, fmt.Errorf("target: %w", err)
	}
	list.Layers = append(list.Layers, &layer.Layer{
		Composition:  layer.FramebufferTarget,
		Handle:       target,
		SourceCrop:   layer.Rect{Right: target.Width, Bottom: target.Height},
		DisplayFrame: layer.Rect{Right: target.Width, Bottom: target.Height},
	})
	return list, nil
}

// Release closes every fence still attached to the list: unconsumed
// acquire fences and the release fences handed back by the composer.
func Release(list *layer.List) error {
	if list == nil {
		return nil
	}
	var errs []error
	for _, l := range list.Layers {
		if l == nil {
			continue
		}
		if l.AcquireFence != nil {
			errs = append(errs, l.AcquireFence.Close())
			l.AcquireFence = nil
		}
		if l.ReleaseFence != nil {
			errs = append(errs, l.ReleaseFence.Close())
			l.ReleaseFence = nil
		}
	}
	return errors.Join(errs...)
}

func closeFences(list *layer.List) {
	_ = Release(list)
}

func (l LayerSpec) validate() error {
	if l.Buffer != nil {
		if err := l.Buffer.validate(); err != nil {
			return err
		}
	}
	if _, err := rect(l.Crop); err != nil {
		return fmt.Errorf("crop: %w", err)
	}
	if _, err := rect(l.Frame); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if _, ok := blendings[strings.ToLower(l.Blending)]; !ok {
		return fmt.Errorf("unknown blending %q", l.Blending)
	}
	return nil
}

func (l LayerSpec) build() (*layer.Layer, error) {
	out := &layer.Layer{
		Composition: layer.Framebuffer,
		Transform:   layer.Transform(l.Transform),
		Blending:    blendings[strings.ToLower(l.Blending)],
	}
	if l.Skip {
		out.Flags |= layer.FlagSkip
	}
	if l.Buffer != nil {
		h, err := l.Buffer.handle()
		if err != nil {
			return nil, err
		}
		out.Handle = h
	}

	var err error
	if out.SourceCrop, err = rect(l.Crop); err != nil {
		return nil, err
	}
	if out.DisplayFrame, err = rect(l.Frame); err != nil {
		return nil, err
	}
	// Unset rectangles cover the whole buffer.
	if out.Handle != nil {
		full := layer.Rect{Right: out.Handle.Width, Bottom: out.Handle.Height}
		if len(l.Crop) == 0 {
			out.SourceCrop = full
		}
		if len(l.Frame) == 0 {
			out.DisplayFrame = full
		}
	}
	return out, nil
}

func (b BufferSpec) validate() error {
	_, err := b.handle()
	return err
}

func (b BufferSpec) handle() (*layer.Handle, error) {
	format, ok := formats[strings.ToLower(b.Format)]
	if !ok {
		if b.Format != "" {
			return nil, fmt.Errorf("unknown format %q", b.Format)
		}
		format = layer.FormatRGBA8888
	}
	if b.Width < 0 || b.Height < 0 {
		return nil, fmt.Errorf("negative size %dx%d", b.Width, b.Height)
	}
	h := &layer.Handle{ID: b.ID, Format: format, Width: b.Width, Height: b.Height}
	for _, name := range b.Flags {
		flag, ok := privFlags[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown buffer flag %q", name)
		}
		h.Flags |= flag
	}
	return h, nil
}

func rect(v []int) (layer.Rect, error) {
	switch len(v) {
	case 0:
		return layer.Rect{}, nil
	case 4:
		return layer.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
	default:
		return layer.Rect{}, fmt.Errorf("want [left, top, right, bottom], got %d values", len(v))
	}
}
