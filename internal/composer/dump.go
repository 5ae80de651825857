// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package composer

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/hwcomposer/internal/display"
)

// State is the diagnostic snapshot written by Dump.
type State struct {
	ID         string         `yaml:"id"`
	Frame      uint64         `yaml:"frame"`
	Closed     bool           `yaml:"closed"`
	Securing   bool           `yaml:"securing"`
	Strategies []string       `yaml:"strategies"`
	Overlay    OverlayState   `yaml:"overlay"`
	Displays   []DisplayState `yaml:"displays"`
}

// OverlayState describes the overlay resource.
type OverlayState struct {
	Enabled bool   `yaml:"enabled"`
	State   string `yaml:"state"`
	InUse   bool   `yaml:"in_use"`
	Owner   string `yaml:"owner,omitempty"`
	Pipes   int    `yaml:"pipes"`
	Held    int    `yaml:"held_buffers"`
}

// DisplayState describes one display slot and its last decision.
type DisplayState struct {
	Name        string  `yaml:"name"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	VsyncPeriod string  `yaml:"vsync_period"`
	DPIX        float64 `yaml:"dpi_x"`
	DPIY        float64 `yaml:"dpi_y"`
	Active      bool    `yaml:"active"`
	Connected   bool    `yaml:"connected"`

	Layers    int    `yaml:"layers"`
	YUVIndex  int    `yaml:"yuv_index"`
	SkipCount int    `yaml:"skip_count"`
	ExtIndex  int    `yaml:"ext_index"`
	CCIndex   int    `yaml:"cc_index"`
	Strategy  string `yaml:"strategy"`
	Reason    string `yaml:"reason,omitempty"`
}

// Snapshot returns the current diagnostic state. It waits for any frame in flight.
func (c *Composer) Snapshot() State {
	var st State
	_ = c.table.Exclusive(func() error {
		st = State{
			ID:         c.id,
			Frame:      c.frame,
			Closed:     c.closed.Load(),
			Securing:   c.securing.Enabled(),
			Strategies: namesToStrings(c.chain.Names()),
			Overlay: OverlayState{
				Enabled: c.overlay.Enabled(),
				State:   c.overlay.State().String(),
				InUse:   c.overlay.InUse(),
				Owner:   c.overlay.Owner(),
				Pipes:   c.overlay.Pipes(),
				Held:    c.overlay.Held(),
			},
		}
		snap := c.table.Snapshot()
		for i := range snap {
			a, s, d := snap[i], c.stats[i], c.decisions[i]
			st.Displays = append(st.Displays, DisplayState{
				Name:        display.ID(i).String(),
				Width:       a.Width,
				Height:      a.Height,
				VsyncPeriod: a.VsyncPeriod.String(),
				DPIX:        a.DPIX,
				DPIY:        a.DPIY,
				Active:      a.Active,
				Connected:   a.Connected,
				Layers:      s.NumLayers,
				YUVIndex:    s.YUVIndex,
				SkipCount:   s.SkipCount,
				ExtIndex:    s.ExtIndex,
				CCIndex:     s.CCIndex,
				Strategy:    string(d.Strategy),
				Reason:      string(d.Reason),
			})
		}
		return nil
	})
	return st
}

// Dump writes the diagnostic state as YAML.
func (c *Composer) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Snapshot()); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return enc.Close()
}
