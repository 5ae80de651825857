// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package strategy

import (
	"fmt"

	"github.com/ManuGH/hwcomposer/internal/layer"
	"github.com/ManuGH/hwcomposer/internal/metrics"
)

// DefaultOrder is the selector priority for the primary display.
var DefaultOrder = []Name{NameVideo, NameExternalOnly, NameUIMirror, NameMultiLayer}

// New returns the selector registered under name.
func New(name Name) (Selector, error) {
	switch name {
	case NameVideo:
		return VideoOverlay{}, nil
	case NameExternalOnly:
		return ExternalOnly{}, nil
	case NameUIMirror:
		return UIMirror{}, nil
	case NameMultiLayer:
		return MultiLayer{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Decision is the outcome of running the chain for one display.
type Decision struct {
	Strategy Name
	Reason   Reason

	selector Selector
}

// Claimed reports whether a selector took the overlay.
func (d Decision) Claimed() bool {
	return d.selector != nil
}

// Draw runs the winning selector's draw step. A decision without a winner
// draws nothing.
func (d Decision) Draw(env *Env, list *layer.List) error {
	if d.selector == nil {
		return nil
	}
	return d.selector.Draw(env, list)
}

// Chain tries selectors in priority order until one claims.
type Chain struct {
	selectors []Selector
}

// NewChain returns a chain over selectors in the given order.
func NewChain(selectors ...Selector) *Chain {
	return &Chain{selectors: selectors}
}

// BuildChain resolves names into a chain. Duplicates are rejected.
func BuildChain(names []Name) (*Chain, error) {
	seen := make(map[Name]bool, len(names))
	selectors := make([]Selector, 0, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, fmt.Errorf("strategy %q listed twice", n)
		}
		seen[n] = true
		s, err := New(n)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, s)
	}
	return NewChain(selectors...), nil
}

// Names returns the selector order.
func (c *Chain) Names() []Name {
	out := make([]Name, 0, len(c.selectors))
	for _, s := range c.selectors {
		out = append(out, s.Name())
	}
	return out
}

// Select runs the selectors in order and stops at the first claim. When
// nobody claims, every non-skip application layer falls back to framebuffer
// composition.
func (c *Chain) Select(env *Env, list *layer.List) Decision {
	display := env.Display.String()
	for _, s := range c.selectors {
		env.reason = ""
		if s.Configure(env, list) {
			env.Logger.Debug().
				Str("event", "strategy.claimed").
				Str("strategy", string(s.Name())).
				Msg("strategy claimed overlay")
			metrics.RecordDecision(display, string(s.Name()), string(ReasonClaimed))
			return Decision{Strategy: s.Name(), Reason: ReasonClaimed, selector: s}
		}
		reason := env.reason
		if reason == "" {
			reason = ReasonNoCandidate
		}
		metrics.RecordDecline(string(s.Name()), string(reason))
		env.Logger.Debug().
			Str("event", "strategy.declined").
			Str("strategy", string(s.Name())).
			Str("reason", string(reason)).
			Msg("strategy declined")
	}

	for _, l := range list.AppLayers() {
		if l != nil && !l.IsSkip() {
			l.Composition = layer.Framebuffer
		}
	}
	metrics.RecordDecision(display, string(NameNone), string(ReasonNoCandidate))
	return Decision{Strategy: NameNone, Reason: ReasonNoCandidate}
}
