// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/hwcomposer/internal/composer"
	xglog "github.com/ManuGH/hwcomposer/internal/log"
)

// Composer is the view of the composer the HTTP endpoints need.
type Composer interface {
	ID() string
	Snapshot() composer.State
	Dump(w io.Writer) error
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// DumpRate limits /debug/dump requests per minute and client. Zero disables the limit.
	DumpRate int
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the diagnostic HTTP surface of the daemon.
func NewRouter(c Composer, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(recoverer)
	r.Use(otelHTTP("hwcd"))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		st := c.Snapshot()
		status := http.StatusOK
		state := "ok"
		if st.Closed {
			status = http.StatusServiceUnavailable
			state = "closed"
		}
		writeJSON(w, status, map[string]any{
			"status": state,
			"id":     st.ID,
			"frame":  st.Frame,
		})
	})

	r.Group(func(r chi.Router) {
		if opts.DumpRate > 0 {
			r.Use(rateLimit(opts.DumpRate, time.Minute))
		}
		r.Get("/debug/dump", func(w http.ResponseWriter, req *http.Request) {
			var buf bytes.Buffer
			if err := c.Dump(&buf); err != nil {
				logger := xglog.WithComponentFromContext(req.Context(), "http")
				logger.Error().Err(err).Str(xglog.FieldEvent, "dump.failed").Msg("state dump failed")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dump_failed"})
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(buf.Bytes())
		})
	})

	return r
}
