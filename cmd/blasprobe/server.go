package main

import (
	"io"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/numkit/blasprobe/internal/native"
	"github.com/numkit/blasprobe/internal/probe"
)

var (
	probeRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blasprobe_http_probe_runs_total",
		Help: "The total number of probe suites executed over HTTP",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blasprobe_http_request_duration_seconds",
		Help:    "Time spent serving probe requests",
		Buckets: prometheus.DefBuckets,
	})
)

// Server exposes the probe suite over HTTP so CI systems can poll a
// long-lived process instead of re-execing the binary. Probe runs are
// serialized: interleaving them would skew the duration metrics without
// telling us anything new about the library.
type Server struct {
	backend    native.Backend
	convention string
	sem        *semaphore.Weighted
}

func NewServer(backend native.Backend, convention string) *Server {
	return &Server{
		backend:    backend,
		convention: convention,
		sem:        semaphore.NewWeighted(1),
	}
}

func startServer(addr string, backend native.Backend, convention string) {
	srv := NewServer(backend, convention)

	http.HandleFunc("/probe", srv.handleProbe)
	http.HandleFunc("/healthz", srv.handleHealth)
	http.Handle("/metrics", promhttp.Handler())

	log.Info().Str("addr", addr).Msg("Serving probe endpoints")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

var serverTracer = otel.Tracer("blasprobe-server")

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	ctx, span := serverTracer.Start(r.Context(), "handleProbe")
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		log.Error().Err(err).Msg("Failed to acquire probe semaphore")
		http.Error(w, "Server busy", http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release(1)

	// The report carries everything the OK/incorrect lines would say.
	runner := probe.NewRunner(s.backend)
	runner.Convention = s.convention
	runner.Out = io.Discard
	runner.Err = io.Discard
	report := runner.Run(ctx)
	probeRuns.Inc()

	span.SetAttributes(
		attribute.Bool("passed", report.Passed),
		attribute.String("backend", report.Backend),
	)

	w.Header().Set("Content-Type", "application/cbor")
	if !report.Passed {
		// The body still carries the full report; the status code lets
		// dumb pollers treat any non-2xx as a failed probe.
		w.WriteHeader(http.StatusConflict)
	}
	if err := cbor.NewEncoder(w).Encode(report); err != nil {
		log.Error().Err(err).Msg("Failed to encode probe report")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
