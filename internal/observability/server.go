// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability provides HTTP endpoints for metrics and health checks.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the simulation is ready to be observed.
type ReadinessChecker func() bool

// Registrar registers a package's collectors, such as scheduler.RegisterMetrics.
type Registrar func(prometheus.Registerer)

// Metrics contains the per-run gauges reported by the CLI.
type Metrics struct {
	SimTime      *prometheus.GaugeVec
	Entities     *prometheus.GaugeVec
	PassDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SimTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "turnsim_level_time",
				Help: "Current simulated time of a level",
			},
			[]string{"level"},
		),
		Entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "turnsim_level_entities",
				Help: "Number of entities on a level",
			},
			[]string{"level"},
		),
		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turnsim_pass_duration_seconds",
				Help:    "Wall-clock duration of simulation passes",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"level"},
		),
	}

	reg.MustRegister(m.SimTime)
	reg.MustRegister(m.Entities)
	reg.MustRegister(m.PassDuration)

	return m
}

// Server provides HTTP endpoints for observability (metrics and health probes).
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates a new observability server.
// addr: listen address in "host:port" format (e.g., "127.0.0.1:9100").
// Each registrar is called once with the server's registry.
func NewServer(addr string, readinessChecker ReadinessChecker, registrars ...Registrar) *Server {
	// A private registry keeps package collectors off the global default.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, register := range registrars {
		register(registry)
	}

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		isReady:  readinessChecker,
	}
}

// Metrics returns the run metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Registry returns the registry backing /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// routes builds the endpoint table.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.Handle("/healthz/liveness", healthCheck(nil))
	mux.Handle("/healthz/readiness", healthCheck(s.isReady))
	return mux
}

// Start listens on the configured address and serves in the background.
// The returned channel carries at most one serve error and is closed once
// serving ends.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.In("observability").Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.In("observability").With("addr", s.addr).Wrapf(err, "listen")
	}
	srv := &http.Server{Handler: s.routes(), ReadHeaderTimeout: 10 * time.Second}
	s.listener, s.httpServer = listener, srv

	errs := make(chan error, 1)
	go serve(srv, listener, errs)

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errs, nil
}

func serve(srv *http.Server, listener net.Listener, errs chan<- error) {
	defer close(errs)
	err := srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return
	}
	slog.Error("observability server error", "error", err)
	errs <- err
}

// Stop shuts the server down, waiting for in-flight scrapes until ctx ends.
// Stopping a server that is not running is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.In("observability").With("addr", s.Addr()).Wrapf(err, "shutdown")
	}
	s.running.Store(false)
	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// healthCheck answers a health check. A nil check always passes.
func healthCheck(check ReadinessChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, body := http.StatusOK, "ok\n"
		if check != nil && !check() {
			status, body = http.StatusServiceUnavailable, "not ready\n"
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		//nolint:errcheck // the client may have gone away
		io.WriteString(w, body)
	})
}
