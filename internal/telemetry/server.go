package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server optionally exposes the run's Prometheus metrics over HTTP from
// the start of a benchmark until the process exits. The barrier series
// are only filled after the run completes (see Metrics).
type Server struct {
	httpServer *http.Server
	metrics    *Metrics
	registry   *prometheus.Registry
	addr       string
	enabled    bool
}

// NewServer creates a telemetry server bound to addr (host:port). An
// empty addr disables the server; Start becomes a no-op.
func NewServer(addr string) *Server {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return &Server{
		metrics:  metrics,
		registry: registry,
		addr:     addr,
		enabled:  addr != "",
	}
}

// Start starts the metrics HTTP server in the background.
func (s *Server) Start() error {
	if !s.enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting telemetry server", "addr", s.addr, "endpoint", "/metrics")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("telemetry server failed", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.enabled || s.httpServer == nil {
		return nil
	}
	slog.Info("stopping telemetry server")
	return s.httpServer.Shutdown(ctx)
}

// Metrics returns the metrics instance the run's final outputs are
// reported into.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Endpoint returns the metrics endpoint URL, for logging.
func (s *Server) Endpoint() string {
	return fmt.Sprintf("http://%s/metrics", s.addr)
}
