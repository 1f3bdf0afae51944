// Package server wires the facet engine's HTTP surface: the backend
// ingestion endpoint, Prometheus metrics, and a health probe.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rahib777-7/ore-ui/pkg/channel"
	"github.com/Rahib777-7/ore-ui/pkg/facet"
)

// Config configures the server.
type Config struct {
	// Addr is the listen address (default: ":8371").
	Addr string

	// Channel configures the backend ingestion endpoint.
	Channel channel.Config

	// Logger receives server diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// TracerName names the OpenTelemetry tracer for HTTP spans.
	TracerName string

	// ReadHeaderTimeout bounds header reads on new connections.
	ReadHeaderTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8371",
		Channel:           channel.DefaultConfig(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Server hosts the engine's HTTP endpoints:
//
//	GET /ws       backend ingestion channel (WebSocket)
//	GET /metrics  Prometheus metrics
//	GET /healthz  liveness probe
type Server struct {
	logger *slog.Logger
	router chi.Router
	http   *http.Server
}

// New builds a server feeding reg.
func New(reg *facet.Registry, config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Channel.Logger == nil {
		config.Channel.Logger = logger
	}

	r := chi.NewRouter()
	r.Use(Tracing(config.TracerName))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/ws", channel.New(reg, config.Channel))

	return &Server{
		logger: logger,
		router: r,
		http: &http.Server{
			Addr:              config.Addr,
			Handler:           r,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
	}
}

// Router exposes the underlying router so hosts can mount extra routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe blocks serving until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and closes backend connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.http.Shutdown(ctx)
}
