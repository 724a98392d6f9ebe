package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/api"
	"github.com/ethpandaops/raid-crawler/internal/config"
	"github.com/ethpandaops/raid-crawler/internal/middleware"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	logger     logrus.FieldLogger
}

// New creates a new HTTP server with all routes and middleware. stream
// serves the operator websocket and may be nil.
func New(
	logger logrus.FieldLogger,
	cfg *config.Config,
	handler *api.Handler,
	stream http.Handler,
) *Server {
	mux := http.NewServeMux()

	// Health endpoint (no middleware needed for simple health check)
	mux.HandleFunc("GET /health", api.Health())
	logger.WithField("route", "GET /health").Info("Registered route")

	mux.HandleFunc("GET /version", api.Version())
	logger.WithField("route", "GET /version").Info("Registered route")

	// Metrics endpoint (Prometheus format)
	mux.Handle("GET /metrics", promhttp.Handler())
	logger.WithField("route", "GET /metrics").Info("Registered route")

	handler.Register(mux)

	if stream != nil {
		mux.Handle("GET /api/v1/stream", stream)
		logger.WithField("route", "GET /api/v1/stream").Info("Registered route")
	}

	// Apply middleware chain: Logging → Metrics → CORS → Recovery
	h := middleware.Logging(logger)(mux)
	h = middleware.Metrics()(h)
	h = middleware.CORS(cfg.Server.AllowedOrigins)(h)
	h = middleware.Recovery(logger)(h)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		logger:     logger,
	}
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server (blocking call).
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	return s.httpServer.Shutdown(ctx)
}
