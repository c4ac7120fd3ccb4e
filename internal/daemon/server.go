package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/matheus3301/eventsagg/internal/config"
	"github.com/matheus3301/eventsagg/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Server exposes the Prometheus registry over HTTP. A nil *Server is valid
// and does nothing; it is what NewServer returns when metrics are disabled.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

// NewServer binds the metrics listener configured in cfg.
func NewServer(cfg *config.Config, reg *prometheus.Registry, logger *zap.Logger) (*Server, error) {
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen == "" {
		return nil, nil
	}

	listener, err := net.Listen("tcp", cfg.Metrics.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	return &Server{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
		logger:   logger,
	}, nil
}

// Addr returns the bound listener address, or "" when disabled.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start begins serving metrics. Blocks until stopped.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}
	s.logger.Info("metrics server starting", zap.String("addr", s.Addr()))
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) {
	if s == nil {
		return
	}
	s.logger.Info("metrics server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics server shutdown", zap.Error(err))
	}
}
