package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Config holds HTTP server settings.
type Config struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
}

// Server is the container-managed HTTP listener.
type Server struct {
	http *http.Server
	log  *slog.Logger
}

// NewServer wraps handler in an http.Server and starts listening in the
// background. Listen failures after startup are logged, not returned; the
// health endpoint surfaces them operationally.
func NewServer(cfg Config, handler http.Handler, log *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}

	s := &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		log: log,
	}

	go func() {
		log.Info("api listening", "addr", cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server stopped", "error", err)
		}
	}()

	return s
}

// Shutdown stops accepting connections and drains in-flight requests,
// bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
