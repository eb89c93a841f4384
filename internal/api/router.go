// Package api serves the platform's HTTP surface: health probes, the
// container state report, Prometheus metrics and the websocket endpoint.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bootstrap "github.com/K-John/createrington-sub002"
)

// NewRouter builds the chi router.
//
// Routes:
//   - GET /health           liveness probe
//   - GET /health/services  per-service container states
//   - GET /metrics          Prometheus metrics
//   - GET /ws               websocket gateway upgrade (when gateway non-nil)
func NewRouter(container *bootstrap.Container, gateway http.Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/health/services", func(w http.ResponseWriter, req *http.Request) {
		states := container.States()
		status := http.StatusOK
		for _, state := range states {
			if state == bootstrap.StateFailed {
				status = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, status, map[string]any{"services": states})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if gateway != nil {
		r.Handle("/ws", gateway)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug("api request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
