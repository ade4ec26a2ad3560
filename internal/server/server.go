// Package server builds the HTTP server for the time service.
//
// Routes:
//   - GET /healthz       liveness
//   - GET /readyz        readiness from the health registry
//   - GET /metrics       Prometheus exposition
//   - GET /debug/routes  registered routes, debug mode only
//   - anything RegisterRoutes adds (GET /time)
//
// Unknown paths answer 404 and known paths with the wrong method answer 405,
// both with an empty body.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/time-service/internal/health"
	"github.com/otherjamesbrown/time-service/internal/metrics"
	"github.com/otherjamesbrown/time-service/internal/observability"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var routableMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// allowedMethods lists the methods router serves for path, formatted for the
// Allow header.
func allowedMethods(router *chi.Mux, path string) string {
	var allowed []string
	for _, method := range routableMethods {
		if router.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return strings.Join(allowed, ", ")
}

// Options configure the HTTP server instance.
type Options struct {
	Port           int
	Logger         *zap.Logger
	ServiceName    string
	Debug          bool
	Health         *health.Registry
	RegisterRoutes func(chi.Router)
}

// New constructs an http.Server with health, readiness and metrics routes.
func New(opts Options) *http.Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Health == nil {
		opts.Health = health.NewRegistry()
	}
	logger := opts.Logger

	router := chi.NewRouter()

	router.Use(observability.RequestContextMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordNotFound()
		logger.Warn("route not found", requestFields(r)...)
		w.WriteHeader(http.StatusNotFound)
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordMethodNotAllowed()
		logger.Warn("method not allowed", requestFields(r)...)
		if allow := allowedMethods(router, r.URL.Path); allow != "" {
			w.Header().Set("Allow", allow)
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/readyz", health.Handler(opts.Health, 2*time.Second))
	router.Get("/metrics", promhttp.Handler().ServeHTTP)

	if opts.Debug {
		router.Get("/debug/routes", func(w http.ResponseWriter, r *http.Request) {
			routes := []map[string]string{}
			walkFunc := func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
				routes = append(routes, map[string]string{"method": method, "route": route})
				return nil
			}
			if err := chi.Walk(router, walkFunc); err != nil {
				logger.Error("failed to walk routes", zap.Error(err))
				http.Error(w, "failed to list routes", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"service": opts.ServiceName,
				"routes":  routes,
				"count":   len(routes),
			})
		})
	}

	if opts.RegisterRoutes != nil {
		opts.RegisterRoutes(router)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start, ok := observability.StartTimeFromContext(r.Context())
			if !ok {
				start = time.Now()
			}
			logger.Debug("incoming request", append(requestFields(r),
				zap.String("query", r.URL.RawQuery),
				zap.String("remote_addr", r.RemoteAddr),
			)...)

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("request completed", append(requestFields(r),
				zap.Int("status", ww.statusCode),
				zap.Duration("duration", time.Since(start)),
			)...)
		})
	}
}

func requestFields(r *http.Request) []zap.Field {
	requestID, _ := observability.RequestIDFromContext(r.Context())
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
	}
}
