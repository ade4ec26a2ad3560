package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/otherjamesbrown/time-service/internal/health"
	"github.com/otherjamesbrown/time-service/internal/metrics"
)

// setupTestServer creates a server with the given route registration function
// and returns its handler for direct testing.
func setupTestServer(t *testing.T, debug bool, registerRoutes func(chi.Router)) http.Handler {
	t.Helper()
	reg := health.NewRegistry()
	reg.Register("self", func(context.Context) error { return nil })

	srv := New(Options{
		Port:           8081,
		Logger:         zaptest.NewLogger(t),
		ServiceName:    "test-server",
		Debug:          debug,
		Health:         reg,
		RegisterRoutes: registerRoutes,
	})
	assert.Equal(t, ":8081", srv.Addr)
	return srv.Handler
}

func getOnly(r chi.Router) {
	r.Get("/time", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNotFoundHasEmptyBody(t *testing.T) {
	handler := setupTestServer(t, false, getOnly)
	before := testutil.ToFloat64(metrics.UnroutedRequestsTotal.WithLabelValues("not_found"))

	for _, path := range []string{"/", "/nonexistent", "/time/extra"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
	}
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.UnroutedRequestsTotal.WithLabelValues("not_found")))
}

func TestMethodNotAllowedHasEmptyBody(t *testing.T) {
	handler := setupTestServer(t, false, getOnly)
	before := testutil.ToFloat64(metrics.UnroutedRequestsTotal.WithLabelValues("method_not_allowed"))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req := httptest.NewRequest(method, "/time", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, http.MethodGet, w.Header().Get("Allow"), method)
		assert.Empty(t, w.Body.String(), method)
	}
	assert.Equal(t, before+4, testutil.ToFloat64(metrics.UnroutedRequestsTotal.WithLabelValues("method_not_allowed")))
}

func TestMethodNotAllowedListsEveryRegisteredMethod(t *testing.T) {
	handler := setupTestServer(t, false, func(r chi.Router) {
		getOnly(r)
		r.Post("/time", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/time", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Allow"))
}

func TestHealthz(t *testing.T) {
	handler := setupTestServer(t, false, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadyz(t *testing.T) {
	handler := setupTestServer(t, false, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var result health.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Checks["self"].Healthy)
}

func TestReadyzFailingProbe(t *testing.T) {
	reg := health.NewRegistry()
	reg.Register("clock", func(context.Context) error { return errors.New("skewed") })
	srv := New(Options{Logger: zaptest.NewLogger(t), Health: reg})

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordNotFound()
	handler := setupTestServer(t, false, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "time_service_http_unrouted_requests_total")
}

func TestDebugRoutesOnlyInDebugMode(t *testing.T) {
	handler := setupTestServer(t, false, getOnly)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/routes", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	handler = setupTestServer(t, true, getOnly)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/routes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response struct {
		Service string              `json:"service"`
		Routes  []map[string]string `json:"routes"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "test-server", response.Service)
	assert.Equal(t, len(response.Routes), response.Count)

	routeSet := map[string]bool{}
	for _, route := range response.Routes {
		routeSet[route["method"]+" "+route["route"]] = true
	}
	assert.True(t, routeSet["GET /time"])
	assert.True(t, routeSet["GET /healthz"])
	assert.True(t, routeSet["GET /debug/routes"])
}

func TestRequestIDHeader(t *testing.T) {
	handler := setupTestServer(t, false, getOnly)

	req := httptest.NewRequest(http.MethodGet, "/time", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecovererReturns500(t *testing.T) {
	handler := setupTestServer(t, false, func(r chi.Router) {
		r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestResponseWriterStatusCapture(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rw.statusCode)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
