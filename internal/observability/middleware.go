// Package observability carries per-request metadata through contexts.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey ctxKey = "time-service.observability.request_id"
	startTimeKey ctxKey = "time-service.observability.start_time"

	// RequestIDHeader is read from requests and echoed on responses.
	RequestIDHeader = "X-Request-ID"
)

// RequestIDFromContext returns the request ID if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// StartTimeFromContext returns when the middleware first saw the request.
func StartTimeFromContext(ctx context.Context) (time.Time, bool) {
	ts, ok := ctx.Value(startTimeKey).(time.Time)
	return ts, ok
}

// RequestContextMiddleware injects request IDs and timing metadata. An
// incoming X-Request-ID is reused, otherwise a UUID is generated.
func RequestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, startTimeKey, time.Now())

		r = r.WithContext(ctx)
		r.Header.Set(RequestIDHeader, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}
