// Package timeapi serves the current time, optionally shifted by a fixed UTC
// offset supplied in the "timezone" query parameter.
//
// Responses:
//   - no timezone:      200 {"error": null, "currentTime": "...Z"}
//   - invalid timezone: 400 {"error": "Invalid timezone format. Use format '+/-HH:MM'"}
//   - valid timezone:   200 {"error": null, "currentTime": "...Z", "adjustedTime": "...±HH:MM"}
//   - compute failure:  500 {"error": "Internal server error"}
//
// The current instant is read once per request and used for both timestamps.
package timeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/time-service/internal/clock"
	"github.com/otherjamesbrown/time-service/internal/logging"
	"github.com/otherjamesbrown/time-service/internal/metrics"
	"github.com/otherjamesbrown/time-service/internal/observability"
	"github.com/otherjamesbrown/time-service/internal/offset"
	"github.com/otherjamesbrown/time-service/internal/telemetry"
)

// TimezoneParam is the query parameter carrying the client's offset.
const TimezoneParam = "timezone"

// TimeResponse is the success payload. Error is always null on success.
type TimeResponse struct {
	Error        *string `json:"error"`
	CurrentTime  string  `json:"currentTime"`
	AdjustedTime string  `json:"adjustedTime,omitempty"`
}

// ErrorResponse is the payload for 400 and 500 responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Calculator converts a validated offset string into a duration.
type Calculator func(raw string) (time.Duration, error)

// Handler serves GET /time.
type Handler struct {
	clock     clock.Clock
	logger    *zap.Logger
	calculate Calculator
	tracer    trace.Tracer
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the system clock.
func WithClock(c clock.Clock) Option {
	return func(h *Handler) { h.clock = c }
}

// WithLogger sets the logger used for request outcomes and failures.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithCalculator overrides offset.Calculate.
func WithCalculator(calc Calculator) Option {
	return func(h *Handler) { h.calculate = calc }
}

// NewHandler creates a Handler backed by the system clock.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		clock:     clock.System{},
		logger:    zap.NewNop(),
		calculate: offset.Calculate,
		tracer:    otel.Tracer(telemetry.TracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the time endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/time", h.GetTime)
}

// GetTime handles GET /time.
func (h *Handler) GetTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "timeapi.GetTime")
	defer span.End()

	start := time.Now()
	logger := logging.WithContext(ctx, h.logger)
	if id, ok := observability.RequestIDFromContext(ctx); ok {
		logger = logger.With(zap.String("request_id", id))
	}

	now := h.clock.Now().UTC()
	resp := TimeResponse{CurrentTime: FormatTimestamp(now)}

	raw, malformed := timezoneParam(r.URL.RawQuery)
	if malformed {
		logger.Debug("rejected malformed timezone query", zap.String("query", r.URL.RawQuery))
		h.finish(span, metrics.OutcomeInvalid, start)
		writeError(w, ErrInvalidTimezone)
		return
	}
	if raw == "" {
		h.finish(span, metrics.OutcomeBase, start)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	span.SetAttributes(attribute.String("time.timezone", raw))

	if !offset.IsValid(raw) {
		logger.Debug("rejected timezone", zap.String("timezone", raw))
		h.finish(span, metrics.OutcomeInvalid, start)
		writeError(w, ErrInvalidTimezone)
		return
	}

	adjusted, err := h.adjust(now, raw)
	if err != nil {
		logger.Error("failed to compute adjusted time", zap.String("timezone", raw), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjusted time computation failed")
		h.finish(span, metrics.OutcomeInternal, start)
		writeError(w, MapError(err))
		return
	}

	resp.AdjustedTime = adjusted
	h.finish(span, metrics.OutcomeAdjusted, start)
	writeJSON(w, http.StatusOK, resp)
}

// timezoneParam extracts the timezone value from rawQuery. url.ParseQuery
// drops pairs it cannot decode, so a timezone key whose pair failed to parse
// is reported as malformed instead of absent.
func timezoneParam(rawQuery string) (value string, malformed bool) {
	values, err := url.ParseQuery(rawQuery)
	if _, ok := values[TimezoneParam]; ok || err == nil {
		return values.Get(TimezoneParam), false
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if key == TimezoneParam {
			return "", true
		}
	}
	return "", false
}

// adjust shifts now by raw and formats it. Panics are converted to errors so
// the caller can answer 500.
func (h *Handler) adjust(now time.Time, raw string) (adjusted string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("timeapi: panic computing offset %q: %v", raw, rec)
		}
	}()

	delta, err := h.calculate(raw)
	if err != nil {
		return "", fmt.Errorf("timeapi: calculate offset %q: %w", raw, err)
	}
	return FormatAdjusted(now.Add(delta), raw), nil
}

func (h *Handler) finish(span trace.Span, outcome string, start time.Time) {
	span.SetAttributes(attribute.String("time.outcome", outcome))
	metrics.RecordRequest(outcome, time.Since(start))
}

func writeError(w http.ResponseWriter, apiErr *APIError) {
	writeJSON(w, StatusFor(apiErr.Code), ErrorResponse{Error: apiErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
