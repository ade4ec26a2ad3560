// Package telemetry configures the OpenTelemetry tracer provider.
//
// When OTLP export cannot be initialized the service keeps running with a
// no-op provider and the failure is counted in
// time_service_telemetry_export_failures_total.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// TracerName is the instrumentation scope used by the service's spans.
const TracerName = "github.com/otherjamesbrown/time-service"

var exporterFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "time_service",
		Subsystem: "telemetry",
		Name:      "export_failures_total",
		Help:      "Number of telemetry exporter initialization failures by exporter protocol.",
	},
	[]string{"exporter"},
)

// Config controls the OpenTelemetry initialization.
type Config struct {
	Enabled     bool
	ServiceName string
	Environment string
	Endpoint    string
	Protocol    string // grpc or http
	Headers     map[string]string
	Insecure    bool
}

// Provider wraps the tracer provider and exposes Shutdown.
type Provider struct {
	tp       *sdktrace.TracerProvider
	fallback bool
}

// Shutdown flushes telemetry exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// Fallback reports whether the provider is operating in a degraded mode.
func (p *Provider) Fallback() bool {
	if p == nil {
		return false
	}
	return p.fallback
}

// Active reports whether spans are exported.
func (p *Provider) Active() bool {
	return p != nil && p.tp != nil
}

// Init configures OpenTelemetry exporters and global providers. A gRPC
// failure is retried over HTTP before degrading to a no-op provider.
func Init(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	setPropagator()

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &Provider{}, nil
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("telemetry: endpoint required")
	}

	provider, err := initWithConfig(ctx, cfg)
	if err == nil {
		return provider, nil
	}
	exporterFailures.WithLabelValues(cfg.Protocol).Inc()
	logger.Warn("telemetry exporter init failed", zap.String("protocol", cfg.Protocol), zap.Error(err))

	if cfg.Protocol == "grpc" {
		httpCfg := cfg
		httpCfg.Protocol = "http"
		httpProvider, httpErr := initWithConfig(ctx, httpCfg)
		if httpErr == nil {
			return httpProvider, nil
		}
		exporterFailures.WithLabelValues("http").Inc()
		logger.Warn("telemetry http fallback failed", zap.Error(httpErr))
	}

	exporterFailures.WithLabelValues("degraded").Inc()
	otel.SetTracerProvider(noop.NewTracerProvider())
	return &Provider{fallback: true}, nil
}

func initWithConfig(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func buildClient(cfg Config) (otlptrace.Client, error) {
	switch cfg.Protocol {
	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
				Enabled:         true,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				MaxElapsedTime:  30 * time.Second,
			}),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.NewClient(opts...), nil
	case "grpc", "":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{
				Enabled:         true,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				MaxElapsedTime:  30 * time.Second,
			}),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.ServiceName)),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		return otlptracegrpc.NewClient(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", cfg.Protocol)
	}
}
