// Package config provides environment variable-based configuration loading.
//
// Dependencies:
//   - github.com/kelseyhightower/envconfig: Environment variable parsing
//   - github.com/joho/godotenv: optional .env preloading for local development
//
// Debugging Notes:
//   - DEBUG_MODE defaults to enabled; only a case-insensitive "true" enables it
//     when the variable is set, every other value disables it
//   - Variables already present in the environment win over .env entries
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DebugFlag is a boolean that treats only "true" (any case) as enabled.
type DebugFlag bool

// Decode implements envconfig.Decoder.
func (d *DebugFlag) Decode(value string) error {
	*d = DebugFlag(strings.EqualFold(value, "true"))
	return nil
}

// Enabled reports whether the flag is set.
func (d DebugFlag) Enabled() bool {
	return bool(d)
}

// Headers holds OTLP exporter headers in the "key=value,key2=value2" form of
// OTEL_EXPORTER_OTLP_HEADERS.
type Headers map[string]string

// Decode implements envconfig.Decoder. Pairs without '=' are skipped.
func (h *Headers) Decode(value string) error {
	headers := Headers{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	*h = headers
	return nil
}

// Config represents the runtime configuration for the time service.
type Config struct {
	// ServiceName is emitted in logs, metrics and traces.
	ServiceName string `envconfig:"SERVICE_NAME" default:"time-service"`
	// HTTPPort is the port the HTTP server listens on.
	HTTPPort int `envconfig:"HTTP_PORT" default:"5000"`
	// Environment describes the deployment environment (development, staging, production).
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	// LogLevel controls zap verbosity (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// DebugMode enables verbose logging and the /debug/routes endpoint.
	DebugMode DebugFlag `envconfig:"DEBUG_MODE" default:"true"`

	// Telemetry
	TelemetryEnabled  bool    `envconfig:"OTEL_ENABLED" default:"false"`
	TelemetryEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	TelemetryProtocol string  `envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc"`
	TelemetryInsecure bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	TelemetryHeaders  Headers `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads environment variables into Config, applying defaults where necessary.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	cfg.TelemetryProtocol = strings.ToLower(cfg.TelemetryProtocol)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad returns Config or exits the process.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// LoadDotEnv populates the environment from the given files, or ".env" when
// none are given. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// EffectiveLogLevel returns "debug" in debug mode and LogLevel otherwise.
func (c *Config) EffectiveLogLevel() string {
	if c.DebugMode.Enabled() {
		return "debug"
	}
	return c.LogLevel
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.ServiceName) == "" {
		return errors.New("config: SERVICE_NAME must be provided")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return fmt.Errorf("config: HTTP_PORT %d out of range", cfg.HTTPPort)
	}
	if cfg.TelemetryProtocol != "grpc" && cfg.TelemetryProtocol != "http" {
		return fmt.Errorf("config: unsupported OTLP protocol %q", cfg.TelemetryProtocol)
	}
	return nil
}
