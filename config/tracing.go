package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	defaultOTLPEndpoint = "http://localhost:4318"
	defaultTracesPath   = "/v1/traces"
)

// TracingConfig is read from the OTEL_* variables. Every trace is kept unless
// OTEL_TRACES_SAMPLER_ARG lowers the ratio.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
	SampleRatio float64
}

func NewTracingConfig(appEnv string) *TracingConfig {
	return &TracingConfig{
		Enabled:     utils.IsTracingEnabled(),
		Endpoint:    utils.GetEnvTrimmedOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint),
		ServiceName: utils.OTelServiceName(),
		Environment: appEnv,
		SampleRatio: sampleRatio(utils.GetEnvTrimmed("OTEL_TRACES_SAMPLER_ARG")),
	}
}

func sampleRatio(raw string) float64 {
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1
	}
	return ratio
}

// Install sets the global tracer provider and propagators. The returned
// shutdown flushes pending spans; it is nil when tracing is disabled.
func (tc *TracingConfig) Install(logger *log.Logger) (func(context.Context) error, error) {
	if !tc.Enabled {
		return nil, nil
	}

	collector, err := collectorURL(tc.Endpoint)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(collector.String()))
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", tc.ServiceName),
		attribute.String("deployment.environment", tc.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tc.SampleRatio))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("OpenTelemetry tracing enabled",
		"service", tc.ServiceName,
		"collector", collector.Redacted(),
		"sample_ratio", tc.SampleRatio,
	)
	return provider.Shutdown, nil
}

// collectorURL accepts "http(s)://host:port[/path]" or a bare "host[:port][/path]",
// which is treated as plain HTTP. An empty path becomes /v1/traces.
func collectorURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty OTLP endpoint")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid OTLP endpoint %q: %w", raw, err)
	}
	if u.Scheme = strings.ToLower(u.Scheme); u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported OTLP endpoint scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid OTLP endpoint %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultTracesPath
	}
	return u, nil
}
