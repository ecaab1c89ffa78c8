// Package trace sets up OpenTelemetry tracing for the client. Export is
// enabled only when an OTLP endpoint is configured; otherwise a no-op
// provider is installed so instrumented code runs unchanged.
package trace

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the exporter.
type Config struct {
	Endpoint    string // host:port or URL of an OTLP/HTTP collector; "" disables export
	ServiceName string
	Insecure    bool
}

// Provider wraps the tracer provider and its shutdown.
type Provider struct {
	tp      oteltrace.TracerProvider
	sdk     *sdktrace.TracerProvider
	enabled bool
}

// NewProvider builds a Provider and installs it as the global provider.
func NewProvider(ctx context.Context, cfg Config, extra ...sdktrace.TracerProviderOption) (*Provider, error) {
	if cfg.Endpoint == "" && len(extra) == 0 {
		p := &Provider{tp: noop.NewTracerProvider()}
		otel.SetTracerProvider(p.tp)
		return p, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "distress"
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Endpoint != "" {
		var exOpts []otlptracehttp.Option
		if strings.Contains(cfg.Endpoint, "://") {
			// Full URL form; the scheme decides TLS.
			exOpts = append(exOpts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		} else {
			exOpts = append(exOpts, otlptracehttp.WithEndpoint(cfg.Endpoint))
			if cfg.Insecure {
				exOpts = append(exOpts, otlptracehttp.WithInsecure())
			}
		}
		exporter, err := otlptracehttp.New(ctx, exOpts...)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	opts = append(opts, extra...)

	sdk := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(sdk)
	return &Provider{tp: sdk, sdk: sdk, enabled: true}, nil
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}

// TracerProvider returns the underlying provider.
func (p *Provider) TracerProvider() oteltrace.TracerProvider {
	if p == nil {
		return noop.NewTracerProvider()
	}
	return p.tp
}

// Shutdown flushes and closes the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
