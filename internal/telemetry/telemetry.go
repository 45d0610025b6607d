// Package telemetry initializes OpenTelemetry tracing for the rcagent
// commands. Tracing is opt-in: without an endpoint the global tracer stays a
// no-op.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "release-copilot-agent"
	serviceVersion = "1.0.0"

	// ProtocolGRPC and ProtocolHTTP select the OTLP transport.
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// Tracer is the tracer rcagent packages use. It is a no-op until Start
// succeeds.
var Tracer trace.Tracer = noop.NewTracerProvider().Tracer("")

// Option configures Start.
type Option func(*options)

type options struct {
	endpoint string
	protocol string
}

// WithEndpoint sets the OTLP collector endpoint (host:port, no scheme).
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithProtocol selects the OTLP transport, grpc (default) or http.
func WithProtocol(protocol string) Option {
	return func(o *options) { o.protocol = protocol }
}

// Start wires the global tracer provider to an OTLP exporter and returns a
// shutdown func. With no endpoint configured it returns a no-op shutdown and
// leaves the no-op tracer in place.
func Start(ctx context.Context, opts ...Option) (func() error, error) {
	o := &options{protocol: ProtocolGRPC}
	for _, opt := range opts {
		opt(o)
	}
	if o.endpoint == "" {
		return func() error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var exporter *otlptrace.Exporter
	switch o.protocol {
	case ProtocolHTTP:
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(o.endpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(o.endpoint),
			otlptracegrpc.WithInsecure(),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s trace exporter: %w", o.protocol, err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = otel.Tracer(serviceName)

	return func() error {
		if err := provider.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}
