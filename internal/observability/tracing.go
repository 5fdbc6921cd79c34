// Package observability provides logging, OpenTelemetry tracing and
// Prometheus metrics for codeai.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for codeai spans.
const TracerName = "github.com/efebarandurmaz/codeai"

// TracingConfig selects where spans go. An empty OTLPEndpoint keeps the
// global no-op provider.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string  // host:port of an OTLP gRPC collector
	SampleRate     float64 // clamped to [0, 1]
}

// DefaultTracingConfig samples everything and exports nowhere.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "codeai",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		SampleRate:     1.0,
	}
}

// TracerProvider owns the SDK provider when export is enabled.
type TracerProvider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// InitTracing installs a global provider exporting to cfg.OTLPEndpoint.
// Without an endpoint nothing is installed and spans are dropped.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}
	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{tracer: otel.Tracer(TracerName)}, nil
	}

	sdk, err := newSDKProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return &TracerProvider{sdk: sdk, tracer: sdk.Tracer(TracerName)}, nil
}

func newSDKProvider(ctx context.Context, cfg *TracingConfig) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter for %s: %w", cfg.OTLPEndpoint, err)
	}
	// Schemaless so the merge takes the SDK default's schema URL.
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	), nil
}

func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	if rate <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}

// Shutdown flushes buffered spans. It is a no-op when export is disabled.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	return tp.sdk.Shutdown(ctx)
}

func (tp *TracerProvider) Tracer() trace.Tracer { return tp.tracer }

// Enabled reports whether spans leave the process.
func (tp *TracerProvider) Enabled() bool { return tp.sdk != nil }

// Span operation names.
const (
	SpanNormalize = "normalize"
	SpanSegment   = "segment"
	SpanFormat    = "format"
	SpanPrompt    = "prompt"
)

func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("codeai.operation", op))
	return otel.Tracer(TracerName).Start(ctx, "codeai."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartNormalizeSpan wraps one normalize, segment or format call.
func StartNormalizeSpan(ctx context.Context, op string, inputLen int) (context.Context, trace.Span) {
	return startSpan(ctx, op, attribute.Int("codeai.input_length", inputLen))
}

// RecordNormalizeResult tags span with the stage that produced the result.
// Diagnostic results mark the span as failed.
func RecordNormalizeResult(span trace.Span, source string, bodyLen int) {
	span.SetAttributes(
		attribute.String("normalize.source", source),
		attribute.Int("normalize.body_length", bodyLen),
	)
	if source == "error" {
		span.SetStatus(codes.Error, "response could not be parsed")
	}
}

// StartPromptSpan wraps building one prompt.
func StartPromptSpan(ctx context.Context, kind string) (context.Context, trace.Span) {
	return startSpan(ctx, SpanPrompt, attribute.String("prompt.kind", kind))
}

// RecordError marks span failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
