package telemetry

import (
	"context"
	"io"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Tracer struct {
	trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewTracer creates and configures the traces collection. It returns nil when no exporter is configured.
func NewTracer(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Tracer, error) {
	spanExporter, err := NewTraceExporter(ctx, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	if spanExporter == nil {
		return nil, nil
	}

	res, err := newResource(appName, appVersion)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(spanExporter),
		sdktrace.WithResource(res),
	)

	return &Tracer{
		Tracer:   provider.Tracer(appName),
		provider: provider,
	}, nil
}

// NewTraceExporter creates a new exporter based on the telemetry options.
func NewTraceExporter(_ context.Context, writer io.Writer, opts *Options) (sdktrace.SpanExporter, error) {
	switch exporterType(opts.TraceExporter).orNone() {
	case noneExporterType:
		return nil, nil
	case consoleExporterType:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(writer))
		if err != nil {
			return nil, errors.New(err)
		}

		return exp, nil
	default:
		return nil, errors.New(UnknownExporterError{Kind: "trace", Name: opts.TraceExporter})
	}
}

// Trace wraps the fn execution in a span named after the operation.
func (tracer *Tracer) Trace(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tracer == nil || tracer.Tracer == nil {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	span.SetAttributes(mapToAttributes(attrs)...)

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	return nil
}
