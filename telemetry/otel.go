// Copyright © 2018 The ELPS authors

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ContextTracerNameKey looks up an instrumentation name in a context.  It
// overrides the name given to NewOpenTelemetry.
const ContextTracerNameKey = "otelParentTracer"

type otelTracer struct {
	provider trace.TracerProvider
	name     string
}

// NewOpenTelemetry returns a tracer creating spans from provider.  A nil
// provider uses the global provider at the time each span starts.
func NewOpenTelemetry(provider trace.TracerProvider, name string) Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return &otelTracer{provider: provider, name: name}
}

func (t *otelTracer) tracer(ctx context.Context) trace.Tracer {
	provider := t.provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	name, ok := ctx.Value(ContextTracerNameKey).(string)
	if !ok {
		name = t.name
	}
	return provider.Tracer(name)
}

func (t *otelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer(ctx).Start(ctx, name)
	return ctx, otelSpan{span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			kvs = append(kvs, attribute.String(a.Key, v))
		case int:
			kvs = append(kvs, attribute.Int(a.Key, v))
		case bool:
			kvs = append(kvs, attribute.Bool(a.Key, v))
		default:
			kvs = append(kvs, attribute.String(a.Key, fmt.Sprint(v)))
		}
	}
	s.span.SetAttributes(kvs...)
}

func (s otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s otelSpan) End() { s.span.End() }
