// Copyright © 2018 The ELPS authors

package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		backend telemetry.Backend
		fails   bool
	}{
		{"", telemetry.BackendOpenTelemetry, false},
		{"otel", telemetry.BackendOpenTelemetry, false},
		{" OpenCensus ", telemetry.BackendOpenCensus, false},
		{"none", telemetry.BackendNone, false},
		{"zipkin", "", true},
	}
	for _, test := range tests {
		b, err := telemetry.ParseBackend(test.in)
		if test.fails {
			assert.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.backend, b, test.in)
		tracer, err := telemetry.New(b)
		require.NoError(t, err, test.in)
		assert.NotNil(t, tracer, test.in)
	}
	_, err := telemetry.New("zipkin")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	assert.Nil(t, telemetry.Location(nil))
	attrs := telemetry.Location(&token.Location{File: "watch", Line: 1, Col: 4})
	assert.Equal(t, []telemetry.Attribute{
		telemetry.String("code.filepath", "watch"),
		telemetry.Int("code.lineno", 1),
		telemetry.Int("code.column", 4),
	}, attrs)
	attrs = telemetry.Location(&token.Location{File: "watch"})
	assert.Len(t, attrs, 1)
}

func TestOpenTelemetry(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	tracer := telemetry.NewOpenTelemetry(tp, "")

	ctx, parent := tracer.Start(context.Background(), "evaluate")
	parent.SetAttributes(telemetry.String("text", "count + 1"), telemetry.Int("frame", 0), telemetry.Bool("ok", false))
	_, child := tracer.Start(ctx, "bind")
	child.RecordError(nil)
	child.End()
	parent.RecordError(errors.New("boom"))
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "bind", spans[0].Name)
	assert.Equal(t, "evaluate", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "boom", spans[1].Status.Description)
	assert.Contains(t, spans[1].Attributes, attribute.String("text", "count + 1"))
	assert.Contains(t, spans[1].Attributes, attribute.Int("frame", 0))
	assert.Contains(t, spans[1].Attributes, attribute.Bool("ok", false))
	assert.Equal(t, telemetry.DefaultTracerName, spans[1].InstrumentationLibrary.Name)
}

func TestOpenTelemetry_ContextTracerName(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		assert.NoError(t, tp.Shutdown(context.Background()))
	})
	tracer := telemetry.NewOpenTelemetry(tp, "debugger")
	ctx := context.WithValue(context.Background(), telemetry.ContextTracerNameKey, "host")
	_, span := tracer.Start(ctx, "lookup")
	span.End()
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "host", spans[0].InstrumentationLibrary.Name)
}

type recordingExporter struct {
	mu    sync.Mutex
	spans []*octrace.SpanData
}

func (e *recordingExporter) ExportSpan(sd *octrace.SpanData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, sd)
}

func TestOpenCensus(t *testing.T) {
	exporter := &recordingExporter{}
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
	octrace.RegisterExporter(exporter)
	t.Cleanup(func() { octrace.UnregisterExporter(exporter) })

	tracer := telemetry.NewOpenCensus()
	_, span := tracer.Start(context.Background(), "evaluate")
	span.SetAttributes(telemetry.String("text", "x"), telemetry.Int("frame", 2), telemetry.Bool("ok", true))
	span.RecordError(errors.New("boom"))
	span.End()

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.spans, 1)
	sd := exporter.spans[0]
	assert.Equal(t, "evaluate", sd.Name)
	assert.Equal(t, "x", sd.Attributes["text"])
	assert.Equal(t, int64(2), sd.Attributes["frame"])
	assert.Equal(t, true, sd.Attributes["ok"])
	assert.Equal(t, "boom", sd.Status.Message)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	got, span := telemetry.Noop().Start(ctx, "evaluate")
	assert.Equal(t, ctx, got)
	span.SetAttributes(telemetry.Int("n", 1))
	span.RecordError(errors.New("ignored"))
	span.End()
}
