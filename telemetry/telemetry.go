// Copyright © 2018 The ELPS authors

// Package telemetry traces debugger requests.  Spans are exported through
// OpenTelemetry by default.  OpenCensus is supported for hosts which have not
// migrated.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/luthersystems/eescope/parser/token"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// DefaultTracerName is the instrumentation name used when none is given.
const DefaultTracerName = "eescope"

// Backend names a tracing implementation.
type Backend string

const (
	BackendOpenTelemetry Backend = "otel"
	BackendOpenCensus    Backend = "opencensus"
	BackendNone          Backend = "none"
)

// ParseBackend returns the backend named by s.  The empty string selects
// OpenTelemetry.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "", BackendOpenTelemetry:
		return BackendOpenTelemetry, nil
	case BackendOpenCensus, BackendNone:
		return b, nil
	}
	return "", fmt.Errorf("unknown tracing backend %q", s)
}

// Attribute is a key/value pair attached to a span.  Values are strings,
// ints or bools.
type Attribute struct {
	Key   string
	Value interface{}
}

func String(key string, value string) Attribute { return Attribute{key, value} }
func Int(key string, value int) Attribute       { return Attribute{key, value} }
func Bool(key string, value bool) Attribute     { return Attribute{key, value} }

// Location returns the code attributes of loc.
func Location(loc *token.Location) []Attribute {
	if loc == nil {
		return nil
	}
	attrs := []Attribute{String(string(semconv.CodeFilepathKey), loc.File)}
	if loc.Line > 0 {
		attrs = append(attrs, Int(string(semconv.CodeLineNumberKey), loc.Line))
	}
	if loc.Col > 0 {
		attrs = append(attrs, Int(string(semconv.CodeColumnKey), loc.Col))
	}
	return attrs
}

// Function returns the code attribute naming a function.
func Function(name string) Attribute {
	return String(string(semconv.CodeFunctionKey), name)
}

// Span is an operation in progress.
type Span interface {
	SetAttributes(attrs ...Attribute)
	// RecordError marks the span failed.  A nil err is ignored.
	RecordError(err error)
	End()
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// New returns a tracer for backend using the globally registered provider
// of that backend.
func New(backend Backend) (Tracer, error) {
	switch backend {
	case BackendOpenTelemetry, "":
		return NewOpenTelemetry(nil, DefaultTracerName), nil
	case BackendOpenCensus:
		return NewOpenCensus(), nil
	case BackendNone:
		return Noop(), nil
	}
	return nil, fmt.Errorf("unknown tracing backend %q", backend)
}

type noopTracer struct{}
type noopSpan struct{}

// Noop returns a tracer that records nothing.
func Noop() Tracer { return noopTracer{} }

func (noopTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopSpan) SetAttributes(...Attribute) {}
func (noopSpan) RecordError(error)          {}
func (noopSpan) End()                       {}
