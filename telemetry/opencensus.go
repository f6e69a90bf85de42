// Copyright © 2018 The ELPS authors

package telemetry

import (
	"context"
	"fmt"

	"go.opencensus.io/trace"
)

type ocTracer struct{}

// NewOpenCensus returns a tracer creating spans with the OpenCensus trace
// package.  Sampling and export are configured globally by the host.
func NewOpenCensus() Tracer { return ocTracer{} }

func (ocTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := trace.StartSpan(ctx, name)
	return ctx, ocSpan{span}
}

type ocSpan struct {
	span *trace.Span
}

func (s ocSpan) SetAttributes(attrs ...Attribute) {
	ocAttrs := make([]trace.Attribute, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			ocAttrs = append(ocAttrs, trace.StringAttribute(a.Key, v))
		case int:
			ocAttrs = append(ocAttrs, trace.Int64Attribute(a.Key, int64(v)))
		case bool:
			ocAttrs = append(ocAttrs, trace.BoolAttribute(a.Key, v))
		default:
			ocAttrs = append(ocAttrs, trace.StringAttribute(a.Key, fmt.Sprint(v)))
		}
	}
	s.span.AddAttributes(ocAttrs...)
}

func (s ocSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
}

func (s ocSpan) End() { s.span.End() }
