// Copyright © 2018 The ELPS authors

package debugger

import (
	"errors"

	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/diagnostic"
	"github.com/luthersystems/eescope/eval"
	"github.com/luthersystems/eescope/parser/token"
)

// Diagnostics converts the error of a request into renderable diagnostics.
// Source spans refer to SourceName.
func Diagnostics(err error) []diagnostic.Diagnostic {
	if err == nil {
		return nil
	}
	var diags binder.Diagnostics
	if errors.As(err, &diags) {
		out := make([]diagnostic.Diagnostic, len(diags))
		for i, d := range diags {
			out[i] = diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Code:     d.Code,
				Message:  d.Message,
				Spans:    spans(d.Source, d.Width),
			}
		}
		return out
	}
	var rterr *eval.RuntimeError
	if errors.As(err, &rterr) {
		return []diagnostic.Diagnostic{{
			Severity: diagnostic.SeverityError,
			Message:  rterr.Err.Error(),
			Spans:    spans(rterr.Source, 0),
		}}
	}
	var locerr *token.LocationError
	if errors.As(err, &locerr) {
		return []diagnostic.Diagnostic{{
			Severity: diagnostic.SeverityError,
			Message:  locerr.Err.Error(),
			Spans:    spans(locerr.Source, 1),
		}}
	}
	return []diagnostic.Diagnostic{{
		Severity: diagnostic.SeverityError,
		Message:  err.Error(),
	}}
}

func spans(loc *token.Location, width int) []diagnostic.Span {
	if loc == nil {
		return nil
	}
	span := diagnostic.Span{File: loc.File, Line: loc.Line, Col: loc.Col}
	if width > 0 && loc.Col > 0 {
		span.EndCol = loc.Col + width - 1
	}
	return []diagnostic.Span{span}
}

// errorLocation returns where in the request text err occurred, or nil.
func errorLocation(err error) *token.Location {
	var diags binder.Diagnostics
	if errors.As(err, &diags) && len(diags) > 0 {
		return diags[0].Source
	}
	var rterr *eval.RuntimeError
	if errors.As(err, &rterr) {
		return rterr.Source
	}
	var locerr *token.LocationError
	if errors.As(err, &locerr) {
		return locerr.Source
	}
	return nil
}
