// Copyright © 2018 The ELPS authors

package binder

import (
	"github.com/luthersystems/eescope/symbols"
)

// MethodScope resolves the parameters, frame locals and labels of the
// method containing the paused frame.  Names match exactly.
type MethodScope struct {
	method *symbols.Method
	locals *LocalSet
}

var _ Scope = (*MethodScope)(nil)

// NewMethodScope returns the scope of method.
func NewMethodScope(method *symbols.Method) *MethodScope {
	frame := method.Locals()
	locals := make([]symbols.Local, len(frame))
	for i, l := range frame {
		locals[i] = l
	}
	return &MethodScope{method: method, locals: NewLocalSet(locals...)}
}

// Method returns the method of the scope.
func (s *MethodScope) Method() *symbols.Method { return s.method }

// Locals returns the frame locals of the method.
func (s *MethodScope) Locals() *LocalSet { return s.locals }

// ResolveSpecial implements Scope.  Labels answer label lookups and
// parameters answer value lookups.  Frame locals are left to the general
// local lookup.
func (s *MethodScope) ResolveSpecial(result *LookupResult, req LookupRequest) Resolution {
	switch {
	case req.Options&LabelsOnly != 0:
		for _, l := range s.method.Labels() {
			if l.Name() == req.Name {
				result.MergeEqual(CheckViability(l, req))
			}
		}
		return Claimed
	case !req.Options.CanConsiderLocals():
		return Skipped
	}
	for _, p := range s.method.Parameters() {
		if p.Name() == req.Name {
			result.MergeEqual(CheckViability(p, req))
			return Claimed
		}
	}
	return Declined
}

// AddLookupSymbolsInfo implements Scope.
func (s *MethodScope) AddLookupSymbolsInfo(info *LookupSymbolsInfo, options LookupOptions) error {
	if options&LabelsOnly != 0 {
		for _, l := range s.method.Labels() {
			info.Add(l)
		}
		return nil
	}
	if !options.CanConsiderLocals() {
		return nil
	}
	if options&MustNotBeLocal == 0 {
		for _, l := range s.locals.All() {
			info.Add(l)
		}
	}
	for _, p := range s.method.Parameters() {
		info.Add(p)
	}
	return nil
}
