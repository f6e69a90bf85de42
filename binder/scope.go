// Copyright © 2018 The ELPS authors

package binder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/luthersystems/eescope/symbols"
)

// ErrLookupSymbolsNotSupported is returned when a scope cannot enumerate the
// names visible through it.
var ErrLookupSymbolsNotSupported = errors.New("listing visible names is not supported in this context")

// Resolution is the outcome of giving a scope the first chance at a lookup.
type Resolution int

const (
	// Declined means the scope did not resolve the name specially.  The
	// chain continues with an exact-case lookup in the scope's locals.
	Declined Resolution = iota
	// Claimed means the scope resolved the lookup.  Its locals are not
	// searched.
	Claimed
	// Skipped means the scope does not take part in the lookup at all.
	Skipped
)

func (r Resolution) String() string {
	switch r {
	case Declined:
		return "declined"
	case Claimed:
		return "claimed"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// Scope is one layer of name resolution.
type Scope interface {
	// ResolveSpecial gives the scope the first chance at req.  Candidates
	// are merged into result.
	ResolveSpecial(result *LookupResult, req LookupRequest) Resolution
	// Locals returns the locals searched by exact-case lookup when the scope
	// declines a request.
	Locals() *LocalSet
	// AddLookupSymbolsInfo records the names visible through the scope.
	AddLookupSymbolsInfo(info *LookupSymbolsInfo, options LookupOptions) error
}

// LocalSet is an ordered set of locals indexed by exact name.  When names
// repeat the first local wins.
type LocalSet struct {
	locals []symbols.Local
	byName map[string]symbols.Local
}

// NewLocalSet returns a set of locals in the given order.
func NewLocalSet(locals ...symbols.Local) *LocalSet {
	s := &LocalSet{
		locals: locals,
		byName: make(map[string]symbols.Local, len(locals)),
	}
	for _, l := range locals {
		if _, ok := s.byName[l.Name()]; !ok {
			s.byName[l.Name()] = l
		}
	}
	return s
}

// Len returns the number of locals in the set.
func (s *LocalSet) Len() int { return len(s.locals) }

// At returns the i-th local.
func (s *LocalSet) At(i int) symbols.Local { return s.locals[i] }

// All returns the locals of the set in order.
func (s *LocalSet) All() []symbols.Local {
	return append([]symbols.Local(nil), s.locals...)
}

// Lookup returns the local named exactly name, or nil.
func (s *LocalSet) Lookup(name string) symbols.Local {
	return s.byName[name]
}

// LookupSymbolsInfo collects the names visible at a location.
type LookupSymbolsInfo struct {
	names map[string]symbols.Symbol
}

// NewLookupSymbolsInfo returns an empty collection.
func NewLookupSymbolsInfo() *LookupSymbolsInfo {
	return &LookupSymbolsInfo{names: make(map[string]symbols.Symbol)}
}

// Add records sym unless a symbol with the same name was recorded by an
// inner scope.
func (info *LookupSymbolsInfo) Add(sym symbols.Symbol) {
	if _, ok := info.names[sym.Name()]; !ok {
		info.names[sym.Name()] = sym
	}
}

// Names returns the recorded names in sorted order.
func (info *LookupSymbolsInfo) Names() []string {
	names := make([]string, 0, len(info.names))
	for name := range info.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbol returns the symbol recorded under name, or nil.
func (info *LookupSymbolsInfo) Symbol(name string) symbols.Symbol {
	return info.names[name]
}

// Chain resolves names through an ordered list of scopes, innermost first.
type Chain struct {
	scopes []Scope
}

// NewChain returns a chain searching scopes in order.
func NewChain(scopes ...Scope) *Chain {
	return &Chain{scopes: scopes}
}

// Scopes returns the scopes of the chain in search order.
func (c *Chain) Scopes() []Scope { return c.scopes }

// Lookup resolves req.  Each scope first gets a chance to resolve the
// request specially.  A declining scope is then searched for a local named
// exactly req.Name unless the options exclude locals.  The search stops at
// the first scope producing a viable result.  Otherwise the best non-viable
// result is returned.
func (c *Chain) Lookup(req LookupRequest) *LookupResult {
	result := NewLookupResult()
	for _, scope := range c.scopes {
		tmp := NewLookupResult()
		res := scope.ResolveSpecial(tmp, req)
		switch res {
		case Claimed, Skipped:
		case Declined:
			if req.Options.CanConsiderLocals() && req.Options&MustNotBeLocal == 0 {
				lookupLocal(tmp, scope.Locals(), req)
			}
		default:
			panic(symbols.UnexpectedValue(res))
		}
		result.MergePrioritized(tmp)
		if result.IsViable() {
			return result
		}
	}
	return result
}

func lookupLocal(result *LookupResult, locals *LocalSet, req LookupRequest) {
	if locals == nil {
		return
	}
	if local := locals.Lookup(req.Name); local != nil {
		result.MergeEqual(CheckViability(local, req))
	}
}

// LookupSymbolsInfo collects the names visible through every scope of the
// chain.  If any scope cannot enumerate its names the error is returned and
// no partial collection is produced.
func (c *Chain) LookupSymbolsInfo(options LookupOptions) (*LookupSymbolsInfo, error) {
	info := NewLookupSymbolsInfo()
	for _, scope := range c.scopes {
		if err := scope.AddLookupSymbolsInfo(info, options); err != nil {
			return nil, err
		}
	}
	return info, nil
}
