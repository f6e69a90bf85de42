// Copyright © 2018 The ELPS authors

package binder

import (
	"strconv"
	"strings"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/symbols"
	"github.com/luthersystems/eescope/syntax"
)

// PlaceholderScope is the innermost scope of a debugger statement.  It makes
// debugger aliases, raw object addresses and the locals declared by the
// statement itself resolve like ordinary locals.
//
// The scope claims names of the form 0x<hex> as object addresses and return
// value aliases looked up by their all-lowercase spelling.  Everything else,
// including exact-case alias names, is left to the general local lookup over
// Locals.  Lookups restricted to namespaces, types or labels are skipped.
//
// A PlaceholderScope is built for a single evaluation request and is not
// modified afterwards.
type PlaceholderScope struct {
	method       *symbols.Method
	objectType   *symbols.TypeSymbol
	placeholders []*symbols.PlaceholderLocal
	// lowercase spelling of return value aliases.  Derived from
	// placeholders while they are created.
	returnValues map[string]*symbols.PlaceholderLocal
	locals       *LocalSet
}

var _ Scope = (*PlaceholderScope)(nil)

// NewPlaceholderScope returns the scope for stmt evaluated in method.  One
// placeholder is created per alias, in order, with its type decoded by
// decoder.  When stmt is a local declaration each declarator adds a local
// after the placeholders.
func NewPlaceholderScope(stmt syntax.Statement, aliases []alias.Descriptor, method *symbols.Method, decoder symbols.TypeNameDecoder, compilation *symbols.Compilation) *PlaceholderScope {
	s := &PlaceholderScope{
		method:       method,
		objectType:   compilation.ObjectType(),
		placeholders: make([]*symbols.PlaceholderLocal, 0, len(aliases)),
		returnValues: make(map[string]*symbols.PlaceholderLocal),
	}
	locals := make([]symbols.Local, 0, len(aliases))
	for _, a := range aliases {
		p := newAliasPlaceholder(method, decoder, a)
		s.placeholders = append(s.placeholders, p)
		locals = append(locals, p)
		if p.PlaceholderKind() == symbols.PlaceholderReturnValue {
			key := strings.ToLower(p.Name())
			if _, ok := s.returnValues[key]; !ok {
				s.returnValues[key] = p
			}
		}
	}
	locals = append(locals, declaredLocals(stmt, method)...)
	s.locals = NewLocalSet(locals...)
	return s
}

func newAliasPlaceholder(method *symbols.Method, decoder symbols.TypeNameDecoder, a alias.Descriptor) *symbols.PlaceholderLocal {
	var kind symbols.PlaceholderKind
	switch a.Kind {
	case alias.Exception:
		kind = symbols.PlaceholderException
	case alias.StowedException:
		kind = symbols.PlaceholderStowedException
	case alias.ReturnValue:
		kind = symbols.PlaceholderReturnValue
	case alias.ObjectID:
		kind = symbols.PlaceholderObjectID
	case alias.Variable:
		kind = symbols.PlaceholderVariable
	default:
		panic(symbols.UnexpectedValue(a.Kind))
	}
	typ := decoder.DecodeTypeName(a.Type)
	return symbols.NewPlaceholderLocal(method, kind, a.Name, a.FullName, typ, a.Payload)
}

// declaredLocals returns one local per declarator when stmt is a local
// declaration.
func declaredLocals(stmt syntax.Statement, method *symbols.Method) []symbols.Local {
	decl, ok := stmt.(*syntax.LocalDeclarationStatement)
	if !ok {
		return nil
	}
	kind := symbols.LocalRegularVariable
	if decl.IsConst() {
		kind = symbols.LocalConstant
	}
	refKind := symbols.RefNone
	if decl.IsRef() {
		refKind = symbols.RefRef
	}
	locals := make([]symbols.Local, 0, len(decl.Declaration.Variables))
	for _, v := range decl.Declaration.Variables {
		locals = append(locals, symbols.MakeLocal(method, refKind, decl.Declaration.Type, v.Identifier, kind, v.Initializer))
	}
	return locals
}

// Placeholders returns the alias placeholders in alias order.
func (s *PlaceholderScope) Placeholders() []*symbols.PlaceholderLocal {
	return append([]*symbols.PlaceholderLocal(nil), s.placeholders...)
}

// Locals returns the alias placeholders followed by the locals declared by
// the statement.
func (s *PlaceholderScope) Locals() *LocalSet { return s.locals }

// ResolveSpecial implements Scope.
func (s *PlaceholderScope) ResolveSpecial(result *LookupResult, req LookupRequest) Resolution {
	if !req.Options.CanConsiderLocals() {
		return Skipped
	}
	name := req.Name
	if len(name) >= 2 && strings.EqualFold(name[:2], "0x") {
		address, err := strconv.ParseUint(name[2:], 16, 64)
		if err != nil {
			// The lexer only produces well formed address literals.
			panic(symbols.UnexpectedValue(name))
		}
		p := symbols.NewObjectAddressLocal(s.method, name, s.objectType, address)
		result.MergeEqual(CheckViability(p, req))
		return Claimed
	}
	if p, ok := s.returnValues[name]; ok {
		result.MergeEqual(CheckViability(p, req))
		return Claimed
	}
	return Declined
}

// AddLookupSymbolsInfo implements Scope.  Enumerating placeholders is not
// supported and always fails with ErrLookupSymbolsNotSupported.
func (s *PlaceholderScope) AddLookupSymbolsInfo(info *LookupSymbolsInfo, options LookupOptions) error {
	return ErrLookupSymbolsNotSupported
}
