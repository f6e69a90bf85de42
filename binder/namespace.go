// Copyright © 2018 The ELPS authors

package binder

import (
	"fmt"

	"github.com/luthersystems/eescope/symbols"
)

// DefaultUsings are the namespaces imported when none are configured.
var DefaultUsings = []string{"System"}

// NamespaceScope resolves namespaces and types of a compilation.  Names are
// searched in the global namespace and then in each imported namespace.  The
// scope answers namespace-or-type lookups only.
type NamespaceScope struct {
	compilation *symbols.Compilation
	usings      []*symbols.Namespace
	empty       *LocalSet
}

var _ Scope = (*NamespaceScope)(nil)

// NewNamespaceScope returns a scope importing the namespaces named by
// usings.  It is an error to import a namespace the compilation does not
// contain.
func NewNamespaceScope(compilation *symbols.Compilation, usings []string) (*NamespaceScope, error) {
	s := &NamespaceScope{compilation: compilation, empty: NewLocalSet()}
	for _, name := range usings {
		ns := compilation.LookupNamespace(name)
		if ns == nil || ns.IsGlobal() {
			return nil, fmt.Errorf("using: namespace %q not found", name)
		}
		s.usings = append(s.usings, ns)
	}
	return s, nil
}

// Usings returns the imported namespaces.
func (s *NamespaceScope) Usings() []*symbols.Namespace { return s.usings }

// Locals returns an empty set.
func (s *NamespaceScope) Locals() *LocalSet { return s.empty }

// ResolveSpecial implements Scope.
func (s *NamespaceScope) ResolveSpecial(result *LookupResult, req LookupRequest) Resolution {
	if req.Options&NamespacesOrTypesOnly == 0 || req.Options&NamespaceAliasesOnly != 0 {
		return Skipped
	}
	global := s.compilation.GlobalNamespace()
	LookupMember(result, global, req)
	if result.IsViable() {
		return Claimed
	}
	imported := NewLookupResult()
	for _, ns := range s.usings {
		tmp := NewLookupResult()
		lookupTypes(tmp, ns, req)
		imported.MergeEqual(tmp)
	}
	result.MergePrioritized(imported)
	return Claimed
}

// LookupMember merges into result the namespace or types named req.Name
// declared directly in ns.
func LookupMember(result *LookupResult, ns *symbols.Namespace, req LookupRequest) {
	if nested := ns.Namespace(req.Name); nested != nil {
		result.MergeEqual(CheckViability(nested, req))
	}
	lookupTypes(result, ns, req)
}

func lookupTypes(result *LookupResult, ns *symbols.Namespace, req LookupRequest) {
	for _, t := range ns.Types(req.Name) {
		result.MergeEqual(CheckViability(t, req))
	}
}

// AddLookupSymbolsInfo implements Scope.
func (s *NamespaceScope) AddLookupSymbolsInfo(info *LookupSymbolsInfo, options LookupOptions) error {
	if options&NamespacesOrTypesOnly == 0 {
		return nil
	}
	global := s.compilation.GlobalNamespace()
	for _, ns := range global.Namespaces() {
		info.Add(ns)
	}
	for _, t := range global.TypeDefinitions() {
		info.Add(t)
	}
	for _, ns := range s.usings {
		for _, t := range ns.TypeDefinitions() {
			info.Add(t)
		}
	}
	return nil
}
