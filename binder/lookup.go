// Copyright © 2018 The ELPS authors

package binder

import (
	"fmt"
	"strings"

	"github.com/luthersystems/eescope/symbols"
)

// LookupOptions restrict the kinds of symbols a lookup may produce.
type LookupOptions uint

// LookupDefault requests an ordinary value lookup.
const LookupDefault LookupOptions = 0

const (
	// NamespaceAliasesOnly restricts lookup to namespace aliases.
	NamespaceAliasesOnly LookupOptions = 1 << iota
	// NamespacesOrTypesOnly restricts lookup to namespaces and types.
	NamespacesOrTypesOnly
	// LabelsOnly restricts lookup to statement labels.
	LabelsOnly
	// MustNotBeLocal excludes locals found by the general local lookup.
	// Scopes that resolve names specially do not consult it.
	MustNotBeLocal
)

var optionNames = []struct {
	opt  LookupOptions
	name string
}{
	{NamespaceAliasesOnly, "NamespaceAliasesOnly"},
	{NamespacesOrTypesOnly, "NamespacesOrTypesOnly"},
	{LabelsOnly, "LabelsOnly"},
	{MustNotBeLocal, "MustNotBeLocal"},
}

func (o LookupOptions) String() string {
	if o == LookupDefault {
		return "Default"
	}
	var names []string
	for _, n := range optionNames {
		if o&n.opt != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// CanConsiderLocals reports whether locals, placeholders included, may
// satisfy a lookup with options o.
func (o LookupOptions) CanConsiderLocals() bool {
	return o&(NamespaceAliasesOnly|NamespacesOrTypesOnly|LabelsOnly) == 0
}

// LookupRequest is a single name lookup.
type LookupRequest struct {
	Name    string
	Arity   int
	Options LookupOptions
}

func (req LookupRequest) String() string {
	if req.Arity == 0 {
		return fmt.Sprintf("%s [%v]", req.Name, req.Options)
	}
	return fmt.Sprintf("%s`%d [%v]", req.Name, req.Arity, req.Options)
}

// ResultKind orders lookup outcomes from worst to best.  Merging keeps the
// better outcome.
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultWrongArity
	ResultNotAValue
	ResultViable
)

func (k ResultKind) String() string {
	switch k {
	case ResultEmpty:
		return "empty"
	case ResultWrongArity:
		return "wrong-arity"
	case ResultNotAValue:
		return "not-a-value"
	case ResultViable:
		return "viable"
	}
	return fmt.Sprintf("ResultKind(%d)", int(k))
}

// LookupResult accumulates the candidates of a lookup.  All candidates of a
// result share its kind.
type LookupResult struct {
	kind    ResultKind
	symbols []symbols.Symbol
	reason  string
}

// NewLookupResult returns an empty result.
func NewLookupResult() *LookupResult {
	return &LookupResult{}
}

func (r *LookupResult) Kind() ResultKind { return r.kind }

// Symbols returns the candidates of the result.
func (r *LookupResult) Symbols() []symbols.Symbol { return r.symbols }

// Symbol returns the first candidate, or nil.
func (r *LookupResult) Symbol() symbols.Symbol {
	if len(r.symbols) == 0 {
		return nil
	}
	return r.symbols[0]
}

// Reason describes why a non-viable result is not viable.
func (r *LookupResult) Reason() string { return r.reason }

// IsClear reports whether the result has no candidates.
func (r *LookupResult) IsClear() bool { return r.kind == ResultEmpty && len(r.symbols) == 0 }

// IsViable reports whether the result holds usable candidates.
func (r *LookupResult) IsViable() bool { return r.kind == ResultViable }

// Clear empties the result.
func (r *LookupResult) Clear() {
	r.kind = ResultEmpty
	r.symbols = nil
	r.reason = ""
}

func (r *LookupResult) setFrom(other *LookupResult) {
	r.kind = other.kind
	r.symbols = append([]symbols.Symbol(nil), other.symbols...)
	r.reason = other.reason
}

// MergePrioritized replaces the contents of r with other when other is the
// better outcome.
func (r *LookupResult) MergePrioritized(other *LookupResult) {
	if other.kind > r.kind {
		r.setFrom(other)
	}
}

// MergeEqual replaces the contents of r with other when other is the better
// outcome and adds the candidates of other when both are equally good.
// Candidates equal to one already present are not added twice.
func (r *LookupResult) MergeEqual(other *LookupResult) {
	switch {
	case other.kind > r.kind:
		r.setFrom(other)
	case other.kind == r.kind && other.kind != ResultEmpty:
	outer:
		for _, sym := range other.symbols {
			for _, have := range r.symbols {
				if symbols.Equal(have, sym) {
					continue outer
				}
			}
			r.symbols = append(r.symbols, sym)
		}
	}
}

func (r *LookupResult) String() string {
	names := make([]string, len(r.symbols))
	for i, sym := range r.symbols {
		names[i] = fmt.Sprintf("%v %s", sym.Kind(), sym)
	}
	return fmt.Sprintf("%v[%s]", r.kind, strings.Join(names, ", "))
}

func singleResult(kind ResultKind, sym symbols.Symbol, reason string) *LookupResult {
	return &LookupResult{kind: kind, symbols: []symbols.Symbol{sym}, reason: reason}
}

// CheckViability classifies a candidate found for req.  Variables cannot take
// type arguments, types must match the requested arity and only namespaces or
// types satisfy a namespace-or-type lookup.
func CheckViability(sym symbols.Symbol, req LookupRequest) *LookupResult {
	switch sym := sym.(type) {
	case *symbols.Namespace:
		if req.Arity != 0 {
			return singleResult(ResultWrongArity, sym, fmt.Sprintf("the namespace '%s' cannot be used with type arguments", sym))
		}
		if req.Options&LabelsOnly != 0 {
			return singleResult(ResultNotAValue, sym, fmt.Sprintf("'%s' is a namespace but is used like a label", sym))
		}
	case *symbols.TypeSymbol:
		if sym.Arity() != req.Arity {
			return singleResult(ResultWrongArity, sym, fmt.Sprintf("using the type '%s' requires %d type arguments", sym.FullName(), sym.Arity()))
		}
		if req.Options&LabelsOnly != 0 {
			return singleResult(ResultNotAValue, sym, fmt.Sprintf("'%s' is a type but is used like a label", sym.FullName()))
		}
	case *symbols.Label:
		if req.Options&LabelsOnly == 0 {
			return singleResult(ResultNotAValue, sym, fmt.Sprintf("'%s' is a label but is used like a variable", sym))
		}
	default:
		if req.Arity != 0 {
			return singleResult(ResultWrongArity, sym, fmt.Sprintf("the %v '%s' cannot be used with type arguments", sym.Kind(), sym))
		}
		if req.Options&NamespacesOrTypesOnly != 0 {
			return singleResult(ResultNotAValue, sym, fmt.Sprintf("'%s' is a %v but is used like a type", sym, sym.Kind()))
		}
		if req.Options&LabelsOnly != 0 {
			return singleResult(ResultNotAValue, sym, fmt.Sprintf("'%s' is a %v but is used like a label", sym, sym.Kind()))
		}
	}
	return singleResult(ResultViable, sym, "")
}
