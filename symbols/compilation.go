// Copyright © 2018 The ELPS authors

package symbols

import (
	"sort"
	"strconv"
	"strings"
)

// Namespace is a named container of namespaces and types.
type Namespace struct {
	name       string
	parent     *Namespace
	namespaces map[string]*Namespace
	types      map[string][]*TypeSymbol
}

func newNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{
		name:       name,
		parent:     parent,
		namespaces: make(map[string]*Namespace),
		types:      make(map[string][]*TypeSymbol),
	}
}

func (ns *Namespace) Name() string { return ns.name }
func (ns *Namespace) Kind() Kind   { return KindNamespace }

func (ns *Namespace) String() string {
	if ns.IsGlobal() {
		return "<global namespace>"
	}
	return ns.FullName()
}

// IsGlobal reports whether ns is the root namespace of a compilation.
func (ns *Namespace) IsGlobal() bool { return ns.parent == nil }

// Parent returns the namespace containing ns, or nil for the global
// namespace.
func (ns *Namespace) Parent() *Namespace { return ns.parent }

// FullName returns the dotted name of ns.  The global namespace has an empty
// full name.
func (ns *Namespace) FullName() string {
	if ns.IsGlobal() {
		return ""
	}
	if ns.parent.IsGlobal() {
		return ns.name
	}
	return ns.parent.FullName() + "." + ns.name
}

// Namespace returns the nested namespace with the given simple name, or nil.
func (ns *Namespace) Namespace(name string) *Namespace {
	return ns.namespaces[name]
}

// Namespaces returns the nested namespaces sorted by name.
func (ns *Namespace) Namespaces() []*Namespace {
	names := make([]string, 0, len(ns.namespaces))
	for name := range ns.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	nested := make([]*Namespace, len(names))
	for i, name := range names {
		nested[i] = ns.namespaces[name]
	}
	return nested
}

// Types returns the types declared in ns with the given simple name, one per
// arity.
func (ns *Namespace) Types(name string) []*TypeSymbol {
	return ns.types[name]
}

// TypeDefinitions returns the types declared in ns sorted by name and arity.
func (ns *Namespace) TypeDefinitions() []*TypeSymbol {
	var defs []*TypeSymbol
	for _, ts := range ns.types {
		defs = append(defs, ts...)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].name != defs[j].name {
			return defs[i].name < defs[j].name
		}
		return defs[i].arity < defs[j].arity
	})
	return defs
}

// Type returns the type declared in ns with the given simple name and arity,
// or nil.
func (ns *Namespace) Type(name string, arity int) *TypeSymbol {
	for _, t := range ns.types[name] {
		if t.arity == arity {
			return t
		}
	}
	return nil
}

func (ns *Namespace) child(name string) *Namespace {
	child, ok := ns.namespaces[name]
	if !ok {
		child = newNamespace(name, ns)
		ns.namespaces[name] = child
	}
	return child
}

// Compilation is the universe of namespaces and types visible to a debugger
// statement.  A compilation is populated before use and is not safe for
// concurrent modification.
type Compilation struct {
	global  *Namespace
	special [len(specialNames)]*TypeSymbol
}

// NewCompilation returns a compilation containing the special types,
// System.Exception and the common generic collections.
func NewCompilation() *Compilation {
	c := &Compilation{global: newNamespace("", nil)}
	object := c.define("System", "Object", 0, nil, false)
	object.special = SpecialObject
	c.special[SpecialObject] = object
	for _, s := range []SpecialType{SpecialBoolean, SpecialInt32, SpecialInt64, SpecialUInt64, SpecialDouble} {
		t := c.define("System", s.String(), 0, nil, true)
		t.special = s
		c.special[s] = t
	}
	str := c.define("System", "String", 0, object, false)
	str.special = SpecialString
	c.special[SpecialString] = str
	c.define("System", "Exception", 0, object, false)
	c.define("System.Collections.Generic", "List", 1, object, false)
	c.define("System.Collections.Generic", "Dictionary", 2, object, false)
	return c
}

// GlobalNamespace returns the root namespace.
func (c *Compilation) GlobalNamespace() *Namespace { return c.global }

// Special returns the type symbol for a special type.  It panics for
// SpecialNone.
func (c *Compilation) Special(s SpecialType) *TypeSymbol {
	if s <= SpecialNone || int(s) >= len(c.special) {
		panic(UnexpectedValue(s))
	}
	return c.special[s]
}

// ObjectType returns System.Object.
func (c *Compilation) ObjectType() *TypeSymbol { return c.special[SpecialObject] }

// ExceptionType returns System.Exception.
func (c *Compilation) ExceptionType() *TypeSymbol {
	return c.GetTypeByMetadataName("System.Exception")
}

// KeywordType returns the special type named by a language keyword such as
// "int", or nil.
func (c *Compilation) KeywordType(keyword string) *TypeSymbol {
	for s, kw := range specialKeywords {
		if kw != "" && kw == keyword {
			return c.special[s]
		}
	}
	return nil
}

// Namespace returns the namespace with the given dotted name, creating it and
// its parents if necessary.  The empty name denotes the global namespace.
func (c *Compilation) Namespace(fullName string) *Namespace {
	ns := c.global
	if fullName == "" {
		return ns
	}
	for _, part := range strings.Split(fullName, ".") {
		ns = ns.child(part)
	}
	return ns
}

// LookupNamespace returns the namespace with the given dotted name without
// creating it.
func (c *Compilation) LookupNamespace(fullName string) *Namespace {
	ns := c.global
	if fullName == "" {
		return ns
	}
	for _, part := range strings.Split(fullName, ".") {
		ns = ns.Namespace(part)
		if ns == nil {
			return nil
		}
	}
	return ns
}

// DefineType declares a reference type in namespace.  A nil base defaults to
// System.Object.  Defining a type that already exists returns the existing
// definition.
func (c *Compilation) DefineType(namespace string, name string, arity int, base *TypeSymbol) *TypeSymbol {
	if base == nil {
		base = c.ObjectType()
	}
	return c.define(namespace, name, arity, base, false)
}

func (c *Compilation) define(namespace string, name string, arity int, base *TypeSymbol, valueType bool) *TypeSymbol {
	ns := c.Namespace(namespace)
	if t := ns.Type(name, arity); t != nil {
		return t
	}
	t := &TypeSymbol{
		name:      name,
		namespace: ns,
		arity:     arity,
		base:      base,
		valueType: valueType,
	}
	ns.types[name] = append(ns.types[name], t)
	return t
}

// GetTypeByMetadataName returns the type definition with the given
// namespace qualified metadata name, e.g. "System.Collections.Generic.List`1",
// or nil.
func (c *Compilation) GetTypeByMetadataName(name string) *TypeSymbol {
	nsName, simple := "", name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		nsName, simple = name[:i], name[i+1:]
	}
	arity := 0
	if i := strings.IndexByte(simple, '`'); i >= 0 {
		n, err := strconv.Atoi(simple[i+1:])
		if err != nil || n <= 0 {
			return nil
		}
		simple, arity = simple[:i], n
	}
	ns := c.LookupNamespace(nsName)
	if ns == nil {
		return nil
	}
	return ns.Type(simple, arity)
}

// ArrayOf returns the single-dimensional array type with element type elem.
func (c *Compilation) ArrayOf(elem *TypeSymbol) *TypeSymbol {
	if elem == nil {
		panic("array of nil element type")
	}
	return &TypeSymbol{name: elem.name + "[]", elem: elem, base: c.ObjectType()}
}
