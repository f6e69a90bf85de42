// Copyright © 2018 The ELPS authors

package symbols

import (
	"fmt"
	"strings"
)

// SpecialType identifies the types the binder and evaluator know by name.
type SpecialType int

const (
	SpecialNone SpecialType = iota
	SpecialObject
	SpecialBoolean
	SpecialInt32
	SpecialInt64
	SpecialUInt64
	SpecialDouble
	SpecialString
)

// metadata names of special types, indexed by SpecialType.
var specialNames = [...]string{
	SpecialObject:  "Object",
	SpecialBoolean: "Boolean",
	SpecialInt32:   "Int32",
	SpecialInt64:   "Int64",
	SpecialUInt64:  "UInt64",
	SpecialDouble:  "Double",
	SpecialString:  "String",
}

// keywords used to display special types, indexed by SpecialType.
var specialKeywords = [...]string{
	SpecialObject:  "object",
	SpecialBoolean: "bool",
	SpecialInt32:   "int",
	SpecialInt64:   "long",
	SpecialUInt64:  "ulong",
	SpecialDouble:  "double",
	SpecialString:  "string",
}

func (s SpecialType) String() string {
	if s <= SpecialNone || int(s) >= len(specialNames) {
		return "None"
	}
	return specialNames[s]
}

// Keyword returns the language keyword for the type, or the empty string.
func (s SpecialType) Keyword() string {
	if s <= SpecialNone || int(s) >= len(specialKeywords) {
		return ""
	}
	return specialKeywords[s]
}

// IsNumeric reports whether s is one of the numeric special types.
func (s SpecialType) IsNumeric() bool {
	switch s {
	case SpecialInt32, SpecialInt64, SpecialUInt64, SpecialDouble:
		return true
	}
	return false
}

// TypeSymbol is a named type, a constructed generic type, an array type or
// an error type.  Type definitions are unique per compilation, constructed
// and array types are compared structurally.
type TypeSymbol struct {
	name       string
	namespace  *Namespace
	special    SpecialType
	arity      int
	base       *TypeSymbol
	valueType  bool
	definition *TypeSymbol   // generic definition of a constructed type
	typeArgs   []*TypeSymbol // type arguments of a constructed type
	elem       *TypeSymbol   // element type of an array
	errorText  string        // non-empty for error types
}

// NewErrorType returns a type that stands in for a type that could not be
// resolved.  The text is the name as written and reason describes the
// failure.
func NewErrorType(text string, reason string) *TypeSymbol {
	if reason == "" {
		reason = "unknown type"
	}
	return &TypeSymbol{name: text, errorText: reason}
}

func (t *TypeSymbol) Name() string { return t.name }
func (t *TypeSymbol) Kind() Kind   { return KindType }

// Namespace returns the namespace containing a type definition.  Array,
// constructed and error types return the namespace of their definition or
// nil.
func (t *TypeSymbol) Namespace() *Namespace {
	if t.definition != nil {
		return t.definition.namespace
	}
	return t.namespace
}

// Special returns the special type identity of t.
func (t *TypeSymbol) Special() SpecialType { return t.special }

// Arity returns the number of type parameters of a generic definition or the
// number of type arguments of a constructed type.
func (t *TypeSymbol) Arity() int {
	if t.definition != nil {
		return len(t.typeArgs)
	}
	return t.arity
}

// TypeArgs returns the type arguments of a constructed type.
func (t *TypeSymbol) TypeArgs() []*TypeSymbol { return t.typeArgs }

// Definition returns the generic definition of a constructed type, or t.
func (t *TypeSymbol) Definition() *TypeSymbol {
	if t.definition != nil {
		return t.definition
	}
	return t
}

// Elem returns the element type of an array type, or nil.
func (t *TypeSymbol) Elem() *TypeSymbol { return t.elem }

// IsArray reports whether t is an array type.
func (t *TypeSymbol) IsArray() bool { return t.elem != nil }

// IsError reports whether t is an error type.
func (t *TypeSymbol) IsError() bool { return t.errorText != "" }

// ErrorReason returns why an error type could not be resolved.
func (t *TypeSymbol) ErrorReason() string { return t.errorText }

// IsValueType reports whether values of t are not references.
func (t *TypeSymbol) IsValueType() bool { return t.Definition().valueType }

// BaseType returns the base class of t, or nil for System.Object, error
// types and value types.
func (t *TypeSymbol) BaseType() *TypeSymbol {
	if t.definition != nil {
		return t.definition.base
	}
	return t.base
}

// Construct returns the generic type t instantiated with args.  It panics if
// t is not a generic definition of matching arity.
func (t *TypeSymbol) Construct(args ...*TypeSymbol) *TypeSymbol {
	if t.definition != nil || t.arity == 0 || t.arity != len(args) {
		panic(fmt.Sprintf("cannot construct %v with %d type arguments", t, len(args)))
	}
	return &TypeSymbol{
		name:       t.name,
		definition: t,
		typeArgs:   append([]*TypeSymbol(nil), args...),
	}
}

// MetadataName returns the name of a type definition with its arity suffix,
// e.g. "List`1".
func (t *TypeSymbol) MetadataName() string {
	def := t.Definition()
	if def.arity == 0 {
		return def.name
	}
	return fmt.Sprintf("%s`%d", def.name, def.arity)
}

// FullName returns the namespace qualified name of t, e.g.
// "System.Collections.Generic.List<System.Int32>".
func (t *TypeSymbol) FullName() string {
	switch {
	case t.IsError():
		return t.name
	case t.elem != nil:
		return t.elem.FullName() + "[]"
	}
	var b strings.Builder
	if ns := t.Namespace(); ns != nil && !ns.IsGlobal() {
		b.WriteString(ns.FullName())
		b.WriteString(".")
	}
	b.WriteString(t.name)
	if len(t.typeArgs) > 0 {
		args := make([]string, len(t.typeArgs))
		for i, arg := range t.typeArgs {
			args[i] = arg.FullName()
		}
		b.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	return b.String()
}

// SerializedName returns the name of t in the form read by a
// TypeNameDecoder, e.g. "System.Collections.Generic.List`1[[System.Int32]]".
func (t *TypeSymbol) SerializedName() string {
	switch {
	case t.IsError():
		return t.name
	case t.elem != nil:
		return t.elem.SerializedName() + "[]"
	}
	var b strings.Builder
	if ns := t.Namespace(); ns != nil && !ns.IsGlobal() {
		b.WriteString(ns.FullName())
		b.WriteString(".")
	}
	b.WriteString(t.MetadataName())
	if len(t.typeArgs) > 0 {
		b.WriteString("[")
		for i, arg := range t.typeArgs {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("[" + arg.SerializedName() + "]")
		}
		b.WriteString("]")
	}
	return b.String()
}

// String returns the display form of t using language keywords for special
// types, e.g. "List<int>".
func (t *TypeSymbol) String() string {
	switch {
	case t.IsError():
		return t.name
	case t.elem != nil:
		return t.elem.String() + "[]"
	case t.special != SpecialNone:
		return t.special.Keyword()
	}
	if len(t.typeArgs) == 0 {
		return t.FullName()
	}
	args := make([]string, len(t.typeArgs))
	for i, arg := range t.typeArgs {
		args[i] = arg.String()
	}
	return t.name + "<" + strings.Join(args, ", ") + ">"
}

// Equals reports whether other denotes the same type as t.
func (t *TypeSymbol) Equals(other Symbol) bool {
	u, ok := other.(*TypeSymbol)
	if !ok || u == nil {
		return false
	}
	return t.sameType(u)
}

func (t *TypeSymbol) sameType(u *TypeSymbol) bool {
	if t == u {
		return true
	}
	switch {
	case t.IsError() || u.IsError():
		return false
	case t.elem != nil || u.elem != nil:
		return t.elem != nil && u.elem != nil && t.elem.sameType(u.elem)
	case t.definition != nil || u.definition != nil:
		if t.definition != u.definition || len(t.typeArgs) != len(u.typeArgs) {
			return false
		}
		for i := range t.typeArgs {
			if !t.typeArgs[i].sameType(u.typeArgs[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsAssignableFrom reports whether a value of type src converts implicitly
// to t.  A nil src denotes the type of the null literal.  Error types
// convert to and from everything so that one failure is reported once.
func (t *TypeSymbol) IsAssignableFrom(src *TypeSymbol) bool {
	if t.IsError() {
		return true
	}
	if src == nil {
		return !t.IsValueType()
	}
	if src.IsError() || t.sameType(src) {
		return true
	}
	if t.special == SpecialObject {
		return true
	}
	if src.special.IsNumeric() && t.special.IsNumeric() {
		return implicitNumeric(src.special, t.special)
	}
	for b := src.BaseType(); b != nil; b = b.BaseType() {
		if t.sameType(b) {
			return true
		}
	}
	return false
}

func implicitNumeric(from, to SpecialType) bool {
	switch from {
	case SpecialInt32:
		return to == SpecialInt64 || to == SpecialDouble
	case SpecialInt64, SpecialUInt64:
		return to == SpecialDouble
	}
	return false
}
