// Copyright © 2018 The ELPS authors

package symbols

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderKind tags the variants of PlaceholderLocal.  Code that behaves
// differently per kind switches over every value and panics with an
// UnexpectedValueError on anything else.
type PlaceholderKind int

const (
	PlaceholderException PlaceholderKind = iota
	PlaceholderStowedException
	PlaceholderReturnValue
	PlaceholderObjectID
	PlaceholderVariable
	PlaceholderObjectAddress
)

func (k PlaceholderKind) String() string {
	switch k {
	case PlaceholderException:
		return "exception"
	case PlaceholderStowedException:
		return "stowed-exception"
	case PlaceholderReturnValue:
		return "return-value"
	case PlaceholderObjectID:
		return "object-id"
	case PlaceholderVariable:
		return "variable"
	case PlaceholderObjectAddress:
		return "object-address"
	}
	return fmt.Sprintf("PlaceholderKind(%d)", int(k))
}

// ReturnValuePrefix begins the name of every return value alias.
const ReturnValuePrefix = "$ReturnValue"

// ParseReturnValueIndex extracts the index from a return value alias name
// such as "$ReturnValue2".  The prefix is matched without regard to case.
// A name without a suffix has index 0.  The second result is false when
// name does not carry the prefix or the suffix is not a decimal number; the
// index is 0 in that case.
func ParseReturnValueIndex(name string) (int, bool) {
	if len(name) < len(ReturnValuePrefix) || !strings.EqualFold(name[:len(ReturnValuePrefix)], ReturnValuePrefix) {
		return 0, false
	}
	suffix := name[len(ReturnValuePrefix):]
	if suffix == "" {
		return 0, true
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// PlaceholderLocal is a local synthesized for the debugger.  It stands in for
// a debugger alias (an exception, a captured return value, an object id, a
// debugger variable) or for an object at a raw address, and resolves exactly
// like a local declared in source.
type PlaceholderLocal struct {
	container *Method
	kind      PlaceholderKind
	name      string
	fullName  string
	typ       *TypeSymbol
	index     int
	address   uint64
	payload   interface{}
}

// NewPlaceholderLocal returns the placeholder for a debugger alias.  The
// payload is the value the alias refers to.  NewPlaceholderLocal panics if
// kind is PlaceholderObjectAddress or not a valid kind.
func NewPlaceholderLocal(container *Method, kind PlaceholderKind, name string, fullName string, typ *TypeSymbol, payload interface{}) *PlaceholderLocal {
	p := &PlaceholderLocal{
		container: container,
		kind:      kind,
		name:      name,
		fullName:  fullName,
		typ:       typ,
		payload:   payload,
	}
	if p.fullName == "" {
		p.fullName = name
	}
	switch kind {
	case PlaceholderReturnValue:
		p.index, _ = ParseReturnValueIndex(name)
	case PlaceholderException, PlaceholderStowedException, PlaceholderObjectID, PlaceholderVariable:
	case PlaceholderObjectAddress:
		panic(fmt.Sprintf("address placeholder %s must be created with NewObjectAddressLocal", name))
	default:
		panic(UnexpectedValue(kind))
	}
	return p
}

// NewObjectAddressLocal returns the placeholder for the object at address.
// The name is the address literal as written.
func NewObjectAddressLocal(container *Method, name string, typ *TypeSymbol, address uint64) *PlaceholderLocal {
	return &PlaceholderLocal{
		container: container,
		kind:      PlaceholderObjectAddress,
		name:      name,
		fullName:  name,
		typ:       typ,
		address:   address,
		payload:   address,
	}
}

func (p *PlaceholderLocal) Name() string   { return p.name }
func (p *PlaceholderLocal) Kind() Kind     { return KindLocal }
func (p *PlaceholderLocal) String() string { return p.name }

// FullName returns the expression the debugger displays for the alias.
func (p *PlaceholderLocal) FullName() string { return p.fullName }

// PlaceholderKind returns the variant of p.
func (p *PlaceholderLocal) PlaceholderKind() PlaceholderKind { return p.kind }

func (p *PlaceholderLocal) Type() *TypeSymbol                     { return p.typ }
func (p *PlaceholderLocal) ContainingMethod() *Method             { return p.container }
func (p *PlaceholderLocal) DeclarationKind() LocalDeclarationKind { return LocalRegularVariable }
func (p *PlaceholderLocal) RefKind() RefKind                      { return RefNone }

// ReturnValueIndex returns the index of a return value placeholder.
func (p *PlaceholderLocal) ReturnValueIndex() int { return p.index }

// Address returns the address of an object address placeholder.  The second
// result is false for other kinds.
func (p *PlaceholderLocal) Address() (uint64, bool) {
	return p.address, p.kind == PlaceholderObjectAddress
}

// Payload returns the value the placeholder refers to.  For object address
// placeholders it is the address as a uint64.
func (p *PlaceholderLocal) Payload() interface{} { return p.payload }

// IsWritable reports whether assignment to the placeholder is permitted.
// Only debugger variables are writable.
func (p *PlaceholderLocal) IsWritable() bool {
	switch p.kind {
	case PlaceholderVariable:
		return true
	case PlaceholderException, PlaceholderStowedException, PlaceholderReturnValue, PlaceholderObjectID, PlaceholderObjectAddress:
		return false
	}
	panic(UnexpectedValue(p.kind))
}

// Equals reports whether other denotes the same placeholder.  Address
// placeholders are created per lookup and are equal when they refer to the
// same address with the same type.  Other placeholders are equal only to
// themselves.
func (p *PlaceholderLocal) Equals(other Symbol) bool {
	q, ok := other.(*PlaceholderLocal)
	if !ok || q == nil {
		return false
	}
	if p == q {
		return true
	}
	switch p.kind {
	case PlaceholderObjectAddress:
		return q.kind == PlaceholderObjectAddress &&
			p.address == q.address &&
			p.container == q.container &&
			typesEqual(p.typ, q.typ)
	case PlaceholderException, PlaceholderStowedException, PlaceholderReturnValue, PlaceholderObjectID, PlaceholderVariable:
		return false
	}
	panic(UnexpectedValue(p.kind))
}

func typesEqual(a, b *TypeSymbol) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.sameType(b)
}
