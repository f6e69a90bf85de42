// Copyright © 2018 The ELPS authors

// Package symbols defines the symbol model used when binding debugger
// statements: namespaces, types, methods, parameters, labels, locals declared
// in source and the placeholder locals that stand in for debugger aliases and
// raw object addresses.
package symbols

import "fmt"

// Kind identifies the category of a symbol.
type Kind int

const (
	KindNamespace Kind = iota
	KindType
	KindMethod
	KindParameter
	KindLocal
	KindLabel
)

var kindStrings = [...]string{
	KindNamespace: "namespace",
	KindType:      "type",
	KindMethod:    "method",
	KindParameter: "parameter",
	KindLocal:     "local",
	KindLabel:     "label",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindStrings[k]
}

// Symbol is implemented by every named entity that lookup can produce.
type Symbol interface {
	Name() string
	Kind() Kind
	String() string
}

// Variable is a symbol that denotes a storage location with a type:
// parameters and locals.
type Variable interface {
	Symbol
	// Type returns the type of the variable, or nil if it has not been bound
	// yet.
	Type() *TypeSymbol
	IsWritable() bool
}

type equaler interface {
	Equals(Symbol) bool
}

// Equal reports whether a and b denote the same logical symbol.  Symbols are
// equal when they are identical or when a defines an Equals method that
// accepts b.
func Equal(a, b Symbol) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if eq, ok := a.(equaler); ok {
		return eq.Equals(b)
	}
	return false
}

// UnexpectedValueError is the panic value raised when a computation meets a
// value that earlier stages guarantee cannot occur.  It reports a defect, not
// a user error.
type UnexpectedValueError struct {
	Value interface{}
}

func (err *UnexpectedValueError) Error() string {
	return fmt.Sprintf("unexpected value: %#v (%T)", err.Value, err.Value)
}

// UnexpectedValue returns an error describing v suitable for panic.
func UnexpectedValue(v interface{}) *UnexpectedValueError {
	return &UnexpectedValueError{Value: v}
}
