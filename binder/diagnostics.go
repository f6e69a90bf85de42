// Copyright © 2018 The ELPS authors

package binder

import (
	"fmt"
	"strings"

	"github.com/luthersystems/eescope/parser/token"
)

// Diagnostic codes reported by the binder.
const (
	ErrNameNotFound         = "CS0103" // the name does not exist in the current context
	ErrWrongSymbolKind      = "CS0118" // a symbol is used like a different kind of symbol
	ErrTypeNotFound         = "CS0246" // the type or namespace could not be found
	ErrLocalRedeclared      = "CS0128" // a local of that name is already defined
	ErrConstWithoutValue    = "CS0145" // a const declaration requires a value
	ErrRefWithoutValue      = "CS8174" // a by-reference declaration requires an initializer
	ErrRefToValue           = "CS8172" // a by-reference variable cannot be initialized with a value
	ErrRefTypeMismatch      = "CS8173" // a by-reference initializer must have the declared type
	ErrNoConversion         = "CS0029" // no implicit conversion between types
	ErrBadBinaryOperands    = "CS0019" // operator cannot be applied to the operands
	ErrBadUnaryOperand      = "CS0023" // operator cannot be applied to the operand
	ErrBadArity             = "CS0307" // a non-generic symbol is used with type arguments
	ErrGenericArity         = "CS0305" // a generic type is used with the wrong number of type arguments
	ErrAmbiguous            = "CS0104" // the reference is ambiguous between types
	ErrNotConstant          = "CS0133" // a const initializer is not constant
	ErrImplicitConst        = "CS0822" // implicitly typed locals cannot be const
	ErrImplicitUninit       = "CS0818" // implicitly typed locals must be initialized
	ErrImplicitNull         = "CS0815" // null cannot initialize an implicitly typed local
	ErrUseBeforeDeclaration = "CS0841" // a local is used before it is declared
	ErrIntegerTooLarge      = "CS1021" // an integral constant is too large
	ErrBadEscape            = "CS1009" // a string literal contains an unrecognized escape
	ErrFloatRange           = "CS0594" // a floating-point constant is out of range
	ErrRefNotAssignable     = "CS1510" // a by-reference initializer is not an assignable variable
	ErrNotInNamespace       = "CS0234" // the type or namespace does not exist in the namespace
	ErrNestedType           = "CS0426" // nested types are not supported
)

// Diagnostic is an error found while binding a statement.
type Diagnostic struct {
	Code    string
	Message string
	Source  *token.Location
	// Width is the number of source characters the diagnostic covers.
	Width int
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%v: error %s: %s", d.Source, d.Code, d.Message)
}

// Diagnostics lists binding errors in source order.  A non-empty
// Diagnostics is returned as the error of a failed bind.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// HasCode reports whether a diagnostic with the given code is present.
func (ds Diagnostics) HasCode(code string) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}
