// Copyright © 2018 The ELPS authors

package symbols

import (
	"fmt"

	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/syntax"
)

// RefKind describes how a variable refers to its storage.
type RefKind int

const (
	RefNone RefKind = iota
	RefRef
)

func (k RefKind) String() string {
	switch k {
	case RefNone:
		return "none"
	case RefRef:
		return "ref"
	}
	return fmt.Sprintf("RefKind(%d)", int(k))
}

// LocalDeclarationKind describes how a local was declared.
type LocalDeclarationKind int

const (
	LocalRegularVariable LocalDeclarationKind = iota
	LocalConstant
)

func (k LocalDeclarationKind) String() string {
	switch k {
	case LocalRegularVariable:
		return "variable"
	case LocalConstant:
		return "constant"
	}
	return fmt.Sprintf("LocalDeclarationKind(%d)", int(k))
}

// Local is a local variable visible to a statement.  Every local, whether
// declared in the method, in the statement being evaluated or synthesized
// for the debugger, resolves through the same interface.
type Local interface {
	Variable
	DeclarationKind() LocalDeclarationKind
	RefKind() RefKind
	ContainingMethod() *Method
}

// SourceLocal is a local declared in source: a frame local of the paused
// method or a local declared by the statement being evaluated.
type SourceLocal struct {
	name        string
	identifier  *token.Token
	container   *Method
	refKind     RefKind
	declKind    LocalDeclarationKind
	typeSyntax  syntax.Type
	initializer syntax.Expr
	typ         *TypeSymbol
}

// MakeLocal returns a local declared by a statement.  The type of the local
// is unknown until the binder resolves typeSyntax and calls SetType.
func MakeLocal(container *Method, refKind RefKind, typeSyntax syntax.Type, identifier *token.Token, kind LocalDeclarationKind, initializer syntax.Expr) *SourceLocal {
	return &SourceLocal{
		name:        identifier.Text,
		identifier:  identifier,
		container:   container,
		refKind:     refKind,
		declKind:    kind,
		typeSyntax:  typeSyntax,
		initializer: initializer,
	}
}

func (l *SourceLocal) Name() string   { return l.name }
func (l *SourceLocal) Kind() Kind     { return KindLocal }
func (l *SourceLocal) String() string { return l.name }

// Identifier returns the declaring identifier token, or nil for frame
// locals.
func (l *SourceLocal) Identifier() *token.Token { return l.identifier }

// Location returns where the local was declared, or nil for frame locals.
func (l *SourceLocal) Location() *token.Location {
	if l.identifier == nil {
		return nil
	}
	return l.identifier.Source
}

func (l *SourceLocal) ContainingMethod() *Method             { return l.container }
func (l *SourceLocal) RefKind() RefKind                      { return l.refKind }
func (l *SourceLocal) DeclarationKind() LocalDeclarationKind { return l.declKind }
func (l *SourceLocal) IsWritable() bool                      { return l.declKind != LocalConstant }

// Type returns the bound type of the local, or nil before binding.
func (l *SourceLocal) Type() *TypeSymbol { return l.typ }

// TypeSyntax returns the declared type of a statement local.
func (l *SourceLocal) TypeSyntax() syntax.Type { return l.typeSyntax }

// Initializer returns the initializer of a statement local, or nil.
func (l *SourceLocal) Initializer() syntax.Expr { return l.initializer }

// IsDeclaredInStatement reports whether the local was declared by the
// statement being evaluated rather than by the paused method.
func (l *SourceLocal) IsDeclaredInStatement() bool { return l.identifier != nil }

// SetType records the bound type of a local declared by a statement.  It
// panics if the local already has a different type.
func (l *SourceLocal) SetType(typ *TypeSymbol) {
	if l.typ != nil && l.typ != typ {
		panic(fmt.Sprintf("type of local %s already bound to %v", l.name, l.typ))
	}
	l.typ = typ
}
