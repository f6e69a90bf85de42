// Copyright © 2018 The ELPS authors

// Package syntax defines the syntax tree of a single debugger statement.
//
// A statement is either an expression statement or a local variable
// declaration.  Address literals (0x...) appear in the tree as Name nodes
// because they are resolved through name lookup rather than evaluated as
// numbers.
package syntax

import (
	"fmt"
	"strings"

	"github.com/luthersystems/eescope/parser/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the location of the first token of the node.
	Pos() *token.Location
	String() string
}

// Statement is a complete debugger statement.
type Statement interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Type is a reference to a type in a declaration.
type Type interface {
	Node
	typeNode()
}

// ExpressionStatement evaluates an expression for its value.
type ExpressionStatement struct {
	X Expr
}

func (s *ExpressionStatement) Pos() *token.Location { return s.X.Pos() }
func (s *ExpressionStatement) String() string       { return s.X.String() }
func (*ExpressionStatement) stmtNode()              {}

// LocalDeclarationStatement declares one or more locals sharing a type and
// modifiers, e.g. `const int a = 1, b = 2;`.
type LocalDeclarationStatement struct {
	Start        *token.Token
	ConstKeyword *token.Token // nil unless declared const
	RefKeyword   *token.Token // nil unless declared ref
	Declaration  *VariableDeclaration
}

// IsConst reports whether the declaration carries the const modifier.
func (s *LocalDeclarationStatement) IsConst() bool { return s.ConstKeyword != nil }

// IsRef reports whether the declaration carries the ref modifier.
func (s *LocalDeclarationStatement) IsRef() bool { return s.RefKeyword != nil }

func (s *LocalDeclarationStatement) Pos() *token.Location { return s.Start.Source }

func (s *LocalDeclarationStatement) String() string {
	var b strings.Builder
	if s.IsConst() {
		b.WriteString("const ")
	}
	if s.IsRef() {
		b.WriteString("ref ")
	}
	b.WriteString(s.Declaration.String())
	b.WriteString(";")
	return b.String()
}

func (*LocalDeclarationStatement) stmtNode() {}

// VariableDeclaration is the type and declarator list of a declaration.
type VariableDeclaration struct {
	Type      Type
	Variables []*VariableDeclarator
}

func (d *VariableDeclaration) Pos() *token.Location { return d.Type.Pos() }

func (d *VariableDeclaration) String() string {
	vars := make([]string, len(d.Variables))
	for i, v := range d.Variables {
		vars[i] = v.String()
	}
	return d.Type.String() + " " + strings.Join(vars, ", ")
}

// VariableDeclarator names one declared local and its optional initializer.
type VariableDeclarator struct {
	Identifier  *token.Token
	Initializer Expr // nil when absent
}

func (v *VariableDeclarator) Name() string          { return v.Identifier.Text }
func (v *VariableDeclarator) Pos() *token.Location { return v.Identifier.Source }

func (v *VariableDeclarator) String() string {
	if v.Initializer == nil {
		return v.Name()
	}
	return v.Name() + " = " + v.Initializer.String()
}

// Name is an identifier or address literal in expression position.
type Name struct {
	Token *token.Token
}

// Identifier returns the name text used for lookup.
func (n *Name) Identifier() string { return n.Token.Text }

// IsAddress reports whether the name was written as an address literal.
func (n *Name) IsAddress() bool { return n.Token.Type == token.ADDRESS }

func (n *Name) Pos() *token.Location { return n.Token.Source }
func (n *Name) String() string       { return n.Token.Text }
func (*Name) exprNode()              {}

// Literal is a constant written in the source.  The token type determines
// the kind of constant (INT, FLOAT, STRING, TRUE, FALSE, NULL).
type Literal struct {
	Token *token.Token
}

func (l *Literal) Pos() *token.Location { return l.Token.Source }
func (l *Literal) String() string       { return l.Token.Text }
func (*Literal) exprNode()              {}

// Unary is a prefix operator applied to an operand.
type Unary struct {
	Op *token.Token
	X  Expr
}

func (u *Unary) Pos() *token.Location { return u.Op.Source }
func (u *Unary) String() string       { return u.Op.Text + u.X.String() }
func (*Unary) exprNode()              {}

// Binary is an infix operator applied to two operands.
type Binary struct {
	Op *token.Token
	X  Expr
	Y  Expr
}

func (b *Binary) Pos() *token.Location { return b.X.Pos() }
func (b *Binary) String() string {
	return fmt.Sprintf("%s %s %s", b.X, b.Op.Text, b.Y)
}
func (*Binary) exprNode() {}

// Paren is a parenthesized expression.
type Paren struct {
	Open *token.Token
	X    Expr
}

func (p *Paren) Pos() *token.Location { return p.Open.Source }
func (p *Paren) String() string       { return "(" + p.X.String() + ")" }
func (*Paren) exprNode()              {}

// NamedType is a possibly qualified, possibly generic type name such as
// `int`, `System.String` or `List<int>`.
type NamedType struct {
	Qualifier *NamedType // nil for a simple name
	Name      *token.Token
	TypeArgs  []Type
}

// Arity returns the number of type arguments.
func (t *NamedType) Arity() int { return len(t.TypeArgs) }

// IsVar reports whether t is the implicitly typed `var` placeholder.
func (t *NamedType) IsVar() bool {
	return t.Qualifier == nil && len(t.TypeArgs) == 0 && t.Name.Text == "var"
}

func (t *NamedType) Pos() *token.Location {
	if t.Qualifier != nil {
		return t.Qualifier.Pos()
	}
	return t.Name.Source
}

func (t *NamedType) String() string {
	var b strings.Builder
	if t.Qualifier != nil {
		b.WriteString(t.Qualifier.String())
		b.WriteString(".")
	}
	b.WriteString(t.Name.Text)
	if len(t.TypeArgs) > 0 {
		args := make([]string, len(t.TypeArgs))
		for i, arg := range t.TypeArgs {
			args[i] = arg.String()
		}
		b.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	return b.String()
}

func (*NamedType) typeNode() {}

// ArrayType is a single-dimensional array of an element type.
type ArrayType struct {
	Elem Type
}

func (t *ArrayType) Pos() *token.Location { return t.Elem.Pos() }
func (t *ArrayType) String() string       { return t.Elem.String() + "[]" }
func (*ArrayType) typeNode()              {}
