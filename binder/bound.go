// Copyright © 2018 The ELPS authors

package binder

import (
	"fmt"
	"strings"

	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/symbols"
	"github.com/luthersystems/eescope/syntax"
)

// BoundExpr is an expression with its symbols and types resolved.
type BoundExpr interface {
	// Type returns the type of the expression.  The null literal has a nil
	// type.
	Type() *symbols.TypeSymbol
	Syntax() syntax.Expr
	String() string
}

// BoundStatement is a statement with its symbols and types resolved.
type BoundStatement interface {
	Syntax() syntax.Statement
	String() string
}

// Literal is a constant.  Values are int64 for int and long, uint64, float64,
// string, bool or nil.
type Literal struct {
	Node  *syntax.Literal
	Value interface{}
	typ   *symbols.TypeSymbol
}

func (x *Literal) Type() *symbols.TypeSymbol { return x.typ }
func (x *Literal) Syntax() syntax.Expr       { return x.Node }
func (x *Literal) String() string            { return x.Node.String() }

// LocalRef reads a local: a frame local, a statement local or a placeholder.
type LocalRef struct {
	Node  *syntax.Name
	Local symbols.Local
}

func (x *LocalRef) Type() *symbols.TypeSymbol { return x.Local.Type() }
func (x *LocalRef) Syntax() syntax.Expr       { return x.Node }
func (x *LocalRef) String() string            { return x.Local.Name() }

// ParameterRef reads a parameter of the containing method.
type ParameterRef struct {
	Node      *syntax.Name
	Parameter *symbols.Parameter
}

func (x *ParameterRef) Type() *symbols.TypeSymbol { return x.Parameter.Type() }
func (x *ParameterRef) Syntax() syntax.Expr       { return x.Node }
func (x *ParameterRef) String() string            { return x.Parameter.Name() }

// Unary applies a prefix operator.
type Unary struct {
	Node    *syntax.Unary
	Op      token.Type
	Operand BoundExpr
	typ     *symbols.TypeSymbol
}

func (x *Unary) Type() *symbols.TypeSymbol { return x.typ }
func (x *Unary) Syntax() syntax.Expr       { return x.Node }
func (x *Unary) String() string            { return fmt.Sprintf("(%s %s)", x.Op, x.Operand) }

// Binary applies an infix operator.  Both operands have been converted to a
// common operand type.
type Binary struct {
	Node        *syntax.Binary
	Op          token.Type
	X           BoundExpr
	Y           BoundExpr
	OperandType *symbols.TypeSymbol
	typ         *symbols.TypeSymbol
}

func (x *Binary) Type() *symbols.TypeSymbol { return x.typ }
func (x *Binary) Syntax() syntax.Expr       { return x.Node }
func (x *Binary) String() string            { return fmt.Sprintf("(%s %s %s)", x.Op, x.X, x.Y) }

// Conversion converts its operand implicitly to another type.
type Conversion struct {
	Operand BoundExpr
	typ     *symbols.TypeSymbol
}

func (x *Conversion) Type() *symbols.TypeSymbol { return x.typ }
func (x *Conversion) Syntax() syntax.Expr       { return x.Operand.Syntax() }
func (x *Conversion) String() string            { return fmt.Sprintf("(%s)%s", x.typ, x.Operand) }

// BadExpr stands in for an expression that failed to bind.  Its type is an
// error type so that a failure is reported once.
type BadExpr struct {
	Node syntax.Expr
	typ  *symbols.TypeSymbol
}

func (x *BadExpr) Type() *symbols.TypeSymbol { return x.typ }
func (x *BadExpr) Syntax() syntax.Expr       { return x.Node }
func (x *BadExpr) String() string            { return "<bad " + x.Node.String() + ">" }

// ExpressionStatement evaluates an expression for its value.
type ExpressionStatement struct {
	Node *syntax.ExpressionStatement
	Expr BoundExpr
}

func (s *ExpressionStatement) Syntax() syntax.Statement { return s.Node }
func (s *ExpressionStatement) String() string           { return s.Expr.String() }

// Declarator is one bound local of a declaration.
type Declarator struct {
	Local       *symbols.SourceLocal
	Initializer BoundExpr // nil when absent
}

// LocalDeclaration declares the locals of a statement.
type LocalDeclaration struct {
	Node        *syntax.LocalDeclarationStatement
	Declarators []*Declarator
}

func (s *LocalDeclaration) Syntax() syntax.Statement { return s.Node }

func (s *LocalDeclaration) String() string {
	parts := make([]string, len(s.Declarators))
	for i, d := range s.Declarators {
		parts[i] = fmt.Sprintf("%v %s", d.Local.Type(), d.Local.Name())
		if d.Initializer != nil {
			parts[i] += " = " + d.Initializer.String()
		}
	}
	return strings.Join(parts, "; ")
}
