// Copyright © 2018 The ELPS authors

// Package eval evaluates bound debugger statements against a paused frame.
//
// Evaluation follows the unchecked arithmetic of the debuggee language:
// int and long operations wrap on overflow.  Integer division by zero is a
// runtime error.
package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/symbols"
)

var (
	// ErrNoObject is wrapped by errors for addresses without an object.
	ErrNoObject = errors.New("no object at address")
	// ErrDivideByZero is returned for integer division by zero.
	ErrDivideByZero = errors.New("attempted to divide by zero")
	// ErrUnavailable is wrapped by errors for values a frame cannot supply.
	ErrUnavailable = errors.New("value is not available")
)

// Frame supplies the values of a paused method activation.
type Frame interface {
	Heap
	ParameterValue(p *symbols.Parameter) (Value, error)
	LocalValue(l *symbols.SourceLocal) (Value, error)
}

// RuntimeError is an error raised while evaluating an expression.
type RuntimeError struct {
	Source *token.Location
	Err    error
}

func (err *RuntimeError) Error() string {
	return fmt.Sprintf("%v: %v", err.Source, err.Err)
}

func (err *RuntimeError) Unwrap() error {
	return err.Err
}

// Declared is a local declared by an evaluated statement and its value.
type Declared struct {
	Local *symbols.SourceLocal
	Value Value
}

// Result is the outcome of evaluating a statement.
type Result struct {
	// Value is the value of an expression statement or of the last local
	// declared by a declaration.
	Value    Value
	Declared []Declared
}

// Evaluator evaluates statements in a frame.  The locals declared by
// evaluated statements are remembered by the evaluator.
type Evaluator struct {
	frame  Frame
	locals map[*symbols.SourceLocal]Value
}

// New returns an evaluator reading values from frame.
func New(frame Frame) *Evaluator {
	return &Evaluator{
		frame:  frame,
		locals: make(map[*symbols.SourceLocal]Value),
	}
}

// Evaluate evaluates stmt in frame.
func Evaluate(frame Frame, stmt binder.BoundStatement) (*Result, error) {
	return New(frame).Run(stmt)
}

// Run evaluates stmt.  Errors are *RuntimeError values.
func (e *Evaluator) Run(stmt binder.BoundStatement) (*Result, error) {
	switch s := stmt.(type) {
	case *binder.ExpressionStatement:
		v, err := e.eval(s.Expr)
		if err != nil {
			return nil, err
		}
		return &Result{Value: v}, nil
	case *binder.LocalDeclaration:
		res := &Result{}
		for _, d := range s.Declarators {
			v := zero(d.Local.Type())
			if d.Initializer != nil {
				var err error
				v, err = e.eval(d.Initializer)
				if err != nil {
					return nil, err
				}
			}
			e.locals[d.Local] = v
			res.Declared = append(res.Declared, Declared{Local: d.Local, Value: v})
			res.Value = v
		}
		return res, nil
	}
	panic(symbols.UnexpectedValue(stmt))
}

func zero(t *symbols.TypeSymbol) Value {
	switch t.Special() {
	case symbols.SpecialInt32, symbols.SpecialInt64:
		return Value{Type: t, V: int64(0)}
	case symbols.SpecialUInt64:
		return Value{Type: t, V: uint64(0)}
	case symbols.SpecialDouble:
		return Value{Type: t, V: float64(0)}
	case symbols.SpecialBoolean:
		return Value{Type: t, V: false}
	}
	return Null
}

func errorAt(x binder.BoundExpr, err error) error {
	return &RuntimeError{Source: x.Syntax().Pos(), Err: err}
}

func (e *Evaluator) eval(x binder.BoundExpr) (Value, error) {
	switch x := x.(type) {
	case *binder.Literal:
		if x.Value == nil {
			return Null, nil
		}
		return Value{Type: x.Type(), V: x.Value}, nil
	case *binder.LocalRef:
		v, err := e.local(x.Local)
		if err != nil {
			return Value{}, errorAt(x, err)
		}
		return v, nil
	case *binder.ParameterRef:
		v, err := e.frame.ParameterValue(x.Parameter)
		if err != nil {
			return Value{}, errorAt(x, err)
		}
		return v, nil
	case *binder.Conversion:
		v, err := e.eval(x.Operand)
		if err != nil {
			return Value{}, err
		}
		return convert(v, x.Type()), nil
	case *binder.Unary:
		return e.unary(x)
	case *binder.Binary:
		return e.binary(x)
	}
	panic(symbols.UnexpectedValue(x))
}

func (e *Evaluator) local(l symbols.Local) (Value, error) {
	switch l := l.(type) {
	case *symbols.PlaceholderLocal:
		return e.placeholder(l)
	case *symbols.SourceLocal:
		if !l.IsDeclaredInStatement() {
			return e.frame.LocalValue(l)
		}
		v, ok := e.locals[l]
		if !ok {
			panic(symbols.UnexpectedValue(l))
		}
		return v, nil
	}
	panic(symbols.UnexpectedValue(l))
}

func (e *Evaluator) placeholder(p *symbols.PlaceholderLocal) (Value, error) {
	switch p.PlaceholderKind() {
	case symbols.PlaceholderObjectAddress:
		address, _ := p.Address()
		obj, err := e.frame.ObjectAt(address)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(obj), nil
	case symbols.PlaceholderException,
		symbols.PlaceholderStowedException,
		symbols.PlaceholderReturnValue,
		symbols.PlaceholderObjectID,
		symbols.PlaceholderVariable:
		v, err := FromPayload(p.Type(), p.Payload(), e.frame)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", p.FullName(), err)
		}
		return v, nil
	}
	panic(symbols.UnexpectedValue(p.PlaceholderKind()))
}

// convert applies an implicit conversion.  Reference conversions keep the
// runtime type of the value.
func convert(v Value, t *symbols.TypeSymbol) Value {
	switch t.Special() {
	case symbols.SpecialInt64:
		if n, ok := v.V.(int64); ok {
			return Value{Type: t, V: n}
		}
	case symbols.SpecialDouble:
		switch n := v.V.(type) {
		case int64:
			return Value{Type: t, V: float64(n)}
		case uint64:
			return Value{Type: t, V: float64(n)}
		}
	}
	return v
}

func (e *Evaluator) unary(x *binder.Unary) (Value, error) {
	v, err := e.eval(x.Operand)
	if err != nil {
		return Value{}, err
	}
	t := x.Type()
	switch x.Op {
	case token.BANG:
		return Value{Type: t, V: !v.V.(bool)}, nil
	case token.MINUS:
		switch t.Special() {
		case symbols.SpecialInt32:
			return Value{Type: t, V: int64(-int32(v.V.(int64)))}, nil
		case symbols.SpecialInt64:
			return Value{Type: t, V: -v.V.(int64)}, nil
		case symbols.SpecialDouble:
			return Value{Type: t, V: -v.V.(float64)}, nil
		}
	}
	panic(symbols.UnexpectedValue(x.Op))
}

func (e *Evaluator) binary(x *binder.Binary) (Value, error) {
	l, err := e.eval(x.X)
	if err != nil {
		return Value{}, err
	}
	switch x.Op {
	case token.AND:
		if !l.V.(bool) {
			return l, nil
		}
		return e.eval(x.Y)
	case token.OR:
		if l.V.(bool) {
			return l, nil
		}
		return e.eval(x.Y)
	}
	r, err := e.eval(x.Y)
	if err != nil {
		return Value{}, err
	}
	t := x.OperandType
	switch x.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if t.Special() == symbols.SpecialString {
			return Value{Type: t, V: concatText(l) + concatText(r)}, nil
		}
		v, err := arith(x.Op, t, l, r)
		if err != nil {
			return Value{}, errorAt(x, err)
		}
		return v, nil
	case token.LT, token.LTE, token.GT, token.GTE:
		return Value{Type: x.Type(), V: compare(x.Op, l, r)}, nil
	case token.EQ, token.NEQ:
		eq := equal(l, r)
		if x.Op == token.NEQ {
			eq = !eq
		}
		return Value{Type: x.Type(), V: eq}, nil
	}
	panic(symbols.UnexpectedValue(x.Op))
}

func concatText(v Value) string {
	if v.IsNull() {
		return ""
	}
	return v.Text()
}

func arith(op token.Type, t *symbols.TypeSymbol, l, r Value) (Value, error) {
	switch t.Special() {
	case symbols.SpecialInt32:
		n, err := intArith(op, l.V.(int64), r.V.(int64))
		return Value{Type: t, V: int64(int32(n))}, err
	case symbols.SpecialInt64:
		n, err := intArith(op, l.V.(int64), r.V.(int64))
		return Value{Type: t, V: n}, err
	case symbols.SpecialUInt64:
		n, err := uintArith(op, l.V.(uint64), r.V.(uint64))
		return Value{Type: t, V: n}, err
	case symbols.SpecialDouble:
		return Value{Type: t, V: floatArith(op, l.V.(float64), r.V.(float64))}, nil
	}
	panic(symbols.UnexpectedValue(t.Special()))
}

func intArith(op token.Type, a, b int64) (int64, error) {
	switch op {
	case token.PLUS:
		return a + b, nil
	case token.MINUS:
		return a - b, nil
	case token.STAR:
		return a * b, nil
	case token.SLASH, token.PERCENT:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		if op == token.SLASH {
			return a / b, nil
		}
		return a % b, nil
	}
	panic(symbols.UnexpectedValue(op))
}

func uintArith(op token.Type, a, b uint64) (uint64, error) {
	switch op {
	case token.PLUS:
		return a + b, nil
	case token.MINUS:
		return a - b, nil
	case token.STAR:
		return a * b, nil
	case token.SLASH, token.PERCENT:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		if op == token.SLASH {
			return a / b, nil
		}
		return a % b, nil
	}
	panic(symbols.UnexpectedValue(op))
}

func floatArith(op token.Type, a, b float64) float64 {
	switch op {
	case token.PLUS:
		return a + b
	case token.MINUS:
		return a - b
	case token.STAR:
		return a * b
	case token.SLASH:
		return a / b
	case token.PERCENT:
		return math.Mod(a, b)
	}
	panic(symbols.UnexpectedValue(op))
}

// compare orders numeric operands of a common type.
func compare(op token.Type, l, r Value) bool {
	var c int
	switch a := l.V.(type) {
	case int64:
		c = cmp(a < r.V.(int64), a > r.V.(int64))
	case uint64:
		c = cmp(a < r.V.(uint64), a > r.V.(uint64))
	case float64:
		b := r.V.(float64)
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		c = cmp(a < b, a > b)
	default:
		panic(symbols.UnexpectedValue(l.V))
	}
	switch op {
	case token.LT:
		return c < 0
	case token.LTE:
		return c <= 0
	case token.GT:
		return c > 0
	case token.GTE:
		return c >= 0
	}
	panic(symbols.UnexpectedValue(op))
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// equal compares values of a common type.  Objects compare by address.
func equal(l, r Value) bool {
	switch {
	case l.IsNull() || r.IsNull():
		return l.IsNull() && r.IsNull()
	case l.Object() != nil || r.Object() != nil:
		lo, ro := l.Object(), r.Object()
		return lo != nil && ro != nil && lo.Address == ro.Address
	}
	return l.V == r.V
}
