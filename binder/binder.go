// Copyright © 2018 The ELPS authors

// Package binder resolves the names of a debugger statement and checks its
// types.
//
// Names are resolved through a Chain of scopes.  The innermost scope of a
// statement is a PlaceholderScope which makes debugger aliases, raw object
// addresses and the statement's own locals visible as locals.  The method
// containing the paused frame and the namespaces of the compilation follow.
package binder

import (
	"fmt"
	"math"
	"strconv"

	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/symbols"
	"github.com/luthersystems/eescope/syntax"
)

// Binder binds statements against a chain of scopes.  A Binder is not safe
// for concurrent use.
type Binder struct {
	chain       *Chain
	compilation *symbols.Compilation
	diags       Diagnostics
}

// NewBinder returns a binder resolving names through chain.
func NewBinder(compilation *symbols.Compilation, chain *Chain) *Binder {
	return &Binder{chain: chain, compilation: compilation}
}

// Bind binds stmt through chain.  When binding fails the error is a
// Diagnostics.
func Bind(compilation *symbols.Compilation, chain *Chain, stmt syntax.Statement) (BoundStatement, error) {
	return NewBinder(compilation, chain).BindStatement(stmt)
}

// BindStatement binds stmt.  When binding fails the error is a Diagnostics.
func (b *Binder) BindStatement(stmt syntax.Statement) (BoundStatement, error) {
	b.diags = nil
	var bound BoundStatement
	switch stmt := stmt.(type) {
	case *syntax.ExpressionStatement:
		bound = &ExpressionStatement{Node: stmt, Expr: b.bindExpr(stmt.X)}
	case *syntax.LocalDeclarationStatement:
		bound = b.bindDeclaration(stmt)
	default:
		panic(symbols.UnexpectedValue(stmt))
	}
	if len(b.diags) > 0 {
		return nil, b.diags
	}
	return bound, nil
}

func (b *Binder) errorf(loc *token.Location, width int, code string, format string, v ...interface{}) {
	b.diags = append(b.diags, &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, v...),
		Source:  loc,
		Width:   width,
	})
}

func (b *Binder) errorAt(tok *token.Token, code string, format string, v ...interface{}) {
	b.errorf(tok.Source, len(tok.Text), code, format, v...)
}

func (b *Binder) errorNode(n syntax.Node, code string, format string, v ...interface{}) {
	b.errorf(n.Pos(), len(n.String()), code, format, v...)
}

func bad(x syntax.Expr) *BadExpr {
	return &BadExpr{Node: x, typ: symbols.NewErrorType(x.String(), "bad expression")}
}

func isError(t *symbols.TypeSymbol) bool {
	return t != nil && t.IsError()
}

func typeString(t *symbols.TypeSymbol) string {
	if t == nil {
		return "<null>"
	}
	return t.String()
}

func (b *Binder) special(s symbols.SpecialType) *symbols.TypeSymbol {
	return b.compilation.Special(s)
}

func (b *Binder) bindExpr(x syntax.Expr) BoundExpr {
	switch x := x.(type) {
	case *syntax.Literal:
		return b.bindLiteral(x)
	case *syntax.Name:
		return b.bindName(x)
	case *syntax.Paren:
		return b.bindExpr(x.X)
	case *syntax.Unary:
		return b.bindUnary(x)
	case *syntax.Binary:
		return b.bindBinary(x)
	}
	panic(symbols.UnexpectedValue(x))
}

func (b *Binder) bindLiteral(x *syntax.Literal) BoundExpr {
	text := x.Token.Text
	switch x.Token.Type {
	case token.INT:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			b.errorAt(x.Token, ErrIntegerTooLarge, "Integral constant is too large")
			return bad(x)
		}
		switch {
		case u <= math.MaxInt32:
			return &Literal{Node: x, Value: int64(u), typ: b.special(symbols.SpecialInt32)}
		case u <= math.MaxInt64:
			return &Literal{Node: x, Value: int64(u), typ: b.special(symbols.SpecialInt64)}
		}
		return &Literal{Node: x, Value: u, typ: b.special(symbols.SpecialUInt64)}
	case token.FLOAT:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			b.errorAt(x.Token, ErrFloatRange, "Floating-point constant is outside the range of type 'double'")
			return bad(x)
		}
		return &Literal{Node: x, Value: f, typ: b.special(symbols.SpecialDouble)}
	case token.STRING:
		s, err := strconv.Unquote(text)
		if err != nil {
			b.errorAt(x.Token, ErrBadEscape, "Unrecognized escape sequence in %s", text)
			return bad(x)
		}
		return &Literal{Node: x, Value: s, typ: b.special(symbols.SpecialString)}
	case token.TRUE, token.FALSE:
		return &Literal{Node: x, Value: x.Token.Type == token.TRUE, typ: b.special(symbols.SpecialBoolean)}
	case token.NULL:
		return &Literal{Node: x, Value: nil}
	}
	panic(symbols.UnexpectedValue(x.Token.Type))
}

func (b *Binder) bindName(x *syntax.Name) BoundExpr {
	name := x.Identifier()
	res := b.chain.Lookup(LookupRequest{Name: name})
	switch res.Kind() {
	case ResultEmpty:
		b.errorAt(x.Token, ErrNameNotFound, "The name '%s' does not exist in the current context", name)
		return bad(x)
	case ResultWrongArity:
		b.errorAt(x.Token, ErrBadArity, "%s", res.Reason())
		return bad(x)
	case ResultNotAValue:
		b.errorAt(x.Token, ErrWrongSymbolKind, "%s", res.Reason())
		return bad(x)
	case ResultViable:
	default:
		panic(symbols.UnexpectedValue(res.Kind()))
	}
	switch sym := res.Symbol().(type) {
	case symbols.Local:
		typ := sym.Type()
		if typ == nil {
			b.errorAt(x.Token, ErrUseBeforeDeclaration, "Cannot use local variable '%s' before it is declared", name)
			return bad(x)
		}
		if typ.IsError() {
			if _, ok := sym.(*symbols.PlaceholderLocal); ok {
				b.errorAt(x.Token, ErrTypeNotFound, "The type '%s' of '%s' could not be found: %s", typ, name, typ.ErrorReason())
			}
			return bad(x)
		}
		return &LocalRef{Node: x, Local: sym}
	case *symbols.Parameter:
		return &ParameterRef{Node: x, Parameter: sym}
	default:
		b.errorAt(x.Token, ErrWrongSymbolKind, "'%s' is a %v but is used like a variable", name, sym.Kind())
		return bad(x)
	}
}

func (b *Binder) bindUnary(x *syntax.Unary) BoundExpr {
	operand := b.bindExpr(x.X)
	t := operand.Type()
	if isError(t) {
		return bad(x)
	}
	switch x.Op.Type {
	case token.MINUS:
		if t != nil {
			switch t.Special() {
			case symbols.SpecialInt32, symbols.SpecialInt64, symbols.SpecialDouble:
				return &Unary{Node: x, Op: x.Op.Type, Operand: operand, typ: t}
			}
		}
	case token.BANG:
		if t != nil && t.Special() == symbols.SpecialBoolean {
			return &Unary{Node: x, Op: x.Op.Type, Operand: operand, typ: t}
		}
	default:
		panic(symbols.UnexpectedValue(x.Op.Type))
	}
	b.errorAt(x.Op, ErrBadUnaryOperand, "Operator '%s' cannot be applied to operand of type '%s'", x.Op.Text, typeString(t))
	return bad(x)
}

// promote returns the type both numeric operands convert to, or nil.
func (b *Binder) promote(x, y *symbols.TypeSymbol) *symbols.TypeSymbol {
	if x == nil || y == nil {
		return nil
	}
	sx, sy := x.Special(), y.Special()
	if !sx.IsNumeric() || !sy.IsNumeric() {
		return nil
	}
	switch {
	case sx == symbols.SpecialDouble || sy == symbols.SpecialDouble:
		return b.special(symbols.SpecialDouble)
	case sx == symbols.SpecialUInt64 || sy == symbols.SpecialUInt64:
		if sx != sy {
			return nil
		}
		return x
	case sx == symbols.SpecialInt64 || sy == symbols.SpecialInt64:
		return b.special(symbols.SpecialInt64)
	}
	return b.special(symbols.SpecialInt32)
}

func convert(x BoundExpr, t *symbols.TypeSymbol) BoundExpr {
	if t == nil || t.Equals(x.Type()) {
		return x
	}
	return &Conversion{Operand: x, typ: t}
}

func (b *Binder) bindBinary(x *syntax.Binary) BoundExpr {
	l := b.bindExpr(x.X)
	r := b.bindExpr(x.Y)
	lt, rt := l.Type(), r.Type()
	if isError(lt) || isError(rt) {
		return bad(x)
	}
	op := x.Op.Type
	boolType := b.special(symbols.SpecialBoolean)
	binary := func(operand, result *symbols.TypeSymbol) *Binary {
		return &Binary{Node: x, Op: op, X: convert(l, operand), Y: convert(r, operand), OperandType: operand, typ: result}
	}
	switch op {
	case token.AND, token.OR:
		if lt != nil && rt != nil && lt.Special() == symbols.SpecialBoolean && rt.Special() == symbols.SpecialBoolean {
			return binary(boolType, boolType)
		}
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if op == token.PLUS && (isString(lt) || isString(rt)) {
			str := b.special(symbols.SpecialString)
			return &Binary{Node: x, Op: op, X: l, Y: r, OperandType: str, typ: str}
		}
		if t := b.promote(lt, rt); t != nil {
			return binary(t, t)
		}
	case token.LT, token.LTE, token.GT, token.GTE:
		if t := b.promote(lt, rt); t != nil {
			return binary(t, boolType)
		}
	case token.EQ, token.NEQ:
		if t := b.promote(lt, rt); t != nil {
			return binary(t, boolType)
		}
		if t := b.equalityType(lt, rt); t != nil {
			return binary(t, boolType)
		}
	default:
		panic(symbols.UnexpectedValue(op))
	}
	b.errorAt(x.Op, ErrBadBinaryOperands, "Operator '%s' cannot be applied to operands of type '%s' and '%s'", x.Op.Text, typeString(lt), typeString(rt))
	return bad(x)
}

func isString(t *symbols.TypeSymbol) bool {
	return t != nil && t.Special() == symbols.SpecialString
}

// equalityType returns the type non-numeric operands of == and != are
// compared as, or nil if they cannot be compared.
func (b *Binder) equalityType(x, y *symbols.TypeSymbol) *symbols.TypeSymbol {
	switch {
	case x == nil && y == nil:
		return b.compilation.ObjectType()
	case x == nil:
		if y.IsValueType() {
			return nil
		}
		return y
	case y == nil:
		if x.IsValueType() {
			return nil
		}
		return x
	case x.Equals(y) && x.Special() == symbols.SpecialBoolean:
		return x
	case x.IsValueType() || y.IsValueType():
		return nil
	case x.Equals(y):
		return x
	case x.IsAssignableFrom(y) || y.IsAssignableFrom(x):
		return b.compilation.ObjectType()
	}
	return nil
}

func (b *Binder) bindDeclaration(stmt *syntax.LocalDeclarationStatement) BoundStatement {
	decl := &LocalDeclaration{Node: stmt}
	typeSyntax := stmt.Declaration.Type
	named, _ := typeSyntax.(*syntax.NamedType)
	implicit := named != nil && named.IsVar()
	var declared *symbols.TypeSymbol
	if implicit {
		if stmt.IsConst() {
			b.errorNode(named, ErrImplicitConst, "Implicitly-typed variables cannot be constant")
		}
	} else {
		declared = b.bindType(typeSyntax)
	}
	for _, v := range stmt.Declaration.Variables {
		local := b.declaredLocal(v)
		var init BoundExpr
		if v.Initializer != nil {
			init = b.bindExpr(v.Initializer)
		}
		typ := declared
		if implicit {
			typ = b.inferType(v, init)
		}
		switch {
		case stmt.IsRef():
			init = b.checkRefInitializer(v, typ, init)
		case init != nil && !implicit:
			init = b.convertAssignment(init, typ)
		}
		if stmt.IsConst() {
			switch {
			case init == nil:
				b.errorAt(v.Identifier, ErrConstWithoutValue, "A const field requires a value to be provided")
			case !isError(init.Type()) && !isConstant(init):
				b.errorNode(v.Initializer, ErrNotConstant, "The expression being assigned to '%s' must be constant", v.Name())
			}
		}
		local.SetType(typ)
		decl.Declarators = append(decl.Declarators, &Declarator{Local: local, Initializer: init})
	}
	return decl
}

// declaredLocal finds the local created for v by the chain's placeholder
// scope and reports it when an earlier local of the same scope has its name.
func (b *Binder) declaredLocal(v *syntax.VariableDeclarator) *symbols.SourceLocal {
	for _, scope := range b.chain.Scopes() {
		set := scope.Locals()
		for i := 0; i < set.Len(); i++ {
			local, ok := set.At(i).(*symbols.SourceLocal)
			if !ok || local.Identifier() != v.Identifier {
				continue
			}
			for j := 0; j < i; j++ {
				if set.At(j).Name() == local.Name() {
					b.errorAt(v.Identifier, ErrLocalRedeclared, "A local variable named '%s' is already defined in this scope", local.Name())
					break
				}
			}
			return local
		}
	}
	panic(fmt.Sprintf("declared local %s is not in scope", v.Name()))
}

func (b *Binder) inferType(v *syntax.VariableDeclarator, init BoundExpr) *symbols.TypeSymbol {
	switch {
	case init == nil:
		b.errorAt(v.Identifier, ErrImplicitUninit, "Implicitly-typed variables must be initialized")
		return symbols.NewErrorType("var", "no initializer")
	case init.Type() == nil:
		b.errorNode(v.Initializer, ErrImplicitNull, "Cannot assign <null> to an implicitly-typed variable")
		return symbols.NewErrorType("var", "null initializer")
	}
	return init.Type()
}

func (b *Binder) convertAssignment(init BoundExpr, typ *symbols.TypeSymbol) BoundExpr {
	if isError(typ) || isError(init.Type()) {
		return init
	}
	if !typ.IsAssignableFrom(init.Type()) {
		b.errorNode(init.Syntax(), ErrNoConversion, "Cannot implicitly convert type '%s' to '%s'", typeString(init.Type()), typ)
		return init
	}
	return convert(init, typ)
}

func (b *Binder) checkRefInitializer(v *syntax.VariableDeclarator, typ *symbols.TypeSymbol, init BoundExpr) BoundExpr {
	if init == nil {
		b.errorAt(v.Identifier, ErrRefWithoutValue, "A declaration of a by-reference variable must have an initializer")
		return nil
	}
	if isError(init.Type()) || isError(typ) {
		return init
	}
	var variable symbols.Variable
	switch x := init.(type) {
	case *LocalRef:
		variable = x.Local
	case *ParameterRef:
		variable = x.Parameter
	default:
		b.errorNode(v.Initializer, ErrRefToValue, "Cannot initialize a by-reference variable with a value")
		return init
	}
	if !variable.IsWritable() {
		b.errorNode(v.Initializer, ErrRefNotAssignable, "A ref value must be an assignable variable")
		return init
	}
	if !typ.Equals(init.Type()) {
		b.errorNode(v.Initializer, ErrRefTypeMismatch, "The expression must be of type '%s' because it is being assigned by reference", typ)
	}
	return init
}

func isConstant(x BoundExpr) bool {
	switch x := x.(type) {
	case *Literal:
		return true
	case *LocalRef:
		local, ok := x.Local.(*symbols.SourceLocal)
		return ok && local.DeclarationKind() == symbols.LocalConstant
	case *Unary:
		return isConstant(x.Operand)
	case *Binary:
		return isConstant(x.X) && isConstant(x.Y)
	case *Conversion:
		return isConstant(x.Operand)
	}
	return false
}

func (b *Binder) bindType(t syntax.Type) *symbols.TypeSymbol {
	switch t := t.(type) {
	case *syntax.ArrayType:
		elem := b.bindType(t.Elem)
		if elem.IsError() {
			return elem
		}
		return b.compilation.ArrayOf(elem)
	case *syntax.NamedType:
		switch sym := b.bindNamespaceOrType(t).(type) {
		case *symbols.TypeSymbol:
			return sym
		case *symbols.Namespace:
			b.errorNode(t, ErrWrongSymbolKind, "'%s' is a namespace but is used like a type", sym)
		}
		return symbols.NewErrorType(t.String(), "type not bound")
	}
	panic(symbols.UnexpectedValue(t))
}

// bindNamespaceOrType resolves a possibly qualified name in type position.
// It returns nil after reporting a diagnostic.
func (b *Binder) bindNamespaceOrType(t *syntax.NamedType) symbols.Symbol {
	name := t.Name.Text
	if t.Qualifier == nil && t.Arity() == 0 {
		if kw := b.compilation.KeywordType(name); kw != nil {
			return kw
		}
	}
	req := LookupRequest{Name: name, Arity: t.Arity(), Options: NamespacesOrTypesOnly}
	var res *LookupResult
	var container *symbols.Namespace
	if t.Qualifier == nil {
		res = b.chain.Lookup(req)
	} else {
		switch q := b.bindNamespaceOrType(t.Qualifier).(type) {
		case nil:
			return nil
		case *symbols.Namespace:
			container = q
		case *symbols.TypeSymbol:
			if q.IsError() {
				return q
			}
			b.errorAt(t.Name, ErrNestedType, "The type name '%s' does not exist in the type '%s'", name, q)
			return nil
		default:
			b.errorAt(t.Name, ErrNestedType, "The type name '%s' does not exist in the type '%s'", name, q)
			return nil
		}
		res = NewLookupResult()
		LookupMember(res, container, req)
	}
	switch res.Kind() {
	case ResultEmpty:
		if container != nil {
			b.errorAt(t.Name, ErrNotInNamespace, "The type or namespace name '%s' does not exist in the namespace '%s'", name, container)
		} else {
			b.errorAt(t.Name, ErrTypeNotFound, "The type or namespace name '%s' could not be found", name)
		}
		return nil
	case ResultWrongArity:
		if _, ok := res.Symbol().(*symbols.TypeSymbol); ok {
			b.errorAt(t.Name, ErrGenericArity, "%s", res.Reason())
		} else {
			b.errorAt(t.Name, ErrBadArity, "%s", res.Reason())
		}
		return nil
	case ResultNotAValue:
		b.errorAt(t.Name, ErrWrongSymbolKind, "%s", res.Reason())
		return nil
	case ResultViable:
	default:
		panic(symbols.UnexpectedValue(res.Kind()))
	}
	if syms := res.Symbols(); len(syms) > 1 {
		b.errorAt(t.Name, ErrAmbiguous, "'%s' is an ambiguous reference between '%s' and '%s'", name, qualifiedName(syms[0]), qualifiedName(syms[1]))
		return nil
	}
	typ, ok := res.Symbol().(*symbols.TypeSymbol)
	if !ok || t.Arity() == 0 {
		return res.Symbol()
	}
	args := make([]*symbols.TypeSymbol, t.Arity())
	for i, arg := range t.TypeArgs {
		args[i] = b.bindType(arg)
		if args[i].IsError() {
			return args[i]
		}
	}
	return typ.Construct(args...)
}

func qualifiedName(sym symbols.Symbol) string {
	switch sym := sym.(type) {
	case *symbols.TypeSymbol:
		return sym.FullName()
	case *symbols.Namespace:
		return sym.FullName()
	}
	return sym.Name()
}
