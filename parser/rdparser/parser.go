// Copyright © 2018 The ELPS authors

// Package rdparser implements a recursive descent parser for debugger
// statements.
//
//	statement   := declaration | expr
//	declaration := 'const'? 'ref'? type declarator (',' declarator)*
//	declarator  := IDENT ('=' expr)?
//	type        := named ('[' ']')*
//	named       := IDENT typeargs? ('.' IDENT typeargs?)*
//	typeargs    := '<' type (',' type)* '>'
//
// Either form may be followed by a single ';'.
package rdparser

import (
	"fmt"

	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/syntax"
)

// Parser parses a single statement from a token slice.
type Parser struct {
	src *TokenSource
}

// New returns a Parser reading toks, which must end with an EOF token.
func New(toks []*token.Token) *Parser {
	return &Parser{src: NewTokenSource(toks)}
}

// ParseStatement parses the complete input as one statement.
func (p *Parser) ParseStatement() (syntax.Statement, error) {
	if p.src.IsEOF() {
		return nil, p.errorf(p.src.Peek(), "empty statement")
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	p.src.Accept(token.SEMICOLON)
	if !p.src.IsEOF() {
		return nil, p.errorf(p.src.Peek(), "unexpected %s after statement", p.src.Peek().Type)
	}
	return stmt, nil
}

// ParseExpression parses the complete input as one expression.
func (p *Parser) ParseExpression() (syntax.Expr, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.src.IsEOF() {
		return nil, p.errorf(p.src.Peek(), "unexpected %s after expression", p.src.Peek().Type)
	}
	return x, nil
}

func (p *Parser) parseStatement() (syntax.Statement, error) {
	switch p.src.Peek().Type {
	case token.CONST, token.REF:
		return p.parseDeclaration()
	}
	if p.isDeclaration() {
		return p.parseDeclaration()
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &syntax.ExpressionStatement{X: x}, nil
}

// isDeclaration looks ahead for `type IDENT` followed by a token that can
// only continue a declarator.  The source position is left unchanged.
func (p *Parser) isDeclaration() bool {
	mark := p.src.Mark()
	defer p.src.Reset(mark)
	if _, err := p.parseType(); err != nil {
		return false
	}
	if !p.src.Accept(token.IDENT) {
		return false
	}
	switch p.src.Peek().Type {
	case token.ASSIGN, token.COMMA, token.SEMICOLON, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseDeclaration() (syntax.Statement, error) {
	stmt := &syntax.LocalDeclarationStatement{Start: p.src.Peek()}
	if p.src.Accept(token.CONST) {
		stmt.ConstKeyword = p.src.Token()
	}
	if p.src.Accept(token.REF) {
		stmt.RefKeyword = p.src.Token()
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl := &syntax.VariableDeclaration{Type: typ}
	for {
		v, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		decl.Variables = append(decl.Variables, v)
		if !p.src.Accept(token.COMMA) {
			break
		}
	}
	stmt.Declaration = decl
	return stmt, nil
}

func (p *Parser) parseDeclarator() (*syntax.VariableDeclarator, error) {
	if !p.src.Accept(token.IDENT) {
		return nil, p.errorf(p.src.Peek(), "expected variable name, found %s", p.src.Peek().Type)
	}
	v := &syntax.VariableDeclarator{Identifier: p.src.Token()}
	if p.src.Accept(token.ASSIGN) {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		v.Initializer = x
	}
	return v, nil
}

func (p *Parser) parseType() (syntax.Type, error) {
	var typ syntax.Type
	named, err := p.parseNamedType(nil)
	if err != nil {
		return nil, err
	}
	typ = named
	for p.src.Peek().Type == token.BRACKET_L {
		p.src.Scan()
		if !p.src.Accept(token.BRACKET_R) {
			return nil, p.errorf(p.src.Peek(), "expected ']' in array type, found %s", p.src.Peek().Type)
		}
		typ = &syntax.ArrayType{Elem: typ}
	}
	return typ, nil
}

func (p *Parser) parseNamedType(qualifier *syntax.NamedType) (*syntax.NamedType, error) {
	if !p.src.Accept(token.IDENT) {
		return nil, p.errorf(p.src.Peek(), "expected type name, found %s", p.src.Peek().Type)
	}
	named := &syntax.NamedType{Qualifier: qualifier, Name: p.src.Token()}
	if p.src.Accept(token.LT) {
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			named.TypeArgs = append(named.TypeArgs, arg)
			if !p.src.Accept(token.COMMA) {
				break
			}
		}
		if !p.src.Accept(token.GT) {
			return nil, p.errorf(p.src.Peek(), "expected '>' in type argument list, found %s", p.src.Peek().Type)
		}
	}
	if p.src.Accept(token.DOT) {
		return p.parseNamedType(named)
	}
	return named, nil
}

// binaryPrecedence returns the binding power of a binary operator, or zero
// if typ is not a binary operator.
func binaryPrecedence(typ token.Type) int {
	switch typ {
	case token.OR:
		return 1
	case token.AND:
		return 2
	case token.EQ, token.NEQ:
		return 3
	case token.LT, token.LTE, token.GT, token.GTE:
		return 4
	case token.PLUS, token.MINUS:
		return 5
	case token.STAR, token.SLASH, token.PERCENT:
		return 6
	}
	return 0
}

func (p *Parser) parseExpr() (syntax.Expr, error) {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) (syntax.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := binaryPrecedence(p.src.Peek().Type)
		if prec == 0 || prec < minPrec {
			return x, nil
		}
		p.src.Scan()
		op := p.src.Token()
		y, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		x = &syntax.Binary{Op: op, X: x, Y: y}
	}
}

func (p *Parser) parseUnary() (syntax.Expr, error) {
	switch p.src.Peek().Type {
	case token.MINUS, token.BANG:
		p.src.Scan()
		op := p.src.Token()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &syntax.Unary{Op: op, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (syntax.Expr, error) {
	tok := p.src.Peek()
	switch tok.Type {
	case token.IDENT, token.ADDRESS:
		p.src.Scan()
		return &syntax.Name{Token: tok}, nil
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		p.src.Scan()
		return &syntax.Literal{Token: tok}, nil
	case token.PAREN_L:
		p.src.Scan()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.src.Accept(token.PAREN_R) {
			return nil, p.errorf(p.src.Peek(), "expected ')', found %s", p.src.Peek().Type)
		}
		return &syntax.Paren{Open: tok, X: x}, nil
	}
	return nil, p.errorf(tok, "expected expression, found %s", tok.Type)
}

func (p *Parser) errorf(tok *token.Token, format string, v ...interface{}) error {
	return &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: tok.Source,
	}
}
