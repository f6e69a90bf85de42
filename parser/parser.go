// Copyright © 2018 The ELPS authors

// Package parser reads debugger statements into syntax trees.
package parser

import (
	"github.com/luthersystems/eescope/parser/lexer"
	"github.com/luthersystems/eescope/parser/rdparser"
	"github.com/luthersystems/eescope/syntax"
)

// ParseStatement parses text as a single debugger statement.  The name
// identifies the text in error locations.  Errors are *token.LocationError
// values.
func ParseStatement(name string, text string) (syntax.Statement, error) {
	toks, err := lexer.Tokenize(name, text)
	if err != nil {
		return nil, err
	}
	return rdparser.New(toks).ParseStatement()
}

// ParseExpression parses text as a single expression.
func ParseExpression(name string, text string) (syntax.Expr, error) {
	toks, err := lexer.Tokenize(name, text)
	if err != nil {
		return nil, err
	}
	return rdparser.New(toks).ParseExpression()
}
