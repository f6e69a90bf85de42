// Copyright © 2018 The ELPS authors

// Package eetest provides helpers shared by the tests of the evaluator
// packages.
package eetest

import (
	"testing"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/parser"
	"github.com/luthersystems/eescope/symbols"
	"github.com/luthersystems/eescope/syntax"
	"github.com/stretchr/testify/require"
)

// Fixture is a paused method used by tests:
//
//	namespace App {
//	    class Widget {}
//	    class NotFoundException : System.Exception {}
//	    class Program {
//	        int Run(int count, string name) {
//	            long total; Widget widget; List<int> items;
//	        retry:
//	            ...
//	        }
//	    }
//	}
type Fixture struct {
	Compilation *symbols.Compilation
	Decoder     *symbols.CompilationDecoder
	Method      *symbols.Method
	Usings      []string
}

// NewFixture returns a new fixture.  Fixtures are independent of each other.
func NewFixture() *Fixture {
	c := symbols.NewCompilation()
	c.DefineType("App", "Widget", 0, nil)
	c.DefineType("App", "NotFoundException", 0, c.ExceptionType())
	program := c.DefineType("App", "Program", 0, nil)
	m := symbols.NewMethod(program, "Run", c.Special(symbols.SpecialInt32))
	m.AddParameter("count", c.Special(symbols.SpecialInt32), symbols.RefNone)
	m.AddParameter("name", c.Special(symbols.SpecialString), symbols.RefNone)
	m.AddLocal("total", c.Special(symbols.SpecialInt64))
	m.AddLocal("widget", c.GetTypeByMetadataName("App.Widget"))
	list := c.GetTypeByMetadataName("System.Collections.Generic.List`1")
	m.AddLocal("items", list.Construct(c.Special(symbols.SpecialInt32)))
	m.AddLabel("retry")
	return &Fixture{
		Compilation: c,
		Decoder:     symbols.NewTypeNameDecoder(c),
		Method:      m,
		Usings:      []string{"System", "System.Collections.Generic"},
	}
}

// Aliases returns one alias of every kind.
func Aliases() []alias.Descriptor {
	return []alias.Descriptor{
		{Name: "$exception", Kind: alias.Exception, Type: "App.NotFoundException, App"},
		{Name: "$stowedexception", Kind: alias.StowedException, Type: "System.Exception, mscorlib"},
		{Name: "$ReturnValue", Kind: alias.ReturnValue, Type: "System.Int32, mscorlib", Payload: 42},
		{Name: "$ReturnValue2", Kind: alias.ReturnValue, Type: "System.String, mscorlib", Payload: "done"},
		{Name: "$1", FullName: "{App.Widget}", Kind: alias.ObjectID, Type: "App.Widget, App"},
		{Name: "myVar", Kind: alias.Variable, Type: "System.Int64, mscorlib", Payload: 7},
	}
}

// Parse parses text as a statement.
func Parse(t testing.TB, text string) syntax.Statement {
	t.Helper()
	stmt, err := parser.ParseStatement("test", text)
	require.NoError(t, err, text)
	return stmt
}

// Scope returns the placeholder scope of stmt.
func (f *Fixture) Scope(stmt syntax.Statement, aliases []alias.Descriptor) *binder.PlaceholderScope {
	return binder.NewPlaceholderScope(stmt, aliases, f.Method, f.Decoder, f.Compilation)
}

// Chain returns the complete scope chain of stmt.
func (f *Fixture) Chain(t testing.TB, stmt syntax.Statement, aliases []alias.Descriptor) (*binder.Chain, *binder.PlaceholderScope) {
	t.Helper()
	ns, err := binder.NewNamespaceScope(f.Compilation, f.Usings)
	require.NoError(t, err)
	scope := f.Scope(stmt, aliases)
	return binder.NewChain(scope, binder.NewMethodScope(f.Method), ns), scope
}

// Bind parses and binds text with the given aliases.
func (f *Fixture) Bind(t testing.TB, text string, aliases []alias.Descriptor) (binder.BoundStatement, error) {
	t.Helper()
	stmt := Parse(t, text)
	chain, _ := f.Chain(t, stmt, aliases)
	return binder.Bind(f.Compilation, chain, stmt)
}
