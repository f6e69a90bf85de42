// Copyright © 2018 The ELPS authors

package binder_test

import (
	"testing"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/eetest"
	"github.com/luthersystems/eescope/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_Expressions(t *testing.T) {
	f := eetest.NewFixture()
	tests := []struct {
		text string
		typ  string // display string of the result type
	}{
		{"1", "int"},
		{"2147483648", "long"},
		{"9223372036854775808", "ulong"},
		{"1.5", "double"},
		{`"a\tb"`, "string"},
		{"true", "bool"},
		{"count", "int"},
		{"name", "string"},
		{"total", "long"},
		{"widget", "App.Widget"},
		{"items", "List<int>"},
		{"$exception", "App.NotFoundException"},
		{"$stowedexception", "System.Exception"},
		{"$ReturnValue", "int"},
		{"$returnvalue", "int"},
		{"$ReturnValue2", "string"},
		{"$returnvalue2", "string"},
		{"$1", "App.Widget"},
		{"myVar", "long"},
		{"0x10", "object"},
		{"0XFF", "object"},
		{"-count", "int"},
		{"!true", "bool"},
		{"count + 1", "int"},
		{"count + total", "long"},
		{"count * 1.5", "double"},
		{"name + count", "string"},
		{"count < total", "bool"},
		{"count == 1 && name != null", "bool"},
		{"$exception == null", "bool"},
		{"0x10 == $1", "bool"},
		{"(myVar - $ReturnValue) % 2", "long"},
	}
	for _, test := range tests {
		bound, err := f.Bind(t, test.text, eetest.Aliases())
		require.NoError(t, err, test.text)
		stmt, ok := bound.(*binder.ExpressionStatement)
		require.True(t, ok, test.text)
		require.NotNil(t, stmt.Expr.Type(), test.text)
		assert.Equal(t, test.typ, stmt.Expr.Type().String(), test.text)
	}
}

func TestBind_NullLiteral(t *testing.T) {
	f := eetest.NewFixture()
	bound, err := f.Bind(t, "null", nil)
	require.NoError(t, err)
	lit, ok := bound.(*binder.ExpressionStatement).Expr.(*binder.Literal)
	require.True(t, ok)
	assert.Nil(t, lit.Type())
	assert.Nil(t, lit.Value)
}

func TestBind_References(t *testing.T) {
	f := eetest.NewFixture()
	chain, scope := f.Chain(t, eetest.Parse(t, "x"), eetest.Aliases())

	bound, err := binder.Bind(f.Compilation, chain, eetest.Parse(t, "$returnvalue"))
	require.NoError(t, err)
	ref, ok := bound.(*binder.ExpressionStatement).Expr.(*binder.LocalRef)
	require.True(t, ok)
	assert.Same(t, scope.Placeholders()[2], ref.Local)

	bound, err = binder.Bind(f.Compilation, chain, eetest.Parse(t, "count"))
	require.NoError(t, err)
	param, ok := bound.(*binder.ExpressionStatement).Expr.(*binder.ParameterRef)
	require.True(t, ok)
	assert.Same(t, f.Method.Parameters()[0], param.Parameter)

	bound, err = binder.Bind(f.Compilation, chain, eetest.Parse(t, "total"))
	require.NoError(t, err)
	ref, ok = bound.(*binder.ExpressionStatement).Expr.(*binder.LocalRef)
	require.True(t, ok)
	assert.Same(t, f.Method.Locals()[0], ref.Local)

	bound, err = binder.Bind(f.Compilation, chain, eetest.Parse(t, "0x2a"))
	require.NoError(t, err)
	ref, ok = bound.(*binder.ExpressionStatement).Expr.(*binder.LocalRef)
	require.True(t, ok)
	p := ref.Local.(*symbols.PlaceholderLocal)
	addr, ok := p.Address()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), addr)
}

func TestBind_Conversions(t *testing.T) {
	f := eetest.NewFixture()
	bound, err := f.Bind(t, "count + total", nil)
	require.NoError(t, err)
	bin, ok := bound.(*binder.ExpressionStatement).Expr.(*binder.Binary)
	require.True(t, ok)
	assert.Equal(t, "long", bin.OperandType.String())
	assert.IsType(t, &binder.Conversion{}, bin.X)
	assert.IsType(t, &binder.LocalRef{}, bin.Y)

	bound, err = f.Bind(t, "long x = 1", nil)
	require.NoError(t, err)
	decl := bound.(*binder.LocalDeclaration)
	require.Len(t, decl.Declarators, 1)
	assert.IsType(t, &binder.Conversion{}, decl.Declarators[0].Initializer)
	assert.Equal(t, "long", decl.Declarators[0].Initializer.Type().String())
}

func TestBind_Declarations(t *testing.T) {
	f := eetest.NewFixture()
	tests := []struct {
		text  string
		types []string
	}{
		{"int a = 1, b = 2;", []string{"int", "int"}},
		{"int a = 1, b = a;", []string{"int", "int"}},
		{"long x;", []string{"long"}},
		{"var s = name + count", []string{"string"}},
		{"var w = $1", []string{"App.Widget"}},
		{"const int c = 1 + 2", []string{"int"}},
		{"const int a = 1, b = a * 2", []string{"int", "int"}},
		{"const string s = \"x\"", []string{"string"}},
		{"ref int r = count", []string{"int"}},
		{"ref long r = total", []string{"long"}},
		{"ref long r = myVar", []string{"long"}},
		{"string s = null", []string{"string"}},
		{"object o = 0x10", []string{"object"}},
		{"object o = count", []string{"object"}},
		{"double d = total", []string{"double"}},
		{"Exception e = $exception", []string{"System.Exception"}},
		{"System.Exception e = $stowedexception", []string{"System.Exception"}},
		{"App.Widget w = widget", []string{"App.Widget"}},
		{"App.Widget[] ws = null", []string{"App.Widget[]"}},
		{"List<int> l = items", []string{"List<int>"}},
		{"Dictionary<string, List<long>> d = null", []string{"Dictionary<string, List<long>>"}},
		{"System.Collections.Generic.List<App.Widget> l = null", []string{"List<App.Widget>"}},
		{"Int32 i = count", []string{"int"}},
		{"int total = 1", []string{"int"}},
		{"string count = \"shadowed\"", []string{"string"}},
	}
	for _, test := range tests {
		bound, err := f.Bind(t, test.text, eetest.Aliases())
		require.NoError(t, err, test.text)
		decl, ok := bound.(*binder.LocalDeclaration)
		require.True(t, ok, test.text)
		require.Len(t, decl.Declarators, len(test.types), test.text)
		for i, typ := range test.types {
			local := decl.Declarators[i].Local
			require.NotNil(t, local.Type(), test.text)
			assert.Equal(t, typ, local.Type().String(), test.text)
		}
	}
}

func TestBind_DeclaredLocalsAreScopeLocals(t *testing.T) {
	f := eetest.NewFixture()
	stmt := eetest.Parse(t, "int a = 1, b = 2;")
	chain, scope := f.Chain(t, stmt, eetest.Aliases())
	bound, err := binder.Bind(f.Compilation, chain, stmt)
	require.NoError(t, err)
	decl := bound.(*binder.LocalDeclaration)
	n := len(eetest.Aliases())
	for i, d := range decl.Declarators {
		assert.Same(t, scope.Locals().At(n+i), d.Local)
		assert.True(t, d.Local.IsDeclaredInStatement())
	}

	// A statement local shadows the frame local of the same name.
	stmt = eetest.Parse(t, "int total = 1")
	chain, _ = f.Chain(t, stmt, nil)
	res := chain.Lookup(binder.LookupRequest{Name: "total"})
	require.True(t, res.IsViable())
	local, ok := res.Symbol().(*symbols.SourceLocal)
	require.True(t, ok)
	assert.True(t, local.IsDeclaredInStatement())
}

func TestBind_Diagnostics(t *testing.T) {
	f := eetest.NewFixture()
	aliases := append(eetest.Aliases(),
		alias.Descriptor{Name: "$2", Kind: alias.ObjectID, Type: "App.Missing, App"})
	tests := []struct {
		text string
		code string
	}{
		{"nope", binder.ErrNameNotFound},
		{"Count", binder.ErrNameNotFound},
		{"System", binder.ErrNameNotFound},
		{"retry", binder.ErrNameNotFound},
		{"$RETURNVALUE", binder.ErrNameNotFound},
		{"$Exception", binder.ErrNameNotFound},
		{"$2", binder.ErrTypeNotFound},
		{"$2 + 1", binder.ErrTypeNotFound},
		{"int a = a", binder.ErrUseBeforeDeclaration},
		{"int a = b, b = 1", binder.ErrUseBeforeDeclaration},
		{"int a = 1, a = 2", binder.ErrLocalRedeclared},
		{"int myVar = 1", binder.ErrLocalRedeclared},
		{"object $1 = null", binder.ErrLocalRedeclared},
		{"const int c", binder.ErrConstWithoutValue},
		{"const int c = count", binder.ErrNotConstant},
		{"const long c = total", binder.ErrNotConstant},
		{"ref int r", binder.ErrRefWithoutValue},
		{"ref int r = 1", binder.ErrRefToValue},
		{"ref int r = count + 1", binder.ErrRefToValue},
		{"ref int r = $ReturnValue", binder.ErrRefNotAssignable},
		{"ref object o = $exception", binder.ErrRefNotAssignable},
		{"ref int r = total", binder.ErrRefTypeMismatch},
		{"int x = \"s\"", binder.ErrNoConversion},
		{"int x = total", binder.ErrNoConversion},
		{"App.Widget w = $exception", binder.ErrNoConversion},
		{"App.NotFoundException e = $stowedexception", binder.ErrNoConversion},
		{"int x = null", binder.ErrNoConversion},
		{"const var c = 1", binder.ErrImplicitConst},
		{"var v", binder.ErrImplicitUninit},
		{"var v = null", binder.ErrImplicitNull},
		{"!count", binder.ErrBadUnaryOperand},
		{"-name", binder.ErrBadUnaryOperand},
		{"-$1", binder.ErrBadUnaryOperand},
		{"count && true", binder.ErrBadBinaryOperands},
		{"name - 1", binder.ErrBadBinaryOperands},
		{"count == null", binder.ErrBadBinaryOperands},
		{"count == name", binder.ErrBadBinaryOperands},
		{"widget == name", binder.ErrBadBinaryOperands},
		{"9223372036854775808 + count", binder.ErrBadBinaryOperands},
		{"Widget w = null", binder.ErrTypeNotFound},
		{"Nope x = null", binder.ErrTypeNotFound},
		{"List<Nope> x = null", binder.ErrTypeNotFound},
		{"App.Nope x = null", binder.ErrNotInNamespace},
		{"System x = null", binder.ErrWrongSymbolKind},
		{"List x = null", binder.ErrGenericArity},
		{"List<int, int> x = null", binder.ErrGenericArity},
		{"App<int> x = null", binder.ErrBadArity},
		{"App.Widget.Inner x = null", binder.ErrNestedType},
	}
	for _, test := range tests {
		_, err := f.Bind(t, test.text, aliases)
		require.Error(t, err, test.text)
		var diags binder.Diagnostics
		require.ErrorAs(t, err, &diags, test.text)
		assert.True(t, diags.HasCode(test.code), "%s: %v", test.text, err)
	}
}

func TestBind_DiagnosticReportedOnce(t *testing.T) {
	f := eetest.NewFixture()
	_, err := f.Bind(t, "(nope + 1) * -nope", nil)
	var diags binder.Diagnostics
	require.ErrorAs(t, err, &diags)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, binder.ErrNameNotFound, d.Code)
		assert.Equal(t, 4, d.Width)
	}
	assert.Equal(t, 2, diags[0].Source.Col)
	assert.Equal(t, 15, diags[1].Source.Col)
	assert.Contains(t, diags[0].Error(), "error CS0103: The name 'nope' does not exist in the current context")
}

func TestBind_Ambiguous(t *testing.T) {
	f := eetest.NewFixture()
	f.Compilation.DefineType("Other", "Exception", 0, nil)
	stmt := eetest.Parse(t, "Exception e = null")
	ns, err := binder.NewNamespaceScope(f.Compilation, []string{"System", "Other"})
	require.NoError(t, err)
	chain := binder.NewChain(f.Scope(stmt, nil), binder.NewMethodScope(f.Method), ns)
	_, err = binder.Bind(f.Compilation, chain, stmt)
	var diags binder.Diagnostics
	require.ErrorAs(t, err, &diags)
	assert.True(t, diags.HasCode(binder.ErrAmbiguous), err.Error())
	assert.Contains(t, err.Error(), "'System.Exception' and 'Other.Exception'")

	// Qualification resolves the ambiguity.
	stmt = eetest.Parse(t, "Other.Exception e = null")
	chain = binder.NewChain(f.Scope(stmt, nil), binder.NewMethodScope(f.Method), ns)
	_, err = binder.Bind(f.Compilation, chain, stmt)
	assert.NoError(t, err)
}
