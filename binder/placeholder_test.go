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

func TestPlaceholderScope_Locals(t *testing.T) {
	f := eetest.NewFixture()
	aliases := eetest.Aliases()
	stmt := eetest.Parse(t, "const long a = 1, b = 2;")
	scope := f.Scope(stmt, aliases)

	locals := scope.Locals()
	require.Equal(t, len(aliases)+2, locals.Len())
	for i, a := range aliases {
		p, ok := locals.At(i).(*symbols.PlaceholderLocal)
		require.True(t, ok, "local %d is %T", i, locals.At(i))
		assert.Equal(t, a.Name, p.Name())
		assert.Same(t, f.Method, p.ContainingMethod())
	}
	for i, name := range []string{"a", "b"} {
		l, ok := locals.At(len(aliases) + i).(*symbols.SourceLocal)
		require.True(t, ok)
		assert.Equal(t, name, l.Name())
		assert.Equal(t, symbols.LocalConstant, l.DeclarationKind())
		assert.Equal(t, symbols.RefNone, l.RefKind())
		assert.Equal(t, "long", l.TypeSyntax().String())
		assert.NotNil(t, l.Initializer())
		assert.Nil(t, l.Type())
	}
	assert.Len(t, scope.Placeholders(), len(aliases))
}

func TestPlaceholderScope_DeclarationFlags(t *testing.T) {
	f := eetest.NewFixture()
	tests := []struct {
		text    string
		names   []string
		kind    symbols.LocalDeclarationKind
		refKind symbols.RefKind
	}{
		{"int a = 1, b = 2;", []string{"a", "b"}, symbols.LocalRegularVariable, symbols.RefNone},
		{"const int c = 3", []string{"c"}, symbols.LocalConstant, symbols.RefNone},
		{"ref int r = count;", []string{"r"}, symbols.LocalRegularVariable, symbols.RefRef},
		{"const ref int x = 1, y", []string{"x", "y"}, symbols.LocalConstant, symbols.RefRef},
	}
	for _, test := range tests {
		scope := f.Scope(eetest.Parse(t, test.text), nil)
		locals := scope.Locals()
		require.Equal(t, len(test.names), locals.Len(), test.text)
		for i, name := range test.names {
			l := locals.At(i)
			assert.Equal(t, name, l.Name(), test.text)
			assert.Equal(t, test.kind, l.DeclarationKind(), test.text)
			assert.Equal(t, test.refKind, l.RefKind(), test.text)
		}
	}

	for _, text := range []string{"a + 1", "$exception", "0x10"} {
		scope := f.Scope(eetest.Parse(t, text), eetest.Aliases())
		assert.Equal(t, len(eetest.Aliases()), scope.Locals().Len(), text)
	}
}

func TestPlaceholderScope_ReturnValueIndex(t *testing.T) {
	f := eetest.NewFixture()
	aliases := []alias.Descriptor{
		{Name: "ReturnValue", Kind: alias.ReturnValue, Type: "System.Int32"},
		{Name: "$returnvalue", Kind: alias.ReturnValue, Type: "System.Int32"},
		{Name: "$ReturnValue3", Kind: alias.ReturnValue, Type: "System.String"},
		{Name: "Ex", Kind: alias.Exception, Type: "System.Exception"},
		{Name: "OBJ", Kind: alias.ObjectID, Type: "System.Object"},
		{Name: "Var", Kind: alias.Variable, Type: "System.Int32"},
	}
	scope := f.Scope(eetest.Parse(t, "x"), aliases)

	tests := []struct {
		name  string
		found string
	}{
		// mixed case return value alias reached by its lowercase spelling
		{"returnvalue", "ReturnValue"},
		// all-lowercase alias reached by its own name
		{"$returnvalue", "$returnvalue"},
		{"$returnvalue3", "$ReturnValue3"},
		// only the exact lowercase spelling is indexed
		{"ReturnValue", ""},
		{"RETURNVALUE", ""},
		{"$ReturnValue3", ""},
		// other kinds are never indexed
		{"ex", ""},
		{"Ex", ""},
		{"obj", ""},
		{"var", ""},
	}
	for _, test := range tests {
		result := binder.NewLookupResult()
		res := scope.ResolveSpecial(result, binder.LookupRequest{Name: test.name})
		if test.found == "" {
			assert.Equal(t, binder.Declined, res, test.name)
			assert.True(t, result.IsClear(), test.name)
			continue
		}
		assert.Equal(t, binder.Claimed, res, test.name)
		require.True(t, result.IsViable(), test.name)
		require.Len(t, result.Symbols(), 1, test.name)
		assert.Equal(t, test.found, result.Symbol().Name(), test.name)
	}
}

func TestPlaceholderScope_ReturnValueCollision(t *testing.T) {
	f := eetest.NewFixture()
	aliases := []alias.Descriptor{
		{Name: "$ReturnValue", Kind: alias.ReturnValue, Type: "System.Int32"},
		{Name: "$RETURNVALUE", Kind: alias.ReturnValue, Type: "System.String"},
	}
	scope := f.Scope(eetest.Parse(t, "x"), aliases)
	result := binder.NewLookupResult()
	assert.Equal(t, binder.Claimed, scope.ResolveSpecial(result, binder.LookupRequest{Name: "$returnvalue"}))
	require.Len(t, result.Symbols(), 1)
	assert.Same(t, scope.Placeholders()[0], result.Symbol())
}

func TestPlaceholderScope_Address(t *testing.T) {
	f := eetest.NewFixture()
	scope := f.Scope(eetest.Parse(t, "0x10"), nil)
	tests := []struct {
		name    string
		address uint64
	}{
		{"0x10", 16},
		{"0XFF", 255},
		{"0xdeadBEEF", 0xdeadbeef},
		{"0x0000000000000000ffffffffffffffff", 0xffffffffffffffff},
		{"0x0", 0},
	}
	for _, test := range tests {
		result := binder.NewLookupResult()
		res := scope.ResolveSpecial(result, binder.LookupRequest{Name: test.name})
		assert.Equal(t, binder.Claimed, res, test.name)
		require.True(t, result.IsViable(), test.name)
		require.Len(t, result.Symbols(), 1, test.name)
		p, ok := result.Symbol().(*symbols.PlaceholderLocal)
		require.True(t, ok, test.name)
		assert.Equal(t, symbols.PlaceholderObjectAddress, p.PlaceholderKind(), test.name)
		assert.Equal(t, test.address, p.Payload(), test.name)
		assert.Equal(t, test.name, p.Name(), test.name)
		assert.Same(t, f.Compilation.ObjectType(), p.Type(), test.name)
	}

	// Address placeholders are created per lookup but merge as one.
	result := binder.NewLookupResult()
	scope.ResolveSpecial(result, binder.LookupRequest{Name: "0x10"})
	scope.ResolveSpecial(result, binder.LookupRequest{Name: "0x0010"})
	assert.Len(t, result.Symbols(), 1)

	// Type arguments make the candidate non-viable.
	result = binder.NewLookupResult()
	scope.ResolveSpecial(result, binder.LookupRequest{Name: "0x10", Arity: 1})
	assert.Equal(t, binder.ResultWrongArity, result.Kind())
}

func TestPlaceholderScope_MalformedAddress(t *testing.T) {
	f := eetest.NewFixture()
	scope := f.Scope(eetest.Parse(t, "x"), nil)
	for _, name := range []string{"0x", "0xZZ", "0x1ffffffffffffffff", "0x_1"} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r, name)
				err, ok := r.(*symbols.UnexpectedValueError)
				require.True(t, ok, "%s: panic value %#v", name, r)
				assert.Equal(t, name, err.Value)
			}()
			scope.ResolveSpecial(binder.NewLookupResult(), binder.LookupRequest{Name: name})
		}()
	}
}

func TestPlaceholderScope_OptionFiltering(t *testing.T) {
	f := eetest.NewFixture()
	aliases := []alias.Descriptor{
		{Name: "ReturnValue", Kind: alias.ReturnValue, Type: "System.Int32"},
		{Name: "x", Kind: alias.Variable, Type: "System.Int32"},
	}
	scope := f.Scope(eetest.Parse(t, "int y = 1"), aliases)
	options := []binder.LookupOptions{
		binder.NamespaceAliasesOnly,
		binder.NamespacesOrTypesOnly,
		binder.LabelsOnly,
		binder.NamespacesOrTypesOnly | binder.MustNotBeLocal,
	}
	for _, opt := range options {
		for _, name := range []string{"0x10", "returnvalue", "x", "y", "0xZZ"} {
			result := binder.NewLookupResult()
			res := scope.ResolveSpecial(result, binder.LookupRequest{Name: name, Options: opt})
			assert.Equal(t, binder.Skipped, res, "%s %v", name, opt)
			assert.True(t, result.IsClear(), "%s %v", name, opt)
		}
	}

	// The scope does not consult MustNotBeLocal.
	result := binder.NewLookupResult()
	res := scope.ResolveSpecial(result, binder.LookupRequest{Name: "0x10", Options: binder.MustNotBeLocal})
	assert.Equal(t, binder.Claimed, res)
	assert.True(t, result.IsViable())
}

func TestPlaceholderScope_LookupSymbolsInfo(t *testing.T) {
	f := eetest.NewFixture()
	stmt := eetest.Parse(t, "int a = 1")
	chain, scope := f.Chain(t, stmt, eetest.Aliases())

	for _, opt := range []binder.LookupOptions{binder.LookupDefault, binder.NamespacesOrTypesOnly, binder.LabelsOnly} {
		err := scope.AddLookupSymbolsInfo(binder.NewLookupSymbolsInfo(), opt)
		assert.ErrorIs(t, err, binder.ErrLookupSymbolsNotSupported)

		info, err := chain.LookupSymbolsInfo(opt)
		assert.ErrorIs(t, err, binder.ErrLookupSymbolsNotSupported)
		assert.Nil(t, info)
	}

	// Without the placeholder scope the remaining scopes enumerate.
	ns, err := binder.NewNamespaceScope(f.Compilation, f.Usings)
	require.NoError(t, err)
	info, err := binder.NewChain(binder.NewMethodScope(f.Method), ns).LookupSymbolsInfo(binder.LookupDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "items", "name", "total", "widget"}, info.Names())
}

func TestPlaceholderScope_UndecodableType(t *testing.T) {
	f := eetest.NewFixture()
	aliases := []alias.Descriptor{
		{Name: "$1", Kind: alias.ObjectID, Type: "App.Missing, App"},
		{Name: "$2", Kind: alias.ObjectID, Type: "not [a type"},
	}
	scope := f.Scope(eetest.Parse(t, "$1"), aliases)
	for _, p := range scope.Placeholders() {
		assert.True(t, p.Type().IsError(), p.Name())
	}
}

func TestPlaceholderScope_UnknownAliasKind(t *testing.T) {
	f := eetest.NewFixture()
	aliases := []alias.Descriptor{{Name: "$x", Kind: alias.Kind(42), Type: "System.Int32"}}
	assert.PanicsWithValue(t, symbols.UnexpectedValue(alias.Kind(42)), func() {
		f.Scope(eetest.Parse(t, "$x"), aliases)
	})
}
