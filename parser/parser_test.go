// Copyright © 2024 The ELPS authors

package parser

import (
	"testing"

	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement(t *testing.T) {
	stmt, err := ParseStatement("console", "int a = 1, b = 2;")
	require.NoError(t, err)
	decl, ok := stmt.(*syntax.LocalDeclarationStatement)
	require.True(t, ok)
	require.Len(t, decl.Declaration.Variables, 2)
	assert.Equal(t, "console", decl.Pos().File)

	stmt, err = ParseStatement("console", "$exception")
	require.NoError(t, err)
	assert.IsType(t, &syntax.ExpressionStatement{}, stmt)
}

func TestParseStatement_LexError(t *testing.T) {
	_, err := ParseStatement("console", "0x1ffffffffffffffff")
	require.Error(t, err)
	var locErr *token.LocationError
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, 1, locErr.Source.Col)
	assert.Contains(t, err.Error(), "does not fit in 64 bits")
}

func TestParseExpression(t *testing.T) {
	x, err := ParseExpression("hover", "a + 0xff")
	require.NoError(t, err)
	bin, ok := x.(*syntax.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op.Text)

	_, err = ParseExpression("hover", "int a = 1")
	assert.Error(t, err)
}
