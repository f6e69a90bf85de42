// Copyright © 2018 The ELPS authors

package alias

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliasYAML = `
aliases:
  - name: $ReturnValue
    kind: return-value
    type: System.Int32, mscorlib
    value: 42
  - name: $exception
    kind: Exception
    type: System.Exception
  - name: $1
    full-name: "{App.Widget}"
    kind: object-id
    type: App.Widget
`

func TestLoad(t *testing.T) {
	aliases, err := Load(strings.NewReader(aliasYAML))
	require.NoError(t, err)
	require.Len(t, aliases, 3)
	assert.Equal(t, "$ReturnValue", aliases[0].Name)
	assert.Equal(t, ReturnValue, aliases[0].Kind)
	assert.Equal(t, 42, aliases[0].Payload)
	assert.Equal(t, Exception, aliases[1].Kind)
	assert.Nil(t, aliases[1].Payload)
	assert.Equal(t, ObjectID, aliases[2].Kind)
	assert.Equal(t, "{App.Widget}", aliases[2].FullName)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		doc string
		msg string
	}{
		{"aliases:\n  - name: x\n    kind: pointer\n", `unknown alias kind "pointer"`},
		{"aliases:\n  - kind: variable\n", "alias has no name"},
		{"aliases:\n  - name: x\n    color: red\n", "field color not found"},
	}
	for _, test := range tests {
		_, err := Load(strings.NewReader(test.doc))
		if assert.Error(t, err, test.doc) {
			assert.Contains(t, err.Error(), test.msg)
		}
	}
}

func TestLoad_Empty(t *testing.T) {
	aliases, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(aliasYAML), 0600))
	aliases, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, aliases, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{Exception, StowedException, ReturnValue, ObjectID, Variable} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Error(t, Descriptor{Name: "x", Kind: Kind(9)}.Validate())
}
