// Copyright © 2018 The ELPS authors

package symbols

import (
	"fmt"
	"strings"

	"github.com/luthersystems/eescope/parser/typename"
)

// TypeNameDecoder maps the serialized type name of a debugger alias to a
// type symbol.  Decoding never fails: a name that cannot be decoded yields
// an error type which is reported when the alias is used.
type TypeNameDecoder interface {
	DecodeTypeName(name string) *TypeSymbol
}

// CompilationDecoder decodes type names against the types of a compilation.
type CompilationDecoder struct {
	c *Compilation
}

var _ TypeNameDecoder = (*CompilationDecoder)(nil)

// NewTypeNameDecoder returns a decoder resolving names in c.
func NewTypeNameDecoder(c *Compilation) *CompilationDecoder {
	return &CompilationDecoder{c: c}
}

// DecodeTypeName implements TypeNameDecoder.  Besides serialized metadata
// names it accepts the language keywords for special types, e.g. "int".
func (d *CompilationDecoder) DecodeTypeName(name string) *TypeSymbol {
	text := strings.TrimSpace(name)
	if text == "" {
		return NewErrorType(name, "missing type name")
	}
	if t := d.c.KeywordType(text); t != nil {
		return t
	}
	parsed, err := typename.Parse(text)
	if err != nil {
		return NewErrorType(name, err.Error())
	}
	t, err := d.resolve(parsed)
	if err != nil {
		return NewErrorType(name, err.Error())
	}
	return t
}

func (d *CompilationDecoder) resolve(n *typename.Name) (*TypeSymbol, error) {
	var def *TypeSymbol
	if n.Namespace == "" && n.Arity == 0 {
		def = d.c.KeywordType(n.Name)
	}
	if def == nil {
		def = d.c.GetTypeByMetadataName(n.MetadataName())
	}
	if def == nil {
		return nil, fmt.Errorf("type %s not found", n.MetadataName())
	}
	t := def
	if len(n.TypeArgs) > 0 {
		args := make([]*TypeSymbol, len(n.TypeArgs))
		for i, arg := range n.TypeArgs {
			var err error
			args[i], err = d.resolve(arg)
			if err != nil {
				return nil, err
			}
		}
		t = def.Construct(args...)
	}
	for _, rank := range n.ArrayRanks {
		if rank != 1 {
			return nil, fmt.Errorf("array of rank %d is not supported", rank)
		}
		t = d.c.ArrayOf(t)
	}
	return t, nil
}
