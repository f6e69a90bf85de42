// Copyright © 2018 The ELPS authors

/*
Package typename parses serialized type names as a debugger reports them for
alias values.

	qualified := simple (',' assembly (',' assembly)*)?
	simple    := name arity? typeargs? array*
	typeargs  := '[' typearg (',' typearg)* ']'
	typearg   := '[' qualified ']' | simple
	array     := '[' ','* ']'

For example:

	System.Collections.Generic.List`1[[System.Int32, mscorlib]], mscorlib
*/
package typename

import (
	"fmt"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// Name is a parsed type name.
type Name struct {
	Namespace string
	Name      string
	// Arity is the generic arity written after the backtick, or the number
	// of type arguments when no arity was written.
	Arity    int
	TypeArgs []*Name
	// ArrayRanks lists one rank per array suffix, innermost first.
	ArrayRanks []int
	Assembly   string
}

// MetadataName returns the namespace qualified definition name with its
// arity suffix, e.g. "System.Collections.Generic.List`1".
func (n *Name) MetadataName() string {
	var b strings.Builder
	if n.Namespace != "" {
		b.WriteString(n.Namespace)
		b.WriteString(".")
	}
	b.WriteString(n.Name)
	if n.Arity > 0 {
		fmt.Fprintf(&b, "`%d", n.Arity)
	}
	return b.String()
}

func (n *Name) String() string {
	var b strings.Builder
	b.WriteString(n.MetadataName())
	if len(n.TypeArgs) > 0 {
		b.WriteString("[")
		for i, arg := range n.TypeArgs {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("[" + arg.String() + "]")
		}
		b.WriteString("]")
	}
	for _, rank := range n.ArrayRanks {
		b.WriteString("[" + strings.Repeat(",", rank-1) + "]")
	}
	if n.Assembly != "" {
		b.WriteString(", " + n.Assembly)
	}
	return b.String()
}

// Parse parses a serialized type name.
func Parse(text string) (*Name, error) {
	s := parsec.NewScanner([]byte(text))
	root, s := typeNameParser(s)
	if root == nil {
		return nil, fmt.Errorf("invalid type name %q", text)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		return nil, fmt.Errorf("invalid type name %q: unexpected text at offset %d", text, s.GetCursor())
	}
	name, ok := root.(*Name)
	if !ok {
		return nil, fmt.Errorf("invalid type name %q", text)
	}
	if err := name.validate(); err != nil {
		return nil, fmt.Errorf("invalid type name %q: %w", text, err)
	}
	return name, nil
}

func (n *Name) validate() error {
	if len(n.TypeArgs) > 0 && n.Arity != len(n.TypeArgs) {
		return fmt.Errorf("%s declares arity %d but has %d type arguments", n.Name, n.Arity, len(n.TypeArgs))
	}
	for _, arg := range n.TypeArgs {
		if err := arg.validate(); err != nil {
			return err
		}
	}
	return nil
}

var typeNameParser = newParser()

// intermediate parse results produced by the nodify callbacks.
type (
	typeArgList  []*Name
	arrayRank    int
	assemblyName []string
)

func newParser() parsec.Parser {
	openB := parsec.Atom("[", "OPENB")
	closeB := parsec.Atom("]", "CLOSEB")
	comma := parsec.Atom(",", "COMMA")
	ident := parsec.Token(`[\pL_$<>][\pL\pN_$<>+]*(?:\.[\pL_$<>][\pL\pN_$<>+]*)*`, "NAME")
	arity := parsec.Token("`[0-9]+", "ARITY")
	assemblyPart := parsec.Token(`[^\[\],]+`, "ASSEMBLY")

	var qualified parsec.Parser // forward declarations allow recursive parsing
	var simple parsec.Parser
	fullName := parsec.And(nodifyFullName, ident, parsec.Maybe(nil, arity))
	bracketed := parsec.And(nodifyBracketed, openB, &qualified, closeB)
	typeArg := parsec.OrdChoice(nil, bracketed, &simple)
	typeArgs := parsec.And(nodifyTypeArgs,
		openB,
		typeArg,
		parsec.Kleene(nil, parsec.And(nil, comma, typeArg)),
		closeB,
	)
	array := parsec.And(nodifyArray, openB, parsec.Kleene(nil, comma), closeB)
	simple = parsec.And(nodifySimple, fullName, parsec.Maybe(nil, typeArgs), parsec.Kleene(nil, array))
	assembly := parsec.And(nodifyAssembly,
		comma,
		assemblyPart,
		parsec.Kleene(nil, parsec.And(nil, comma, assemblyPart)),
	)
	qualified = parsec.And(nodifyQualified, &simple, parsec.Maybe(nil, assembly))
	return qualified
}

// flatten removes the nesting introduced by combinators without callbacks.
func flatten(nodes []parsec.ParsecNode) []parsec.ParsecNode {
	var flat []parsec.ParsecNode
	for _, n := range nodes {
		switch n := n.(type) {
		case nil:
		case []parsec.ParsecNode:
			flat = append(flat, flatten(n)...)
		default:
			flat = append(flat, n)
		}
	}
	return flat
}

func nodifyFullName(nodes []parsec.ParsecNode) parsec.ParsecNode {
	name := &Name{}
	for _, n := range flatten(nodes) {
		term, ok := n.(*parsec.Terminal)
		if !ok {
			continue
		}
		switch term.Name {
		case "NAME":
			if i := strings.LastIndexByte(term.Value, '.'); i >= 0 {
				name.Namespace, name.Name = term.Value[:i], term.Value[i+1:]
			} else {
				name.Name = term.Value
			}
		case "ARITY":
			name.Arity, _ = strconv.Atoi(term.Value[1:])
		}
	}
	return name
}

func nodifyBracketed(nodes []parsec.ParsecNode) parsec.ParsecNode {
	for _, n := range flatten(nodes) {
		if name, ok := n.(*Name); ok {
			return name
		}
	}
	return nil
}

func nodifyTypeArgs(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var args typeArgList
	for _, n := range flatten(nodes) {
		if name, ok := n.(*Name); ok {
			args = append(args, name)
		}
	}
	return args
}

func nodifyArray(nodes []parsec.ParsecNode) parsec.ParsecNode {
	rank := arrayRank(1)
	for _, n := range flatten(nodes) {
		if term, ok := n.(*parsec.Terminal); ok && term.Name == "COMMA" {
			rank++
		}
	}
	return rank
}

func nodifySimple(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var name *Name
	for _, n := range flatten(nodes) {
		switch n := n.(type) {
		case *Name:
			if name == nil {
				name = n
			}
		case typeArgList:
			name.TypeArgs = append(name.TypeArgs, n...)
		case arrayRank:
			name.ArrayRanks = append(name.ArrayRanks, int(n))
		}
	}
	if name != nil && name.Arity == 0 {
		name.Arity = len(name.TypeArgs)
	}
	return name
}

func nodifyAssembly(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var parts assemblyName
	for _, n := range flatten(nodes) {
		if term, ok := n.(*parsec.Terminal); ok && term.Name == "ASSEMBLY" {
			parts = append(parts, strings.TrimSpace(term.Value))
		}
	}
	return parts
}

func nodifyQualified(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var name *Name
	for _, n := range flatten(nodes) {
		switch n := n.(type) {
		case *Name:
			if name == nil {
				name = n
			}
		case assemblyName:
			if name != nil {
				name.Assembly = strings.Join(n, ", ")
			}
		}
	}
	return name
}
