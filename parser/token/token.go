// Copyright © 2018 The ELPS authors

// Package token defines the tokens produced by the debugger statement lexer
// and the source locations attached to them.
package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek returns a token of type EOF.
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

func (tok *Token) String() string {
	if tok == nil {
		return "<nil>"
	}
	if tok.Type == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

type Type uint

// Type constants used for the statement lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Names & literals
	IDENT
	INT
	FLOAT
	STRING
	ADDRESS // 0x prefixed hexadecimal literal naming an object address

	// Keywords
	CONST
	REF
	TRUE
	FALSE
	NULL

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	ASSIGN
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	AND
	OR

	// Delimiters
	PAREN_L
	PAREN_R
	BRACKET_L
	BRACKET_R
	COMMA
	DOT
	SEMICOLON

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:   "invalid",
		ERROR:     "error",
		EOF:       "EOF",
		IDENT:     "identifier",
		INT:       "int",
		FLOAT:     "float",
		STRING:    "string",
		ADDRESS:   "address",
		CONST:     "const",
		REF:       "ref",
		TRUE:      "true",
		FALSE:     "false",
		NULL:      "null",
		PLUS:      "+",
		MINUS:     "-",
		STAR:      "*",
		SLASH:     "/",
		PERCENT:   "%",
		BANG:      "!",
		ASSIGN:    "=",
		EQ:        "==",
		NEQ:       "!=",
		LT:        "<",
		LTE:       "<=",
		GT:        ">",
		GTE:       ">=",
		AND:       "&&",
		OR:        "||",
		PAREN_L:   "(",
		PAREN_R:   ")",
		BRACKET_L: "[",
		BRACKET_R: "]",
		COMMA:     ",",
		DOT:       ".",
		SEMICOLON: ";",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Keywords maps reserved words to their token types.  Type keywords such as
// int and string are plain identifiers resolved during binding.
var Keywords = map[string]Type{
	"const": CONST,
	"ref":   REF,
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

type Location struct {
	File string // a name representing the source stream
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc == nil:
		return "<unknown>"
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
