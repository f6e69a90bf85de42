// Copyright © 2018 The ELPS authors

// Package lexer splits debugger statement text into tokens.
//
// Address literals (0x followed by hexadecimal digits) are validated here:
// a literal that is not a well formed unsigned 64-bit hexadecimal numeral is
// reported as an ERROR token, so later stages may assume that every ADDRESS
// token parses.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/eescope/parser/token"
)

// maxAddressDigits is the number of significant hex digits in a 64-bit value.
const maxAddressDigits = 16

type Lexer struct {
	file string
	text string

	start     int // start of the current token
	pos       int // position of the next rune
	line      int
	lineStart int // byte offset of the current line
	startLine int
	startCol  int
}

func New(file string, text string) *Lexer {
	return &Lexer{
		file: file,
		text: text,
		line: 1,
	}
}

// Tokenize reads all tokens in text.  The returned slice always ends with an
// EOF token unless an error is returned.
func Tokenize(file string, text string) ([]*token.Token, error) {
	lex := New(file, text)
	var toks []*token.Token
	for {
		tok := lex.ReadToken()
		switch tok.Type {
		case token.ERROR, token.INVALID:
			return nil, &token.LocationError{
				Err:    fmt.Errorf("%s", tok.Text),
				Source: tok.Source,
			}
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// ReadToken returns the next token in the input.  After the input is
// exhausted ReadToken continues to return EOF tokens.
func (lex *Lexer) ReadToken() *token.Token {
	lex.skipWhitespace()
	lex.mark()
	c, ok := lex.next()
	if !ok {
		return lex.emit(token.EOF)
	}
	switch c {
	case '(':
		return lex.emit(token.PAREN_L)
	case ')':
		return lex.emit(token.PAREN_R)
	case '[':
		return lex.emit(token.BRACKET_L)
	case ']':
		return lex.emit(token.BRACKET_R)
	case ',':
		return lex.emit(token.COMMA)
	case ';':
		return lex.emit(token.SEMICOLON)
	case '+':
		return lex.emit(token.PLUS)
	case '-':
		return lex.emit(token.MINUS)
	case '*':
		return lex.emit(token.STAR)
	case '/':
		return lex.emit(token.SLASH)
	case '%':
		return lex.emit(token.PERCENT)
	case '.':
		if isDigit(lex.peek()) {
			return lex.readNumber(c)
		}
		return lex.emit(token.DOT)
	case '=':
		if lex.accept('=') {
			return lex.emit(token.EQ)
		}
		return lex.emit(token.ASSIGN)
	case '!':
		if lex.accept('=') {
			return lex.emit(token.NEQ)
		}
		return lex.emit(token.BANG)
	case '<':
		if lex.accept('=') {
			return lex.emit(token.LTE)
		}
		return lex.emit(token.LT)
	case '>':
		if lex.accept('=') {
			return lex.emit(token.GTE)
		}
		return lex.emit(token.GT)
	case '&':
		if lex.accept('&') {
			return lex.emit(token.AND)
		}
		return lex.errorf("unexpected character %q", c)
	case '|':
		if lex.accept('|') {
			return lex.emit(token.OR)
		}
		return lex.errorf("unexpected character %q", c)
	case '"':
		return lex.readString()
	}
	switch {
	case isDigit(c):
		return lex.readNumber(c)
	case isWordStart(c):
		return lex.readWord()
	}
	return lex.errorf("unexpected text starting with %q", c)
}

func (lex *Lexer) readWord() *token.Token {
	for isWordChar(lex.peek()) {
		lex.next()
	}
	if typ, ok := token.Keywords[lex.current()]; ok {
		return lex.emit(typ)
	}
	return lex.emit(token.IDENT)
}

func (lex *Lexer) readNumber(first rune) *token.Token {
	if first == '0' && (lex.peek() == 'x' || lex.peek() == 'X') {
		lex.next()
		return lex.readAddress()
	}
	typ := token.INT
	if first == '.' {
		typ = token.FLOAT
	}
	for isDigit(lex.peek()) {
		lex.next()
	}
	if typ == token.INT && lex.peek() == '.' && isDigit(lex.peekAt(1)) {
		typ = token.FLOAT
		lex.next()
		for isDigit(lex.peek()) {
			lex.next()
		}
	}
	if c := lex.peek(); c == 'e' || c == 'E' {
		typ = token.FLOAT
		lex.next()
		if c := lex.peek(); c == '+' || c == '-' {
			lex.next()
		}
		if !isDigit(lex.peek()) {
			return lex.errorf("malformed exponent in %q", lex.current())
		}
		for isDigit(lex.peek()) {
			lex.next()
		}
	}
	if isWordChar(lex.peek()) {
		return lex.errorf("invalid numeric literal %q", lex.current()+string(lex.peek()))
	}
	return lex.emit(typ)
}

// readAddress scans the digits of an address literal.  The 0x marker has
// already been consumed.
func (lex *Lexer) readAddress() *token.Token {
	digits := 0
	significant := 0
	for isHexDigit(lex.peek()) {
		c, _ := lex.next()
		digits++
		if significant > 0 || c != '0' {
			significant++
		}
	}
	if digits == 0 {
		return lex.errorf("address literal %q has no digits", lex.current())
	}
	if isWordChar(lex.peek()) {
		return lex.errorf("invalid address literal %q", lex.current()+string(lex.peek()))
	}
	if significant > maxAddressDigits {
		return lex.errorf("address literal %q does not fit in 64 bits", lex.current())
	}
	return lex.emit(token.ADDRESS)
}

func (lex *Lexer) readString() *token.Token {
	for {
		c, ok := lex.next()
		if !ok || c == '\n' {
			return lex.errorf("unterminated string literal")
		}
		switch c {
		case '"':
			return lex.emit(token.STRING)
		case '\\':
			if _, ok := lex.next(); !ok {
				return lex.errorf("unterminated string literal")
			}
		}
	}
}

func (lex *Lexer) skipWhitespace() {
	for unicode.IsSpace(lex.peek()) {
		lex.next()
	}
}

func (lex *Lexer) mark() {
	lex.start = lex.pos
	lex.startLine = lex.line
	lex.startCol = lex.pos - lex.lineStart + 1
}

func (lex *Lexer) current() string {
	return lex.text[lex.start:lex.pos]
}

func (lex *Lexer) next() (rune, bool) {
	if lex.pos >= len(lex.text) {
		return 0, false
	}
	c, n := utf8.DecodeRuneInString(lex.text[lex.pos:])
	lex.pos += n
	if c == '\n' {
		lex.line++
		lex.lineStart = lex.pos
	}
	return c, true
}

func (lex *Lexer) peek() rune {
	return lex.peekAt(0)
}

// peekAt returns the rune n runes past the current position, or -1.
func (lex *Lexer) peekAt(n int) rune {
	pos := lex.pos
	for {
		if pos >= len(lex.text) {
			return -1
		}
		c, size := utf8.DecodeRuneInString(lex.text[pos:])
		if n == 0 {
			return c
		}
		n--
		pos += size
	}
}

func (lex *Lexer) accept(c rune) bool {
	if lex.peek() != c {
		return false
	}
	lex.next()
	return true
}

func (lex *Lexer) location() *token.Location {
	return &token.Location{
		File: lex.file,
		Pos:  lex.start,
		Line: lex.startLine,
		Col:  lex.startCol,
	}
}

func (lex *Lexer) emit(typ token.Type) *token.Token {
	return &token.Token{
		Type:   typ,
		Text:   lex.current(),
		Source: lex.location(),
	}
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	// Skip to the next separator so a caller that keeps reading recovers at a
	// sensible place.
	for c := lex.peek(); c >= 0 && !unicode.IsSpace(c) && !strings.ContainsRune("();,", c); c = lex.peek() {
		lex.next()
	}
	return &token.Token{
		Type:   token.ERROR,
		Text:   fmt.Sprintf(format, v...),
		Source: lex.location(),
	}
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isWordStart(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c)
}

func isWordChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
