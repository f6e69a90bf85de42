// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/eescope/parser/token"
)

// TokenSource is a token.Source over a fully lexed statement.  Because
// debugger statements are short the whole token slice is kept in memory,
// which lets the parser backtrack when a statement turns out not to be a
// declaration.
type TokenSource struct {
	toks []*token.Token
	pos  int // index of the next token returned by Scan
	tok  *token.Token
}

var _ token.Source = (*TokenSource)(nil)

// NewTokenSource returns a TokenSource reading toks, which must end with an
// EOF token.
func NewTokenSource(toks []*token.Token) *TokenSource {
	return &TokenSource{toks: toks}
}

// Token implements token.Source.
func (src *TokenSource) Token() *token.Token {
	return src.tok
}

// Peek implements token.Source.
func (src *TokenSource) Peek() *token.Token {
	if src.pos >= len(src.toks) {
		return src.toks[len(src.toks)-1]
	}
	return src.toks[src.pos]
}

// Scan implements token.Source.
func (src *TokenSource) Scan() bool {
	if src.pos >= len(src.toks) {
		return false
	}
	src.tok = src.toks[src.pos]
	src.pos++
	return src.tok.Type != token.EOF
}

// IsEOF returns true if the next token is EOF.
func (src *TokenSource) IsEOF() bool {
	return src.Peek().Type == token.EOF
}

// Accept scans the next token if it has type typ.
func (src *TokenSource) Accept(typ token.Type) bool {
	if src.Peek().Type != typ {
		return false
	}
	src.Scan()
	return true
}

// Mark returns a position that can later be passed to Reset.
func (src *TokenSource) Mark() int {
	return src.pos
}

// Reset rewinds the source to a position returned by Mark.
func (src *TokenSource) Reset(mark int) {
	src.pos = mark
	src.tok = nil
	if mark > 0 {
		src.tok = src.toks[mark-1]
	}
}
