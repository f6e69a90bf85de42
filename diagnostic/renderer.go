// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tabWidth is the number of columns a tab occupies in a snippet.
const tabWidth = 4

// Renderer formats diagnostics as annotated snippets of the expression text
// they refer to, e.g.
//
//	error[CS0103]: The name 'nope' does not exist in the current context
//	  --> <expr>:1:9
//	   |
//	 1 |  count + nope
//	   |          ^^^^
//	   |
type Renderer struct {
	// Color controls ANSI color output.  The zero value is ColorAuto.
	Color ColorMode

	// SourceReader returns the text a span refers to.  If nil, spans are
	// read from disk with os.ReadFile.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	return r.render(w, []Diagnostic{d})
}

// RenderAll writes all diagnostics to w separated by blank lines.  A source
// referenced by several diagnostics is read once.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	return r.render(w, diags)
}

func (r *Renderer) render(w io.Writer, diags []Diagnostic) error {
	s := &snippet{
		p:       choosePalette(r.Color, fileFromWriter(w)),
		read:    r.reader(),
		sources: make(map[string][]string),
	}
	for i, d := range diags {
		if i > 0 {
			s.b.WriteString("\n")
		}
		s.header(d)
		for _, span := range d.Spans {
			s.span(span)
		}
		for _, note := range d.Notes {
			fmt.Fprintf(&s.b, "   %s=%s note: %s\n", s.p.boldCyan, s.p.reset, note)
		}
	}
	_, err := io.WriteString(w, s.b.String())
	return err
}

func (r *Renderer) reader() func(string) ([]byte, error) {
	if r.SourceReader != nil {
		return r.SourceReader
	}
	return func(name string) ([]byte, error) {
		return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
	}
}

// snippet accumulates the output of one render call.
type snippet struct {
	b       strings.Builder
	p       palette
	read    func(string) ([]byte, error)
	sources map[string][]string
}

func (s *snippet) header(d Diagnostic) {
	color := s.p.boldRed
	switch d.Severity {
	case SeverityWarning:
		color = s.p.yellow
	case SeverityNote:
		color = s.p.boldCyan
	}
	label := d.Severity.String()
	if d.Code != "" {
		label += "[" + d.Code + "]"
	}
	fmt.Fprintf(&s.b, "%s%s%s%s: %s%s%s\n", color, s.p.bold, label, s.p.reset, s.p.bold, d.Message, s.p.reset)
}

func (s *snippet) span(span Span) {
	fmt.Fprintf(&s.b, "  %s-->%s %s\n", s.p.boldBlue, s.p.reset, location(span))

	text, ok := s.line(span.File, span.Line)
	if !ok {
		fmt.Fprintf(&s.b, "   %s|%s\n", s.p.boldBlue, s.p.reset)
		return
	}
	num := strconv.Itoa(span.Line)
	gutter := strings.Repeat(" ", len(num))

	col := span.Col
	if col <= 0 {
		col = 1
	}
	end := span.EndCol
	if end <= 0 {
		end = tokenEnd(text, col)
	}
	if end < col {
		end = col
	}

	fmt.Fprintf(&s.b, " %s%s |%s\n", s.p.boldBlue, gutter, s.p.reset)
	fmt.Fprintf(&s.b, " %s%s |%s  %s\n", s.p.boldBlue, num, s.p.reset, expandTabs(text))
	fmt.Fprintf(&s.b, " %s%s |%s  %s%s%s%s",
		s.p.boldBlue, gutter, s.p.reset,
		strings.Repeat(" ", columns(text, col)),
		s.p.boldRed, strings.Repeat("^", end-col+1), s.p.reset)
	if span.Label != "" {
		fmt.Fprintf(&s.b, " %s%s%s", s.p.boldRed, span.Label, s.p.reset)
	}
	s.b.WriteString("\n")
	fmt.Fprintf(&s.b, " %s%s |%s\n", s.p.boldBlue, gutter, s.p.reset)
}

// line returns the 1-based line of file.
func (s *snippet) line(file string, n int) (string, bool) {
	if n <= 0 || file == "" {
		return "", false
	}
	lines, ok := s.sources[file]
	if !ok {
		data, err := s.read(file)
		if err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		s.sources[file] = lines
	}
	if n > len(lines) || lines[n-1] == "" {
		return "", false
	}
	return lines[n-1], true
}

func location(span Span) string {
	switch {
	case span.Line <= 0:
		return span.File
	case span.Col <= 0:
		return fmt.Sprintf("%s:%d", span.File, span.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
	}
}

// tokenEnd returns the 1-based column of the last character of the
// expression token starting at col.  Names, numbers, addresses and aliases
// such as $ReturnValue2 extend over word characters; string and character
// literals extend to their closing quote; anything else is one character.
func tokenEnd(text string, col int) int {
	start := col - 1
	if start >= len(text) {
		return col
	}
	first, size := utf8.DecodeRuneInString(text[start:])
	end := start + size
	switch {
	case first == '"' || first == '\'':
		for end < len(text) {
			c, n := utf8.DecodeRuneInString(text[end:])
			end += n
			if c == '\\' && end < len(text) {
				_, n = utf8.DecodeRuneInString(text[end:])
				end += n
				continue
			}
			if c == first {
				break
			}
		}
	case isWordRune(first):
		for end < len(text) {
			c, n := utf8.DecodeRuneInString(text[end:])
			if !isWordRune(c) {
				break
			}
			end += n
		}
	}
	return utf8.RuneCountInString(text[:end])
}

func isWordRune(c rune) bool {
	return c == '_' || c == '$' || c == '.' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// columns returns the display width of text before col.
func columns(text string, col int) int {
	w := 0
	for i, c := range []rune(text) {
		if i >= col-1 {
			break
		}
		if c == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

func expandTabs(text string) string {
	return strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))
}

// fileFromWriter returns the file behind w, or nil, for terminal detection.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
