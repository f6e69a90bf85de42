// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled reading sources from
// memory.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color:        ColorNever,
		SourceReader: TextSource(sources),
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"<expr>": "count + nope",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "CS0103",
		Message:  "The name 'nope' does not exist in the current context",
		Spans: []Span{
			{File: "<expr>", Line: 1, Col: 9, EndCol: 12, Label: "not found"},
		},
	})
	assert.Contains(t, got, "error[CS0103]: The name 'nope' does not exist in the current context")
	assert.Contains(t, got, "--> <expr>:1:9")
	assert.Contains(t, got, "count + nope")
	assert.Contains(t, got, "        ^^^^ not found")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"watch.txt": "count\nint a = 1",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "local a shadows nothing",
		Spans:    []Span{{File: "watch.txt", Line: 2, Col: 5, EndCol: 5}},
	})
	assert.Contains(t, got, "warning: local a shadows nothing")
	assert.Contains(t, got, "--> watch.txt:2:5")
	assert.Contains(t, got, "int a = 1")
	assert.NotContains(t, got, "count")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "<stdin>", Line: 5, Col: 3}},
	})
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"<expr>": "1 / (count - 3)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "attempted to divide by zero",
		Spans:    []Span{{File: "<expr>", Line: 1, Col: 1}},
		Notes: []string{
			"in App.Program.Run(int, string) at Program.cs:12",
		},
	})
	assert.Contains(t, got, "= note: in App.Program.Run(int, string) at Program.cs:12")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"<expr>": "widget + 1",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "bad operand",
		Spans:    []Span{{File: "<expr>", Line: 1, Col: 1}},
	})
	assert.Contains(t, got, "^^^^^^\n")
	assert.NotContains(t, got, "^^^^^^^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"<expr>": "(a + b) * c",
	})
	diags := []Diagnostic{
		{
			Severity: SeverityError,
			Code:     "CS0103",
			Message:  "The name 'a' does not exist in the current context",
			Spans:    []Span{{File: "<expr>", Line: 1, Col: 2, EndCol: 2}},
		},
		{
			Severity: SeverityError,
			Code:     "CS0103",
			Message:  "The name 'c' does not exist in the current context",
			Spans:    []Span{{File: "<expr>", Line: 1, Col: 11, EndCol: 11}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	got := buf.String()
	assert.GreaterOrEqual(t, len(strings.Split(got, "\n\n")), 2, got)
	assert.Contains(t, got, "The name 'a'")
	assert.Contains(t, got, "The name 'c'")
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "no frame with id 4",
	})
	assert.Equal(t, "error: no frame with id 4\n", got)
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityNote, Message: "hello"})
	assert.Contains(t, got, "\033[")
	assert.Contains(t, got, "note")
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "note", SeverityNote.String())
	assert.Equal(t, "unknown", Severity(9).String())
}

func TestTextSource(t *testing.T) {
	read := TextSource(map[string]string{"a": "x"})
	b, err := read("a")
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
	_, err = read("b")
	assert.Error(t, err)
}

func TestRenderTokenEnd(t *testing.T) {
	tests := []struct {
		text  string
		col   int
		caret string
	}{
		{`name == "a b" + x`, 9, "        ^^^^^\n"},
		{`id / 0`, 4, "   ^\n"},
		{`$ReturnValue2 + 1`, 1, "^^^^^^^^^^^^^\n"},
		{`last == 0x1000`, 9, "        ^^^^^^\n"},
		{`'\'' + c`, 1, "^^^^\n"},
	}
	for _, test := range tests {
		r := testRenderer(map[string]string{"<expr>": test.text})
		got := render(t, r, Diagnostic{
			Severity: SeverityError,
			Message:  "bad operand",
			Spans:    []Span{{File: "<expr>", Line: 1, Col: test.col}},
		})
		assert.Contains(t, got, " |  "+test.caret, test.text)
	}
}

func TestRenderAllReadsSourceOnce(t *testing.T) {
	reads := 0
	r := &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			reads++
			return []byte("a + b\r\n"), nil
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, []Diagnostic{
		{Message: "first", Spans: []Span{{File: "<expr>", Line: 1, Col: 1}}},
		{Message: "second", Spans: []Span{{File: "<expr>", Line: 1, Col: 5}}},
	}))
	assert.Equal(t, 1, reads)
	assert.Contains(t, buf.String(), " 1 |  a + b\n")
	assert.NotContains(t, buf.String(), "\r")
}
