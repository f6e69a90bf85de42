// Copyright © 2018 The ELPS authors

package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/eescope/debugger"
	"github.com/luthersystems/eescope/debugger/snapshot"
	"github.com/luthersystems/eescope/diagnostic"
	"github.com/luthersystems/eescope/eetest"
	"github.com/luthersystems/eescope/eval"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *debugger.Session {
	t.Helper()
	p, err := snapshot.Open("../debugger/snapshot/testdata/widgets.yaml")
	require.NoError(t, err)
	s, err := debugger.NewSession(p, debugger.WithLogger(logrus.NewEntry(eetest.NewLogrus(t))))
	require.NoError(t, err)
	return s
}

func newTestHandler(t *testing.T) (*handler, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := newConfig(WithStderr(&out), WithColor(diagnostic.ColorNever), WithHistoryFile(""))
	return newHandler(context.Background(), newTestSession(t), cfg), &out
}

func TestHandleLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"Expression", "id + attempts", []string{"9\n"}},
		{"Object", "last", []string{"{App.Widget} { Id = 6, Next = {App.Widget} }"}},
		{"Print", "p id * 6", []string{"42\n"}},
		{"PrintUsage", "p", []string{"usage: print"}},
		{"Declaration", "int n = id + 1, m = n * 2", []string{"n = 8\n", "m = 16\n"}},
		{"UnknownName", "nope", []string{"error[CS0103]", "The name 'nope' does not exist", "use `locals` and `aliases`"}},
		{"RuntimeError", "1 / (id - 7)", []string{"error:", "attempted to divide by zero"}},
		{"SyntaxError", "1 +", []string{"error:"}},
		{"Backtrace", "bt", []string{"* #0  App.Program.Find(", "at Program.cs:41", "  #1  App.Program.Main("}},
		{"Locals", "l", []string{"id", "= 7", "cache", "= null", "attempts", "= 2", "ratio", "= <unavailable>"}},
		{"Aliases", "a", []string{"$exception", "exception App.NotFoundException", "= App.NotFoundException: widget 7", "$ReturnValue", "= 0"}},
		{"Lookup", "k id", []string{"viable[parameter id]"}},
		{"LookupLabel", "lookup -labels retry", []string{"viable[label retry]"}},
		{"LookupType", "lookup -types Widget", []string{"viable[type App.Widget]"}},
		{"LookupMissing", "k nope", []string{"empty[]"}},
		{"LookupUsage", "k -types", []string{"usage: lookup"}},
		{"ObjectID", "oid 0x1010", []string{"$1 = 0x1010"}},
		{"ObjectIDBadAddress", "oid 1010", []string{"invalid address"}},
		{"ObjectIDNoObject", "objectid 0x9999", []string{"no object at address"}},
		{"Exception", "exception 0x1000", []string{"not an exception"}},
		{"ExceptionUsage", "exception 0x2000 thrown", []string{"usage: exception"}},
		{"FrameMissing", "frame 5", []string{"no frame with id 5"}},
		{"FrameInvalid", "f one", []string{"invalid frame id: one"}},
		{"Frame", "f", []string{"frame #0: App.Program.Find("}},
		{"Where", "w", []string{"at Program.cs:41 (source not available)"}},
		{"Help", "help", []string{"Commands:", "return (ret) EXPR", "repeats the last command.", "precedence over names:", "use `print a`"}},
		{"Return", "ret id * 6", []string{"$ReturnValue2 = 42\n"}},
		{"ReturnNull", "return null", []string{"$ReturnValue2 = null\n"}},
		{"ReturnUsage", "ret", []string{"usage: return"}},
		{"ReturnDeclaration", "ret int n = 1", []string{"return takes an expression"}},
		{"ReturnError", "ret nope", []string{"error[CS0103]"}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			h, out := newTestHandler(t)
			h.handleLine(test.input)
			for _, want := range test.want {
				assert.Contains(t, out.String(), want)
			}
			assert.False(t, h.done)
		})
	}
}

func TestHandleLine_Frame(t *testing.T) {
	t.Parallel()
	h, out := newTestHandler(t)
	h.handleLine("frame 1")
	assert.Contains(t, out.String(), "frame #1: App.Program.Main(")
	assert.Equal(t, 1, h.frame)

	out.Reset()
	h.handleLine("args")
	assert.Equal(t, "null\n", out.String())

	out.Reset()
	h.handleLine("id")
	assert.Contains(t, out.String(), "error[CS0103]")

	out.Reset()
	h.handleLine("bt")
	assert.Contains(t, out.String(), "* #1  App.Program.Main(")
}

func TestHandleLine_RepeatsLastCommand(t *testing.T) {
	t.Parallel()
	h, out := newTestHandler(t)
	h.handleLine("")
	assert.Empty(t, out.String())

	h.handleLine("id")
	h.handleLine("")
	assert.Equal(t, "7\n", out.String())

	out.Reset()
	h.handleLine("bt")
	h.handleLine("")
	assert.Equal(t, 2, strings.Count(out.String(), "#0  App.Program.Find("))
}

func TestHandleLine_Session(t *testing.T) {
	t.Parallel()
	h, out := newTestHandler(t)
	h.handleLine("int n = 3")
	h.handleLine("n * 2")
	assert.Equal(t, "n = 3\n6\n", out.String())

	out.Reset()
	h.handleLine("oid 0x1000")
	h.handleLine("$1 == last")
	assert.Equal(t, "$1 = 0x1000\nTrue\n", out.String())

	out.Reset()
	h.handleLine("exception clear")
	h.handleLine("$exception")
	assert.Contains(t, out.String(), "exception cleared")
	assert.Contains(t, out.String(), "error[CS0103]")

	out.Reset()
	h.handleLine("exception 0x2000 stowed")
	h.handleLine("$stowedexception")
	assert.Equal(t, "$stowedexception = 0x2000\nApp.NotFoundException: widget 7\n", out.String())

	out.Reset()
	h.handleLine("ret n + 1")
	h.handleLine("$returnvalue2 * 10")
	assert.Equal(t, "$ReturnValue2 = 4\n40\n", out.String())

	out.Reset()
	h.handleLine("a")
	got := out.String()
	assert.Contains(t, got, "return-value int")
	assert.Less(t, strings.Index(got, "$ReturnValue "), strings.Index(got, "$ReturnValue2"))

	h.handleLine("q")
	assert.True(t, h.done)
}

func TestCommandCompleter(t *testing.T) {
	t.Parallel()
	c := &commandCompleter{session: newTestSession(t)}
	tests := []struct {
		line   string
		want   []string
		offset int
	}{
		{"ba", []string{"cktrace"}, 2},
		{"l", []string{"", "ocals", "ookup"}, 1},
		{"p $", []string{"ReturnValue", "exception"}, 1},
		{"id + $e", []string{"xception"}, 2},
		{"$R", []string{"eturnValue"}, 2},
		{"zz", nil, 0},
		{"p ", nil, 0},
	}
	for _, test := range tests {
		line := []rune(test.line)
		got, offset := c.Do(line, len(line))
		var suffixes []string
		for _, s := range got {
			suffixes = append(suffixes, string(s))
		}
		assert.Equal(t, test.want, suffixes, test.line)
		assert.Equal(t, test.offset, offset, test.line)
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"short"`, formatValue(eval.Value{V: "short"}))
	long := formatValue(eval.Value{V: strings.Repeat("word ", 40)})
	assert.Contains(t, long, "\n    ")
	for _, line := range strings.Split(long, "\n") {
		assert.LessOrEqual(t, len(line), valueWidth+4)
	}
}

func TestShowSourceContext(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	var src strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&src, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Program.cs"), []byte(src.String()), 0600))

	var out bytes.Buffer
	showSourceContext(&out, "Program.cs", 10, dir)
	assert.Contains(t, out.String(), "-->   10  line 10\n")
	assert.Contains(t, out.String(), "      5  line 5\n")
	assert.Contains(t, out.String(), "     15  line 15\n")
	assert.NotContains(t, out.String(), "line 16")
	assert.NotContains(t, out.String(), "line 4\n")
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".eescope_history")

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".eescope_history")
	require.NoError(t, os.WriteFile(histFile, []byte("id + 1"), 0644)) //#nosec G306

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	data, err := os.ReadFile(histFile) //#nosec G304
	require.NoError(t, err)
	assert.Equal(t, "id + 1", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	ensureHistoryFilePermissions("")
}

func runReplWithString(t *testing.T, input string, opts ...Option) (string, error) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	errc := make(chan error, 1)
	go func() {
		opts = append([]Option{
			WithStdin(inR),
			WithStderr(outW),
			WithHistoryFile(""),
			WithColor(diagnostic.ColorNever),
		}, opts...)
		errc <- Run(context.Background(), newTestSession(t), opts...)
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup

	return output.String(), <-errc
}

func TestRun(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Expression",
			input:    "id * 6\n",
			expected: []string{"frame #0: App.Program.Find(", "42"},
		},
		{
			name:     "Error",
			input:    "nope\nq\n",
			expected: []string{"does not exist in the current context"},
		},
		{
			name:     "Backtrace",
			input:    "bt\n",
			expected: []string{"#1  App.Program.Main("},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runReplWithString(t, tc.input)
			require.NoError(t, err)
			for _, want := range tc.expected {
				require.Contains(t, got, want)
			}
		})
	}
}

func TestRun_BadFrame(t *testing.T) {
	err := Run(context.Background(), newTestSession(t), WithFrame(7), WithHistoryFile(""))
	assert.Error(t, err)
}
