// Copyright © 2018 The ELPS authors

package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/eescope/debugger/snapshot"
	"github.com/luthersystems/eescope/eval"
	"github.com/luthersystems/eescope/symbols"
	"github.com/muesli/reflow/wordwrap"
)

const (
	sourceContextLines = 5
	valueWidth         = 100
)

// formatValue returns the display text of v.  Objects show their fields and
// long text wraps onto indented lines.
func formatValue(v eval.Value) string {
	s := v.String()
	if obj := v.Object(); obj != nil {
		s = obj.Describe()
	}
	if len(s) <= valueWidth {
		return s
	}
	return strings.ReplaceAll(wordwrap.String(s, valueWidth), "\n", "\n    ")
}

// showSourceContext prints a window of source lines around the given line,
// with a --> marker on the current line.
func showSourceContext(w io.Writer, file string, line int, sourceRoot string) {
	path := file
	if sourceRoot != "" && !filepath.IsAbs(file) {
		path = filepath.Join(sourceRoot, file)
	}
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		fmt.Fprintf(w, "  at %s:%d (source not available)\n", file, line) //nolint:errcheck
		return
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	start := line - sourceContextLines
	if start < 1 {
		start = 1
	}
	end := line + sourceContextLines
	for lineNum := 1; scanner.Scan() && lineNum <= end; lineNum++ {
		if lineNum < start {
			continue
		}
		marker := "   "
		if lineNum == line {
			marker = "-->"
		}
		fmt.Fprintf(w, "%s %4d  %s\n", marker, lineNum, scanner.Text()) //nolint:errcheck
	}
}

// showBacktrace prints the paused frames, innermost first, marking the
// current frame.
func showBacktrace(w io.Writer, frames []*snapshot.Frame, current int) {
	if len(frames) == 0 {
		fmt.Fprintln(w, "  (empty stack)") //nolint:errcheck
		return
	}
	for _, frame := range frames {
		marker := " "
		if frame.ID == current {
			marker = "*"
		}
		loc := "unknown"
		if frame.Source != nil {
			loc = frame.Source.String()
		}
		fmt.Fprintf(w, "%s #%d  %s  at %s\n", marker, frame.ID, frame.Name(), loc) //nolint:errcheck
	}
}

// showLocals prints the parameters and locals of frame.
func showLocals(w io.Writer, frame *snapshot.Frame) {
	params := frame.Method.Parameters()
	locals := frame.Method.Locals()
	if len(params)+len(locals) == 0 {
		fmt.Fprintln(w, "  (no locals)") //nolint:errcheck
		return
	}
	for _, p := range params {
		v, err := frame.ParameterValue(p)
		showVariable(w, p.Name(), p.Type().String(), v, err)
	}
	for _, l := range locals {
		v, err := frame.LocalValue(l)
		showVariable(w, l.Name(), l.Type().String(), v, err)
	}
}

// showAliases prints the aliases with their kinds and values.
func showAliases(w io.Writer, aliases []*symbols.PlaceholderLocal, p *snapshot.Program) {
	if len(aliases) == 0 {
		fmt.Fprintln(w, "  (no aliases)") //nolint:errcheck
		return
	}
	for _, a := range aliases {
		v, err := eval.FromPayload(a.Type(), a.Payload(), p)
		showVariable(w, a.Name(), a.PlaceholderKind().String()+" "+a.Type().String(), v, err)
	}
}

func showVariable(w io.Writer, name, typ string, v eval.Value, err error) {
	value := "<unavailable>"
	if err == nil {
		value = formatValue(v)
	}
	fmt.Fprintf(w, "  %-20s %-24s = %s\n", name, typ, value) //nolint:errcheck
}
