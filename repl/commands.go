// Copyright © 2018 The ELPS authors

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/debugger"
	"github.com/luthersystems/eescope/diagnostic"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// commandNames lists the commands and their abbreviations for completion.
var commandNames = []string{
	"aliases", "a",
	"backtrace", "bt",
	"exception",
	"frame", "f",
	"help", "h",
	"locals", "l",
	"lookup", "k",
	"objectid", "oid",
	"print", "p",
	"quit", "q",
	"return", "ret",
	"where", "w",
}

// handler holds the state of a REPL session.
type handler struct {
	ctx        context.Context
	session    *debugger.Session
	out        io.Writer
	color      diagnostic.ColorMode
	sourceRoot string

	frame   int
	lastCmd string
	done    bool
}

func newHandler(ctx context.Context, session *debugger.Session, cfg *config) *handler {
	return &handler{
		ctx:        ctx,
		session:    session,
		out:        cfg.stderr,
		color:      cfg.color,
		sourceRoot: cfg.sourceRoot,
		frame:      cfg.frame,
	}
}

// handleLine runs a command or evaluates the line.  Empty input repeats the
// last command.
func (h *handler) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		line = h.lastCmd
		if line == "" {
			return
		}
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "aliases", "a":
		h.doAliases()
	case "backtrace", "bt":
		showBacktrace(h.out, h.session.Program().Frames(), h.frame)
	case "exception":
		h.doException(args)
	case "frame", "f":
		h.doFrame(args)
	case "help", "h":
		showHelp(h.out)
	case "locals", "l":
		h.doLocals()
	case "lookup", "k":
		h.doLookup(args)
	case "objectid", "oid":
		h.doObjectID(args)
	case "print", "p":
		if rest == "" {
			h.println("usage: print <expression>")
			return
		}
		h.evaluate(rest)
	case "quit", "q":
		h.done = true
	case "return", "ret":
		if rest == "" {
			h.println("usage: return <expression>")
			return
		}
		h.doReturn(rest)
	case "where", "w":
		h.doWhere()
	default:
		// Expressions are not repeated by empty input.
		h.evaluate(line)
		return
	}
	h.lastCmd = line
}

func (h *handler) println(a ...interface{}) {
	fmt.Fprintln(h.out, a...) //nolint:errcheck // best-effort REPL output
}

func (h *handler) printf(format string, a ...interface{}) {
	fmt.Fprintf(h.out, format, a...) //nolint:errcheck // best-effort REPL output
}

func (h *handler) evaluate(text string) {
	ev, err := h.session.Evaluate(h.ctx, h.frame, text)
	if err != nil {
		h.renderError(text, err)
		return
	}
	if len(ev.Declared) == 0 {
		h.println(formatValue(ev.Value))
		return
	}
	for _, d := range ev.Declared {
		h.printf("%s = %s\n", d.Local.Name(), formatValue(d.Value))
	}
}

func (h *handler) renderError(text string, err error) {
	diags := debugger.Diagnostics(err)
	for i := range diags {
		if diags[i].Code == binder.ErrNameNotFound {
			diags[i].Notes = append(diags[i].Notes, "use `locals` and `aliases` to list the names in scope")
		}
	}
	if errors.Is(err, debugger.ErrInternal) {
		diags[0].Notes = append(diags[0].Notes, "the session is still usable")
	}
	r := &diagnostic.Renderer{
		Color:        h.color,
		SourceReader: diagnostic.TextSource(map[string]string{debugger.SourceName: text}),
	}
	_ = r.RenderAll(h.out, diags)
}

func (h *handler) doFrame(args []string) {
	if len(args) == 0 {
		h.showStop()
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		h.printf("invalid frame id: %s\n", args[0])
		return
	}
	if _, err := h.session.Program().Frame(id); err != nil {
		h.println(err)
		return
	}
	h.frame = id
	h.showStop()
}

func (h *handler) doAliases() {
	ps, err := h.session.Placeholders(h.frame)
	if err != nil {
		h.println(err)
		return
	}
	showAliases(h.out, ps, h.session.Program())
}

// doReturn records the value of an expression as the next return value
// alias, as if the paused method had just returned it.
func (h *handler) doReturn(text string) {
	ev, err := h.session.Evaluate(h.ctx, h.frame, text)
	if err != nil {
		h.renderError(text, err)
		return
	}
	stmt, ok := ev.Statement.(*binder.ExpressionStatement)
	if !ok {
		h.println("return takes an expression, not a declaration")
		return
	}
	name := h.session.RecordReturnValue(stmt.Expr.Type(), ev.Value)
	h.printf("%s = %s\n", name, formatValue(ev.Value))
}

func (h *handler) doLocals() {
	frame, err := h.session.Program().Frame(h.frame)
	if err != nil {
		h.println(err)
		return
	}
	showLocals(h.out, frame)
}

func (h *handler) doWhere() {
	frame, err := h.session.Program().Frame(h.frame)
	if err != nil {
		h.println(err)
		return
	}
	if frame.Source == nil {
		h.println("no source location")
		return
	}
	showSourceContext(h.out, frame.Source.File, frame.Source.Line, h.sourceRoot)
}

// showStop prints the current frame and its source.
func (h *handler) showStop() {
	frame, err := h.session.Program().Frame(h.frame)
	if err != nil {
		h.println(err)
		return
	}
	h.printf("frame #%d: %s\n", frame.ID, frame.Name())
	if frame.Source != nil {
		showSourceContext(h.out, frame.Source.File, frame.Source.Line, h.sourceRoot)
	}
}

func (h *handler) doLookup(args []string) {
	var req binder.LookupRequest
	for _, arg := range args {
		switch arg {
		case "-types":
			req.Options |= binder.NamespacesOrTypesOnly
		case "-labels":
			req.Options |= binder.LabelsOnly
		case "-aliases":
			req.Options |= binder.NamespaceAliasesOnly
		default:
			if req.Name != "" {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 0 {
					h.printf("invalid arity: %s\n", arg)
					return
				}
				req.Arity = n
				continue
			}
			req.Name = arg
		}
	}
	if req.Name == "" {
		h.println("usage: lookup [-types|-labels|-aliases] <name> [arity]")
		return
	}
	res, err := h.session.Lookup(h.ctx, h.frame, req)
	if err != nil {
		h.println(err)
		return
	}
	h.println(res)
	if reason := res.Reason(); reason != "" {
		h.printf("  %s\n", reason)
	}
}

func (h *handler) doObjectID(args []string) {
	if len(args) != 1 {
		h.println("usage: objectid <address>")
		return
	}
	address, err := parseAddress(args[0])
	if err != nil {
		h.println(err)
		return
	}
	name, err := h.session.MakeObjectID(address)
	if err != nil {
		h.println(err)
		return
	}
	h.printf("%s = 0x%x\n", name, address)
}

func (h *handler) doException(args []string) {
	switch {
	case len(args) == 1 && args[0] == "clear":
		h.session.ClearException()
		h.println("exception cleared")
		return
	case len(args) == 1, len(args) == 2 && args[1] == "stowed":
	default:
		h.println("usage: exception <address> [stowed] | exception clear")
		return
	}
	address, err := parseAddress(args[0])
	if err != nil {
		h.println(err)
		return
	}
	name, err := h.session.SetException(address, len(args) == 2)
	if err != nil {
		h.println(err)
		return
	}
	h.printf("%s = 0x%x\n", name, address)
}

func parseAddress(s string) (uint64, error) {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "0x") {
		return 0, fmt.Errorf("invalid address %q: addresses are written 0x...", s)
	}
	address, err := strconv.ParseUint(lower[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return address, nil
}

const helpWidth = 72

func showHelp(w io.Writer) {
	help := `Commands:
  frame (f) [N]             Show or select the current frame
  backtrace (bt)            Show the paused call stack
  where (w)                 Show source around the current frame
  locals (l)                Show parameters and locals of the frame
  aliases (a)               Show the debugger aliases
  print (p) EXPR            Evaluate and print an expression
  lookup (k) [-types|-labels|-aliases] NAME [ARITY]
                            Resolve a name in the current frame
  objectid (oid) ADDR       Assign an object id ($1, $2, ...) to ADDR
  exception ADDR [stowed]   Set the exception being thrown
  exception clear           Clear the exception
  return (ret) EXPR         Record EXPR as the next $ReturnValue alias
  quit (q)                  End the session
  help (h)                  Show this help
`
	note := "Any other input is evaluated in the current frame. " +
		"Declarations such as `int n = count + 1` keep their locals for later input. " +
		"Empty input repeats the last command. " +
		"Commands and their abbreviations take precedence over names: " +
		"use `print a` to evaluate a local or alias named a."
	_, _ = fmt.Fprintf(w, "%s\n%s\n", help, indent.String(wordwrap.String(note, helpWidth-2), 2))
}
