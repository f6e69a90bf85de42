// Copyright © 2018 The ELPS authors

// Package repl provides an interactive prompt for evaluating expressions
// against a paused program.  Lines naming a command (see help) run the
// command and any other line is evaluated in the current frame.
package repl

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ergochat/readline"
	"github.com/luthersystems/eescope/debugger"
	"github.com/luthersystems/eescope/diagnostic"
)

// DefaultPrompt is the prompt shown while reading a line.
const DefaultPrompt = "(dbg) "

type config struct {
	stdin       io.ReadCloser
	stderr      io.Writer
	prompt      string
	historyFile string
	sourceRoot  string
	color       diagnostic.ColorMode
	frame       int
}

func newConfig(opts ...Option) *config {
	config := &config{
		stderr:      os.Stderr,
		prompt:      DefaultPrompt,
		historyFile: historyPath(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Option configures the REPL.
type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(c *config) {
		c.prompt = prompt
	}
}

// WithHistoryFile sets the file line history is kept in.  An empty path
// disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithSourceRoot sets the directory relative source paths of frames are
// resolved against.
func WithSourceRoot(dir string) Option {
	return func(c *config) {
		c.sourceRoot = dir
	}
}

// WithColor sets when errors are rendered with color.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithFrame selects the frame requests are evaluated in at startup.
func WithFrame(id int) Option {
	return func(c *config) {
		c.frame = id
	}
}

// Run reads lines until input ends or the quit command is given.
func Run(ctx context.Context, session *debugger.Session, opts ...Option) error {
	cfg := newConfig(opts...)
	h := newHandler(ctx, session, cfg)
	if _, err := session.Program().Frame(cfg.frame); err != nil {
		return err
	}

	ensureHistoryFilePermissions(cfg.historyFile)
	rlCfg := &readline.Config{
		Stdout:            cfg.stderr,
		Stderr:            cfg.stderr,
		Prompt:            cfg.prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &commandCompleter{session: session},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	h.showStop()
	for !h.done {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			break
		}
		h.handleLine(string(bytes.TrimSpace(line)))
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".eescope_history")
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to the owner.  Evaluated text may contain secrets.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
