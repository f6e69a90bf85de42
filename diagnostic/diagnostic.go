// Copyright © 2024 The ELPS authors

// Package diagnostic renders errors as annotated source snippets for
// terminal output.  It does not depend on the parser or binder so that any
// command can use it.
package diagnostic

import "io/fs"

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic is a single error, warning or note with optional source
// annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code is an optional error code shown after the severity, e.g. CS0103.
	Code    string
	Message string
	Spans   []Span
	Notes   []string // "= note:" lines
}

// TextSource returns a source reader serving the given files from memory.
// It is used for text which never lived in a file, such as a watch
// expression.
func TextSource(files map[string]string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		text, ok := files[name]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return []byte(text), nil
	}
}
